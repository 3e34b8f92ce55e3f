package diag

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("expected a non-nil default logger")
	}
	l.Info("should not panic")
}

func TestSetLoggerNilRestoresSilence(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	Logger().Info("visible")
	if buf.Len() == 0 {
		t.Fatal("expected the configured logger to write output")
	}

	SetLogger(nil)
	buf.Reset()
	Logger().Info("should be discarded")
	if buf.Len() != 0 {
		t.Fatal("expected SetLogger(nil) to restore the silent logger")
	}
}

func TestConsoleProgressOnlyLogsOncePerPercent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	progress := ConsoleProgress(logger)

	progress(1, 1000)
	progress(2, 1000)
	n := bytes.Count(buf.Bytes(), []byte("render progress"))
	if n != 1 {
		t.Fatalf("expected exactly one log line for repeated 0%%, got %d", n)
	}

	progress(50, 1000)
	n = bytes.Count(buf.Bytes(), []byte("render progress"))
	if n != 2 {
		t.Fatalf("expected a new log line once the percentage changes, got %d", n)
	}
}
