package transferfunc

import "testing"

func TestRecomputeRejectsWrongSize(t *testing.T) {
	tbl := NewTable(Size8)
	if err := tbl.Recompute(make([]RGBA, 10)); err == nil {
		t.Fatal("expected size mismatch error")
	}
}

func TestLookupLinearFilter(t *testing.T) {
	tbl := NewTable(4)
	lut := []RGBA{
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{1, 1, 1, 1},
		{0, 0, 0, 0},
	}
	if err := tbl.Recompute(lut); err != nil {
		t.Fatal(err)
	}

	got := tbl.Lookup(0)
	if got.R != 0 {
		t.Fatalf("got %v, want first entry at scalar 0", got)
	}

	got = tbl.Lookup(1)
	if got.R != 0 {
		t.Fatalf("got %v, want last entry at scalar 1", got)
	}
}

func TestLookupIndexClampsRange(t *testing.T) {
	tbl := NewTable(Size8)
	lut := make([]RGBA, Size8)
	lut[0] = RGBA{A: 1}
	lut[Size8-1] = RGBA{A: 0.5}
	_ = tbl.Recompute(lut)

	if tbl.LookupIndex(-5).A != 1 {
		t.Fatal("expected negative index clamped to 0")
	}
	if tbl.LookupIndex(10000).A != 0.5 {
		t.Fatal("expected overflowing index clamped to last entry")
	}
}
