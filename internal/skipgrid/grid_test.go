package skipgrid

import (
	"testing"

	"github.com/ungerik/go3d/vec3"

	"github.com/HellmannM/deskvox/internal/transferfunc"
	"github.com/HellmannM/deskvox/internal/volume"
)

func TestBuildRangeUniformVolume(t *testing.T) {
	desc := volume.Descriptor{Nx: 8, Ny: 8, Nz: 8, BPC: volume.BPC8, Frames: 1}
	raw := make([]byte, 8*8*8)
	for i := range raw {
		raw[i] = 64
	}

	g := NewGrid(4)
	g.BuildRange(desc, raw)

	if !g.Supported() {
		t.Fatal("expected 8-bit volume to be supported")
	}
	for _, c := range g.cells {
		if c.min != c.max {
			t.Fatalf("uniform volume should yield min==max, got %v %v", c.min, c.max)
		}
	}
}

func Test16BitVolumeUnsupported(t *testing.T) {
	desc := volume.Descriptor{Nx: 8, Ny: 8, Nz: 8, BPC: volume.BPC16, Frames: 1}
	g := NewGrid(4)
	g.BuildRange(desc, make([]byte, 8*8*8*2))

	if g.Supported() {
		t.Fatal("expected 16-bit volume to disable space skipping")
	}
	if g.Skippable(vec3.T{0.5, 0.5, 0.5}) {
		t.Fatal("unsupported grid must report not-skippable")
	}
}

func TestRecomputeMarksTransparentCellsSkippable(t *testing.T) {
	desc := volume.Descriptor{Nx: 4, Ny: 4, Nz: 4, BPC: volume.BPC8, Frames: 1}
	raw := make([]byte, 4*4*4)
	for i := range raw {
		raw[i] = 10 // scalar ~0.039, falls in a near-zero lut bucket
	}

	g := NewGrid(2)
	g.BuildRange(desc, raw)

	tf := transferfunc.NewTable(transferfunc.Size8)
	lut := make([]transferfunc.RGBA, transferfunc.Size8)
	// Every entry transparent.
	_ = tf.Recompute(lut)
	g.Recompute(tf)

	for _, skip := range g.skippable {
		if !skip {
			t.Fatal("expected every cell to be skippable under an all-transparent transfer function")
		}
	}

	lut[10] = transferfunc.RGBA{A: 1}
	_ = tf.Recompute(lut)
	g.Recompute(tf)

	if g.Skippable(vec3.T{0.1, 0.1, 0.1}) {
		t.Fatal("expected cell covering scalar 10 to stop being skippable once it maps to nonzero alpha")
	}
}
