package jitter

import "testing"

func TestEnsureInitializedIsIdempotent(t *testing.T) {
	var tbl Table
	tbl.EnsureInitialized(nil)
	x1, y1, z1 := tbl.At(42)

	tbl.EnsureInitialized(nil)
	x2, y2, z2 := tbl.At(42)

	if x1 != x2 || y1 != y2 || z1 != z2 {
		t.Fatal("expected second EnsureInitialized call to be a no-op")
	}
}

func TestAtWrapsAndStaysInRange(t *testing.T) {
	var tbl Table
	tbl.EnsureInitialized(nil)

	x, y, z := tbl.At(NumRandVecs + 5)
	x2, y2, z2 := tbl.At(5)
	if x != x2 || y != y2 || z != z2 {
		t.Fatal("expected index to wrap at NumRandVecs")
	}

	for i := 0; i < NumRandVecs; i++ {
		cx, cy, cz := tbl.At(i)
		for _, c := range []float32{cx, cy, cz} {
			if c < 0 || c >= 2.0 {
				t.Fatalf("component %v out of [0,2) range", c)
			}
		}
	}
}
