// Package jitter implements the fixed-size dithering table used to break
// up slice-aliasing artifacts by offsetting each ray's start position.
package jitter

import "math/rand"

// NumRandVecs is the fixed table length.
const NumRandVecs = 8192

// scale is the per-component range multiplier: each channel is a uniform
// sample in [0, scale).
const scale = 2.0

// Table is the device 1-D texture equivalent: NumRandVecs RGB triples. The
// alpha channel exists in the source format but is never read by the
// kernel, so it is not stored here.
type Table struct {
	vecs [NumRandVecs][3]float32
	done bool
}

// EnsureInitialized generates the table once, using rng if non-nil or a
// source with the fixed seed 1 otherwise. Repeated calls are no-ops, matching
// the single-method lifecycle of the source table: stability across
// frames is desirable but not required, so initialization never rebuilds
// once done.
func (t *Table) EnsureInitialized(rng *rand.Rand) {
	if t.done {
		return
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	for i := range t.vecs {
		t.vecs[i][0] = float32(rng.Float64()) * scale
		t.vecs[i][1] = float32(rng.Float64()) * scale
		t.vecs[i][2] = float32(rng.Float64()) * scale
	}
	t.done = true
}

// At returns the RGB offset for a pixel index, wrapped into the table.
func (t *Table) At(index int) (x, y, z float32) {
	i := index % NumRandVecs
	if i < 0 {
		i += NumRandVecs
	}
	v := t.vecs[i]
	return v[0], v[1], v[2]
}
