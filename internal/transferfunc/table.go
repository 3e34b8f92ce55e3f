// Package transferfunc implements the 1-D RGBA lookup table that
// classifies volume samples into pre-classified color and opacity.
package transferfunc

import "fmt"

// RGBA is a pre-classified transfer-function entry: color plus opacity at
// the fixed reference step.
type RGBA struct {
	R, G, B, A float32
}

// Size8 and Size16 are the table lengths for 8-bit and 16-bit volumes.
const (
	Size8  = 256
	Size16 = 4096
)

// Table is the device 1-D texture equivalent: linear-filtered, clamped at
// both ends.
type Table struct {
	entries []RGBA
}

// NewTable builds an empty table sized for the given bytes-per-channel.
func NewTable(size int) *Table {
	return &Table{entries: make([]RGBA, size)}
}

// Size reports L, the table length.
func (t *Table) Size() int { return len(t.entries) }

// Recompute reuploads the table from a dense RGBA lut. Rebinding is atomic
// from the caller's perspective: the old table remains valid until this
// call returns with the new one installed.
func (t *Table) Recompute(lut []RGBA) error {
	if len(lut) != len(t.entries) {
		return fmt.Errorf("transferfunc: lut length %d does not match table size %d", len(lut), len(t.entries))
	}
	next := make([]RGBA, len(lut))
	copy(next, lut)
	t.entries = next
	return nil
}

// Lookup samples the table at a normalized scalar value in [0,1], using
// linear filtering and clamp addressing the way the device 1-D texture
// does.
func (t *Table) Lookup(scalar float32) RGBA {
	n := len(t.entries)
	if n == 0 {
		return RGBA{}
	}
	if n == 1 {
		return t.entries[0]
	}

	pos := scalar*float32(n) - 0.5
	if pos < 0 {
		pos = 0
	}
	max := float32(n - 1)
	if pos > max {
		pos = max
	}

	i0 := int(pos)
	i1 := i0 + 1
	if i1 > n-1 {
		i1 = n - 1
	}
	frac := pos - float32(i0)

	a, b := t.entries[i0], t.entries[i1]
	return RGBA{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
		A: lerp(a.A, b.A, frac),
	}
}

// LookupIndex returns the raw, unfiltered entry for an integer scalar
// index, used by the space-skip grid's exact alpha(s) == 0 test.
func (t *Table) LookupIndex(index int) RGBA {
	if index < 0 {
		index = 0
	}
	if index >= len(t.entries) {
		index = len(t.entries) - 1
	}
	return t.entries[index]
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }
