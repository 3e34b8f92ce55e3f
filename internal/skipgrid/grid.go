// Package skipgrid implements empty-space skipping: a coarse grid of
// cells, each holding the scalar range of the voxels it covers, collapsed
// to a boolean "fully transparent" flag whenever the transfer function
// changes.
package skipgrid

import (
	"github.com/ungerik/go3d/vec3"

	"github.com/HellmannM/deskvox/internal/transferfunc"
	"github.com/HellmannM/deskvox/internal/volume"
)

// DefaultCellsPerAxis is the default coarse grid resolution.
const DefaultCellsPerAxis = 16

type cell struct {
	min, max float32
}

// Grid is the host-side min/max grid plus the derived boolean skip
// texture. Only bpc=1 volumes are supported; bpc=2 silently disables it,
// matching the data model.
type Grid struct {
	nx, ny, nz int
	cells      []cell
	skippable  []bool
	supported  bool
}

// NewGrid allocates an Nx*Ny*Nz grid. cellsPerAxis <= 0 selects the
// default resolution.
func NewGrid(cellsPerAxis int) *Grid {
	if cellsPerAxis <= 0 {
		cellsPerAxis = DefaultCellsPerAxis
	}
	n := cellsPerAxis * cellsPerAxis * cellsPerAxis
	return &Grid{
		nx: cellsPerAxis, ny: cellsPerAxis, nz: cellsPerAxis,
		cells:     make([]cell, n),
		skippable: make([]bool, n),
	}
}

// Supported reports whether the grid has usable min/max ranges for the
// current volume (bpc=1 only).
func (g *Grid) Supported() bool { return g.supported }

func (g *Grid) index(i, j, k int) int { return (k*g.ny+j)*g.nx + i }

// cellExtent returns the voxel range [lo, hi) covered by cell index c
// along an axis of total size n, with the last cell absorbing any
// remainder when n is not evenly divisible by cells.
func cellExtent(c, cells, n int) (lo, hi int) {
	base := n / cells
	lo = c * base
	if c == cells-1 {
		return lo, n
	}
	return lo, lo + base
}

// BuildRange scans the given frame's raw voxel data and computes each
// cell's [min,max] scalar range. Only 8-bit volumes are supported; for
// 16-bit volumes the grid is marked unsupported and every subsequent
// Skippable query returns false, effectively disabling space skipping.
func (g *Grid) BuildRange(desc volume.Descriptor, raw []byte) {
	if desc.BPC != volume.BPC8 {
		g.supported = false
		return
	}

	for idx := range g.cells {
		g.cells[idx] = cell{min: 1, max: 0}
	}

	for k := 0; k < g.nz; k++ {
		zlo, zhi := cellExtent(k, g.nz, desc.Nz)
		for j := 0; j < g.ny; j++ {
			ylo, yhi := cellExtent(j, g.ny, desc.Ny)
			for i := 0; i < g.nx; i++ {
				xlo, xhi := cellExtent(i, g.nx, desc.Nx)

				c := &g.cells[g.index(i, j, k)]
				for z := zlo; z < zhi; z++ {
					for y := ylo; y < yhi; y++ {
						base := (z*desc.Ny+y)*desc.Nx + xlo
						for x := xlo; x < xhi; x++ {
							s := float32(raw[base+(x-xlo)]) / 255.0
							if s < c.min {
								c.min = s
							}
							if s > c.max {
								c.max = s
							}
						}
					}
				}
			}
		}
	}

	g.supported = true
}

// Recompute rebuilds the boolean skip texture from the current transfer
// function: a cell is skippable iff alpha is zero for every scalar value
// in its [min,max] range.
func (g *Grid) Recompute(tf *transferfunc.Table) {
	if !g.supported {
		for i := range g.skippable {
			g.skippable[i] = false
		}
		return
	}

	size := tf.Size()
	for idx, c := range g.cells {
		lo := int(c.min * float32(size-1))
		hi := int(c.max * float32(size-1))
		if lo > hi {
			g.skippable[idx] = false
			continue
		}

		allZero := true
		for s := lo; s <= hi; s++ {
			if tf.LookupIndex(s).A != 0 {
				allZero = false
				break
			}
		}
		g.skippable[idx] = allZero
	}
}

// Skippable reports whether the cell containing normalized texture
// coordinate tc in [0,1]^3 is flagged as fully transparent. It returns
// false unconditionally when the grid is unsupported, so disabling the
// feature (or a 16-bit volume) degrades to always sampling the volume.
func (g *Grid) Skippable(tc vec3.T) bool {
	if !g.supported {
		return false
	}
	i := clampCell(int(tc[0]*float32(g.nx)), g.nx)
	j := clampCell(int(tc[1]*float32(g.ny)), g.ny)
	k := clampCell(int(tc[2]*float32(g.nz)), g.nz)
	return g.skippable[g.index(i, j, k)]
}

func clampCell(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
