// Package aabb implements the minimal axis-aligned bounding box math the
// ray-caster needs for its probe box and space-skip cells. The general
// AABB utility the wider renderer uses is an external collaborator; this
// package only carries what the kernel itself touches.
package aabb

import "github.com/ungerik/go3d/vec3"

// Box is an axis-aligned bounding box described by its min and max corner,
// mirroring the min/max convention of virvo's basic_aabb.
type Box struct {
	Min, Max vec3.T
}

// New returns a box built from a center and a half-size.
func New(center, halfSize vec3.T) Box {
	return Box{
		Min: vec3.Sub(&center, &halfSize),
		Max: vec3.Add(&center, &halfSize),
	}
}

// Center returns the midpoint of the box.
func (b Box) Center() vec3.T {
	sum := vec3.Add(&b.Min, &b.Max)
	return sum.Scaled(0.5)
}

// HalfSize returns half the box's extent along each axis.
func (b Box) HalfSize() vec3.T {
	size := vec3.Sub(&b.Max, &b.Min)
	return size.Scaled(0.5)
}

// Contains reports whether p lies within the box, inclusive of the faces.
func (b Box) Contains(p vec3.T) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// SlabIntersect performs the standard slab test against the box, returning
// the ray's entry and exit parameters. hit is false when the ray misses the
// box entirely, matching the probe-box test of the ray-casting kernel.
func SlabIntersect(origin, direction vec3.T, b Box) (tNear, tFar float32, hit bool) {
	var omin, omax vec3.T
	for i := 0; i < 3; i++ {
		if direction[i] == 0 {
			// A zero component means the ray is parallel to that
			// pair of slabs; only clip it if the origin is outside.
			if origin[i] < b.Min[i] || origin[i] > b.Max[i] {
				return 0, 0, false
			}
			omin[i] = -maxFloat32
			omax[i] = maxFloat32
			continue
		}
		omin[i] = (b.Min[i] - origin[i]) / direction[i]
		omax[i] = (b.Max[i] - origin[i]) / direction[i]
	}

	mmin := vmin(omin, omax)
	mmax := vmax(omin, omax)

	start := max3(mmin[0], mmin[1], mmin[2])
	final := min3(mmax[0], mmax[1], mmax[2])

	if final < start || final < 0 {
		return 0, 0, false
	}
	if start < 0 {
		start = 0
	}
	return start, final, true
}

const maxFloat32 = 3.4028235e38

func vmin(a, b vec3.T) vec3.T {
	return vec3.T{minf(a[0], b[0]), minf(a[1], b[1]), minf(a[2], b[2])}
}

func vmax(a, b vec3.T) vec3.T {
	return vec3.T{maxf(a[0], b[0]), maxf(a[1], b[1]), maxf(a[2], b[2])}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func min3(a, b, c float32) float32 { return minf(a, minf(b, c)) }
func max3(a, b, c float32) float32 { return maxf(a, maxf(b, c)) }
