package raycast

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/HellmannM/deskvox/internal/camera"
)

// ExtractDepth projects a pixel's recorded maximum-alpha-increment position
// through the frame's MVP matrix and quantizes the resulting window-space z
// to the configured precision. ok is false when the pixel never sampled
// the volume (a miss) or the projection is degenerate.
func ExtractDepth(prec DepthPrecision, mvp mgl32.Mat4, res Result) (value uint32, ok bool) {
	if prec == DepthNone || !res.HasDepth {
		return 0, false
	}

	windowZ, projected := camera.Project(mvp, res.MaxDiffPos[0], res.MaxDiffPos[1], res.MaxDiffPos[2])
	if !projected {
		return 0, false
	}

	switch prec {
	case DepthU8:
		return uint32(clamp01(windowZ) * 255.0), true
	case DepthU16:
		return uint32(clamp01(windowZ) * 65535.0), true
	case DepthU32:
		return uint32(math.Min(float64(clamp01(windowZ))*4294967295.0, 4294967295.0)), true
	default:
		return 0, false
	}
}
