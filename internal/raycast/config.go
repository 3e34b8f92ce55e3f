// Package raycast implements the ray-casting kernel: the per-pixel
// algorithm shared by every specialization, plus the block/grid
// dispatcher that launches it across an output image.
package raycast

import "github.com/ungerik/go3d/vec3"

// MIPMode selects between front-to-back compositing and intensity
// projection.
type MIPMode int

const (
	MIPNone MIPMode = iota
	MIPMax
	MIPMin
)

// DepthPrecision selects the quantization width of the emitted depth
// value.
type DepthPrecision int

const (
	DepthNone DepthPrecision = iota
	DepthU8
	DepthU16
	DepthU32
)

// ROI describes an axis-aligned or spherical region of interest that
// restricts rendering to a sub-region of the volume.
type ROI struct {
	Center, Size vec3.T
	Spherical    bool
}

// ClipPlane is a single clip plane described by its unit normal and
// signed distance from the origin.
type ClipPlane struct {
	Normal vec3.T
	Dist   float32
}

// ClipSphere is a clip sphere described by its center and radius.
type ClipSphere struct {
	Center vec3.T
	Radius float32
}

// Config is the render configuration: the Boolean/enum lattice the
// dispatcher specializes the kernel over, plus the scalar and
// region-of-interest parameters the kernel reads every step.
type Config struct {
	EarlyTermination  bool
	OpacityCorrection bool
	Illumination      bool
	Interpolation     bool
	Jittering         bool
	ClipPlaneEnabled  bool
	ClipSphereEnabled bool
	SphereAsProbe     bool
	SpaceSkipping     bool

	MIPMode MIPMode
	Quality float32

	DepthPrecision DepthPrecision

	ROI        *ROI
	Plane      ClipPlane
	Sphere     ClipSphere
	ProbeColor RGBA
	ClipColor  RGBA
}

// normalized returns a copy of cfg with the mip-mode early-termination
// conflict resolved: early ray termination is meaningless (and
// specification-forbidden) once the kernel is in a MIP mode.
func (cfg Config) normalized() Config {
	if cfg.MIPMode != MIPNone {
		cfg.EarlyTermination = false
	}
	return cfg
}

// RGBA is a plain linear color; used both for composited results and for
// the probe/clip marker colors in Config.
type RGBA struct {
	R, G, B, A float32
}
