// Package raycaster is the host-side orchestrator: it owns the volume
// store, transfer-function table, jitter table and space-skipping grid,
// prepares the per-frame camera constants, dispatches the ray-casting
// kernel across the output image, and hands back a framebuffer.
package raycaster

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ungerik/go3d/vec3"

	"github.com/HellmannM/deskvox/internal/camera"
	"github.com/HellmannM/deskvox/internal/diag"
	"github.com/HellmannM/deskvox/internal/framebuffer"
	"github.com/HellmannM/deskvox/internal/jitter"
	"github.com/HellmannM/deskvox/internal/raycast"
	"github.com/HellmannM/deskvox/internal/skipgrid"
	"github.com/HellmannM/deskvox/internal/transferfunc"
	"github.com/HellmannM/deskvox/internal/volume"
)

// Renderer is the stateful orchestrator a caller configures once and then
// drives frame by frame: load volume frames, edit the transfer function,
// flip configuration flags, and call Render.
//
// Per the error-handling design, Renderer tracks a single "render is
// viable" flag. Once a volume load fails, every subsequent Render call is a
// no-op returning ErrRenderNotViable until the store is rebuilt with
// NewRenderer. A failed transfer-function update returns its error but
// leaves the flag and the previous table unchanged.
type Renderer struct {
	desc  volume.Descriptor
	store *volume.Store
	tf    *transferfunc.Table
	skip  *skipgrid.Grid
	jit   *jitter.Table

	cfg raycast.Config

	light, half vec3.T
	background  raycast.RGBA

	frame  int
	viable bool
}

// NewRenderer allocates a renderer for a volume of the given descriptor.
// No frame data is loaded yet; call LoadVolumeFrame before the first
// Render.
func NewRenderer(desc volume.Descriptor) (*Renderer, error) {
	store, err := volume.NewStore(desc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	size := transferfunc.Size8
	if desc.BPC == volume.BPC16 {
		size = transferfunc.Size16
	}

	jit := &jitter.Table{}
	jit.EnsureInitialized(rand.New(rand.NewSource(1)))

	return &Renderer{
		desc:   desc,
		store:  store,
		tf:     transferfunc.NewTable(size),
		skip:   skipgrid.NewGrid(skipgrid.DefaultCellsPerAxis),
		jit:    jit,
		light:  vec3.T{0, 0, 1},
		half:   vec3.T{0, 0, 1},
		viable: true,
	}, nil
}

// LoadVolumeFrame uploads one frame's raw voxel data and rebuilds the
// space-skipping grid's min/max ranges for it. A failed load marks the
// renderer not viable, per the sticky OutOfDeviceMemory policy.
func (r *Renderer) LoadVolumeFrame(frame int, raw []byte) error {
	if err := r.store.LoadFrame(frame, raw); err != nil {
		r.viable = false
		diag.Logger().Error("volume frame load failed", "frame", frame, "error", err)
		return fmt.Errorf("%w: %v", ErrOutOfDeviceMemory, err)
	}
	r.skip.BuildRange(r.desc, raw)
	r.skip.Recompute(r.tf)
	return nil
}

// SetTransferFunction recomputes the transfer-function table and, if the
// grid is supported for this volume's precision, the derived space-skip
// texture.
func (r *Renderer) SetTransferFunction(lut []transferfunc.RGBA) error {
	if err := r.tf.Recompute(lut); err != nil {
		diag.Logger().Error("transfer function update failed", "error", err)
		return err
	}
	r.skip.Recompute(r.tf)
	return nil
}

// SetConfig replaces the render configuration. The dispatcher disables
// early-ray termination whenever mip_mode != NONE at the next Render call.
func (r *Renderer) SetConfig(cfg raycast.Config) { r.cfg = cfg }

// Config returns the active render configuration.
func (r *Renderer) Config() raycast.Config { return r.cfg }

// SetInterpolation switches the bound filter between nearest and linear,
// rebuilding every loaded frame's sampler state.
func (r *Renderer) SetInterpolation(linear bool) { r.store.SetInterpolation(linear) }

// SetFrame selects which time frame subsequent Render calls sample.
func (r *Renderer) SetFrame(frame int) { r.frame = frame }

// SetLight sets the light direction and half-vector the kernel's
// Blinn-Phong lighting term reads.
func (r *Renderer) SetLight(light, half vec3.T) {
	r.light = light
	r.half = half
}

// SetBackground sets the clear color used as the initial destination in
// MIP compositing modes.
func (r *Renderer) SetBackground(c raycast.RGBA) { r.background = c }

// Render prepares the per-frame camera constants, launches the kernel
// across a width x height image, and returns the resulting framebuffer. If
// the renderer is not viable, Render is a no-op returning ErrRenderNotViable
// and a black framebuffer, per the error-handling design's "user-visible
// failure is a black frame plus a log line" policy.
func (r *Renderer) Render(view, proj mgl32.Mat4, width, height int, workers int, progress diag.Progress) (*framebuffer.Framebuffer, error) {
	fb := framebuffer.New(width, height, r.cfg.DepthPrecision)

	if !r.viable {
		diag.Logger().Warn("render skipped: renderer not viable")
		return fb, ErrRenderNotViable
	}

	tex := r.store.BindForSampling(r.frame)
	if tex == nil {
		diag.Logger().Warn("render skipped: no frame loaded", "frame", r.frame)
		return fb, ErrRenderNotViable
	}

	mats := camera.Build(view, proj)
	fb.SetMVP([16]float32(mats.MVP))

	volPos := vec3.T{r.desc.Px, r.desc.Py, r.desc.Pz}
	volHalf := vec3.T{r.desc.Sx / 2, r.desc.Sy / 2, r.desc.Sz / 2}

	probePos, probeHalf := volPos, volHalf
	if r.cfg.ROI != nil {
		probePos = r.cfg.ROI.Center
		probeHalf = r.cfg.ROI.Size.Scaled(0.5)
	}

	diagVoxels := vlen(vec3.T{float32(r.desc.Nx), float32(r.desc.Ny), float32(r.desc.Nz)})
	quality := r.cfg.Quality
	if quality <= 0 {
		quality = 1
	}
	numSlices := quality * diagVoxels
	if numSlices < 1 {
		numSlices = 1
	}

	in := raycast.FrameInputs{PixelInputs: raycast.PixelInputs{
		Width: width, Height: height,
		InverseMVP: mats.InverseMVP, MVP: mats.MVP,
		Volume: tex, TF: r.tf, Jitter: r.jit, Skip: r.skip,
		VolPos: volPos, VolHalf: volHalf,
		ProbePos: probePos, ProbeHalf: probeHalf,
		Light: r.light, Half: r.half,
		Background:   r.background,
		StepDistance: diagVoxels / numSlices,
	}}

	raycast.Dispatch(r.cfg, in, fb, workers, progress)
	return fb, nil
}

func vlen(v vec3.T) float32 {
	return v.Length()
}
