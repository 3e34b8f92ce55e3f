package volume

import (
	"fmt"
	"math"

	"github.com/ungerik/go3d/vec3"
)

// Filter selects how Texture3D.Sample reconstructs a value between voxels.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
)

// Texture3D is the CPU-resident stand-in for a device 3-D array: a flat,
// normalized scalar field sampled with clamp addressing in all three axes.
type Texture3D struct {
	nx, ny, nz int
	data       []float32
	filter     Filter
}

func newTexture3D(nx, ny, nz int, bpc BytesPerChannel, raw []byte, filter Filter) (*Texture3D, error) {
	n := nx * ny * nz
	data := make([]float32, n)

	switch bpc {
	case BPC8:
		if len(raw) < n {
			return nil, fmt.Errorf("volume: raw buffer too small: have %d want %d", len(raw), n)
		}
		for i := 0; i < n; i++ {
			data[i] = float32(raw[i]) / 255.0
		}
	case BPC16:
		rebit := rebit16(raw)
		if len(rebit) < n*2 {
			return nil, fmt.Errorf("volume: raw buffer too small: have %d want %d", len(rebit), n*2)
		}
		for i := 0; i < n; i++ {
			hi, lo := rebit[i*2], rebit[i*2+1]
			v := uint16(hi)<<8 | uint16(lo)
			data[i] = float32(v) / 65535.0
		}
	default:
		return nil, ErrUnsupportedFormat
	}

	return &Texture3D{nx: nx, ny: ny, nz: nz, data: data, filter: filter}, nil
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (t *Texture3D) at(x, y, z int) float32 {
	x = clampi(x, 0, t.nx-1)
	y = clampi(y, 0, t.ny-1)
	z = clampi(z, 0, t.nz-1)
	return t.data[(z*t.ny+y)*t.nx+x]
}

// Sample reads the scalar field at normalized texture coordinates in
// [0,1]^3, honoring the attached filter mode.
func (t *Texture3D) Sample(tc vec3.T) float32 {
	fx := tc[0]*float32(t.nx) - 0.5
	fy := tc[1]*float32(t.ny) - 0.5
	fz := tc[2]*float32(t.nz) - 0.5

	if t.filter == FilterNearest {
		return t.at(int(math.Round(float64(fx))), int(math.Round(float64(fy))), int(math.Round(float64(fz))))
	}

	x0, y0, z0 := int(math.Floor(float64(fx))), int(math.Floor(float64(fy))), int(math.Floor(float64(fz)))
	tx, ty, tz := fx-float32(x0), fy-float32(y0), fz-float32(z0)

	c000 := t.at(x0, y0, z0)
	c100 := t.at(x0+1, y0, z0)
	c010 := t.at(x0, y0+1, z0)
	c110 := t.at(x0+1, y0+1, z0)
	c001 := t.at(x0, y0, z0+1)
	c101 := t.at(x0+1, y0, z0+1)
	c011 := t.at(x0, y0+1, z0+1)
	c111 := t.at(x0+1, y0+1, z0+1)

	c00 := lerp(c000, c100, tx)
	c10 := lerp(c010, c110, tx)
	c01 := lerp(c001, c101, tx)
	c11 := lerp(c011, c111, tx)

	c0 := lerp(c00, c10, ty)
	c1 := lerp(c01, c11, ty)

	return lerp(c0, c1, tz)
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// Store owns the per-frame device 3-D arrays for a volume, exactly as the
// volume store component of the ray-caster does: sampler state
// (interpolation mode) is attached once and shared by every frame.
type Store struct {
	desc     Descriptor
	frames   []*Texture3D
	filter   Filter
}

// NewStore allocates an empty store for the given descriptor. Frames are
// populated with LoadFrame.
func NewStore(desc Descriptor) (*Store, error) {
	if err := desc.validate(); err != nil {
		return nil, err
	}
	return &Store{
		desc:   desc,
		frames: make([]*Texture3D, desc.Frames),
		filter: FilterLinear,
	}, nil
}

// LoadFrame allocates and uploads one frame's 3-D array. If allocation
// fails for frame k, all frames 0..k are released and
// ErrOutOfDeviceMemory is returned. The store itself accepts later
// LoadFrame calls; refusing to render after a failure is the caller's
// viability flag (see raycaster.Renderer).
func (s *Store) LoadFrame(frame int, raw []byte) error {
	if frame < 0 || frame >= len(s.frames) {
		return fmt.Errorf("volume: frame %d out of range [0,%d)", frame, len(s.frames))
	}

	tex, err := newTexture3D(s.desc.Nx, s.desc.Ny, s.desc.Nz, s.desc.BPC, raw, s.filter)
	if err != nil {
		s.release(0, frame)
		return fmt.Errorf("%w: %v", ErrOutOfDeviceMemory, err)
	}

	s.frames[frame] = tex
	return nil
}

// release frees frames [0, upTo], matching the "free all previously
// allocated frames before reporting failure" policy.
func (s *Store) release(from, upTo int) {
	for i := from; i <= upTo && i < len(s.frames); i++ {
		s.frames[i] = nil
	}
}

// SetInterpolation switches filtering between nearest and linear. Per the
// data model, this rebuilds every loaded frame's sampler state.
func (s *Store) SetInterpolation(linear bool) {
	if linear {
		s.filter = FilterLinear
	} else {
		s.filter = FilterNearest
	}
	for _, f := range s.frames {
		if f != nil {
			f.filter = s.filter
		}
	}
}

// BindForSampling returns the texture for the given frame, or nil if that
// frame has not been loaded (or was rolled back after a failed load).
func (s *Store) BindForSampling(frame int) *Texture3D {
	if frame < 0 || frame >= len(s.frames) {
		return nil
	}
	return s.frames[frame]
}

// Descriptor returns the volume's immutable shape.
func (s *Store) Descriptor() Descriptor { return s.desc }
