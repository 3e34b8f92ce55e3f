package raycast

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ungerik/go3d/vec3"

	"github.com/HellmannM/deskvox/internal/transferfunc"
	"github.com/HellmannM/deskvox/internal/volume"
)

func uniformVolume(t *testing.T, n int, value byte) *volume.Texture3D {
	t.Helper()
	desc := volume.Descriptor{Nx: n, Ny: n, Nz: n, BPC: volume.BPC8, Frames: 1}
	store, err := volume.NewStore(desc)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	raw := make([]byte, n*n*n)
	for i := range raw {
		raw[i] = value
	}
	if err := store.LoadFrame(0, raw); err != nil {
		t.Fatalf("LoadFrame: %v", err)
	}
	return store.BindForSampling(0)
}

func flatTable(t *testing.T, entry transferfunc.RGBA) *transferfunc.Table {
	t.Helper()
	tf := transferfunc.NewTable(transferfunc.Size8)
	lut := make([]transferfunc.RGBA, transferfunc.Size8)
	for i := range lut {
		lut[i] = entry
	}
	if err := tf.Recompute(lut); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	return tf
}

// baseInputs sets up a pixel ray with identity camera matrices: for pixel
// (0,0) of a 1x1 image, u=2x/width-1=-1 and v=-1, so the ray starts at
// (-1,-1,-1) and travels in +z along the x=-1, y=-1 edge of a volume box
// of half-size 1 centered at the origin, entering it at its near face
// (tNear=0, tFar=2).
func baseInputs() PixelInputs {
	return PixelInputs{
		X: 0, Y: 0, Width: 1, Height: 1,
		InverseMVP: mgl32.Ident4(),
		MVP:        mgl32.Ident4(),
		VolPos:     vec3.T{0, 0, 0},
		VolHalf:    vec3.T{1, 1, 1},
		ProbePos:   vec3.T{0, 0, 0},
		ProbeHalf:  vec3.T{1, 1, 1},
		Light:      vec3.T{0, 0, -1},
		Half:       vec3.T{0, 0, -1},
		Background: RGBA{},
	}
}

func approxF(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) < float64(eps)
}

func TestTracePixelMissWritesZero(t *testing.T) {
	in := baseInputs()
	in.VolPos = vec3.T{100, 100, 100}
	in.ProbePos = vec3.T{100, 100, 100}
	in.VolHalf = vec3.T{1, 1, 1}
	in.ProbeHalf = vec3.T{1, 1, 1}
	in.StepDistance = 0.4
	in.Volume = uniformVolume(t, 4, 128)
	in.TF = flatTable(t, transferfunc.RGBA{R: 1, G: 1, B: 1, A: 1})

	res := TracePixel(Config{}, in)

	if res.Color != (RGBA{}) {
		t.Fatalf("expected zero pixel for a ray that misses the probe box, got %+v", res.Color)
	}
	if res.HasDepth {
		t.Fatal("expected no depth sample for a missed ray")
	}
}

func TestTracePixelSolidOpaqueMIPMax(t *testing.T) {
	in := baseInputs()
	in.StepDistance = 0.4
	in.Volume = uniformVolume(t, 4, 128)
	in.TF = flatTable(t, transferfunc.RGBA{R: 0.5, G: 0.5, B: 0.5, A: 1})

	cfg := Config{MIPMode: MIPMax}
	res := TracePixel(cfg, in)

	if !approxF(res.Color.R, 0.5, 1e-5) || !approxF(res.Color.G, 0.5, 1e-5) || !approxF(res.Color.B, 0.5, 1e-5) {
		t.Fatalf("expected (0.5,0.5,0.5) under MIP MAX, got %+v", res.Color)
	}
	if res.Color.A != 1 {
		t.Fatalf("expected alpha exactly 1 under MIP MAX, got %v", res.Color.A)
	}
}

func TestTracePixelFrontToBackAccumulationStopsAfterFiveSamples(t *testing.T) {
	in := baseInputs()
	in.StepDistance = 0.4
	in.Volume = uniformVolume(t, 4, 64)
	in.TF = flatTable(t, transferfunc.RGBA{R: 1, G: 1, B: 0, A: 0.5})

	cfg := Config{EarlyTermination: true}
	res := TracePixel(cfg, in)

	// 1-(1-0.5)^5 = 0.96875: the analytic alpha after exactly five
	// front-to-back samples, one step short of exceeding the 0.95
	// threshold at step four and crossing it at step five.
	const wantAlpha = float32(0.96875)
	if !approxF(res.Color.A, wantAlpha, 1e-5) {
		t.Fatalf("expected alpha %v after five samples, got %v", wantAlpha, res.Color.A)
	}
	// rgb=(1,1,0) shares the same per-step weight as alpha, so premultiplied
	// R and G track A exactly, and B stays zero.
	if !approxF(res.Color.R, wantAlpha, 1e-5) || !approxF(res.Color.G, wantAlpha, 1e-5) {
		t.Fatalf("expected R=G=alpha, got %+v", res.Color)
	}
	if res.Color.B != 0 {
		t.Fatalf("expected B=0, got %v", res.Color.B)
	}
}

func TestTracePixelClipPlaneSuppressesSamplesBeforeCrossing(t *testing.T) {
	in := baseInputs()
	in.StepDistance = 0.4
	in.Volume = uniformVolume(t, 4, 64)
	in.TF = flatTable(t, transferfunc.RGBA{R: 1, G: 1, B: 0, A: 0.5})

	// The ray in baseInputs travels purely along +z from z=-1. A plane
	// normal to that same axis, at dist=0, clips every sample with
	// t <= 1 (z <= 0): the ray's lower half is held at zero until it
	// crosses the plane, then accumulates normally.
	clipped := Config{
		ClipPlaneEnabled: true,
		Plane:            ClipPlane{Normal: vec3.T{0, 0, 1}, Dist: 0},
	}
	unclipped := Config{}

	withClip := TracePixel(clipped, in)
	withoutClip := TracePixel(unclipped, in)

	if withClip.Color.A == 0 {
		t.Fatal("expected the ray to accumulate after crossing the plane")
	}
	if withClip.Color.A >= withoutClip.Color.A {
		t.Fatalf("clipping should suppress early samples: clipped alpha %v, unclipped alpha %v", withClip.Color.A, withoutClip.Color.A)
	}
}

func TestTracePixelDepthEmission(t *testing.T) {
	in := baseInputs()
	in.StepDistance = 0.4
	in.Volume = uniformVolume(t, 4, 200)
	in.TF = flatTable(t, transferfunc.RGBA{R: 1, G: 1, B: 1, A: 1})

	cfg := Config{}
	res := TracePixel(cfg, in)

	if !res.HasDepth {
		t.Fatal("expected a depth sample for a ray that hits an opaque volume")
	}

	value, ok := ExtractDepth(DepthU16, in.MVP, res)
	if !ok {
		t.Fatal("expected successful depth extraction")
	}
	if value > 65535 {
		t.Fatalf("depth value %d out of range", value)
	}
}

func TestTracePixelEarlyTerminationInvarianceUnderMIP(t *testing.T) {
	in := baseInputs()
	in.StepDistance = 0.4
	in.Volume = uniformVolume(t, 4, 64)
	in.TF = flatTable(t, transferfunc.RGBA{R: 1, G: 1, B: 0, A: 0.5})

	withTermination := TracePixel(Config{MIPMode: MIPMax, EarlyTermination: true}, in)
	withoutTermination := TracePixel(Config{MIPMode: MIPMax, EarlyTermination: false}, in)

	if withTermination.Color != withoutTermination.Color {
		t.Fatalf("MIP mode must ignore early termination: got %+v vs %+v", withTermination.Color, withoutTermination.Color)
	}
}
