package raycast

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ungerik/go3d/vec3"

	"github.com/HellmannM/deskvox/internal/aabb"
	"github.com/HellmannM/deskvox/internal/camera"
	"github.com/HellmannM/deskvox/internal/jitter"
	"github.com/HellmannM/deskvox/internal/skipgrid"
	"github.com/HellmannM/deskvox/internal/transferfunc"
	"github.com/HellmannM/deskvox/internal/volume"
)

// material constants for the fixed Blinn-Phong lighting model.
var (
	matKa = vec3.T{0, 0, 0}
	matKd = vec3.T{0.8, 0.8, 0.8}
	matKs = vec3.T{0.8, 0.8, 0.8}
)

const shininess = 1000.0

// gradientDelta is the central-difference step, in normalized texture
// coordinates, used to estimate the local gradient for lighting.
const gradientDelta = 0.01

// earlyTerminationThreshold is the accumulated-alpha threshold at which a
// NONE-mode ray stops stepping.
const earlyTerminationThreshold = 0.95

// PixelInputs bundles everything a single kernel invocation needs: the
// bound textures, the per-frame device constants, and the geometric
// parameters derived from the current renderer state.
type PixelInputs struct {
	X, Y          int
	Width, Height int

	InverseMVP, MVP mgl32.Mat4

	Volume *volume.Texture3D
	TF     *transferfunc.Table
	Jitter *jitter.Table
	Skip   *skipgrid.Grid

	VolPos, VolHalf     vec3.T
	ProbePos, ProbeHalf vec3.T

	Light, Half vec3.T

	Background RGBA

	StepDistance float32
}

// Result is one pixel's output: the composited color, plus the position of
// the sample with the largest alpha increment, from which ExtractDepth
// derives the window-space depth. HasDepth is true when at least one
// sample was taken.
type Result struct {
	Color      RGBA
	HasDepth   bool
	MaxDiffPos vec3.T
}

// TracePixel is the per-pixel kernel: ray generation, bounding-box
// entry/exit, stepping, classification, illumination, compositing,
// optional MIP, clipping, jittering and early ray termination, exactly as
// described by the ray-casting kernel specification. It is pure and
// allocation-free; non-finite input produces a black pixel rather than
// trapping.
func TracePixel(cfg Config, in PixelInputs) Result {
	cfg = cfg.normalized()

	origin, dir, ok := generateRay(in)
	if !ok {
		return Result{}
	}

	probe := aabb.New(in.ProbePos, in.ProbeHalf)
	tNear, tFar, hit := aabb.SlabIntersect(origin, dir, probe)
	if !hit {
		return Result{}
	}

	d := in.StepDistance
	if d <= 0 {
		d = 1
	}
	tNear = quantize(tNear, d)
	if tNear < 0 {
		tNear = 0
	}

	if cfg.ClipSphereEnabled && cfg.SphereAsProbe {
		if _, _, sphereHit := sphereIntersect(origin, dir, cfg.Sphere); !sphereHit {
			return Result{}
		}
	}

	var tpnear, nddot float32
	hasPlane := cfg.ClipPlaneEnabled
	if hasPlane {
		tpnear, nddot = clipPlaneParams(origin, dir, cfg.Plane)
	}

	dst := RGBA{}
	if cfg.MIPMode != MIPNone {
		dst = in.Background
	}

	step := dir.Scaled(tNear)
	pos := vec3.Add(&origin, &step)
	if cfg.Jittering && in.Jitter != nil {
		jx, jy, jz := in.Jitter.At(in.Y*in.Width + in.X)
		jv := vec3.T{jx, jy, jz}
		offset := jv.Scaled(d)
		pos = vec3.Add(&pos, &offset)
	}

	var (
		t          = tNear
		lastAlpha  float32
		maxDiff    float32
		maxDiffPos vec3.T
		hasSample  bool
		wasClipped bool
		clipNormal vec3.T
	)

	for {
		clipped := false
		if hasPlane && clipPlaneSide(t, tpnear, nddot) {
			clipped = true
			clipNormal = cfg.Plane.Normal
		}
		if cfg.ClipSphereEnabled && !cfg.SphereAsProbe {
			if insideClipSphere(pos, cfg.Sphere) {
				clipped = true
				clipNormal = sphereNormal(pos, cfg.Sphere)
			}
		}

		if clipped {
			wasClipped = true
			t += d
			if t > tFar {
				break
			}
			pos = advance(pos, dir, d)
			continue
		}

		tc := textureCoord(pos, in.VolPos, in.VolHalf)

		if cfg.SpaceSkipping && in.Skip != nil && in.Skip.Skippable(tc) {
			wasClipped = false
			t += d
			if t > tFar {
				break
			}
			pos = advance(pos, dir, d)
			continue
		}

		s := in.Volume.Sample(tc)
		src := in.TF.Lookup(s)
		hasSample = true

		switch cfg.MIPMode {
		case MIPMax:
			dst = RGBA{maxf(dst.R, src.R), maxf(dst.G, src.G), maxf(dst.B, src.B), 1}
		case MIPMin:
			dst = RGBA{minf(dst.R, src.R), minf(dst.G, src.G), minf(dst.B, src.B), 1}
		default:
			if cfg.Illumination && src.A > 0.1 {
				n := gradientNormal(in.Volume, tc)
				if wasClipped {
					scaledClip := clipNormal.Scaled(src.A)
					blended := vec3.Add(&n, &scaledClip)
					if l := blended.Length(); l > 0 {
						n = blended.Scaled(1 / l)
					}
				}
				lit := blinnPhong(n, in.Light, in.Half)
				src.R *= lit[0]
				src.G *= lit[1]
				src.B *= lit[2]
			}

			if cfg.OpacityCorrection {
				src.A = 1 - powf(1-src.A, d)
			}

			src.R *= src.A
			src.G *= src.A
			src.B *= src.A

			inv := 1 - dst.A
			dst.R += src.R * inv
			dst.G += src.G * inv
			dst.B += src.B * inv
			dst.A += src.A * inv
		}

		if dst.A-lastAlpha > maxDiff {
			maxDiff = dst.A - lastAlpha
			maxDiffPos = pos
		}
		lastAlpha = dst.A

		if cfg.MIPMode == MIPNone && cfg.EarlyTermination && dst.A > earlyTerminationThreshold {
			break
		}

		wasClipped = false
		t += d
		if t > tFar {
			break
		}
		pos = advance(pos, dir, d)
	}

	return Result{
		Color:      clampColor(dst),
		HasDepth:   hasSample && in.Volume != nil,
		MaxDiffPos: maxDiffPos,
	}
}

func generateRay(in PixelInputs) (origin, dir vec3.T, ok bool) {
	u := 2*float32(in.X)/float32(in.Width) - 1
	v := 2*float32(in.Y)/float32(in.Height) - 1

	ox, oy, oz := camera.Unproject(in.InverseMVP, u, v, -1)
	fx, fy, fz := camera.Unproject(in.InverseMVP, u, v, 1)

	if !finite3(ox, oy, oz) || !finite3(fx, fy, fz) {
		return vec3.T{}, vec3.T{}, false
	}

	origin = vec3.T{ox, oy, oz}
	far := vec3.T{fx, fy, fz}
	d := vec3.Sub(&far, &origin)
	length := d.Length()
	if length == 0 {
		return vec3.T{}, vec3.T{}, false
	}
	dir = d.Scaled(1 / length)
	return origin, dir, true
}

// advance moves a position one step of length d along dir.
func advance(pos, dir vec3.T, d float32) vec3.T {
	step := dir.Scaled(d)
	return vec3.Add(&pos, &step)
}

func finite3(x, y, z float32) bool {
	return isFinite(x) && isFinite(y) && isFinite(z)
}

func isFinite(f float32) bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func quantize(t, step float32) float32 {
	return float32(math.Ceil(float64(t/step))) * step
}

func textureCoord(pos, volPos, volHalf vec3.T) vec3.T {
	local := vec3.Sub(&pos, &volPos)
	shifted := vec3.Add(&local, &volHalf)
	size := volHalf.Scaled(2)
	return vec3.T{
		safeDiv(shifted[0], size[0]),
		safeDiv(shifted[1], size[1]),
		safeDiv(shifted[2], size[2]),
	}
}

func safeDiv(a, b float32) float32 {
	if b == 0 {
		return 0
	}
	return a / b
}

func clipPlaneParams(origin, dir vec3.T, plane ClipPlane) (tpnear, nddot float32) {
	n := plane.Normal
	nddot = vec3.Dot(&n, &dir)
	if nddot == 0 {
		return 0, nddot
	}
	tpnear = (plane.Dist - vec3.Dot(&n, &origin)) / nddot
	return tpnear, nddot
}

// clipPlaneSide reports whether ray parameter t lies on the clipped side
// of the plane, per the membership rule in the kernel specification.
func clipPlaneSide(t, tpnear, nddot float32) bool {
	return (t <= tpnear && nddot >= 0) || (t >= tpnear && nddot < 0)
}

func sphereIntersect(origin, dir vec3.T, sphere ClipSphere) (tNear, tFar float32, hit bool) {
	oc := vec3.Sub(&origin, &sphere.Center)
	b := vec3.Dot(&oc, &dir)
	c := vec3.Dot(&oc, &oc) - sphere.Radius*sphere.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, 0, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	return -b - sq, -b + sq, true
}

func insideClipSphere(pos vec3.T, sphere ClipSphere) bool {
	d := vec3.Sub(&pos, &sphere.Center)
	return vec3.Dot(&d, &d) <= sphere.Radius*sphere.Radius
}

func sphereNormal(pos vec3.T, sphere ClipSphere) vec3.T {
	d := vec3.Sub(&pos, &sphere.Center)
	if l := d.Length(); l > 0 {
		return d.Scaled(1 / l)
	}
	return vec3.T{0, 0, 1}
}

func gradientNormal(tex *volume.Texture3D, tc vec3.T) vec3.T {
	gx := tex.Sample(vec3.T{tc[0] + gradientDelta, tc[1], tc[2]}) - tex.Sample(vec3.T{tc[0] - gradientDelta, tc[1], tc[2]})
	gy := tex.Sample(vec3.T{tc[0], tc[1] + gradientDelta, tc[2]}) - tex.Sample(vec3.T{tc[0], tc[1] - gradientDelta, tc[2]})
	gz := tex.Sample(vec3.T{tc[0], tc[1], tc[2] + gradientDelta}) - tex.Sample(vec3.T{tc[0], tc[1], tc[2] - gradientDelta})

	n := vec3.T{gx, gy, gz}
	if l := n.Length(); l > 0 {
		return n.Scaled(1 / l)
	}
	return vec3.T{0, 0, 1}
}

func blinnPhong(n, light, half vec3.T) vec3.T {
	ndotl := maxf(vec3.Dot(&n, &light), 0)
	ndoth := vec3.Dot(&n, &half)

	total := matKa
	diff := matKd.Scaled(ndotl)
	total = vec3.Add(&total, &diff)

	if ndoth > 0 {
		spec := matKs.Scaled(powf(ndoth, shininess))
		total = vec3.Add(&total, &spec)
	}
	return total
}

func clampColor(c RGBA) RGBA {
	return RGBA{clamp01(c.R), clamp01(c.G), clamp01(c.B), clamp01(c.A)}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func powf(base, exp float32) float32 {
	return float32(math.Pow(float64(base), float64(exp)))
}
