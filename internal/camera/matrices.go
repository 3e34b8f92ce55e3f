// Package camera prepares the per-frame device constants the kernel reads
// to generate rays: the inverse model-view-projection matrix (for
// un-projecting pixels into world space) and the model-view-projection
// matrix (for projecting the depth sample back into window space).
package camera

import "github.com/go-gl/mathgl/mgl32"

// Matrices holds the two 4x4 constants uploaded once per frame.
type Matrices struct {
	MVP        mgl32.Mat4
	InverseMVP mgl32.Mat4
}

// Build composes the view and projection matrices into MVP and its
// inverse. A non-invertible MVP (degenerate view/projection input)
// collapses to the identity inverse rather than panicking, since the
// kernel's failure semantics require non-finite input to produce black
// pixels, never a trap.
func Build(view, proj mgl32.Mat4) Matrices {
	mvp := proj.Mul4(view)
	inv, ok := safeInverse(mvp)
	if !ok {
		inv = mgl32.Ident4()
	}
	return Matrices{MVP: mvp, InverseMVP: inv}
}

func safeInverse(m mgl32.Mat4) (mgl32.Mat4, bool) {
	det := m.Det()
	if det == 0 {
		return mgl32.Mat4{}, false
	}
	return m.Inv(), true
}

// Unproject turns a normalized-device-coordinate pixel plus a clip-space
// depth (-1 for the near plane, 1 for the far plane) into a world-space
// point, performing the perspective divide spec.md's ray generation step
// requires.
func Unproject(inverseMVP mgl32.Mat4, ndcX, ndcY, ndcZ float32) (x, y, z float32) {
	clip := mgl32.Vec4{ndcX, ndcY, ndcZ, 1}
	world := inverseMVP.Mul4x1(clip)
	if world[3] == 0 {
		return 0, 0, 0
	}
	inv := 1 / world[3]
	return world[0] * inv, world[1] * inv, world[2] * inv
}

// Project turns a world-space point into a window-space z in [0,1],
// performing the perspective divide and the [-1,1] -> [0,1] remap spec.md's
// depth-emission step requires.
func Project(mvp mgl32.Mat4, x, y, z float32) (windowZ float32, ok bool) {
	clip := mvp.Mul4x1(mgl32.Vec4{x, y, z, 1})
	if clip[3] == 0 {
		return 0, false
	}
	ndcZ := clip[2] / clip[3]
	return clampf((ndcZ+1)*0.5, 0, 1), true
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
