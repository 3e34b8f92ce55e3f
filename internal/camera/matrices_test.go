package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestBuildIdentityRoundTrips(t *testing.T) {
	m := Build(mgl32.Ident4(), mgl32.Ident4())

	x, y, z := Unproject(m.InverseMVP, 0.25, -0.5, 0)
	if approx(x, 0.25) == false || approx(y, -0.5) == false || approx(z, 0) == false {
		t.Fatalf("got (%v,%v,%v), want (0.25,-0.5,0)", x, y, z)
	}
}

func TestProjectClampsToUnitRange(t *testing.T) {
	m := Build(mgl32.Ident4(), mgl32.Ident4())

	wz, ok := Project(m.MVP, 0, 0, -1)
	if !ok {
		t.Fatal("expected successful projection")
	}
	if wz < 0 || wz > 1 {
		t.Fatalf("window z %v out of [0,1]", wz)
	}
}

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}
