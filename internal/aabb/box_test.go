package aabb

import (
	"testing"

	"github.com/ungerik/go3d/vec3"
)

func TestSlabIntersectHit(t *testing.T) {
	box := New(vec3.T{0, 0, 0}, vec3.T{1, 1, 1})
	origin := vec3.T{0, 0, -10}
	dir := vec3.T{0, 0, 1}

	tNear, tFar, hit := SlabIntersect(origin, dir, box)
	if !hit {
		t.Fatal("expected ray to hit the box")
	}
	if tNear != 9 || tFar != 11 {
		t.Fatalf("got tNear=%v tFar=%v, want 9, 11", tNear, tFar)
	}
}

func TestSlabIntersectMiss(t *testing.T) {
	box := New(vec3.T{0, 0, 0}, vec3.T{1, 1, 1})
	origin := vec3.T{10, 10, 10}
	dir := vec3.T{1, 0, 0}

	_, _, hit := SlabIntersect(origin, dir, box)
	if hit {
		t.Fatal("expected ray to miss the box")
	}
}

func TestContains(t *testing.T) {
	box := New(vec3.T{0, 0, 0}, vec3.T{1, 1, 1})
	if !box.Contains(vec3.T{0.5, -0.5, 1}) {
		t.Fatal("expected point to be contained")
	}
	if box.Contains(vec3.T{2, 0, 0}) {
		t.Fatal("expected point to be outside")
	}
}
