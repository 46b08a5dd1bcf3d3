package movement

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/omath"
	"github.com/oomph-ac/agentsim/settings"
	"github.com/oomph-ac/agentsim/world"
)

// cornerPath runs up the front face of a 2m block and then across its top.
func cornerPath() *world.Path {
	return &world.Path{Points: []mgl32.Vec3{{0, 0.5, -0.6}, {0, 2.6, -0.6}, {0, 2.6, 1.5}}, Suction: 1}
}

func TestClosestOnPath(t *testing.T) {
	path := cornerPath()
	fallback := mgl32.Vec3{0, 0, -1}

	pt, ok := ClosestOnPath(path, world.Identity(), mgl32.Vec3{0, 1.5, -1}, omath.Up, fallback)
	if !ok || pt.Segment != 0 || !approx(pt.Position[1], 1.5, 1e-5) || !approx(pt.Position[2], -0.6, 1e-5) {
		t.Fatalf("expected a point on the vertical segment, got %+v", pt)
	}
	if !approx(pt.Tangent[1], 1, 1e-5) || !approx(pt.Normal[2], -1, 1e-5) {
		t.Fatalf("unexpected frame %+v", pt)
	}

	down, _ := ClosestOnPath(path, world.Identity(), mgl32.Vec3{0, 1.5, -1}, mgl32.Vec3{0, -1, 0}, fallback)
	if !approx(down.Tangent[1], -1, 1e-5) {
		t.Fatalf("desired motion against the path must reverse the tangent, got %v", down.Tangent)
	}

	// Equidistant from both segments: the first segment is kept.
	corner, _ := ClosestOnPath(path, world.Identity(), mgl32.Vec3{0, 3.6, -1.6}, omath.Up, fallback)
	if corner.Segment != 0 {
		t.Fatalf("ties must keep the earlier segment, got %d", corner.Segment)
	}

	moved, _ := ClosestOnPath(path, world.At(mgl32.Vec3{5, 0, 0}), mgl32.Vec3{5, 2.7, 1}, omath.Forward, fallback)
	if moved.Segment != 1 || !approx(moved.Position[0], 5, 1e-5) || !approx(moved.Position[2], 1, 1e-5) {
		t.Fatalf("path must follow its body transform, got %+v", moved)
	}

	if _, ok := ClosestOnPath(&world.Path{}, world.Identity(), mgl32.Vec3{}, mgl32.Vec3{}, fallback); ok {
		t.Fatalf("an empty path has no closest point")
	}
}

// noOverlap fails the test if the sphere at centre overlaps any body of the snapshot.
func noOverlap(t *testing.T, snap *world.Snapshot, c world.Collider, centre mgl32.Vec3) {
	t.Helper()
	contacts := snap.Query(c, world.At(centre), 0, world.LayerAll, 0, 0, nil)
	for _, ct := range contacts {
		if ct.Distance < -1e-4 {
			t.Fatalf("collider at %v overlaps body %d by %v", centre, ct.Body, -ct.Distance)
		}
	}
}

func TestResolveClimbCornerSafety(t *testing.T) {
	p := settings.Default()
	block := body(2, world.LayerTerrain, world.NewBox(mgl32.Vec3{1, 1, 1}), world.At(mgl32.Vec3{0, 1, 1}))
	snap := world.NewSnapshot([]world.Body{block})
	sphere := world.NewSphere(0.5)

	// The agent hangs on the front face below the edge and is pulled onto the top.
	centre := mgl32.Vec3{0, 1.5, -0.6}
	target := mgl32.Vec3{0, 2.6, 0.8}

	t.Run("tangent across the top", func(t *testing.T) {
		sweep := ResolveClimb(snap, sphere, mgl32.QuatIdent(), centre, target, omath.Forward, &p, world.LayerAll, 0)
		if !sweep.Blocked[0] || sweep.Fractions[0] >= 1 {
			t.Fatalf("the corner segment runs into the block and must be stopped, got %+v", sweep)
		}
		// The corner lies inside the block, the first sweep must stop at the front face.
		if sweep.Position[2] > -0.5 {
			t.Fatalf("agent passed the front face: %v", sweep.Position)
		}
		noOverlap(t, snap, sphere, sweep.Position)
	})

	t.Run("tangent up the face", func(t *testing.T) {
		sweep := ResolveClimb(snap, sphere, mgl32.QuatIdent(), centre, target, omath.Up, &p, world.LayerAll, 0)
		if !approx(sweep.Corner[1], 2.6, 1e-5) || !approx(sweep.Corner[2], -0.6, 1e-5) {
			t.Fatalf("unexpected corner %v", sweep.Corner)
		}
		if sweep.Blocked[0] || sweep.Blocked[1] || sweep.Position != target {
			t.Fatalf("a clear route around the edge must reach the target, got %+v", sweep)
		}
		noOverlap(t, snap, sphere, sweep.Position)
	})

	t.Run("close enough", func(t *testing.T) {
		near := centre.Add(mgl32.Vec3{0, p.ContactTolerance / 2, 0})
		if sweep := ResolveClimb(snap, sphere, mgl32.QuatIdent(), centre, near, omath.Up, &p, world.LayerAll, 0); sweep.Moved {
			t.Fatalf("targets within the contact tolerance must not move the agent")
		}
	})

	t.Run("stuck inside", func(t *testing.T) {
		inside := mgl32.Vec3{0, 1, 1}
		to := mgl32.Vec3{0, 1.2, 1}
		sweep := ResolveClimb(snap, sphere, mgl32.QuatIdent(), inside, to, omath.Up, &p, world.LayerAll, 0)
		if !sweep.Direct || sweep.Position != to {
			t.Fatalf("both segments start solid, expected direct placement, got %+v", sweep)
		}
	})
}
