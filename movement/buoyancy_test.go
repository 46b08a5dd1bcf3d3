package movement

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/entity"
	"github.com/oomph-ac/agentsim/settings"
	"github.com/oomph-ac/agentsim/world"
)

func TestBuoyancy(t *testing.T) {
	p := settings.Default()

	if b := Buoyancy(p.WaterMaxHeight, &p, tick); b != 0 {
		t.Fatalf("an agent at rest height must not be pushed, got %v", b)
	}
	if b := Buoyancy(p.WaterMaxHeight+1, &p, tick); b <= 0 {
		t.Fatalf("a deep agent must float up, got %v", b)
	}
	if b := Buoyancy(p.WaterMaxHeight-0.5, &p, tick); b >= 0 {
		t.Fatalf("a shallow agent must sink, got %v", b)
	}

	// A single long step must not carry the agent past its rest height.
	d := p.WaterMaxHeight + 0.01
	if b := Buoyancy(d, &p, 1); b > d-p.WaterMaxHeight+1e-6 {
		t.Fatalf("buoyancy %v overshoots the rest height", b)
	}

	p.Buoyancy = 0
	if b := Buoyancy(5, &p, tick); b != 0 {
		t.Fatalf("agents without buoyancy must not float, got %v", b)
	}
}

func TestBuoyancyConverges(t *testing.T) {
	p := settings.Default()
	water := body(2, world.LayerWater, world.NewPlane(), world.At(mgl32.Vec3{0, 10, 0}))
	a, b := humanoid(mgl32.Vec3{0, 8.5, 0})
	snap := world.NewSnapshot([]world.Body{water, b})
	in := entity.NewInput(4)

	depth := func() float32 { return 10 - a.Position[1] }
	prev := depth()
	for i := range 300 {
		res, err := Simulate(&a, in, frame(snap, p))
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if res.Surface.Area != entity.AreaWater {
			t.Fatalf("tick %d: agent left the water: %v/%v", i, res.Surface.Area, res.Surface.Status)
		}
		res.Apply(&a, in, tick)

		d := depth()
		if d > prev+1e-5 {
			t.Fatalf("tick %d: agent sank from %v to %v", i, prev, d)
		}
		if d < p.WaterMaxHeight-1e-3 {
			t.Fatalf("tick %d: agent overshot the rest height: %v", i, d)
		}
		prev = d
	}
	if !approx(prev, p.WaterMaxHeight, 1e-3) {
		t.Fatalf("expected the agent to settle at %v, got %v", p.WaterMaxHeight, prev)
	}
}
