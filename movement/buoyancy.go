package movement

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/omath"
	"github.com/oomph-ac/agentsim/settings"
)

// Buoyancy returns the speed along the water normal that moves an agent whose feet are waterDistance below the
// water surface towards WaterMaxHeight. The force is averaged over one damped step and limited so that a tick never
// carries the agent past WaterMaxHeight.
func Buoyancy(waterDistance float32, p *settings.Params, dt float32) float32 {
	if dt <= 0 || p.Buoyancy <= 0 {
		return 0
	}
	rest := p.WaterMaxHeight
	excess := waterDistance - rest
	factor0 := buoyancyFactor(waterDistance, rest)

	d1 := waterDistance - float32(float32(p.Buoyancy*factor0)*dt)
	if excess > 0 {
		d1 = max(d1, rest)
	} else {
		d1 = min(d1, rest)
	}
	d1 = max(d1, 0)
	factor1 := buoyancyFactor(d1, rest)

	applied := float32(p.Buoyancy*(factor0+factor1)) * 0.5
	limit := math32.Abs(excess) / dt
	return omath.ClampFloat(applied, -limit, limit)
}

func buoyancyFactor(d, rest float32) float32 {
	return omath.ClampFloat(omath.SafeDiv(d-rest, rest, 0), -1, 1)
}

// applyBuoyancy replaces the component of v along the water normal by the buoyant speed plus the vertical part of
// the swim input.
func applyBuoyancy(v, normal mgl32.Vec3, waterDistance, swim float32, p *settings.Params, dt float32) mgl32.Vec3 {
	speed := Buoyancy(waterDistance, p, dt) + swim
	return omath.MulAdd(omath.ProjectOnPlane(v, normal), normal, speed)
}
