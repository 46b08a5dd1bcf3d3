package entity

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Impulse is a velocity injected by another system, for example a knockback.
type Impulse struct {
	Velocity mgl32.Vec3
	// Duration is the time in seconds during which Velocity is added every tick. A Duration of zero or less makes the
	// impulse a one-shot change that persists in the agent's velocity.
	Duration float32
}

// Zero reports whether the impulse has no effect.
func (i Impulse) Zero() bool {
	return i.Velocity == (mgl32.Vec3{})
}

// Input is the movement input of an agent for one tick. Upstream systems accumulate into it between ticks and the
// movement pipeline consumes it.
type Input struct {
	// Direct is the desired displacement for this tick in the agent's local frame (x right, y up, z forward).
	Direct   mgl32.Vec3
	Indirect Impulse
	// Drag is a world-space velocity added for the current tick only.
	Drag mgl32.Vec3
	// Facing is the world direction the agent should face. The zero vector keeps the current facing.
	Facing mgl32.Vec3
	// Unstoppable agents are not stopped by dynamic bodies.
	Unstoppable bool
	Navigation  *NavQueue
}

// NewInput returns an empty input with a navigation queue of the given capacity.
func NewInput(navCapacity int) *Input {
	return &Input{Navigation: NewNavQueue(navCapacity)}
}

// AddDirect accumulates a local displacement.
func (in *Input) AddDirect(v mgl32.Vec3) {
	in.Direct = in.Direct.Add(v)
}

// AddDrag accumulates a drag velocity for the next tick.
func (in *Input) AddDrag(v mgl32.Vec3) {
	in.Drag = in.Drag.Add(v)
}

// SetImpulse replaces the pending impulse.
func (in *Input) SetImpulse(velocity mgl32.Vec3, duration float32) {
	in.Indirect = Impulse{Velocity: velocity, Duration: duration}
}

// Idle reports whether the input requests no motion. Facing is not considered.
func (in *Input) Idle() bool {
	return in.Direct == (mgl32.Vec3{}) && in.Drag == (mgl32.Vec3{}) && in.Indirect.Zero() &&
		(in.Navigation == nil || in.Navigation.Len() == 0)
}

// Consume clears the accumulators used by a tick of dt seconds. Timed impulses lose dt of their remaining duration
// and one-shot impulses are cleared. The facing request is kept until it is replaced.
func (in *Input) Consume(dt float32) {
	in.Direct = mgl32.Vec3{}
	in.Drag = mgl32.Vec3{}
	if in.Indirect.Duration > 0 {
		in.Indirect.Duration -= dt
		if in.Indirect.Duration > 0 {
			return
		}
	}
	in.Indirect = Impulse{}
}
