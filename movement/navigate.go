package movement

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/entity"
	"github.com/oomph-ac/agentsim/omath"
	"github.com/oomph-ac/agentsim/settings"
)

// NavAction is applied to the head of an agent's navigation queue when a result is committed.
type NavAction uint8

const (
	NavPop NavAction = iota + 1
	NavRequeue
)

func (a NavAction) String() string {
	switch a {
	case NavPop:
		return "pop"
	case NavRequeue:
		return "requeue"
	}
	return "unknown"
}

// navigation is the world-space velocity that steers an agent towards its next waypoint.
type navigation struct {
	velocity mgl32.Vec3
	actions  []NavAction
	target   mgl32.Vec3
	active   bool
}

// navigate looks at the waypoints from head to tail without changing the queue. Waypoints the agent has already
// reached are popped or requeued according to their mode and the first one still ahead is steered to. Every
// waypoint is looked at once at most, so a route of Circle waypoints that are all reached does not loop. Agents
// that cannot fly steer in the plane perpendicular to up.
func navigate(q *entity.NavQueue, feet, up mgl32.Vec3, p *settings.Params, dt float32) navigation {
	var out navigation
	if q == nil || q.Len() == 0 {
		return out
	}
	fly := p.Flags.CanFly || p.Flags.FlyOnly
	for w := range q.Waypoints() {
		to := w.Position.Sub(feet)
		if !fly {
			to = omath.Horizontal(to, up)
		}
		dir, dist := omath.NormalizeLen(to, mgl32.Vec3{})
		if dist <= p.NavArriveDistance {
			if w.Mode == entity.NavCircle {
				out.actions = append(out.actions, NavRequeue)
			} else {
				out.actions = append(out.actions, NavPop)
			}
			continue
		}

		speed := p.MaxSpeed
		if w.Mode == entity.NavLimit {
			speed = min(speed, omath.SafeDiv(dist, dt, 0))
		}
		out.velocity = dir.Mul(speed)
		out.target = w.Position
		out.active = true
		break
	}
	return out
}

// applyNav executes the queue actions of a committed result.
func applyNav(q *entity.NavQueue, actions []NavAction) {
	if q == nil {
		return
	}
	for _, a := range actions {
		switch a {
		case NavPop:
			q.Pop()
		case NavRequeue:
			q.Requeue()
		}
	}
}
