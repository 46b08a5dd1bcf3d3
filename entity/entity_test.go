package entity

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestArenaHandlesAreStable(t *testing.T) {
	ar := NewArena(4)
	a := ar.Spawn(NewAgent("humanoid", 1, mgl32.Vec3{}, 0, mgl32.Vec3{0, 1, 0}))
	b := ar.Spawn(NewAgent("humanoid", 2, mgl32.Vec3{1, 0, 0}, 0, mgl32.Vec3{0, 1, 0}))

	if !ar.Despawn(a) {
		t.Fatalf("expected despawn to succeed")
	}
	if ar.Despawn(a) {
		t.Fatalf("expected second despawn to fail")
	}
	if _, ok := ar.Get(a); ok {
		t.Fatalf("despawned handle still resolves")
	}

	c := ar.Spawn(NewAgent("humanoid", 3, mgl32.Vec3{}, 0, mgl32.Vec3{}))
	if c.Index != a.Index || c.Generation == a.Generation {
		t.Fatalf("expected slot reuse with a new generation, got %v after %v", c, a)
	}
	if _, ok := ar.Get(a); ok {
		t.Fatalf("stale handle resolves to the reused slot")
	}
	agent, ok := ar.Get(c)
	if !ok || agent.Body != 3 || agent.Handle != c {
		t.Fatalf("unexpected agent %+v", agent)
	}

	handles := ar.Handles()
	if len(handles) != 2 || handles[0] != c || handles[1] != b {
		t.Fatalf("expected handles in index order, got %v", handles)
	}
	if in, ok := ar.Input(b); !ok || in.Navigation == nil {
		t.Fatalf("expected an input with a navigation queue")
	}
}

func TestInputConsume(t *testing.T) {
	in := NewInput(2)
	in.AddDirect(mgl32.Vec3{0, 0, 1})
	in.AddDrag(mgl32.Vec3{1, 0, 0})
	in.SetImpulse(mgl32.Vec3{0, 5, 0}, 0.1)
	in.Facing = mgl32.Vec3{1, 0, 0}

	in.Consume(0.05)
	if in.Direct != (mgl32.Vec3{}) || in.Drag != (mgl32.Vec3{}) {
		t.Fatalf("expected accumulators to be cleared, got %+v", in)
	}
	if in.Indirect.Zero() {
		t.Fatalf("timed impulse must survive until its duration is used up")
	}
	in.Consume(0.05)
	if !in.Indirect.Zero() {
		t.Fatalf("expected impulse to expire, got %+v", in.Indirect)
	}
	if in.Facing == (mgl32.Vec3{}) {
		t.Fatalf("facing must be kept")
	}

	in.SetImpulse(mgl32.Vec3{0, 5, 0}, 0)
	in.Consume(0.05)
	if !in.Indirect.Zero() {
		t.Fatalf("one-shot impulse must be cleared after one tick")
	}
	if !in.Idle() {
		t.Fatalf("expected idle input")
	}
}

func TestNavQueueRequeue(t *testing.T) {
	q := NewNavQueue(3)
	_ = q.Push(Waypoint{Position: mgl32.Vec3{1, 0, 0}, Mode: NavCircle})
	_ = q.Push(Waypoint{Position: mgl32.Vec3{2, 0, 0}, Mode: NavCircle})
	q.Requeue()
	head, ok := q.Head()
	if !ok || head.Position[0] != 2 {
		t.Fatalf("expected second waypoint at the head, got %+v", head)
	}
	var order []float32
	for w := range q.Waypoints() {
		order = append(order, w.Position[0])
	}
	if len(order) != 2 || order[1] != 1 {
		t.Fatalf("expected first waypoint at the tail, got %v", order)
	}
}

func TestStatusGrounded(t *testing.T) {
	for s, want := range map[Status]bool{
		StatusSupported:   true,
		StatusContacting:  true,
		StatusFirming:     true,
		StatusSliding:     false,
		StatusUnsupported: false,
		StatusNone:        false,
	} {
		if s.Grounded() != want {
			t.Fatalf("%v: expected grounded=%v", s, want)
		}
	}
}
