package agentsim

import (
	"bytes"
	"io"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/entity"
	"github.com/oomph-ac/agentsim/movement"
	"github.com/oomph-ac/agentsim/oerror"
	"github.com/oomph-ac/agentsim/settings"
	"github.com/oomph-ac/agentsim/trace"
	"github.com/oomph-ac/agentsim/world"
	"github.com/sirupsen/logrus"
)

const tick = float32(1) / 60

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func table() settings.Table {
	t := settings.DefaultTable()
	swimmer := settings.Default()
	swimmer.MaxSpeed = 3
	t["swimmer"] = swimmer
	return t
}

// scene builds a floor with a ramp and a pool of water, plus one capsule body per agent.
func scene(agents int) *world.Snapshot {
	bodies := []world.Body{
		{ID: 1, Collider: world.NewPlane(), Transform: world.Identity(), Filter: world.Filter{Belongs: world.LayerTerrain, Collides: world.LayerAll}},
		{ID: 2, Collider: world.NewBox(mgl32.Vec3{2, 0.2, 3}), Transform: world.Transform{
			Position: mgl32.Vec3{0, 0.4, 6},
			Rotation: mgl32.QuatRotate(-0.3, mgl32.Vec3{1, 0, 0}),
		}, Filter: world.Filter{Belongs: world.LayerTerrain, Collides: world.LayerAll}},
		{ID: 3, Collider: world.NewBox(mgl32.Vec3{3, 1, 3}), Transform: world.At(mgl32.Vec3{-8, 0, 0}), Filter: world.Filter{Belongs: world.LayerWater, Collides: world.LayerAll}},
	}
	for i := range agents {
		bodies = append(bodies, world.Body{
			ID:        world.BodyID(100 + i),
			Collider:  world.NewCapsule(0.5, 0.4),
			Transform: world.Identity(),
			Filter:    world.Filter{Belongs: world.LayerAgent, Collides: world.LayerAll},
		})
	}
	return world.NewSnapshot(bodies)
}

// populate spawns agents spread over the scene and returns their handles.
func populate(t *testing.T, e *Engine, agents int) []entity.Handle {
	t.Helper()
	handles := make([]entity.Handle, agents)
	for i := range agents {
		archetype := "default"
		if i%3 == 2 {
			archetype = "swimmer"
		}
		pos := mgl32.Vec3{float32(i%5) - 2, float32(i % 2), float32(i / 5)}
		h, err := e.Spawn(archetype, world.BodyID(100+i), pos, float32(i)*0.4, mgl32.Vec3{0, 0.9, 0})
		if err != nil {
			t.Fatalf("spawn %d: %v", i, err)
		}
		handles[i] = h
	}
	return handles
}

// drive feeds every agent a deterministic input for tick n.
func drive(e *Engine, handles []entity.Handle, n int) {
	for i, h := range handles {
		e.Input(h, func(in *entity.Input) {
			switch {
			case i%4 == 0:
				in.AddDirect(mgl32.Vec3{0, 0, 3 * tick})
			case i%4 == 1 && n == 0:
				_ = in.Navigation.Push(entity.Waypoint{Position: mgl32.Vec3{-8, 0, 0}, Mode: entity.NavLimit})
			case i%4 == 2 && n%30 == 0:
				in.SetImpulse(mgl32.Vec3{1, 4, 0}, 0)
			case i%4 == 3:
				in.Facing = mgl32.Vec3{float32(n%7) - 3, 0, 1}
			}
		})
	}
}

func TestEngineIsDeterministic(t *testing.T) {
	const agents, ticks = 12, 180
	snap := scene(agents)

	run := func(workers int) []uint64 {
		e := New(quietLogger(), table(), WithWorkers(workers))
		defer e.Close()
		handles := populate(t, e, agents)
		hashes := make([]uint64, ticks)
		for n := range ticks {
			drive(e, handles, n)
			report := e.Tick(snap, tick)
			if report.Faults != 0 {
				t.Fatalf("tick %d: unexpected faults %+v", n, report.Agents)
			}
			hashes[n] = report.Hash
		}
		return hashes
	}

	serial, parallel := run(1), run(8)
	for n := range serial {
		if serial[n] != parallel[n] {
			t.Fatalf("tick %d: hashes diverged between worker counts: %x != %x", n, serial[n], parallel[n])
		}
	}
}

func TestEngineTraceReplay(t *testing.T) {
	const agents, ticks = 6, 90
	snap := scene(agents)

	var buf bytes.Buffer
	rec, err := trace.NewRecorder(&buf)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	e := New(quietLogger(), table(), WithWorkers(4), WithTracer(rec))
	handles := populate(t, e, agents)
	for n := range ticks {
		drive(e, handles, n)
		e.Tick(snap, tick)
	}
	e.Close()
	if err := rec.Close(); err != nil {
		t.Fatalf("close recorder: %v", err)
	}
	if rec.Records() != agents*ticks {
		t.Fatalf("expected %d records, got %d", agents*ticks, rec.Records())
	}

	r, err := trace.NewReader(&buf)
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	defer r.Close()
	v := trace.NewVerifier(r)
	replay := New(quietLogger(), table(), WithWorkers(2), WithTracer(v))
	defer replay.Close()
	handles = populate(t, replay, agents)
	for n := range ticks {
		drive(replay, handles, n)
		replay.Tick(snap, tick)
	}
	if err := v.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if d, ok := v.Divergence(); ok {
		t.Fatalf("replay diverged: %s", d)
	}
}

func TestEngineMissingBody(t *testing.T) {
	snap := scene(1)
	e := New(quietLogger(), table(), WithWorkers(2))
	defer e.Close()

	ok, err := e.Spawn("default", 100, mgl32.Vec3{0, 0.005, 0}, 0, mgl32.Vec3{0, 0.9, 0})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	lost, err := e.Spawn("default", 555, mgl32.Vec3{3, 1, 0}, 0, mgl32.Vec3{0, 0.9, 0})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	before, _ := e.Agent(lost)

	report := e.Tick(snap, tick)
	if report.Faults != 1 {
		t.Fatalf("expected one fault, got %+v", report.Agents)
	}
	for _, a := range report.Agents {
		switch a.Handle {
		case ok:
			if a.Err != nil {
				t.Fatalf("healthy agent faulted: %v", a.Err)
			}
		case lost:
			if a.Outcome != movement.OutcomeMissingBody || !oerror.Is(a.Err, oerror.KindMissingBody) {
				t.Fatalf("expected missing body, got %v %v", a.Outcome, a.Err)
			}
		}
	}
	if after, _ := e.Agent(lost); after != before {
		t.Fatalf("an agent without a body must not be changed")
	}
}

func TestEngineSpawnDespawn(t *testing.T) {
	e := New(quietLogger(), table(), WithWorkers(1))
	defer e.Close()

	if _, err := e.Spawn("dragon", 100, mgl32.Vec3{}, 0, mgl32.Vec3{}); !oerror.Is(err, oerror.KindUnknownArchetype) {
		t.Fatalf("expected unknown archetype, got %v", err)
	}
	h, err := e.Spawn("default", 100, mgl32.Vec3{}, 0, mgl32.Vec3{0, 0.9, 0})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if !e.Despawn(h) || e.Despawn(h) || e.Len() != 0 {
		t.Fatalf("despawn must succeed exactly once")
	}
	if _, ok := e.Agent(h); ok {
		t.Fatalf("a despawned handle must not resolve")
	}
	if e.Input(h, func(*entity.Input) {}) {
		t.Fatalf("a despawned handle has no input")
	}

	bad := table()
	broken := settings.Default()
	broken.WaterMaxHeight = 0
	bad["broken"] = broken
	if err := e.SetTable(bad); !oerror.Is(err, oerror.KindInvalidParams) {
		t.Fatalf("expected invalid params, got %v", err)
	}
	if e.Tick(scene(0), tick).Tick != 1 || e.CurrentTick() != 1 {
		t.Fatalf("tick counter must advance")
	}
}
