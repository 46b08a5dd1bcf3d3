package main

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim"
	"github.com/oomph-ac/agentsim/entity"
	"github.com/oomph-ac/agentsim/settings"
	"github.com/oomph-ac/agentsim/trace"
	"github.com/oomph-ac/agentsim/world"
	"github.com/sirupsen/logrus"
)

const dt = float32(1) / 60

// The following program builds a small course, runs a crowd of agents over it while recording a trace, then runs
// the same course again and checks the second run against the recording.
func main() {
	var (
		archetypes = flag.String("archetypes", "example/replay/archetypes.toml", "archetype table (.toml or .yaml)")
		out        = flag.String("trace", filepath.Join(os.TempDir(), "agentsim", "replay.jsonl.zst"), "trace recording path")
		agents     = flag.Int("agents", 64, "number of agents")
		ticks      = flag.Int("ticks", 600, "number of ticks per run")
		workers    = flag.Int("workers", 0, "worker goroutines, 0 for one per CPU")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:     false,
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	if os.Getenv("PPROF_ENABLED") != "" {
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr("localhost:8080"))
		mgr := statsview.New()
		go mgr.Start()
	}

	table, err := settings.Load(*archetypes)
	if err != nil {
		log.Warnf("using the default archetype: %v", err)
		table = settings.DefaultTable()
	}

	rec, err := trace.Create(*out)
	if err != nil {
		log.Fatalf("unable to create trace: %v", err)
	}
	first := run(log, table, *agents, *ticks, *workers, rec)
	if err := rec.Close(); err != nil {
		log.Fatalf("unable to close trace: %v", err)
	}
	log.Infof("recorded %d records to %s", rec.Records(), *out)

	src, err := trace.Open(*out)
	if err != nil {
		log.Fatalf("unable to open trace: %v", err)
	}
	defer src.Close()
	v := trace.NewVerifier(src)
	second := run(log, table, *agents, *ticks, *workers, v)
	if err := v.Finish(); err != nil {
		log.Errorf("%v", err)
	}

	if d, ok := v.Divergence(); ok {
		log.Errorf("replay diverged after %d records: %s", v.Checked(), d)
		os.Exit(1)
	}
	if first != second {
		log.Errorf("final hashes differ: %016x != %016x", first, second)
		os.Exit(1)
	}
	log.Infof("replay matched %d records, final hash %016x", v.Checked(), first)
}

// run simulates the course once and returns the state hash of the last tick.
func run(log *logrus.Logger, table settings.Table, agents, ticks, workers int, hook trace.Hook) uint64 {
	e := agentsim.New(log, table, agentsim.WithWorkers(workers), agentsim.WithTracer(hook))
	defer e.Close()

	w := course(log, agents)
	platform, _ := w.Body(platformID)
	names := make([]string, 0, len(table))
	for _, name := range []string{"default", "runner", "diver"} {
		if _, ok := table[name]; ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		log.Fatalf("archetype table has none of the course archetypes")
	}

	handles := make([]entity.Handle, agents)
	for i := range handles {
		pos := mgl32.Vec3{float32(i%8) - 4, 0.005, float32(i/8) - 4}
		h, err := e.Spawn(names[i%len(names)], world.BodyID(1000+i), pos, 0, mgl32.Vec3{0, 0.9, 0})
		if err != nil {
			log.Fatalf("unable to spawn agent %d: %v", i, err)
		}
		handles[i] = h
		e.Input(h, func(in *entity.Input) {
			_ = in.Navigation.Push(entity.Waypoint{Position: mgl32.Vec3{pos[0], 0, 12}, Mode: entity.NavNormal})
			_ = in.Navigation.Push(entity.Waypoint{Position: mgl32.Vec3{-12, 0, pos[2]}, Mode: entity.NavLimit})
			_ = in.Navigation.Push(entity.Waypoint{Position: pos, Mode: entity.NavCircle})
		})
	}

	start := time.Now()
	var report agentsim.TickReport
	for n := 0; n < ticks; n++ {
		if n%120 == 60 {
			for i, h := range handles {
				if i%5 == 0 {
					e.Input(h, func(in *entity.Input) {
						in.SetImpulse(mgl32.Vec3{0, 5, 0}, 0)
					})
				}
			}
		}
		// The platform shuttles back and forth along x.
		v := platform.Velocity
		if x := platform.Transform.Position[0]; x > -2 && v[0] > 0 || x < -10 && v[0] < 0 {
			v = v.Mul(-1)
		}
		platform.Transform.Position = platform.Transform.Position.Add(v.Mul(dt))
		platform.Velocity = v
		w.Move(platformID, platform.Transform, v)

		report = e.Tick(w.Snapshot(), dt)
		if report.Faults > 0 {
			log.Warnf("tick %d: %d faults", report.Tick, report.Faults)
		}
	}
	log.Infof("%d agents, %d ticks in %v, hash %016x", agents, ticks, time.Since(start), report.Hash)
	return report.Hash
}

const platformID world.BodyID = 4

// course is a flat field with a ramp, a step, a moving platform and a pool.
func course(log *logrus.Logger, agents int) *world.World {
	terrain := world.Filter{Belongs: world.LayerTerrain, Collides: world.LayerAll}
	bodies := []world.Body{
		{ID: 1, Collider: world.NewPlane(), Transform: world.Identity(), Filter: terrain},
		{ID: 2, Collider: world.NewBox(mgl32.Vec3{3, 0.2, 4}), Transform: world.Transform{
			Position: mgl32.Vec3{0, 0.6, 6},
			Rotation: mgl32.QuatRotate(-0.25, mgl32.Vec3{1, 0, 0}),
		}, Filter: terrain},
		{ID: 3, Collider: world.NewBox(mgl32.Vec3{2, 0.15, 2}), Transform: world.At(mgl32.Vec3{6, 0.15, 0}), Filter: terrain},
		{ID: platformID, Collider: world.NewBox(mgl32.Vec3{2, 0.25, 2}), Transform: world.At(mgl32.Vec3{-6, 0.25, 6}), Velocity: mgl32.Vec3{0.5, 0, 0},
			Filter: world.Filter{Belongs: world.LayerDynamic, Collides: world.LayerAll}},
		{ID: 5, Collider: world.NewBox(mgl32.Vec3{4, 1, 4}), Transform: world.At(mgl32.Vec3{-12, 0, 0}),
			Filter: world.Filter{Belongs: world.LayerWater, Collides: world.LayerAll}},
	}
	for i := range agents {
		bodies = append(bodies, world.Body{
			ID:        world.BodyID(1000 + i),
			Collider:  world.NewCapsule(0.5, 0.4),
			Transform: world.Identity(),
			Filter:    world.Filter{Belongs: world.LayerAgent, Collides: world.LayerAll},
		})
	}
	w := world.New()
	for _, b := range bodies {
		if _, err := w.Add(b); err != nil {
			log.Fatalf("unable to build course: %v", err)
		}
	}
	return w
}
