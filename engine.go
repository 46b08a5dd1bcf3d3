package agentsim

import (
	"encoding/binary"
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/entity"
	"github.com/oomph-ac/agentsim/movement"
	"github.com/oomph-ac/agentsim/oerror"
	"github.com/oomph-ac/agentsim/settings"
	"github.com/oomph-ac/agentsim/trace"
	"github.com/oomph-ac/agentsim/utils"
	"github.com/oomph-ac/agentsim/worker"
	"github.com/oomph-ac/agentsim/world"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
	"go.uber.org/atomic"
)

const (
	resourceWorld  worker.Resource = "world"
	resourceParams worker.Resource = "params"
)

var resultPool = utils.NewSlicePool[movement.Result](64)

// Engine owns a set of agents and moves all of them once per Tick.
type Engine struct {
	mu deadlock.Mutex

	log     *logrus.Logger
	table   settings.Table
	arena   *entity.Arena
	pool    *worker.Pool
	gravity mgl32.Vec3
	tracer  trace.Hook
	workers int
	navCap  int

	tick atomic.Uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of goroutines agents are simulated on. Zero uses one per CPU.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithGravity sets the gravity acceleration. The default is 9.81 m/s² downwards.
func WithGravity(g mgl32.Vec3) Option {
	return func(e *Engine) {
		e.gravity = g
	}
}

// WithTracer enables tracing. Every committed agent produces one record per tick.
func WithTracer(h trace.Hook) Option {
	return func(e *Engine) {
		e.tracer = h
	}
}

// WithNavCapacity sets the size of the navigation queue of each spawned agent.
func WithNavCapacity(n int) Option {
	return func(e *Engine) {
		e.navCap = n
	}
}

// New returns an engine that looks up agent parameters in table.
func New(log *logrus.Logger, table settings.Table, opts ...Option) *Engine {
	e := &Engine{
		log:     log,
		table:   table,
		gravity: mgl32.Vec3{0, -9.81, 0},
		navCap:  16,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.arena = entity.NewArena(e.navCap)
	e.pool = worker.New(e.workers)
	return e
}

// Close stops the worker goroutines of the engine.
func (e *Engine) Close() {
	e.pool.Close()
}

// SetTable validates and replaces the archetype table. Agents pick up the new parameters on the next tick.
func (e *Engine) SetTable(table settings.Table) error {
	if err := table.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.table = table
	return nil
}

// Spawn adds an agent of the given archetype whose collider is carried by body. The pivot is placed at position,
// and com is the offset from the pivot to the collider centre.
func (e *Engine) Spawn(archetype string, body world.BodyID, position mgl32.Vec3, yaw float32, com mgl32.Vec3) (entity.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.table.Lookup(archetype); err != nil {
		return entity.Handle{}, err
	}
	h := e.arena.Spawn(entity.NewAgent(archetype, body, position, yaw, com))
	e.log.Debugf("spawned %s (%s) on body %d at %v", h, archetype, body, position)
	return h, nil
}

// Despawn removes an agent. It reports whether the handle referred to a live agent.
func (e *Engine) Despawn(h entity.Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.arena.Despawn(h)
}

// Agent returns a copy of the agent's state.
func (e *Engine) Agent(h entity.Handle) (entity.Agent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.arena.Get(h)
	if !ok {
		return entity.Agent{}, false
	}
	return *a, true
}

// Input calls f with the agent's input so that it can be filled in for the next tick.
func (e *Engine) Input(h entity.Handle, f func(in *entity.Input)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	in, ok := e.arena.Input(h)
	if ok {
		f(in)
	}
	return ok
}

// Len returns the number of live agents.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.arena.Len()
}

// CurrentTick returns the number of ticks run so far.
func (e *Engine) CurrentTick() uint64 {
	return e.tick.Load()
}

// AgentReport is the outcome of one agent in a tick.
type AgentReport struct {
	Handle  entity.Handle
	Outcome movement.Outcome
	Err     error
}

// TickReport summarises a tick.
type TickReport struct {
	Tick   uint64
	Agents []AgentReport
	// Faults counts agents that could not be moved.
	Faults int
	// Hash covers the state of every agent that was moved, in handle order.
	Hash uint64
}

// Tick moves every agent by dt seconds against snap. Agents are simulated in parallel and committed in handle order,
// so the outcome does not depend on the number of workers. A fault in one agent never affects another.
func (e *Engine) Tick(snap *world.Snapshot, dt float32) TickReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	tick := e.tick.Inc()
	handles := e.arena.Handles()
	pooled := resultPool.Get()
	defer resultPool.Put(pooled)
	results := append(*pooled, make([]movement.Result, len(handles))...)
	*pooled = results
	tasks := make([]worker.Task, len(handles))
	for i, h := range handles {
		tasks[i] = worker.Task{
			Name: h.String(),
			Access: worker.Access{
				Reads:  []worker.Resource{resourceWorld, resourceParams},
				Writes: []worker.Resource{worker.Resource(h.String())},
			},
			Run: func() error {
				a, _ := e.arena.Get(h)
				in, _ := e.arena.Input(h)
				p, err := e.table.Lookup(a.Archetype)
				if err != nil {
					return err
				}
				res, err := movement.Simulate(a, in, movement.Frame{
					World:   snap,
					Params:  p,
					Gravity: e.gravity,
					DT:      dt,
					Trace:   e.tracer != nil,
				})
				results[i] = res
				return err
			},
		}
	}

	report := TickReport{Tick: tick, Agents: make([]AgentReport, len(handles))}
	errs, err := e.pool.Run(tasks)
	if err != nil {
		e.log.Errorf("tick %d: %v", tick, err)
		return report
	}

	hash := xxh3.New()
	var scratch [16]byte
	for i, h := range handles {
		report.Agents[i] = AgentReport{Handle: h, Outcome: results[i].Outcome, Err: errs[i]}
		if errs[i] != nil {
			report.Faults++
			e.fault(tick, h, errs[i])
			continue
		}

		a, _ := e.arena.Get(h)
		in, _ := e.arena.Input(h)
		results[i].Apply(a, in, dt)

		binary.LittleEndian.PutUint32(scratch[0:], h.Index)
		binary.LittleEndian.PutUint32(scratch[4:], h.Generation)
		binary.LittleEndian.PutUint64(scratch[8:], trace.HashAgent(a))
		_, _ = hash.Write(scratch[:])

		if e.tracer != nil && results[i].Trace != nil {
			results[i].Trace.Set("hash", fmt.Sprintf("%016x", trace.HashAgent(a)))
			if e.log.IsLevelEnabled(logrus.TraceLevel) {
				e.log.Tracef("tick %d %s %s", tick, h, utils.OrderedMapToString(results[i].Trace))
			}
			if err := e.tracer.Record(trace.Record{Tick: tick, Agent: h.String(), Fields: results[i].Trace}); err != nil {
				e.log.WithFields(logrus.Fields{"tick": tick, "agent": h.String()}).Warnf("trace: %v", err)
			}
		}
	}
	report.Hash = hash.Sum64()
	return report
}

// fault logs an agent that could not be moved and reports it to Sentry. Panics have already been reported by the
// worker pool.
func (e *Engine) fault(tick uint64, h entity.Handle, err error) {
	kind := oerror.KindUnknown
	if oe, ok := err.(*oerror.Error); ok {
		kind = oe.Kind
	}
	entry := e.log.WithFields(utils.KeyValsToMap([]any{"tick", tick, "agent", h.String(), "kind", kind.String()}))
	if kind == oerror.KindMissingBody {
		entry.Debugf("skipped: %v", err)
	} else {
		entry.Warnf("agent fault: %v", err)
	}
	if kind == oerror.KindPanic {
		return
	}

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("agent", h.String())
		scope.SetTag("tick", fmt.Sprint(tick))
		scope.SetTag("kind", kind.String())
	})
	hub.CaptureException(err)
}
