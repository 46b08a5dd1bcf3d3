package worker

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/agentsim/oerror"
)

// Resource names a piece of shared state a task touches, for example "world" or "agent/3.1".
type Resource string

// Access declares the resources a task reads and writes.
type Access struct {
	Reads  []Resource
	Writes []Resource
}

// Task is a unit of work submitted to a Pool.
type Task struct {
	Name   string
	Access Access
	Run    func() error
}

type job struct {
	task *Task
	err  *error
	wg   *sync.WaitGroup
}

// Pool runs batches of tasks on a fixed set of goroutines.
type Pool struct {
	queue chan job
	once  sync.Once
}

// New starts a pool with n workers. If n is zero or less, one worker per CPU is started.
func New(n int) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	p := &Pool{queue: make(chan job, n)}
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for {
		j, ok := <-p.queue
		if !ok {
			return
		}
		*j.err = execute(j.task)
		j.wg.Done()
	}
}

// execute runs t and turns a panic into a KindPanic error. The panic is reported to Sentry and does not affect any
// other task of the batch.
func execute(t *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("task", t.Name)
			})
			hub.Recover(r)
			err = oerror.Newk(oerror.KindPanic, "worker: task %s panicked: %v", t.Name, r)
		}
	}()
	return t.Run()
}

// Run validates the batch, runs every task and waits for all of them to finish. The returned slice holds the error
// of each task at the index of the task. If validation fails no task is run.
func (p *Pool) Run(tasks []Task) ([]error, error) {
	if err := Validate(tasks); err != nil {
		return nil, err
	}
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i := range tasks {
		p.queue <- job{task: &tasks[i], err: &errs[i], wg: &wg}
	}
	wg.Wait()
	return errs, nil
}

// Close stops the workers once the tasks already queued have run. Run must not be called after Close.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.queue)
	})
}

// Validate rejects a batch in which two tasks write the same resource or one task reads a resource another task
// writes.
func Validate(tasks []Task) error {
	writers := make(map[Resource]int, len(tasks))
	for i, t := range tasks {
		for _, r := range t.Access.Writes {
			if j, ok := writers[r]; ok && j != i {
				return conflict(tasks, j, i, r)
			}
			writers[r] = i
		}
	}
	for i, t := range tasks {
		for _, r := range t.Access.Reads {
			if j, ok := writers[r]; ok && j != i {
				return conflict(tasks, j, i, r)
			}
		}
	}
	return nil
}

func conflict(tasks []Task, writer, other int, r Resource) error {
	return oerror.Newk(oerror.KindConflict, "worker: %s writes %s which %s also accesses", name(tasks, writer), r, name(tasks, other))
}

func name(tasks []Task, i int) string {
	if tasks[i].Name != "" {
		return tasks[i].Name
	}
	return fmt.Sprintf("task %d", i)
}
