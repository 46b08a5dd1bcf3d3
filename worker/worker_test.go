package worker

import (
	"fmt"
	"testing"

	"github.com/oomph-ac/agentsim/oerror"
	"go.uber.org/atomic"
)

func TestPoolRunsEveryTask(t *testing.T) {
	p := New(4)
	defer p.Close()

	var sum atomic.Int64
	tasks := make([]Task, 100)
	for i := range tasks {
		v := int64(i)
		tasks[i] = Task{
			Name:   fmt.Sprintf("add %d", i),
			Access: Access{Reads: []Resource{"world"}, Writes: []Resource{Resource(fmt.Sprintf("agent/%d", i))}},
			Run: func() error {
				sum.Add(v)
				return nil
			},
		}
	}
	errs, err := p.Run(tasks)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for i, err := range errs {
		if err != nil {
			t.Fatalf("task %d: %v", i, err)
		}
	}
	if sum.Load() != 4950 {
		t.Fatalf("expected 4950, got %d", sum.Load())
	}
}

func TestPoolIsolatesPanics(t *testing.T) {
	p := New(2)
	defer p.Close()

	var ran atomic.Int32
	tasks := []Task{
		{Name: "ok", Run: func() error { ran.Inc(); return nil }},
		{Name: "boom", Run: func() error { panic("boom") }},
		{Name: "fails", Run: func() error { return oerror.Newk(oerror.KindMissingBody, "gone") }},
		{Name: "ok too", Run: func() error { ran.Inc(); return nil }},
	}
	errs, err := p.Run(tasks)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if errs[0] != nil || errs[3] != nil || ran.Load() != 2 {
		t.Fatalf("sibling tasks must be unaffected, got %v", errs)
	}
	if !oerror.Is(errs[1], oerror.KindPanic) {
		t.Fatalf("expected a panic error, got %v", errs[1])
	}
	if !oerror.Is(errs[2], oerror.KindMissingBody) {
		t.Fatalf("task errors must be passed through, got %v", errs[2])
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name     string
		tasks    []Task
		conflict bool
	}{
		{"disjoint writes", []Task{
			{Access: Access{Reads: []Resource{"world"}, Writes: []Resource{"agent/0"}}},
			{Access: Access{Reads: []Resource{"world"}, Writes: []Resource{"agent/1"}}},
		}, false},
		{"shared write", []Task{
			{Access: Access{Writes: []Resource{"agent/0"}}},
			{Access: Access{Writes: []Resource{"agent/0"}}},
		}, true},
		{"read of a write", []Task{
			{Access: Access{Reads: []Resource{"agent/1"}, Writes: []Resource{"agent/0"}}},
			{Access: Access{Writes: []Resource{"agent/1"}}},
		}, true},
		{"own read and write", []Task{
			{Access: Access{Reads: []Resource{"agent/0"}, Writes: []Resource{"agent/0"}}},
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.tasks)
			if tc.conflict != oerror.Is(err, oerror.KindConflict) {
				t.Fatalf("expected conflict %v, got %v", tc.conflict, err)
			}
		})
	}

	p := New(1)
	defer p.Close()
	var ran bool
	_, err := p.Run([]Task{
		{Access: Access{Writes: []Resource{"world"}}, Run: func() error { ran = true; return nil }},
		{Access: Access{Reads: []Resource{"world"}}, Run: func() error { ran = true; return nil }},
	})
	if !oerror.Is(err, oerror.KindConflict) || ran {
		t.Fatalf("a conflicting batch must not run, got %v", err)
	}
}
