package trace

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/agentsim/entity"
	"github.com/oomph-ac/agentsim/oerror"
	"github.com/oomph-ac/agentsim/utils"
)

func record(tick uint64, agent string, kv ...any) Record {
	return Record{Tick: tick, Agent: agent, Fields: utils.KeyValsToOrderedMap(kv)}
}

func run() []Record {
	return []Record{
		record(1, "agent/0.1", "area", "normal", "position", mgl32.Vec3{0, 0.005, 0}, "iterations", 1),
		record(1, "agent/1.1", "area", "air", "velocity", mgl32.Vec3{0, -0.16333334, 0}),
		record(2, "agent/0.1", "area", "normal", "position", mgl32.Vec3{0, 0.005, 0.05}, "iterations", 2),
	}
}

func recording(t *testing.T, records []Record) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	rec, err := NewRecorder(&buf)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	for _, r := range records {
		if err := rec.Record(r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if rec.Records() != uint64(len(records)) {
		t.Fatalf("expected %d records, got %d", len(records), rec.Records())
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return &buf
}

func TestRecorderReader(t *testing.T) {
	records := run()
	r, err := NewReader(recording(t, records))
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	defer r.Close()

	for i, want := range records {
		e, err := r.Next()
		if err != nil {
			t.Fatalf("entry %d: %v", i, err)
		}
		sum, _ := Sum(want)
		if e.Tick != want.Tick || e.Agent != want.Agent || e.Hash != sum {
			t.Fatalf("entry %d: got %+v", i, e)
		}
		keys := e.Fields.Keys()
		wantKeys := want.Fields.Keys()
		if len(keys) != len(wantKeys) {
			t.Fatalf("entry %d: expected keys %v, got %v", i, wantKeys, keys)
		}
		for j := range keys {
			if keys[j] != wantKeys[j] {
				t.Fatalf("entry %d: field order changed: %v", i, keys)
			}
		}
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestRecorderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "run.jsonl.zst")
	rec, err := Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, r := range run() {
		if err := rec.Record(r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := rec.Record(run()[0]); !oerror.Is(err, oerror.KindTrace) {
		t.Fatalf("expected a closed recorder to refuse records, got %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()
	v := NewVerifier(r)
	for _, rec := range run() {
		if err := v.Record(rec); err != nil {
			t.Fatalf("verify: %v", err)
		}
	}
	if err := v.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if v.Checked() != 3 {
		t.Fatalf("expected 3 checked records, got %d", v.Checked())
	}
}

func TestVerifierReportsFirstDivergence(t *testing.T) {
	r, err := NewReader(recording(t, run()))
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	v := NewVerifier(r)

	live := run()
	live[1].Fields.Set("velocity", mgl32.Vec3{0, -0.2, 0})
	live[2].Fields.Set("iterations", 3)

	if err := v.Record(live[0]); err != nil {
		t.Fatalf("first record must match: %v", err)
	}
	if err := v.Record(live[1]); !oerror.Is(err, oerror.KindTrace) {
		t.Fatalf("expected a divergence, got %v", err)
	}
	if err := v.Record(live[2]); err != nil {
		t.Fatalf("only the first divergence is reported, got %v", err)
	}
	d, ok := v.Divergence()
	if !ok || d.Tick != 1 || d.Agent != "agent/1.1" || d.Field != "velocity" {
		t.Fatalf("unexpected divergence %+v", d)
	}
}

func TestVerifierDetectsShortRun(t *testing.T) {
	r, err := NewReader(recording(t, run()))
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	v := NewVerifier(r)
	if err := v.Record(run()[0]); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := v.Finish(); !oerror.Is(err, oerror.KindTrace) {
		t.Fatalf("a run shorter than its recording must diverge, got %v", err)
	}
}

func TestMultiStopsAtFirstError(t *testing.T) {
	var calls int
	fail := HookFunc(func(Record) error {
		calls++
		return oerror.Newk(oerror.KindTrace, "full")
	})
	count := HookFunc(func(Record) error {
		calls++
		return nil
	})
	if err := Multi(count, fail, count).Record(run()[0]); err == nil || calls != 2 {
		t.Fatalf("expected the chain to stop at the failing hook, got %v after %d calls", err, calls)
	}
}

func TestHashAgent(t *testing.T) {
	a := entity.NewAgent("humanoid", 1, mgl32.Vec3{1, 2, 3}, 0.5, mgl32.Vec3{0, 0.9, 0})
	b := a
	if HashAgent(&a) != HashAgent(&b) {
		t.Fatalf("identical agents must hash equal")
	}
	b.Velocity[0] = negZero()
	if HashAgent(&a) == HashAgent(&b) {
		t.Fatalf("negative zero must hash differently from zero")
	}
	b = a
	b.Surface.Contacting = true
	if HashAgent(&a) == HashAgent(&b) {
		t.Fatalf("surface state must be part of the hash")
	}
}

func negZero() float32 {
	z := float32(0)
	return -z
}
