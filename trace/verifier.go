package trace

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/oomph-ac/agentsim/oerror"
)

// Divergence describes the first record of a live run that does not match its recording.
type Divergence struct {
	Tick  uint64
	Agent string
	// Field is the first field that differs, or empty if the records differ in tick, agent or field set.
	Field     string
	Want, Got string
}

func (d Divergence) String() string {
	if d.Field == "" {
		return fmt.Sprintf("tick %d agent %s: want %s, got %s", d.Tick, d.Agent, d.Want, d.Got)
	}
	return fmt.Sprintf("tick %d agent %s field %s: want %s, got %s", d.Tick, d.Agent, d.Field, d.Want, d.Got)
}

// Verifier is a Hook that compares every record it receives against the next entry of a recording. Only the first
// divergence is reported; later records are accepted without comparison.
type Verifier struct {
	src     *Reader
	first   *Divergence
	checked int
}

func NewVerifier(src *Reader) *Verifier {
	return &Verifier{src: src}
}

// Record compares rec against the next recorded entry. It returns a KindTrace error on the first divergence and
// when the recording cannot be read.
func (v *Verifier) Record(rec Record) error {
	if v.first != nil {
		return nil
	}
	fields, sum, err := encodeFields(rec.Fields)
	if err != nil {
		return err
	}
	want, err := v.src.Next()
	if errors.Is(err, io.EOF) {
		return v.diverge(Divergence{Tick: rec.Tick, Agent: rec.Agent, Want: "end of recording", Got: "record"})
	}
	if err != nil {
		return err
	}
	v.checked++

	switch {
	case want.Tick != rec.Tick || want.Agent != rec.Agent:
		return v.diverge(Divergence{
			Tick:  rec.Tick,
			Agent: rec.Agent,
			Want:  fmt.Sprintf("tick %d agent %s", want.Tick, want.Agent),
			Got:   fmt.Sprintf("tick %d agent %s", rec.Tick, rec.Agent),
		})
	case want.Hash == sum:
		return nil
	}

	el := want.Fields.Front()
	for _, f := range fields {
		if el == nil {
			return v.diverge(Divergence{Tick: rec.Tick, Agent: rec.Agent, Field: f.key, Want: "missing", Got: string(f.value)})
		}
		if el.Key != f.key || !bytes.Equal(el.Value, f.value) {
			return v.diverge(Divergence{Tick: rec.Tick, Agent: rec.Agent, Field: f.key, Want: el.Key + "=" + string(el.Value), Got: f.key + "=" + string(f.value)})
		}
		el = el.Next()
	}
	if el != nil {
		return v.diverge(Divergence{Tick: rec.Tick, Agent: rec.Agent, Field: el.Key, Want: string(el.Value), Got: "missing"})
	}
	return v.diverge(Divergence{Tick: rec.Tick, Agent: rec.Agent, Want: fmt.Sprint(want.Hash), Got: fmt.Sprint(sum)})
}

func (v *Verifier) diverge(d Divergence) error {
	v.first = &d
	return oerror.Newk(oerror.KindTrace, "trace: diverged at %s", d)
}

// Divergence returns the first divergence found so far.
func (v *Verifier) Divergence() (Divergence, bool) {
	if v.first == nil {
		return Divergence{}, false
	}
	return *v.first, true
}

// Checked returns the number of records compared against the recording.
func (v *Verifier) Checked() int {
	return v.checked
}

// Finish reports a divergence if the recording holds more records than the live run produced.
func (v *Verifier) Finish() error {
	if v.first != nil {
		return nil
	}
	e, err := v.src.Next()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	return v.diverge(Divergence{Tick: e.Tick, Agent: e.Agent, Want: "record", Got: "end of run"})
}
