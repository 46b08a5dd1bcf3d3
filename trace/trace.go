// Package trace records per-agent, per-tick movement traces and compares live runs against a recording.
package trace

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/agentsim/oerror"
	"github.com/zeebo/xxh3"
)

// Record is the trace of one agent for one tick. Fields keep the order in which the pipeline noted them.
type Record struct {
	Tick   uint64
	Agent  string
	Fields *orderedmap.OrderedMap[string, any]
}

// Hook receives the records of a tick in ascending agent order once all agents of the tick have been committed.
type Hook interface {
	Record(r Record) error
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(r Record) error

func (f HookFunc) Record(r Record) error {
	return f(r)
}

type multi []Hook

func (m multi) Record(r Record) error {
	for _, h := range m {
		if err := h.Record(r); err != nil {
			return err
		}
	}
	return nil
}

// Multi returns a hook that passes every record to each hook in turn and stops at the first error.
func Multi(hooks ...Hook) Hook {
	return multi(hooks)
}

type field struct {
	key   string
	value []byte
}

// encodeFields encodes every field value to JSON and hashes the keys and encoded values in order.
func encodeFields(m *orderedmap.OrderedMap[string, any]) ([]field, uint64, error) {
	h := xxh3.New()
	if m == nil {
		return nil, h.Sum64(), nil
	}
	fields := make([]field, 0, m.Len())
	for el := m.Front(); el != nil; el = el.Next() {
		v, err := json.Marshal(el.Value)
		if err != nil {
			return nil, 0, oerror.Wrap(oerror.KindTrace, err, "trace: encode field %q", el.Key)
		}
		_, _ = h.WriteString(el.Key)
		_, _ = h.Write([]byte{0})
		_, _ = h.Write(v)
		_, _ = h.Write([]byte{0})
		fields = append(fields, field{key: el.Key, value: v})
	}
	return fields, h.Sum64(), nil
}

// Sum returns the hash of the fields of r. Two records with the same fields in the same order have the same sum.
func Sum(r Record) (uint64, error) {
	_, sum, err := encodeFields(r.Fields)
	return sum, err
}

// encode appends r to buf as a single JSON line.
func encode(buf *bytes.Buffer, r Record) (uint64, error) {
	fields, sum, err := encodeFields(r.Fields)
	if err != nil {
		return 0, err
	}
	agent, _ := json.Marshal(r.Agent)
	fmt.Fprintf(buf, `{"tick":%d,"agent":%s,"hash":%d,"fields":[`, r.Tick, agent, sum)
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(f.key)
		buf.WriteByte('[')
		buf.Write(key)
		buf.WriteByte(',')
		buf.Write(f.value)
		buf.WriteByte(']')
	}
	buf.WriteString("]}\n")
	return sum, nil
}
