package trace

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/oomph-ac/agentsim/oerror"
)

// Entry is a record read back from a recording. Field values are kept in their encoded form.
type Entry struct {
	Tick   uint64
	Agent  string
	Hash   uint64
	Fields *orderedmap.OrderedMap[string, json.RawMessage]
}

type line struct {
	Tick   uint64               `json:"tick"`
	Agent  string               `json:"agent"`
	Hash   uint64               `json:"hash"`
	Fields [][2]json.RawMessage `json:"fields"`
}

// Reader reads the records written by a Recorder in order.
type Reader struct {
	f    io.Closer
	dec  *zstd.Decoder
	sc   *bufio.Scanner
	line int
}

// NewReader returns a reader for the recording in r. Closing the reader does not close r.
func NewReader(r io.Reader) (*Reader, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, oerror.Wrap(oerror.KindTrace, err, "trace: create decoder")
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Reader{dec: dec, sc: sc}, nil
}

// Open opens the recording at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, oerror.Wrap(oerror.KindTrace, err, "trace: open %s", path)
	}
	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.f = f
	return r, nil
}

// Next returns the next entry of the recording, or io.EOF once all entries have been read.
func (r *Reader) Next() (Entry, error) {
	for r.sc.Scan() {
		r.line++
		raw := r.sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var l line
		if err := json.Unmarshal(raw, &l); err != nil {
			return Entry{}, oerror.Wrap(oerror.KindTrace, err, "trace: decode line %d", r.line)
		}
		e := Entry{Tick: l.Tick, Agent: l.Agent, Hash: l.Hash, Fields: orderedmap.NewOrderedMap[string, json.RawMessage]()}
		for _, pair := range l.Fields {
			var key string
			if err := json.Unmarshal(pair[0], &key); err != nil {
				return Entry{}, oerror.Wrap(oerror.KindTrace, err, "trace: decode field key on line %d", r.line)
			}
			e.Fields.Set(key, pair[1])
		}
		return e, nil
	}
	if err := r.sc.Err(); err != nil {
		return Entry{}, oerror.Wrap(oerror.KindTrace, err, "trace: read line %d", r.line+1)
	}
	return Entry{}, io.EOF
}

func (r *Reader) Close() error {
	r.dec.Close()
	if r.f != nil {
		return r.f.Close()
	}
	return nil
}
