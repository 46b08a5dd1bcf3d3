package trace

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/oomph-ac/agentsim/internal"
	"github.com/oomph-ac/agentsim/oerror"
	"github.com/sasha-s/go-deadlock"
)

// Recorder writes records as zstd compressed JSON lines.
type Recorder struct {
	mu deadlock.Mutex

	f       io.Closer
	enc     *zstd.Encoder
	w       *bufio.Writer
	records uint64
}

// NewRecorder returns a recorder that writes to w. Closing the recorder does not close w.
func NewRecorder(w io.Writer) (*Recorder, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, oerror.Wrap(oerror.KindTrace, err, "trace: create encoder")
	}
	return &Recorder{enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// Create creates the file at path, along with its directory, and returns a recorder writing to it.
func Create(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, oerror.Wrap(oerror.KindTrace, err, "trace: create directory")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, oerror.Wrap(oerror.KindTrace, err, "trace: create %s", path)
	}
	r, err := NewRecorder(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.f = f
	return r, nil
}

// Record writes rec as a single line.
func (r *Recorder) Record(rec Record) error {
	buf := internal.GetBuffer()
	defer internal.PutBuffer(buf)
	if _, err := encode(buf, rec); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return oerror.Newk(oerror.KindTrace, "trace: recorder is closed")
	}
	if _, err := r.w.Write(buf.Bytes()); err != nil {
		return oerror.Wrap(oerror.KindTrace, err, "trace: write record")
	}
	r.records++
	return nil
}

// Records returns the number of records written so far.
func (r *Recorder) Records() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records
}

// Close flushes all pending records and finishes the compressed stream.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return nil
	}
	var err error
	if ferr := r.w.Flush(); ferr != nil {
		err = oerror.Wrap(oerror.KindTrace, ferr, "trace: flush")
	}
	if cerr := r.enc.Close(); cerr != nil && err == nil {
		err = oerror.Wrap(oerror.KindTrace, cerr, "trace: close encoder")
	}
	if r.f != nil {
		if cerr := r.f.Close(); cerr != nil && err == nil {
			err = oerror.Wrap(oerror.KindTrace, cerr, "trace: close file")
		}
	}
	r.w, r.enc, r.f = nil, nil, nil
	return err
}
