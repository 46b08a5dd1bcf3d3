package internal

import (
	"bytes"
	"sync"
)

// BufferPool holds scratch buffers used to encode trace records before they are written out.
var BufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// GetBuffer returns an empty buffer from BufferPool.
func GetBuffer() *bytes.Buffer {
	buf := BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns buf to BufferPool. Oversized buffers are dropped so one large record does not pin memory.
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 {
		return
	}
	BufferPool.Put(buf)
}
