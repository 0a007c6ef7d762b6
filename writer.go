package runekit

import (
	"bytes"
	"io"
	"sync"
)

// defaultWriteBufferSize is the default OutputWriter buffer capacity.
const defaultWriteBufferSize = 8192

// OutputWriter serializes every write to the terminal descriptor behind a
// single buffer, so that two writes A then B from any caller are observed
// by the sink in that order. Writes are failure-tolerant: a write error
// from the underlying sink (e.g. a closed pipe in tests) is swallowed and
// accounting continues, matching the "I/O write failures" error policy.
type OutputWriter struct {
	mu         sync.Mutex
	sink       io.Writer
	buf        bytes.Buffer
	bufferCap  int
	bytesTotal uint64
}

// NewOutputWriter creates a writer over sink with the given buffer
// capacity. A non-positive size falls back to defaultWriteBufferSize.
func NewOutputWriter(sink io.Writer, bufferSize int) *OutputWriter {
	if bufferSize <= 0 {
		bufferSize = defaultWriteBufferSize
	}
	w := &OutputWriter{sink: sink, bufferCap: bufferSize}
	w.buf.Grow(bufferSize)
	return w
}

// Write appends seq to the internal buffer, flushing first if seq would
// overflow the buffered bytes past capacity, and flushing again once the
// buffer reaches capacity. Returns the number of bytes accepted (always
// len(seq); write errors are swallowed per policy).
func (w *OutputWriter) Write(seq []byte) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 && w.buf.Len()+len(seq) > w.bufferCap {
		w.flushLocked()
	}
	w.buf.Write(seq)
	w.bytesTotal += uint64(len(seq))
	if w.buf.Len() >= w.bufferCap {
		w.flushLocked()
	}
	return len(seq)
}

// WriteAtomic flushes any buffered bytes, then writes seq directly so that
// it is never split across two separate underlying writes. Used by
// AlternateScreenBuffer's enter/leave sequences.
func (w *OutputWriter) WriteAtomic(seq []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushLocked()
	w.bytesTotal += uint64(len(seq))
	_, _ = w.sink.Write(seq) // error swallowed: see package policy
}

// Flush empties the internal buffer to the sink.
func (w *OutputWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushLocked()
}

func (w *OutputWriter) flushLocked() {
	if w.buf.Len() == 0 {
		return
	}
	_, _ = w.sink.Write(w.buf.Bytes()) // error swallowed: see package policy
	w.buf.Reset()
}

// BytesWritten returns the total number of bytes accepted since creation,
// including any still sitting in the unflushed buffer.
func (w *OutputWriter) BytesWritten() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bytesTotal
}
