package runekit

import (
	"bytes"
	"errors"
	"testing"
)

type errSink struct{}

func (errSink) Write(p []byte) (int, error) { return 0, errors.New("boom") }

func TestOutputWriterBuffersUntilFlush(t *testing.T) {
	var sink bytes.Buffer
	w := NewOutputWriter(&sink, 1024)
	w.Write([]byte("a"))
	w.Write([]byte("b"))
	if sink.Len() != 0 {
		t.Fatalf("writes under capacity should stay buffered, sink has %d bytes", sink.Len())
	}
	w.Flush()
	if sink.String() != "ab" {
		t.Fatalf("got %q, want %q", sink.String(), "ab")
	}
}

func TestOutputWriterOrdersAThenB(t *testing.T) {
	var sink bytes.Buffer
	w := NewOutputWriter(&sink, 1024)
	w.Write([]byte("A"))
	w.Write([]byte("B"))
	w.Flush()
	if sink.String() != "AB" {
		t.Fatalf("writes must be observed in order, got %q", sink.String())
	}
}

func TestOutputWriterFlushesWhenBufferFull(t *testing.T) {
	var sink bytes.Buffer
	w := NewOutputWriter(&sink, 4)
	w.Write([]byte("ab"))
	w.Write([]byte("cd")) // fills to capacity, triggers flush
	if sink.String() != "abcd" {
		t.Fatalf("got %q, want full flush at capacity", sink.String())
	}
	w.Write([]byte("ef"))
	if sink.String() != "abcd" {
		t.Fatalf("next write should stay buffered until flush, sink=%q", sink.String())
	}
}

func TestOutputWriterWriteAtomicNeverSplitsAcrossFlushes(t *testing.T) {
	var sink bytes.Buffer
	w := NewOutputWriter(&sink, 1024)
	w.Write([]byte("buffered"))
	w.WriteAtomic([]byte("atomic"))
	if sink.String() != "bufferedatomic" {
		t.Fatalf("got %q", sink.String())
	}
}

func TestOutputWriterSwallowsSinkErrors(t *testing.T) {
	w := NewOutputWriter(errSink{}, 1024)
	n := w.Write([]byte("xyz"))
	if n != 3 {
		t.Fatalf("Write should report bytes accepted regardless of sink error, got %d", n)
	}
	w.Flush() // must not panic
	if w.BytesWritten() != 3 {
		t.Fatalf("BytesWritten should still count swallowed-error writes, got %d", w.BytesWritten())
	}
}

func TestOutputWriterDefaultBufferSize(t *testing.T) {
	var sink bytes.Buffer
	w := NewOutputWriter(&sink, 0)
	if w.bufferCap != defaultWriteBufferSize {
		t.Fatalf("expected default buffer size, got %d", w.bufferCap)
	}
}
