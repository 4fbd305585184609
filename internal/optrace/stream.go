package optrace

import (
	"io"
	"sync"
)

// StreamTracer writes one line per event as the session runs.
type StreamTracer struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	format Format
	err    error // first write error; later events are dropped
}

// NewStreamTracer returns a StreamTracer writing to out.
func NewStreamTracer(out io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{out: out, level: level, format: format}
}

// Emit stamps and writes ev. A failing log never fails the command: the
// first write error is kept for Flush and later events are dropped.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	ev.Seq = NextSeq()
	_, t.err = t.out.Write(FormatEvent(ev, t.format))
}

// Flush reports the first write error, then flushes out when it buffers.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	if f, ok := t.out.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes out when it is an io.Closer.
func (t *StreamTracer) Close() error {
	flushErr := t.Flush()
	if c, ok := t.out.(io.Closer); ok {
		if err := c.Close(); err != nil && flushErr == nil {
			return err
		}
	}
	return flushErr
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
