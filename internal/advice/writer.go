// Package advice delivers modified execution points to the advice engine.
//
// The engine reads one point per record from a file or stdout: JSON
// records are newline-delimited, MessagePack records are concatenated.
package advice

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/cockroachdb/errors"

	"tracescope/internal/logging"
	"tracescope/internal/point"
)

// Writer is a notify.Observer that encodes every get-advice payload.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	format point.Format
	log    *slog.Logger
	count  int
	err    error
}

// NewWriter returns a Writer encoding to w. logger may be nil.
func NewWriter(w io.Writer, format point.Format, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Writer{w: w, format: format, log: logger}
}

// Open returns a Writer for path. "-" and "" select stdout, which is never
// closed.
func Open(path string, format point.Format, logger *slog.Logger) (*Writer, error) {
	if path == "" || path == "-" {
		return NewWriter(os.Stdout, format, logger), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "open advice output")
	}
	w := NewWriter(f, format, logger)
	w.closer = f
	return w, nil
}

// SetTracePoint ignores navigation.
func (w *Writer) SetTracePoint(int) {}

// GetAdvice encodes modified. The first encoding error is kept and returned
// by Err; later payloads are dropped.
func (w *Writer) GetAdvice(modified point.ExecutionPoint) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return
	}
	if err := point.EncodePoint(w.w, w.format, modified); err != nil {
		w.err = errors.Wrap(err, "write advice request")
		w.log.Error("advice request dropped", "error", err)
		return
	}
	w.count++
	w.log.Info("advice requested", "line", modified.Line, "goals", goalCount(modified))
}

// Count returns how many payloads were written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Err returns the first write error.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Close closes the output file, if Open created one, and reports the first
// write error.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closer != nil {
		if err := w.closer.Close(); err != nil && w.err == nil {
			w.err = errors.Wrap(err, "close advice output")
		}
		w.closer = nil
	}
	return w.err
}

func goalCount(p point.ExecutionPoint) int {
	if top, ok := p.Top(); ok {
		return len(top.OrderedVarNames)
	}
	return 0
}
