package optrace

// MultiTracer sends every event to several tracers, typically a stream and
// a ring.
type MultiTracer struct {
	sinks []Tracer
	level Level
}

// NewMultiTracer returns a MultiTracer over sinks.
func NewMultiTracer(level Level, sinks ...Tracer) *MultiTracer {
	return &MultiTracer{sinks: sinks, level: level}
}

// Emit hands each sink its own copy of ev, since sinks stamp sequence
// numbers.
func (t *MultiTracer) Emit(ev *Event) {
	for _, s := range t.sinks {
		cp := *ev
		s.Emit(&cp)
	}
}

// Flush flushes every sink and returns the first error.
func (t *MultiTracer) Flush() error { return t.each(Tracer.Flush) }

// Close closes every sink and returns the first error.
func (t *MultiTracer) Close() error { return t.each(Tracer.Close) }

func (t *MultiTracer) each(fn func(Tracer) error) error {
	var first error
	for _, s := range t.sinks {
		if err := fn(s); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Ring returns the first ring sink, if any.
func (t *MultiTracer) Ring() (*RingTracer, bool) {
	for _, s := range t.sinks {
		if r, ok := s.(*RingTracer); ok {
			return r, true
		}
	}
	return nil, false
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
