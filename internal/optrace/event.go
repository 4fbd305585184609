package optrace

import "time"

// Kind is the type of an operation event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeSession Scope = iota + 1 // trace load and clear
	ScopeCommand                  // one navigation or advice command
	ScopePoint                    // detail about a single trace point
)

var scopeNames = [...]string{ScopeSession: "session", ScopeCommand: "command", ScopePoint: "point"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// NoPoint marks events that do not concern a single trace point.
const NoPoint = -1

// Event is one entry of the operation log.
type Event struct {
	Time     time.Time
	Seq      uint64 // stamped by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	Name     string // "load", "jump", "advice", "alert", ...
	Point    int    // trace point index, or NoPoint
	Detail   string
	Elapsed  time.Duration // span end events only
	Extra    map[string]string
}
