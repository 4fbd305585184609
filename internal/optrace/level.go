package optrace

import (
	"fmt"
	"strings"
)

// Level controls how much of a session is recorded.
type Level uint8

const (
	LevelOff Level = iota
	LevelError
	LevelSession
	LevelCommand
	LevelDebug
)

var levelNames = [...]string{
	LevelOff:     "off",
	LevelError:   "error",
	LevelSession: "session",
	LevelCommand: "command",
	LevelDebug:   "debug",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a level name, in any case, to a Level. An empty name
// is LevelOff.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for l, name := range levelNames {
		if name == s {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid optrace level: %q (expected: off|error|session|command|debug)", s)
}

// ShouldEmit reports whether events of scope are recorded at this level.
// Each level above LevelError admits one more scope: session, then command,
// then point.
func (l Level) ShouldEmit(scope Scope) bool {
	return l > LevelError && scope >= ScopeSession && scope <= Scope(l-LevelError)
}
