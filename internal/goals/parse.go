package goals

import (
	"strconv"
	"strings"
	"unicode"
)

// Int is an integer goal value. NaN marks text that held no leading integer.
type Int struct {
	Value int64
	NaN   bool
}

// NaN returns the unparsable sentinel.
func NaN() Int { return Int{NaN: true} }

// IntOf wraps v.
func IntOf(v int64) Int { return Int{Value: v} }

func (i Int) String() string {
	if i.NaN {
		return "NaN"
	}
	return strconv.FormatInt(i.Value, 10)
}

// ParseInt reads the integer at the start of s. Leading white space is
// skipped, one sign is accepted and the longest run of decimal digits is
// taken; anything after the digits is ignored. Text without leading digits,
// and digit runs that overflow int64, give NaN.
//
//	"12px" → 12, "  -7" → -7, "3.9" → 3, "x1" → NaN, "" → NaN
func ParseInt(s string) Int {
	s = strings.TrimLeftFunc(s, isSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return NaN()
	}
	digits := s[:end]
	if neg {
		digits = "-" + digits
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return NaN()
	}
	return IntOf(v)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
