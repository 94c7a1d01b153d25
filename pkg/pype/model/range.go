package model

import (
	"strconv"
	"strings"
)

// Range restricts the values a member accepts: either an enumerated set or
// numeric bounds. A nil bound leaves that side unconstrained.
type Range struct {
	Enum []string
	Min  *float64
	Max  *float64
}

func OneOf(values ...string) *Range {
	return &Range{Enum: append([]string(nil), values...)}
}

func Between(lo, hi float64) *Range {
	return &Range{Min: &lo, Max: &hi}
}

func AtLeast(lo float64) *Range {
	return &Range{Min: &lo}
}

func AtMost(hi float64) *Range {
	return &Range{Max: &hi}
}

// Contains reports whether v satisfies the range. A nil range accepts everything.
func (r *Range) Contains(v Value) bool {
	if r == nil {
		return true
	}
	if len(r.Enum) > 0 {
		rendered := v.String()
		for _, allowed := range r.Enum {
			if allowed == rendered {
				return true
			}
		}
		return false
	}
	f, ok := v.AsFloat()
	if !ok {
		return false
	}
	if r.Min != nil && f < *r.Min {
		return false
	}
	if r.Max != nil && f > *r.Max {
		return false
	}
	return true
}

func (r *Range) String() string {
	if r == nil {
		return ""
	}
	if len(r.Enum) > 0 {
		return "[" + strings.Join(r.Enum, ", ") + "]"
	}
	bound := func(b *float64) string {
		if b == nil {
			return ""
		}
		return strconv.FormatFloat(*b, 'g', -1, 64)
	}
	return "(" + bound(r.Min) + ", " + bound(r.Max) + ")"
}
