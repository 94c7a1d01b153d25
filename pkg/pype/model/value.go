package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the variant held by a Value.
type Kind int

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindStr
	KindBool
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	default:
		return "none"
	}
}

// Value is a tagged union carried by members and copied between stages.
// The zero Value is None.
type Value struct {
	kind  Kind
	i     int64
	f     float64
	s     string
	b     bool
	obj   any
	items []Value
}

func None() Value { return Value{} }

func Int(i int64) Value { return Value{kind: KindInt, i: i} }

func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

func Str(s string) Value { return Value{kind: KindStr, s: s} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Object wraps an opaque handle produced by a stage, typically a dataset.
func Object(obj any) Value {
	if obj == nil {
		return None()
	}
	return Value{kind: KindObject, obj: obj}
}

func List(items ...Value) Value {
	return Value{kind: KindList, items: append([]Value(nil), items...)}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNone() bool { return v.kind == KindNone }

// AsInt returns the integer held by v. Floats are truncated and bools map to 0/1.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		return int64(v.f), true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// AsFloat returns the numeric content of v as a float64.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindStr:
		f, err := strconv.ParseFloat(v.s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func (v Value) AsStr() (string, bool) {
	if v.kind != KindStr {
		return "", false
	}
	return v.s, true
}

func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindInt:
		return v.i != 0, true
	default:
		return false, false
	}
}

func (v Value) AsObject() (any, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// Items returns the elements of a list value, or v itself as a single element.
func (v Value) Items() []Value {
	switch v.kind {
	case KindList:
		return append([]Value(nil), v.items...)
	case KindNone:
		return nil
	default:
		return []Value{v}
	}
}

// String renders v the way member values are logged.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindStr:
		return v.s
	case KindBool:
		if v.b {
			return "1"
		}
		return "0"
	case KindObject:
		if s, ok := v.obj.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("<%T>", v.obj)
	case KindList:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.String()
		}
		return strings.Join(parts, " ")
	default:
		return "None"
	}
}
