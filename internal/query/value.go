package query

import (
	"cmp"
	"strings"
	"time"
)

// Kind is the type of a field value.
type Kind int

const (
	KindInt Kind = iota + 1
	KindFloat
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Value is one field of one row. Null marks an absent value; the Kind is set
// either way.
type Value struct {
	Kind  Kind
	Null  bool
	Int   int64
	Float float64
	Str   string
	Time  time.Time
}

func intValue(v int64) Value { return Value{Kind: KindInt, Int: v} }

func refValue(v *int64) Value {
	if v == nil {
		return Value{Kind: KindInt, Null: true}
	}
	return Value{Kind: KindInt, Int: *v}
}

func floatValue(v *float64) Value {
	if v == nil {
		return Value{Kind: KindFloat, Null: true}
	}
	return Value{Kind: KindFloat, Float: *v}
}

func stringValue(v string) Value { return Value{Kind: KindString, Str: v} }

func optStringValue(v *string) Value {
	if v == nil {
		return Value{Kind: KindString, Null: true}
	}
	return Value{Kind: KindString, Str: *v}
}

func timeValue(v time.Time) Value { return Value{Kind: KindTime, Time: v} }

// compareValues orders absent values after present ones, which matches
// PostgreSQL's default NULLS LAST for ascending and NULLS FIRST for
// descending order once the result is negated.
func compareValues(a, b Value) int {
	switch {
	case a.Null && b.Null:
		return 0
	case a.Null:
		return 1
	case b.Null:
		return -1
	}
	switch a.Kind {
	case KindInt:
		return cmp.Compare(a.Int, b.Int)
	case KindFloat:
		return cmp.Compare(a.Float, b.Float)
	case KindString:
		return strings.Compare(a.Str, b.Str)
	case KindTime:
		return a.Time.Compare(b.Time)
	default:
		return 0
	}
}
