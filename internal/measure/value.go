// Package measure models extracted measurements and normalises them into
// typed, unit-converted values with identifier-safe keys.
package measure

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind tags the representation held by a Value.
type Kind uint8

const (
	KindText Kind = iota
	KindFloat
	KindInt
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindList:
		return "list"
	default:
		return "text"
	}
}

// Value is a single reading (text or number) or an ordered list of repeated
// readings of the same field. The zero Value is empty text.
type Value struct {
	kind Kind
	text string
	num  float64
	list []Value
	unit string
}

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Float returns a floating-point value.
func Float(f float64) Value { return Value{kind: KindFloat, num: f} }

// Int returns an integer value.
func Int(n int) Value { return Value{kind: KindInt, num: float64(n)} }

// List returns a list value holding a copy of items.
func List(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// Texts returns a list of text readings.
func Texts(items []string) Value {
	vs := make([]Value, 0, len(items))
	for _, s := range items {
		vs = append(vs, Text(s))
	}
	return Value{kind: KindList, list: vs}
}

// Kind reports the representation of v.
func (v Value) Kind() Kind { return v.kind }

// Unit returns the unit token recorded for the value, if any.
func (v Value) Unit() string { return v.unit }

// WithUnit returns a copy of v carrying unit u.
func (v Value) WithUnit(u string) Value {
	v.unit = u
	return v
}

// IsList reports whether v holds repeated readings.
func (v Value) IsList() bool { return v.kind == KindList }

// Items returns the readings of a list value, or v itself for a scalar.
func (v Value) Items() []Value {
	if v.kind == KindList {
		return v.list
	}
	return []Value{v}
}

// Number returns the numeric value of a scalar number.
func (v Value) Number() (float64, bool) {
	if v.kind == KindFloat || v.kind == KindInt {
		return v.num, true
	}
	return 0, false
}

// Max returns the numeric value of a scalar, or the largest numeric reading of
// a list. Non-numeric values report false.
func (v Value) Max() (float64, bool) {
	if v.kind != KindList {
		return v.Number()
	}
	best, ok := math.Inf(-1), false
	for _, it := range v.list {
		if n, isNum := it.Number(); isNum && n > best {
			best, ok = n, true
		}
	}
	if !ok {
		return 0, false
	}
	return best, true
}

// Str returns the text of a text value.
func (v Value) Str() (string, bool) {
	if v.kind == KindText {
		return v.text, true
	}
	return "", false
}

// String formats the value the way it is shown in a report.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.Itoa(int(v.num))
	case KindFloat:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindList:
		parts := make([]string, 0, len(v.list))
		for _, it := range v.list {
			parts = append(parts, it.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return v.text
	}
}

// Equal reports whether two values have the same kind and content. Units are
// compared too.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.unit != o.unit {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	default:
		return v.num == o.num
	}
}

// Interface returns the plain Go form handed to templating: string, float64,
// int or []any.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return int(v.num)
	case KindFloat:
		return v.num
	case KindList:
		out := make([]any, 0, len(v.list))
		for _, it := range v.list {
			out = append(out, it.Interface())
		}
		return out
	default:
		return v.text
	}
}

// MarshalJSON encodes the plain form of the value.
func (v Value) MarshalJSON() ([]byte, error) { return json.Marshal(v.Interface()) }

// MarshalYAML encodes the plain form of the value.
func (v Value) MarshalYAML() (any, error) { return v.Interface(), nil }
