// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package values holds the nested data a form controller captures for a
// template: a recursive Value type, dotted/bracket Paths into it, and a
// Store that adds dedicated image slots.
package values

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Value is one of Null, String, Number, Bool, List or *Object.
type Value interface {
	isValue()
}

// Null is the absent value.
type Null struct{}

// String is a text value.
type String string

// Number is a numeric value. Literal keeps the source spelling, so
// "0042" or "1e3" render the way they were entered.
type Number struct {
	Float   float64
	Literal string
}

// Bool is a boolean value.
type Bool bool

// List is an ordered sequence of values.
type List []Value

// Object is a mapping that remembers key insertion order.
type Object struct {
	keys   []string
	fields map[string]Value
}

func (Null) isValue()    {}
func (String) isValue()  {}
func (Number) isValue()  {}
func (Bool) isValue()    {}
func (List) isValue()    {}
func (*Object) isValue() {}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.fields[key]
	return v, ok
}

// Set stores v under key. New keys are appended to the key order.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// IsEmpty reports whether v carries no user content: Null, an empty or
// whitespace-only String, or a List/Object whose members are all empty.
func IsEmpty(v Value) bool {
	switch t := v.(type) {
	case nil, Null:
		return true
	case String:
		for _, r := range t {
			if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
				return false
			}
		}
		return true
	case Number, Bool:
		return false
	case List:
		for _, item := range t {
			if !IsEmpty(item) {
				return false
			}
		}
		return true
	case *Object:
		for _, k := range t.Keys() {
			item, _ := t.Get(k)
			if !IsEmpty(item) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("values: unknown value type %T", v))
	}
}

// FromAny converts decoded Go data (maps, slices, scalars) into a Value.
// Map keys are sorted because Go maps carry no order; use Load or
// FromYAML when source order matters.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Number{Float: float64(t), Literal: strconv.Itoa(t)}, nil
	case int64:
		return Number{Float: float64(t), Literal: strconv.FormatInt(t, 10)}, nil
	case uint64:
		return Number{Float: float64(t), Literal: strconv.FormatUint(t, 10)}, nil
	case float64:
		return Number{Float: t, Literal: strconv.FormatFloat(t, 'f', -1, 64)}, nil
	case time.Time:
		return String(t.Format("2006-01-02")), nil
	case []string:
		l := make(List, len(t))
		for i, s := range t {
			l[i] = String(s)
		}
		return l, nil
	case []any:
		l := make(List, len(t))
		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			l[i] = v
		}
		return l, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			v, err := FromAny(t[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			obj.Set(k, v)
		}
		return obj, nil
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, v := range t {
			m[k] = v
		}
		return FromAny(m)
	default:
		return nil, fmt.Errorf("unsupported value type %T", x)
	}
}
