// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package values

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is one step of a Path: an object member name or a list index.
type Key struct {
	Name    string
	Index   int
	IsIndex bool
}

// Path addresses a value inside nested objects and lists.
type Path []Key

// ParsePath parses "a.b[2].c". Numeric dotted segments ("items.0") are
// object member names, not indices; only brackets index lists.
func ParsePath(s string) (Path, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty path")
	}
	var p Path
	for _, seg := range strings.Split(s, ".") {
		name, rest, _ := strings.Cut(seg, "[")
		if name != "" {
			p = append(p, Key{Name: name})
		} else if rest == "" {
			return nil, fmt.Errorf("path %q: empty segment", s)
		}
		for rest != "" {
			idx, after, ok := strings.Cut(rest, "]")
			if !ok {
				return nil, fmt.Errorf("path %q: unclosed bracket", s)
			}
			n, err := strconv.Atoi(idx)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("path %q: bad index %q", s, idx)
			}
			p = append(p, Key{Index: n, IsIndex: true})
			if after == "" {
				break
			}
			if !strings.HasPrefix(after, "[") {
				return nil, fmt.Errorf("path %q: unexpected %q after index", s, after)
			}
			rest = after[1:]
		}
	}
	return p, nil
}

// MustParsePath is ParsePath for constant paths; it panics on error.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the path in the syntax ParsePath accepts.
func (p Path) String() string {
	var b strings.Builder
	for i, k := range p {
		if k.IsIndex {
			fmt.Fprintf(&b, "[%d]", k.Index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(k.Name)
	}
	return b.String()
}

// Lookup follows p from root.
func Lookup(root Value, p Path) (Value, bool) {
	cur := root
	for _, k := range p {
		switch t := cur.(type) {
		case *Object:
			if k.IsIndex {
				return nil, false
			}
			v, ok := t.Get(k.Name)
			if !ok {
				return nil, false
			}
			cur = v
		case List:
			if !k.IsIndex || k.Index >= len(t) {
				return nil, false
			}
			cur = t[k.Index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Assign stores v at p inside root, creating intermediate objects and
// lists as needed. Lists are padded with Null up to the index. The
// (possibly replaced) root is returned.
func Assign(root Value, p Path, v Value) (Value, error) {
	if len(p) == 0 {
		return v, nil
	}
	k := p[0]
	if k.IsIndex {
		l, ok := root.(List)
		if !ok {
			if root != nil && !isNull(root) {
				return nil, fmt.Errorf("cannot index %T", root)
			}
			l = nil
		}
		for len(l) <= k.Index {
			l = append(l, Null{})
		}
		child, err := Assign(l[k.Index], p[1:], v)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", k.Index, err)
		}
		l[k.Index] = child
		return l, nil
	}

	obj, ok := root.(*Object)
	if !ok {
		if root != nil && !isNull(root) {
			return nil, fmt.Errorf("cannot set member %q on %T", k.Name, root)
		}
		obj = NewObject()
	}
	cur, _ := obj.Get(k.Name)
	child, err := Assign(cur, p[1:], v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k.Name, err)
	}
	obj.Set(k.Name, child)
	return obj, nil
}

func isNull(v Value) bool {
	_, ok := v.(Null)
	return ok
}
