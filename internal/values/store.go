// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package values

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/sowgen/pkg/types"
)

// Store is the value store for one document: nested values addressed by
// path plus named image slots.
type Store struct {
	root   *Object
	images map[string]types.ImageSlot
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{root: NewObject(), images: make(map[string]types.ImageSlot)}
}

// FromMap builds a store from decoded Go data. Keys may be dotted paths
// ("project_duration.start_date"); they are expanded into nested objects.
func FromMap(m map[string]any) (*Store, error) {
	s := NewStore()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := FromAny(m[k])
		if err != nil {
			return nil, fmt.Errorf("value %s: %w", k, err)
		}
		if err := s.Set(k, v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Load reads a YAML or JSON values file. Top-level key order is kept.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading values: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing values %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes YAML (or JSON, which YAML accepts) into a store.
func Parse(data []byte) (*Store, error) {
	s := NewStore()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	v, err := fromNode(&doc)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case *Object:
		for _, k := range t.Keys() {
			item, _ := t.Get(k)
			if err := s.Set(k, item); err != nil {
				return nil, err
			}
		}
	case Null:
	default:
		return nil, fmt.Errorf("top level must be a mapping, got %T", v)
	}
	return s, nil
}

func fromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null{}, nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromNode(n.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", n.Content[i].Value, err)
			}
			obj.Set(n.Content[i].Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		l := make(List, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			l = append(l, v)
		}
		return l, nil
	case yaml.ScalarNode:
		return fromScalar(n), nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

func fromScalar(n *yaml.Node) Value {
	switch n.ShortTag() {
	case "!!null":
		return Null{}
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(n.Value))
		if err != nil {
			return String(n.Value)
		}
		return Bool(b)
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(strings.ReplaceAll(n.Value, "_", ""), 64)
		if err != nil {
			return String(n.Value)
		}
		return Number{Float: f, Literal: n.Value}
	default:
		return String(n.Value)
	}
}

// Root returns the top-level object.
func (s *Store) Root() *Object { return s.root }

// Get resolves a dotted/bracket path.
func (s *Store) Get(path string) (Value, bool) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, false
	}
	return s.GetPath(p)
}

// GetPath resolves p from the root object.
func (s *Store) GetPath(p Path) (Value, bool) {
	return Lookup(s.root, p)
}

// Set stores v at a dotted/bracket path.
func (s *Store) Set(path string, v Value) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}
	return s.SetPath(p, v)
}

// SetPath stores v at p, creating intermediate containers.
func (s *Store) SetPath(p Path, v Value) error {
	if len(p) == 0 || p[0].IsIndex {
		return fmt.Errorf("path %q: must start with a member name", p)
	}
	root, err := Assign(s.root, p, v)
	if err != nil {
		return fmt.Errorf("setting %s: %w", p, err)
	}
	s.root = root.(*Object)
	return nil
}

// SetString is Set for a plain string.
func (s *Store) SetString(path, v string) error {
	return s.Set(path, String(v))
}

// Image returns the named image slot.
func (s *Store) Image(name string) (types.ImageSlot, bool) {
	img, ok := s.images[name]
	return img, ok
}

// SetImage stores a decoded image under slot.Name.
func (s *Store) SetImage(slot types.ImageSlot) {
	s.images[slot.Name] = slot
}

// Images returns the filled image slots, logo first, then signature, then
// any others by name.
func (s *Store) Images() []types.ImageSlot {
	names := make([]string, 0, len(s.images))
	for n := range s.images {
		names = append(names, n)
	}
	sort.Strings(names)
	rank := func(n string) int {
		switch n {
		case types.SlotLogo:
			return 0
		case types.SlotSignature:
			return 1
		}
		return 2
	}
	out := make([]types.ImageSlot, 0, len(names))
	for r := 0; r < 3; r++ {
		for _, n := range names {
			if rank(n) == r {
				out = append(out, s.images[n])
			}
		}
	}
	return out
}
