// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// FieldKind discriminates the variants of Field.
type FieldKind string

const (
	KindScalar FieldKind = "scalar"
	KindObject FieldKind = "object"
	KindList   FieldKind = "list"
	KindTable  FieldKind = "table"
)

// Column describes one column of a Table field.
type Column struct {
	Key   string    `json:"key" yaml:"key"`
	Label string    `json:"label" yaml:"label"`
	Type  FieldType `json:"type" yaml:"type"`
}

// Field is one entry of a template schema. It is a tagged union over Kind:
//
//	KindScalar: Type
//	KindObject: Properties (addressed as "key.child")
//	KindList:   ItemLabel
//	KindTable:  Columns
//
// Members that do not belong to the field's kind are left zero. Build fields
// with the Scalar, Object, List and Table constructors.
type Field struct {
	Kind       FieldKind `json:"kind" yaml:"kind"`
	Key        string    `json:"key" yaml:"key"`
	Label      string    `json:"label" yaml:"label"`
	Type       FieldType `json:"type,omitempty" yaml:"type,omitempty"`
	Properties []Field   `json:"properties,omitempty" yaml:"properties,omitempty"`
	ItemLabel  string    `json:"item_label,omitempty" yaml:"item_label,omitempty"`
	Columns    []Column  `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// Scalar returns a single-value field.
func Scalar(key, label string, t FieldType) Field {
	return Field{Kind: KindScalar, Key: key, Label: label, Type: t}
}

// Object returns a grouping field whose properties are addressed by
// dotted paths.
func Object(key, label string, props ...Field) Field {
	return Field{Kind: KindObject, Key: key, Label: label, Properties: props}
}

// List returns a field holding an ordered sequence of strings.
func List(key, label, itemLabel string) Field {
	return Field{Kind: KindList, Key: key, Label: label, ItemLabel: itemLabel}
}

// Table returns a field holding rows of typed columns.
func Table(key, label string, cols ...Column) Field {
	return Field{Kind: KindTable, Key: key, Label: label, Columns: cols}
}

// Validate checks that the field is well formed for its kind.
func (f Field) Validate() error {
	if f.Key == "" {
		return fmt.Errorf("field %q: empty key", f.Label)
	}
	switch f.Kind {
	case KindScalar:
		if !f.Type.Valid() {
			return fmt.Errorf("field %s: invalid type %q", f.Key, f.Type)
		}
	case KindObject:
		if len(f.Properties) == 0 {
			return fmt.Errorf("field %s: object without properties", f.Key)
		}
		seen := make(map[string]bool, len(f.Properties))
		for _, p := range f.Properties {
			if p.Kind == KindObject {
				return fmt.Errorf("field %s: nested object %s", f.Key, p.Key)
			}
			if seen[p.Key] {
				return fmt.Errorf("field %s: duplicate property %s", f.Key, p.Key)
			}
			seen[p.Key] = true
			if err := p.Validate(); err != nil {
				return fmt.Errorf("field %s: %w", f.Key, err)
			}
		}
	case KindList:
	case KindTable:
		if len(f.Columns) == 0 {
			return fmt.Errorf("field %s: table without columns", f.Key)
		}
	default:
		return fmt.Errorf("field %s: unknown kind %q", f.Key, f.Kind)
	}
	return nil
}

// Schema is the ordered, typed description of every field a template
// exposes for data entry.
type Schema struct {
	TemplateID string  `json:"template_id" yaml:"template_id"`
	Title      string  `json:"title" yaml:"title"`
	Fields     []Field `json:"fields" yaml:"fields"`
}

// Lookup finds a field by key or by dotted path ("parent.child").
func (s Schema) Lookup(path string) (Field, bool) {
	head, rest, nested := strings.Cut(path, ".")
	for _, f := range s.Fields {
		if f.Key != head {
			continue
		}
		if !nested {
			return f, true
		}
		if f.Kind != KindObject {
			return Field{}, false
		}
		for _, p := range f.Properties {
			if p.Key == rest {
				return p, true
			}
		}
		return Field{}, false
	}
	return Field{}, false
}

// Validate checks every field and that top-level keys are unique.
func (s Schema) Validate() error {
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if seen[f.Key] {
			return fmt.Errorf("schema %s: duplicate key %s", s.TemplateID, f.Key)
		}
		seen[f.Key] = true
		if err := f.Validate(); err != nil {
			return fmt.Errorf("schema %s: %w", s.TemplateID, err)
		}
	}
	return nil
}
