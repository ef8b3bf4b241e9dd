// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FieldType is the semantic type inferred for a placeholder or declared for
// a schema field. It drives input rendering and output formatting.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldDate     FieldType = "date"
	FieldEmail    FieldType = "email"
	FieldCurrency FieldType = "currency"
	FieldTextarea FieldType = "textarea"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldDate, FieldEmail, FieldCurrency, FieldTextarea:
		return true
	}
	return false
}

// PlaceholderToken is one fill-in point discovered in a transcript.
type PlaceholderToken struct {
	// RawLabel is the text between the delimiters, whitespace collapsed.
	RawLabel string `json:"raw_label" yaml:"raw_label"`

	// Key is derived from RawLabel: lowercase, non-alphanumeric runs
	// replaced by "_", leading and trailing "_" trimmed.
	Key string `json:"key" yaml:"key"`

	// Type is inferred from keywords in the label.
	Type FieldType `json:"type" yaml:"type"`

	// Section is the title of the section the token first occurred in.
	// Empty when the token was extracted without segmentation.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`
}

// Section is a contiguous block of transcript lines under one heading.
type Section struct {
	// Title is the heading text, or "Preamble" for lines before any heading.
	Title string `json:"title" yaml:"title"`

	// Ordinal is the number of a numbered heading ("3. Payment" → 3).
	// Nil for unnumbered headings and the preamble.
	Ordinal *int `json:"ordinal,omitempty" yaml:"ordinal,omitempty"`

	// Lines holds the raw lines of the section body in source order.
	Lines []string `json:"lines" yaml:"lines"`

	// ListItems holds bullet lines with the bullet glyph removed.
	ListItems []string `json:"list_items,omitempty" yaml:"list_items,omitempty"`

	// Fields holds the addressable fields of the section: the placeholders
	// found in its lines plus any fields synthesized when it closed.
	Fields []Field `json:"fields" yaml:"fields"`
}

// HasOrdinal reports whether the section came from a numbered heading.
func (s Section) HasOrdinal() bool { return s.Ordinal != nil }
