// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema turns segmented transcript sections into the ordered field
// schema exposed to form controllers.
package schema

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/pdiddy/sowgen/internal/placeholder"
	"github.com/pdiddy/sowgen/internal/segment"
	"github.com/pdiddy/sowgen/pkg/types"
)

// AuthorizationKey is the key of the signature block appended to every schema.
const AuthorizationKey = "authorization_signatures"

var (
	projectDurationTitle = regexp.MustCompile(`(?i)\bproject\s+duration\b`)
	authorizationTitle   = regexp.MustCompile(`(?i)^authori[sz]ation\b`)
)

// AuthorizationField returns the signature block: signer name and signing
// date for the supplier and the client.
func AuthorizationField() types.Field {
	return types.Object(AuthorizationKey, "Authorization",
		types.Scalar("supplier_signer_name", "Supplier Signer Name", types.FieldText),
		types.Scalar("supplier_signed_date", "Supplier Signed Date", types.FieldDate),
		types.Scalar("client_signer_name", "Client Signer Name", types.FieldText),
		types.Scalar("client_signed_date", "Client Signed Date", types.FieldDate),
	)
}

// ProjectDurationField returns the normalized project duration object.
func ProjectDurationField(label string) types.Field {
	return types.Object("project_duration", label,
		types.Scalar("start_date", "Start Date", types.FieldDate),
		types.Scalar("end_date", "End Date", types.FieldDate),
	)
}

// FromTranscript segments text and builds its schema.
func FromTranscript(text, templateID, title string) types.Schema {
	return Build(segment.Segment(text), templateID, title)
}

// Build converts sections into a schema.
//
// Sections are ordered by ordinal. A section without an ordinal takes the
// ordinal of the section before it, so leading unnumbered sections sort
// first and later ones stay behind their predecessor; ties keep encounter
// order. A section with one field contributes that field; a section with
// several contributes an Object grouping them. The authorization block is
// appended last unless a section already produced it.
func Build(sections []types.Section, templateID, title string) types.Schema {
	ordered := orderSections(sections)

	b := &builder{used: make(map[string]int)}
	for _, sec := range ordered {
		b.addSection(sec)
	}
	if _, ok := b.used[AuthorizationKey]; !ok {
		b.add(AuthorizationField())
	}

	return types.Schema{
		TemplateID: templateID,
		Title:      title,
		Fields:     b.fields,
	}
}

func orderSections(sections []types.Section) []types.Section {
	type keyed struct {
		sec types.Section
		key int
	}
	items := make([]keyed, len(sections))
	last := 0
	for i, s := range sections {
		if s.Ordinal != nil {
			last = *s.Ordinal
		}
		items[i] = keyed{sec: s, key: last}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].key < items[j].key })

	out := make([]types.Section, len(items))
	for i, it := range items {
		out[i] = it.sec
	}
	return out
}

type builder struct {
	fields []types.Field
	used   map[string]int
}

func (b *builder) addSection(sec types.Section) {
	if projectDurationTitle.MatchString(sec.Title) {
		b.add(ProjectDurationField(sec.Title))
		return
	}
	if authorizationTitle.MatchString(sec.Title) && onlyFallback(sec) {
		b.add(AuthorizationField())
		return
	}

	switch len(sec.Fields) {
	case 0:
		return
	case 1:
		b.add(sec.Fields[0])
		return
	}

	// Objects do not nest: an object found inside a multi-field section is
	// hoisted to the top level right after its group.
	var props, hoisted []types.Field
	for _, f := range sec.Fields {
		if f.Kind == types.KindObject {
			hoisted = append(hoisted, f)
			continue
		}
		props = append(props, f)
	}
	switch len(props) {
	case 0:
	case 1:
		b.add(props[0])
	default:
		b.add(types.Object(groupKey(sec.Title), sec.Title, props...))
	}
	for _, f := range hoisted {
		b.add(f)
	}
}

// add appends f, renaming its key with a numeric suffix if it is taken.
func (b *builder) add(f types.Field) {
	n := b.used[f.Key]
	b.used[f.Key] = n + 1
	if n > 0 {
		key := fmt.Sprintf("%s_%d", f.Key, n+1)
		for b.used[key] > 0 {
			n++
			key = fmt.Sprintf("%s_%d", f.Key, n+1)
		}
		b.used[key] = 1
		f.Key = key
	}
	b.fields = append(b.fields, f)
}

// onlyFallback reports whether the section's sole field is the text field
// finalize synthesizes from the title.
func onlyFallback(sec types.Section) bool {
	return len(sec.Fields) == 1 &&
		sec.Fields[0].Kind == types.KindScalar &&
		sec.Fields[0].Key == placeholder.NormalizeKey(sec.Title)
}

func groupKey(title string) string {
	if k := placeholder.NormalizeKey(title); k != "" {
		return k
	}
	return "section"
}

// Entry is one addressable value path of a schema.
type Entry struct {
	Path  string
	Label string
	Kind  types.FieldKind
	Type  types.FieldType
}

// Flatten lists every addressable path in document order. Object fields
// contribute one entry per property ("parent.child"), never one for
// themselves.
func Flatten(s types.Schema) []Entry {
	var out []Entry
	for _, f := range s.Fields {
		switch f.Kind {
		case types.KindObject:
			for _, p := range f.Properties {
				out = append(out, Entry{Path: f.Key + "." + p.Key, Label: p.Label, Kind: p.Kind, Type: p.Type})
			}
		case types.KindScalar, types.KindList, types.KindTable:
			out = append(out, Entry{Path: f.Key, Label: f.Label, Kind: f.Kind, Type: f.Type})
		default:
			panic(fmt.Sprintf("schema: unknown field kind %q", f.Kind))
		}
	}
	return out
}

// PathIndex maps each leaf key to the first path that ends in it, so a
// placeholder key can be located inside grouped objects.
func PathIndex(s types.Schema) map[string]string {
	idx := make(map[string]string)
	for _, e := range Flatten(s) {
		leaf := e.Path
		for i := len(leaf) - 1; i >= 0; i-- {
			if leaf[i] == '.' {
				leaf = leaf[i+1:]
				break
			}
		}
		if _, ok := idx[leaf]; !ok {
			idx[leaf] = e.Path
		}
	}
	return idx
}
