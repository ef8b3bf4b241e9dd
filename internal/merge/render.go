// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"fmt"
	"strings"

	"github.com/pdiddy/sowgen/internal/values"
	"github.com/pdiddy/sowgen/pkg/types"
)

// Line is one rendered schema field. Object fields carry their properties
// as Children and no Value.
type Line struct {
	Path     string
	Label    string
	Value    string
	Empty    bool
	Children []Line
}

// Renderer produces structured field lines.
type Renderer struct {
	src    *Source
	format *Formatter
	blank  string
}

// NewRenderer returns a Renderer. Empty values render as the policy
// marker; a keep-token policy has no marker, so the default blank is used.
func NewRenderer(src *Source, f *Formatter, policy types.UnfilledPolicy) *Renderer {
	blank := policy.Marker
	if policy.Mode != types.BlankFill || blank == "" {
		blank = types.DefaultBlankMarker
	}
	return &Renderer{src: src, format: f, blank: blank}
}

// RenderFields renders every field of s exactly once, in schema order.
func (r *Renderer) RenderFields(s types.Schema) []Line {
	out := make([]Line, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, r.field(f, f.Key))
	}
	return out
}

func (r *Renderer) field(f types.Field, path string) Line {
	line := Line{Path: path, Label: r.format.Label(f.Label, f.Key)}
	switch f.Kind {
	case types.KindObject:
		line.Children = make([]Line, 0, len(f.Properties))
		for _, p := range f.Properties {
			line.Children = append(line.Children, r.field(p, path+"."+p.Key))
		}
		return line
	case types.KindScalar:
		v, ok := r.src.LookupPath(path)
		if ok {
			line.Value = Sanitize(r.format.Format(v, f.Type))
		}
	case types.KindList:
		v, ok := r.src.LookupPath(path)
		if ok {
			line.Value = Sanitize(r.listText(v, f.Type))
		}
	case types.KindTable:
		v, ok := r.src.LookupPath(path)
		if ok {
			line.Value = Sanitize(r.tableText(v, f.Columns))
		}
	default:
		panic(fmt.Sprintf("merge: unknown field kind %q", f.Kind))
	}
	if strings.TrimSpace(line.Value) == "" {
		line.Value = r.blank
		line.Empty = true
	}
	return line
}

// listText joins list items with newlines.
func (r *Renderer) listText(v values.Value, t types.FieldType) string {
	l, ok := v.(values.List)
	if !ok {
		return r.format.Format(v, t)
	}
	parts := make([]string, 0, len(l))
	for _, item := range l {
		if values.IsEmpty(item) {
			continue
		}
		parts = append(parts, r.format.Format(item, t))
	}
	return strings.Join(parts, "\n")
}

// tableText renders one row per line, cells joined with ", " in column
// order. Rows may be objects keyed by column or plain lists.
func (r *Renderer) tableText(v values.Value, cols []types.Column) string {
	rows, ok := v.(values.List)
	if !ok {
		return Stringify(v)
	}
	var out []string
	for _, row := range rows {
		var cells []string
		switch t := row.(type) {
		case *values.Object:
			if len(cols) == 0 {
				cells = append(cells, Stringify(t))
				break
			}
			for _, c := range cols {
				cell, _ := t.Get(c.Key)
				cells = append(cells, r.format.Format(cell, c.Type))
			}
		case values.List:
			for i, cell := range t {
				typ := types.FieldText
				if i < len(cols) {
					typ = cols[i].Type
				}
				cells = append(cells, r.format.Format(cell, typ))
			}
		default:
			cells = append(cells, Stringify(row))
		}
		if s := strings.Join(cells, ", "); strings.Trim(s, ", ") != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}

// Text flattens lines into display lines. A multi-line value starts on the
// line after its label; object properties are indented two spaces.
func Text(lines []Line) []string {
	var out []string
	for _, l := range lines {
		out = appendText(out, l, "")
	}
	return out
}

func appendText(out []string, l Line, indent string) []string {
	if l.Children != nil {
		out = append(out, indent+l.Label)
		for _, c := range l.Children {
			out = appendText(out, c, indent+"  ")
		}
		return out
	}
	if !strings.Contains(l.Value, "\n") {
		return append(out, indent+l.Label+": "+l.Value)
	}
	out = append(out, indent+l.Label+":")
	for _, v := range strings.Split(l.Value, "\n") {
		out = append(out, indent+"  "+v)
	}
	return out
}
