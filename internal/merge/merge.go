// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge maps captured values onto a template.
//
// Two merge policies exist. Substitute rewrites placeholder tokens inside
// the original text and is used when a template is reproduced verbatim.
// RenderFields walks the schema and renders every field as a label/value
// line for documents built purely from captured values.
package merge

import (
	"strings"

	"github.com/pdiddy/sowgen/internal/placeholder"
	"github.com/pdiddy/sowgen/pkg/types"
)

// Resolver returns the replacement text for a placeholder. ok is false
// when no value is known.
type Resolver func(label, key string) (string, bool)

// NewResolver resolves keys through src and formats each value by the
// type inferred from its label.
func NewResolver(src *Source, f *Formatter) Resolver {
	return func(label, key string) (string, bool) {
		v, ok := src.Lookup(key)
		if !ok {
			return "", false
		}
		s := Sanitize(f.Format(v, placeholder.InferType(label)))
		if strings.TrimSpace(s) == "" {
			return "", false
		}
		return s, true
	}
}

// MapResolver resolves keys from a flat map; handy for callers that keep
// their own value bag.
func MapResolver(m map[string]string) Resolver {
	return func(_, key string) (string, bool) {
		s, ok := m[key]
		return s, ok
	}
}

// Substitute replaces every placeholder token in text with its resolved
// value. Unresolved or blank values are handled by policy: the token is
// kept verbatim or replaced with the policy marker.
func Substitute(text string, resolve Resolver, policy types.UnfilledPolicy) string {
	ms := placeholder.Matches(text)
	if len(ms) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range ms {
		b.WriteString(text[last:m.Start])
		b.WriteString(replacement(m, resolve, policy))
		last = m.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// SubstituteLines applies Substitute to each line.
func SubstituteLines(lines []string, resolve Resolver, policy types.UnfilledPolicy) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = Substitute(l, resolve, policy)
	}
	return out
}

func replacement(m placeholder.Match, resolve Resolver, policy types.UnfilledPolicy) string {
	if resolve != nil {
		if v, ok := resolve(m.Label, m.Key); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return policy.Replacement(m.Token)
}

// Unresolved lists the distinct placeholder keys of text that resolve
// finds no value for, in first-seen order.
func Unresolved(text string, resolve Resolver) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range placeholder.Matches(text) {
		if seen[m.Key] {
			continue
		}
		seen[m.Key] = true
		if resolve != nil {
			if v, ok := resolve(m.Label, m.Key); ok && strings.TrimSpace(v) != "" {
				continue
			}
		}
		out = append(out, m.Key)
	}
	return out
}
