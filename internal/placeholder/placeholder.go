// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package placeholder discovers fill-in tokens in transcript text.
//
// A token is any bracket span "[Client Name]" or angle span "<Start Date>"
// that does not cross a line break. Each token is normalized into a stable
// key and given a semantic type from keywords in its label. Nothing is ever
// synthesized: every returned token appears literally in the text.
package placeholder

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/sowgen/pkg/types"
)

var (
	bracketPattern = regexp.MustCompile(`\[([^\]\n]+)\]`)
	anglePattern   = regexp.MustCompile(`<([^>\n]+)>`)
)

// typeRules are checked in order; the first rule with a matching keyword wins.
var typeRules = []struct {
	keywords []string
	t        types.FieldType
}{
	{[]string{"date"}, types.FieldDate},
	{[]string{"email"}, types.FieldEmail},
	{[]string{"rate", "budget", "cost", "payment"}, types.FieldCurrency},
	{[]string{"description", "scope"}, types.FieldTextarea},
}

// Match is one token occurrence in a text.
type Match struct {
	// Start and End are byte offsets of the whole token, delimiters included.
	Start, End int

	// Token is the literal token text, e.g. "[Client Name]".
	Token string

	// Label is the inner text with whitespace collapsed.
	Label string

	// Key is NormalizeKey(Label).
	Key string
}

// Matches returns every token occurrence in text ordered by position.
// Occurrences whose label normalizes to an empty key are skipped.
func Matches(text string) []Match {
	var out []Match
	for _, re := range []*regexp.Regexp{bracketPattern, anglePattern} {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			label := CollapseSpace(text[loc[2]:loc[3]])
			key := NormalizeKey(label)
			if key == "" {
				continue
			}
			out = append(out, Match{
				Start: loc[0],
				End:   loc[1],
				Token: text[loc[0]:loc[1]],
				Label: label,
				Key:   key,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return dropOverlaps(out)
}

// dropOverlaps removes matches that start inside an earlier match, such as
// the angle token in "[see <Annex>]". The outer token wins.
func dropOverlaps(ms []Match) []Match {
	if len(ms) < 2 {
		return ms
	}
	kept := ms[:1]
	for _, m := range ms[1:] {
		if m.Start < kept[len(kept)-1].End {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

// Extract returns the distinct placeholders of text in first-seen order.
// Later occurrences of a key are merged into the first.
func Extract(text string) []types.PlaceholderToken {
	var tokens []types.PlaceholderToken
	seen := make(map[string]bool)
	for _, m := range Matches(text) {
		if seen[m.Key] {
			continue
		}
		seen[m.Key] = true
		tokens = append(tokens, Token(m.Label))
	}
	return tokens
}

// Token builds the PlaceholderToken for a label.
func Token(label string) types.PlaceholderToken {
	label = CollapseSpace(label)
	return types.PlaceholderToken{
		RawLabel: label,
		Key:      NormalizeKey(label),
		Type:     InferType(label),
	}
}

// NormalizeKey lowercases label, replaces every run of characters outside
// [a-z0-9] with a single "_" and trims "_" from both ends.
func NormalizeKey(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	pendingSep := false
	for _, r := range strings.ToLower(label) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// InferType classifies a label by keyword. Labels with no keyword are text.
func InferType(label string) types.FieldType {
	lower := strings.ToLower(label)
	for _, rule := range typeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.t
			}
		}
	}
	return types.FieldText
}

// CollapseSpace trims s and folds internal whitespace runs to one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
