// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pdiddy/sowgen/internal/values"
	"github.com/pdiddy/sowgen/pkg/types"
)

// Defaults applied by NewFormatter to zero MergeConfig fields.
const (
	DefaultCurrency   = "USD"
	DefaultLocale     = "en-US"
	DefaultDateLayout = "02 Jan 2006"
)

// inputDateLayouts are the spellings accepted for date values.
var inputDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var strict = bluemonday.StrictPolicy()

// markupTag matches an HTML element tag. Attributes must carry "=", so
// "<A Name>" or "<per annex B>" stay text.
var markupTag = regexp.MustCompile(`(?i)</?(?:a|abbr|b|big|blockquote|br|center|code|del|div|em|font|h[1-6]|hr|i|iframe|img|ins|li|mark|object|ol|p|pre|s|script|small|span|strike|strong|style|sub|sup|table|tbody|td|th|thead|tr|u|ul)\b(?:\s+[^<>]*=[^<>]*)?\s*/?>`)

// Sanitize strips HTML markup from a captured value. Text outside element
// tags is escaped before the policy runs and decoded afterwards, so
// comparisons, angle-bracket notes and ampersands survive unchanged.
func Sanitize(s string) string {
	locs := markupTag.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(html.EscapeString(s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(html.EscapeString(s[last:]))
	return html.UnescapeString(strict.Sanitize(b.String()))
}

// Stringify renders v for exact substitution. Lists join with ", ";
// objects become "key: value" pairs joined with "; ". Empty members are
// skipped.
func Stringify(v values.Value) string {
	switch t := v.(type) {
	case nil, values.Null:
		return ""
	case values.String:
		return string(t)
	case values.Number:
		return numberText(t)
	case values.Bool:
		return strconv.FormatBool(bool(t))
	case values.List:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := Stringify(item); strings.TrimSpace(s) != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case *values.Object:
		parts := make([]string, 0, t.Len())
		for _, k := range t.Keys() {
			item, _ := t.Get(k)
			if s := Stringify(item); strings.TrimSpace(s) != "" {
				parts = append(parts, k+": "+s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		panic(fmt.Sprintf("merge: unknown value type %T", v))
	}
}

func numberText(n values.Number) string {
	if n.Literal != "" {
		return n.Literal
	}
	return strconv.FormatFloat(n.Float, 'f', -1, 64)
}

// Formatter renders values per field type.
type Formatter struct {
	unit       currency.Unit
	scale      int
	printer    *message.Printer
	title      cases.Caser
	dateLayout string
}

// NewFormatter validates cfg and fills in defaults.
func NewFormatter(cfg types.MergeConfig) (*Formatter, error) {
	code := cfg.Currency
	if code == "" {
		code = DefaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parsing currency %q: %w", code, err)
	}
	loc := cfg.Locale
	if loc == "" {
		loc = DefaultLocale
	}
	tag, err := language.Parse(loc)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", loc, err)
	}
	layout := cfg.DateLayout
	if layout == "" {
		layout = DefaultDateLayout
	}
	scale, _ := currency.Standard.Rounding(unit)
	return &Formatter{
		unit:       unit,
		scale:      scale,
		printer:    message.NewPrinter(tag),
		title:      cases.Title(tag),
		dateLayout: layout,
	}, nil
}

// Format renders v as the given field type. Values that do not parse as
// the type are rendered as entered.
func (f *Formatter) Format(v values.Value, t types.FieldType) string {
	switch t {
	case types.FieldDate:
		return f.Date(Stringify(v))
	case types.FieldCurrency:
		return f.Currency(v)
	case types.FieldText, types.FieldEmail, types.FieldTextarea, "":
		return Stringify(v)
	default:
		panic(fmt.Sprintf("merge: unknown field type %q", t))
	}
}

// Date reformats s into the configured layout.
func (f *Formatter) Date(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range inputDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format(f.dateLayout)
		}
	}
	return s
}

// Currency renders a number with the configured currency symbol, locale
// grouping and the currency's standard number of decimals.
func (f *Formatter) Currency(v values.Value) string {
	var amount float64
	switch t := v.(type) {
	case values.Number:
		amount = t.Float
	case values.String:
		n, ok := parseAmount(string(t))
		if !ok {
			return string(t)
		}
		amount = n
	default:
		return Stringify(v)
	}
	sym := f.printer.Sprint(currency.Symbol(f.unit))
	num := f.printer.Sprintf(fmt.Sprintf("%%.%df", f.scale), amount)
	if math.Signbit(amount) {
		return "-" + sym + strings.TrimPrefix(num, "-")
	}
	return sym + num
}

// parseAmount accepts "1500", "1,500.50" and "$ 1,500".
func parseAmount(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ',' || r == ' ' || r == '$' || r == '€' || r == '£':
		default:
			return 0, false
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Label returns label, or a title-cased form of key when label is empty.
func (f *Formatter) Label(label, key string) string {
	if strings.TrimSpace(label) != "" {
		return label
	}
	return f.title.String(strings.ReplaceAll(key, "_", " "))
}
