// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment splits a transcript into ordered sections and attaches
// placeholders and bullet lists to the section they occur in.
//
// The segmenter is a two-state machine. Lines before the first heading
// belong to a synthetic "Preamble" section; a numbered heading ("3. Fees:")
// or a known unnumbered heading ("Statement of Work ...") closes the current
// section and opens a new one. Closing a section runs finalize, which
// guarantees that every section exposes at least one addressable field.
package segment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/sowgen/internal/placeholder"
	"github.com/pdiddy/sowgen/pkg/types"
)

// PreambleTitle names the section holding lines before the first heading.
const PreambleTitle = "Preamble"

var (
	numberedHeading = regexp.MustCompile(`^\s*(\d+)\.\s+(.+?):?\s*$`)

	knownHeading = regexp.MustCompile(`(?i)^\s*(statement of work|work order|authori[sz]ation|scope of work|master services agreement)\b`)

	startDateMarker = regexp.MustCompile(`(?i)\b(start|starting|commencement)\s+date\b`)
	endDateMarker   = regexp.MustCompile(`(?i)\b(end|ending|completion|termination)\s+date\b`)

	textareaTitle = regexp.MustCompile(`(?i)\b(scope|charges|fees|payment|change control)\b`)
)

// bulletPrefixes are the glyphs that mark list lines. U+F0B7 is the
// private-use bullet that office converters emit for Symbol-font bullets.
var bulletPrefixes = []string{"-", "*", "\u2022", "\uf0b7"}

// Segment splits text into sections in source order.
func Segment(text string) []types.Section {
	s := &segmenter{}
	s.open(PreambleTitle, nil)
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		s.feed(line)
	}
	s.close()
	return s.sections
}

type segmenter struct {
	sections []types.Section
	cur      *types.Section
	keys     map[string]bool
}

func (s *segmenter) open(title string, ordinal *int) {
	s.cur = &types.Section{Title: title, Ordinal: ordinal}
	s.keys = make(map[string]bool)
}

func (s *segmenter) close() {
	if s.cur == nil {
		return
	}
	sec := *s.cur
	s.cur = nil
	if sec.Title == PreambleTitle && sec.Ordinal == nil && len(sec.Lines) == 0 && len(sec.Fields) == 0 {
		return
	}
	finalize(&sec, len(s.sections))
	s.sections = append(s.sections, sec)
}

func (s *segmenter) feed(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}

	if m := numberedHeading.FindStringSubmatch(line); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			s.close()
			s.open(headingTitle(m[2]), &n)
			s.attach(m[2])
			return
		}
	}
	if knownHeading.MatchString(line) {
		s.close()
		s.open(headingTitle(trimmed), nil)
		s.attach(trimmed)
		return
	}

	s.cur.Lines = append(s.cur.Lines, line)
	if item, ok := bulletItem(trimmed); ok {
		s.cur.ListItems = append(s.cur.ListItems, item)
	}
	s.attach(line)
}

// attach adds the placeholders of line to the current section, once per key.
func (s *segmenter) attach(line string) {
	for _, tok := range placeholder.Extract(line) {
		if s.keys[tok.Key] {
			continue
		}
		s.keys[tok.Key] = true
		s.cur.Fields = append(s.cur.Fields, types.Scalar(tok.Key, tok.RawLabel, tok.Type))
	}
}

// headingTitle strips placeholder tokens and a trailing colon from a heading.
// A heading made only of tokens keeps its literal text.
func headingTitle(heading string) string {
	title := heading
	ms := placeholder.Matches(heading)
	for i := len(ms) - 1; i >= 0; i-- {
		title = title[:ms[i].Start] + title[ms[i].End:]
	}
	title = strings.TrimRight(placeholder.CollapseSpace(title), ":-– ")
	if title == "" {
		return strings.TrimSuffix(placeholder.CollapseSpace(heading), ":")
	}
	return title
}

func bulletItem(trimmed string) (string, bool) {
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(trimmed, p) {
			item := strings.TrimSpace(strings.TrimPrefix(trimmed, p))
			return item, item != ""
		}
	}
	return "", false
}

// finalize synthesizes the fields a section needs beyond its placeholders.
// index is the section's position, used when the title has no usable slug.
func finalize(sec *types.Section, index int) {
	slug := placeholder.NormalizeKey(sec.Title)
	if slug == "" {
		slug = fmt.Sprintf("section_%d", index+1)
	}
	has := make(map[string]bool, len(sec.Fields))
	hasTextarea := false
	for _, f := range sec.Fields {
		has[f.Key] = true
		if f.Kind == types.KindScalar && f.Type == types.FieldTextarea {
			hasTextarea = true
		}
	}
	add := func(f types.Field) {
		if has[f.Key] {
			return
		}
		has[f.Key] = true
		sec.Fields = append(sec.Fields, f)
	}

	if len(sec.ListItems) > 0 {
		add(types.List(slug+"_items", sec.Title, "Item"))
	}

	body := strings.Join(sec.Lines, "\n")
	if startDateMarker.MatchString(body) && endDateMarker.MatchString(body) && !hasDatePair(sec.Fields) {
		add(types.Object(slug+"_dates", sec.Title+" Dates",
			types.Scalar("start_date", "Start Date", types.FieldDate),
			types.Scalar("end_date", "End Date", types.FieldDate),
		))
	}

	if textareaTitle.MatchString(sec.Title) && !hasTextarea {
		add(types.Scalar(slug+"_details", sec.Title+" Details", types.FieldTextarea))
	}

	if len(sec.Fields) == 0 {
		add(types.Scalar(slug, sec.Title, types.FieldText))
	}
}

// hasDatePair reports whether fields already capture both a start and an
// end date, in which case no date object is synthesized.
func hasDatePair(fields []types.Field) bool {
	var start, end bool
	for _, f := range fields {
		if f.Kind != types.KindScalar || f.Type != types.FieldDate {
			continue
		}
		switch {
		case startDateMarker.MatchString(f.Label):
			start = true
		case endDateMarker.MatchString(f.Label):
			end = true
		}
	}
	return start && end
}
