// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export turns a template and captured values into a finished
// document.
//
// Two layouts exist. Structured mode renders every schema field as a
// label/value line under the template title, so reviewers see unanswered
// fields too. Template mode reproduces the transcript line by line with
// placeholders substituted. Either layout can be serialized as .docx or
// as a single-page PDF. Every artifact is re-read and checked before it
// is returned; a failed check yields ErrSerializationInvariant and no
// document.
package export

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/sowgen/internal/archive"
	"github.com/pdiddy/sowgen/internal/merge"
	"github.com/pdiddy/sowgen/internal/ooxml"
	"github.com/pdiddy/sowgen/internal/pdf"
	"github.com/pdiddy/sowgen/internal/schema"
	"github.com/pdiddy/sowgen/internal/values"
	"github.com/pdiddy/sowgen/internal/verify"
	"github.com/pdiddy/sowgen/pkg/types"
)

// ErrSerializationInvariant marks a generated artifact that failed its
// structural check. It indicates a writer bug.
var ErrSerializationInvariant = errors.New("serialization invariant violated")

// DefaultClientKey is the value path used for the client part of filenames.
const DefaultClientKey = "client_name"

// pdfWrapWidth is the number of characters per PDF line at 11 pt Helvetica
// inside the page margins.
const pdfWrapWidth = 90

// Template is the source a document is generated from.
type Template struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	Transcript string `json:"transcript,omitempty" yaml:"transcript,omitempty"`

	// Source is the uploaded .docx, if any. Template-mode .docx exports
	// substitute into its paragraphs instead of the transcript lines.
	Source []byte `json:"-" yaml:"-"`
}

// Schema builds the template's field schema.
func (t Template) Schema() types.Schema {
	return schema.FromTranscript(t.Transcript, t.ID, t.Title)
}

// Exporter generates documents for one configuration. It is not safe for
// concurrent use; create one per goroutine.
type Exporter struct {
	cfg    types.ExportConfig
	format *merge.Formatter
	w      io.Writer
	images []types.ImageSlot
}

// New validates cfg and returns an Exporter. Format, mode and client key
// have defaults; the unfilled policy must be set by the caller. Progress
// and dropped-image notices go to w.
func New(cfg types.ExportConfig, w io.Writer) (*Exporter, error) {
	if cfg.Format == "" {
		cfg.Format = types.OutputDOCX
	}
	if cfg.Mode == "" {
		cfg.Mode = types.ModeStructured
	}
	if cfg.ClientKey == "" {
		cfg.ClientKey = DefaultClientKey
	}
	switch cfg.Format {
	case types.OutputDOCX, types.OutputPDF:
	default:
		return nil, fmt.Errorf("unknown output format %q", cfg.Format)
	}
	switch cfg.Mode {
	case types.ModeStructured, types.ModeTemplate:
	default:
		return nil, fmt.Errorf("unknown export mode %q", cfg.Mode)
	}
	switch cfg.Unfilled.Mode {
	case types.KeepOriginalToken, types.BlankFill:
	case "":
		return nil, fmt.Errorf("unfilled policy not set: choose %q or %q", types.KeepOriginalToken, types.BlankFill)
	default:
		return nil, fmt.Errorf("unknown unfilled mode %q", cfg.Unfilled.Mode)
	}
	f, err := merge.NewFormatter(cfg.MergeConfig)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = io.Discard
	}
	return &Exporter{cfg: cfg, format: f, w: w}, nil
}

// Config returns the effective configuration.
func (e *Exporter) Config() types.ExportConfig { return e.cfg }

// Export generates a document in the configured format and mode.
func (e *Exporter) Export(tpl Template, store *values.Store, date time.Time) (types.GeneratedDocument, error) {
	switch {
	case e.cfg.Mode == types.ModeStructured && e.cfg.Format == types.OutputDOCX:
		return e.ExportDOCX(tpl, store, date)
	case e.cfg.Mode == types.ModeStructured && e.cfg.Format == types.OutputPDF:
		return e.ExportPDF(tpl, store, date)
	case e.cfg.Mode == types.ModeTemplate && e.cfg.Format == types.OutputDOCX:
		return e.ExportTemplateDOCX(tpl, store, date)
	case e.cfg.Mode == types.ModeTemplate && e.cfg.Format == types.OutputPDF:
		return e.ExportTemplatePDF(tpl, store, date)
	default:
		panic(fmt.Sprintf("export: unhandled mode %q format %q", e.cfg.Mode, e.cfg.Format))
	}
}

// ExportDOCX renders the structured layout as .docx: logo, title, one
// paragraph per field, signature.
func (e *Exporter) ExportDOCX(tpl Template, store *values.Store, date time.Time) (types.GeneratedDocument, error) {
	sch := tpl.Schema()
	lines := e.render(sch, store)

	var ps []ooxml.Paragraph
	imgs := store.Images()
	if _, ok := store.Image(types.SlotLogo); ok {
		ps = append(ps, ooxml.Image(types.SlotLogo))
	}
	ps = append(ps, ooxml.Paragraph{Text: documentTitle(tpl), Style: ooxml.StyleTitle})
	ps = append(ps, structuredParagraphs(lines)...)
	if _, ok := store.Image(types.SlotSignature); ok {
		ps = append(ps, ooxml.Image(types.SlotSignature))
	}
	return e.packageDOCX(tpl, store, date, ps, imgs)
}

// ExportPDF renders the structured layout as a single-page PDF. Images are
// not embedded.
func (e *Exporter) ExportPDF(tpl Template, store *values.Store, date time.Time) (types.GeneratedDocument, error) {
	sch := tpl.Schema()
	lines := append([]string{documentTitle(tpl), ""}, merge.Text(e.render(sch, store))...)
	return e.packagePDF(tpl, store, date, lines)
}

// ExportTemplateDOCX reproduces the template with placeholders
// substituted. An uploaded .docx source keeps its paragraph styles;
// otherwise each transcript line becomes a paragraph.
func (e *Exporter) ExportTemplateDOCX(tpl Template, store *values.Store, date time.Time) (types.GeneratedDocument, error) {
	resolve := e.resolver(tpl, store)
	imgs := store.Images()

	if len(tpl.Source) > 0 {
		m, err := ooxml.FillTemplate(tpl.Source, resolve, e.cfg.Unfilled, imgs)
		if err != nil {
			return types.GeneratedDocument{}, fmt.Errorf("filling %s: %w", tpl.ID, err)
		}
		return e.finishDOCX(tpl, store, date, m)
	}

	lines := merge.SubstituteLines(transcriptLines(tpl.Transcript), resolve, e.cfg.Unfilled)
	var ps []ooxml.Paragraph
	if _, ok := store.Image(types.SlotLogo); ok {
		ps = append(ps, ooxml.Image(types.SlotLogo))
	}
	ps = append(ps, ooxml.Paragraphs(lines)...)
	if _, ok := store.Image(types.SlotSignature); ok {
		ps = append(ps, ooxml.Image(types.SlotSignature))
	}
	return e.packageDOCX(tpl, store, date, ps, imgs)
}

// ExportTemplatePDF reproduces the transcript as a PDF with placeholders
// substituted.
func (e *Exporter) ExportTemplatePDF(tpl Template, store *values.Store, date time.Time) (types.GeneratedDocument, error) {
	lines := merge.SubstituteLines(transcriptLines(tpl.Transcript), e.resolver(tpl, store), e.cfg.Unfilled)
	return e.packagePDF(tpl, store, date, lines)
}

// Fill returns the transcript with placeholders substituted.
func (e *Exporter) Fill(tpl Template, store *values.Store) string {
	return merge.Substitute(tpl.Transcript, e.resolver(tpl, store), e.cfg.Unfilled)
}

// Unresolved lists the placeholder keys of the transcript with no value.
func (e *Exporter) Unresolved(tpl Template, store *values.Store) []string {
	return merge.Unresolved(tpl.Transcript, e.resolver(tpl, store))
}

func (e *Exporter) resolver(tpl Template, store *values.Store) merge.Resolver {
	sch := tpl.Schema()
	return merge.NewResolver(merge.NewSource(store, &sch), e.format)
}

func (e *Exporter) render(sch types.Schema, store *values.Store) []merge.Line {
	r := merge.NewRenderer(merge.NewSource(store, &sch), e.format, e.cfg.Unfilled)
	return r.RenderFields(sch)
}

func (e *Exporter) packageDOCX(tpl Template, store *values.Store, date time.Time, ps []ooxml.Paragraph, imgs []types.ImageSlot) (types.GeneratedDocument, error) {
	m, err := ooxml.Build(ps, imgs)
	if err != nil {
		return types.GeneratedDocument{}, fmt.Errorf("building package for %s: %w", tpl.ID, err)
	}
	return e.finishDOCX(tpl, store, date, m)
}

func (e *Exporter) finishDOCX(tpl Template, store *values.Store, date time.Time, m *archive.FileMap) (types.GeneratedDocument, error) {
	data, err := archive.Build(m)
	if err != nil {
		return types.GeneratedDocument{}, fmt.Errorf("%w: %w", ErrSerializationInvariant, err)
	}
	if err := verify.DOCX(data); err != nil {
		return types.GeneratedDocument{}, fmt.Errorf("%w: %w", ErrSerializationInvariant, err)
	}
	return e.document(tpl, store, date, types.OutputDOCX, data), nil
}

func (e *Exporter) packagePDF(tpl Template, store *values.Store, date time.Time, lines []string) (types.GeneratedDocument, error) {
	data := pdf.BuildSinglePage(pdf.Wrap(lines, pdfWrapWidth))
	if _, err := verify.PDF(data); err != nil {
		return types.GeneratedDocument{}, fmt.Errorf("%w: %w", ErrSerializationInvariant, err)
	}
	return e.document(tpl, store, date, types.OutputPDF, data), nil
}

func (e *Exporter) document(tpl Template, store *values.Store, date time.Time, f types.OutputFormat, data []byte) types.GeneratedDocument {
	return types.GeneratedDocument{
		ID:       uuid.NewString(),
		Format:   f,
		Filename: Filename(e.client(tpl, store), documentTitle(tpl), date, f.Ext()),
		Data:     data,
	}
}

func (e *Exporter) client(tpl Template, store *values.Store) string {
	sch := tpl.Schema()
	v, ok := merge.NewSource(store, &sch).Lookup(e.cfg.ClientKey)
	if !ok {
		return ""
	}
	return merge.Sanitize(merge.Stringify(v))
}

func documentTitle(tpl Template) string {
	if strings.TrimSpace(tpl.Title) != "" {
		return tpl.Title
	}
	return tpl.ID
}

// structuredParagraphs lays out rendered fields: object groups become a
// heading followed by their properties.
func structuredParagraphs(lines []merge.Line) []ooxml.Paragraph {
	var ps []ooxml.Paragraph
	for _, l := range lines {
		if l.Children != nil {
			ps = append(ps, ooxml.Heading(l.Label))
			for _, text := range merge.Text(l.Children) {
				ps = append(ps, ooxml.Text(text))
			}
			continue
		}
		for _, text := range merge.Text([]merge.Line{l}) {
			ps = append(ps, ooxml.Text(text))
		}
	}
	return ps
}

func transcriptLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}

var nonWord = regexp.MustCompile(`\W+`)

// Filename returns SOW_<client>_<title>_<YYYYMMDD><ext> with every run of
// non-word characters collapsed to "_". Empty parts become "Unnamed".
func Filename(client, title string, date time.Time, ext string) string {
	part := func(s string) string {
		s = strings.Trim(nonWord.ReplaceAllString(s, "_"), "_")
		if s == "" {
			return "Unnamed"
		}
		return s
	}
	return "SOW_" + part(client) + "_" + part(title) + "_" + date.Format("20060102") + ext
}
