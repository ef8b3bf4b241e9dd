// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sowgen/internal/archive"
	"github.com/pdiddy/sowgen/internal/ooxml"
	"github.com/pdiddy/sowgen/internal/values"
	"github.com/pdiddy/sowgen/internal/verify"
	"github.com/pdiddy/sowgen/pkg/types"
)

const transcript = `Statement of Work No. [SOW Number]
This SOW is entered into by [Supplier Name] and [Client Name].

1. Project Duration
From [Start Date] to [End Date].
`

var exportDate = time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

func template() Template {
	return Template{ID: "sow-basic", Title: "Statement of Work", Transcript: transcript}
}

func newExporter(t *testing.T, cfg types.ExportConfig) (*Exporter, *bytes.Buffer) {
	t.Helper()
	if cfg.Unfilled.Mode == "" {
		cfg.Unfilled = types.KeepTokens()
	}
	var buf bytes.Buffer
	e, err := New(cfg, &buf)
	require.NoError(t, err)
	return e, &buf
}

func newStore(t *testing.T) *values.Store {
	t.Helper()
	s, err := values.Parse([]byte("client_name: Acme, Inc.\nsupplier_name: Globex\nstart_date: 2026-01-05\n"))
	require.NoError(t, err)
	return s
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 4))))
	return buf.Bytes()
}

func texts(t *testing.T, docx []byte) []string {
	t.Helper()
	ps, err := ooxml.ExtractParagraphs(docx)
	require.NoError(t, err)
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Text
	}
	return out
}

func TestFilename(t *testing.T) {
	tests := []struct {
		client, title, want string
	}{
		{"Acme, Inc.", "Statement of Work", "SOW_Acme_Inc_Statement_of_Work_20260304.docx"},
		{"", "Work Order #7", "SOW_Unnamed_Work_Order_7_20260304.docx"},
		{"O'Brien & Sons", "", "SOW_O_Brien_Sons_Unnamed_20260304.docx"},
		{"snake_case", "x", "SOW_snake_case_x_20260304.docx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Filename(tt.client, tt.title, exportDate, ".docx"))
	}
}

func TestNew_Validation(t *testing.T) {
	keep := types.MergeConfig{Unfilled: types.KeepTokens()}
	_, err := New(types.ExportConfig{MergeConfig: keep, Format: "odt"}, nil)
	assert.Error(t, err)
	_, err = New(types.ExportConfig{MergeConfig: keep, Mode: "fancy"}, nil)
	assert.Error(t, err)
	_, err = New(types.ExportConfig{MergeConfig: types.MergeConfig{Unfilled: types.UnfilledPolicy{Mode: "drop"}}}, nil)
	assert.Error(t, err)
	_, err = New(types.ExportConfig{MergeConfig: types.MergeConfig{Unfilled: types.KeepTokens(), Currency: "NOTACODE"}}, nil)
	assert.Error(t, err)

	_, err = New(types.ExportConfig{}, nil)
	assert.ErrorContains(t, err, "unfilled policy not set")

	e, err := New(types.ExportConfig{MergeConfig: keep}, nil)
	require.NoError(t, err)
	cfg := e.Config()
	assert.Equal(t, types.OutputDOCX, cfg.Format)
	assert.Equal(t, types.ModeStructured, cfg.Mode)
	assert.Equal(t, DefaultClientKey, cfg.ClientKey)
	assert.Equal(t, types.KeepOriginalToken, cfg.Unfilled.Mode)
}

func TestExportDOCX_Structured(t *testing.T) {
	e, _ := newExporter(t, types.ExportConfig{})
	store := newStore(t)
	require.True(t, e.AttachImage(store, types.SlotLogo, pngBytes(t)))

	doc, err := e.ExportDOCX(template(), store, exportDate)
	require.NoError(t, err)
	require.NoError(t, verify.DOCX(doc.Data))

	assert.Equal(t, types.OutputDOCX, doc.Format)
	assert.Equal(t, "SOW_Acme_Inc_Statement_of_Work_20260304.docx", doc.Filename)
	assert.NotEmpty(t, doc.ID)

	got := texts(t, doc.Data)
	assert.Equal(t, "Statement of Work", got[0])
	assert.Contains(t, got, "Client Name: Acme, Inc.")
	assert.Contains(t, got, "Supplier Name: Globex")
	assert.Contains(t, got, "SOW Number: "+types.DefaultBlankMarker)
	assert.Contains(t, got, "Start Date: 05 Jan 2026")
	assert.Contains(t, got, "End Date: "+types.DefaultBlankMarker)
	assert.Contains(t, got, "Client Signer Name: "+types.DefaultBlankMarker)

	files, _, err := archive.ReadAll(doc.Data)
	require.NoError(t, err)
	assert.Contains(t, files, "word/media/image1.png")
}

func TestExportDOCX_Deterministic(t *testing.T) {
	e, _ := newExporter(t, types.ExportConfig{})
	a, err := e.ExportDOCX(template(), newStore(t), exportDate)
	require.NoError(t, err)
	b, err := e.ExportDOCX(template(), newStore(t), exportDate)
	require.NoError(t, err)

	assert.Equal(t, a.Data, b.Data)
	assert.Equal(t, a.Filename, b.Filename)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestExportTemplateDOCX(t *testing.T) {
	e, _ := newExporter(t, types.ExportConfig{Mode: types.ModeTemplate})

	doc, err := e.Export(template(), newStore(t), exportDate)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Statement of Work No. [SOW Number]",
		"This SOW is entered into by Globex and Acme, Inc..",
		"",
		"1. Project Duration",
		"From 05 Jan 2026 to [End Date].",
	}, texts(t, doc.Data))
}

func TestExportTemplateDOCX_FromSource(t *testing.T) {
	src, err := ooxml.Package([]ooxml.Paragraph{
		ooxml.Heading("Parties"),
		ooxml.Text("Client: [Client Name]"),
		ooxml.Text("Ends: [End Date]"),
	}, nil)
	require.NoError(t, err)

	e, _ := newExporter(t, types.ExportConfig{
		Mode:        types.ModeTemplate,
		MergeConfig: types.MergeConfig{Unfilled: types.BlankWith("____")},
	})
	tpl := template()
	tpl.Source = src

	doc, err := e.Export(tpl, newStore(t), exportDate)
	require.NoError(t, err)
	ps, err := ooxml.ExtractParagraphs(doc.Data)
	require.NoError(t, err)
	assert.Equal(t, []ooxml.Paragraph{
		{Text: "Parties", Style: ooxml.StyleHeading1},
		{Text: "Client: Acme, Inc."},
		{Text: "Ends: ____"},
	}, ps)
}

func TestExportTemplateDOCX_BadSource(t *testing.T) {
	e, _ := newExporter(t, types.ExportConfig{Mode: types.ModeTemplate})
	tpl := template()
	tpl.Source = []byte("just text")

	_, err := e.Export(tpl, newStore(t), exportDate)
	assert.ErrorIs(t, err, archive.ErrMalformedContainer)
}

func TestExportPDF(t *testing.T) {
	for _, mode := range []types.ExportMode{types.ModeStructured, types.ModeTemplate} {
		t.Run(string(mode), func(t *testing.T) {
			e, _ := newExporter(t, types.ExportConfig{Format: types.OutputPDF, Mode: mode})
			doc, err := e.Export(template(), newStore(t), exportDate)
			require.NoError(t, err)

			assert.Equal(t, types.OutputPDF, doc.Format)
			assert.True(t, strings.HasSuffix(doc.Filename, ".pdf"))
			pages, err := verify.PDF(doc.Data)
			require.NoError(t, err)
			assert.Equal(t, 1, pages)
			assert.Contains(t, string(doc.Data), "Acme, Inc.")
		})
	}
}

func TestFillAndUnresolved(t *testing.T) {
	e, _ := newExporter(t, types.ExportConfig{})
	store := newStore(t)

	filled := e.Fill(template(), store)
	assert.Contains(t, filled, "entered into by Globex and Acme, Inc..")
	assert.Contains(t, filled, "to [End Date].")
	assert.Equal(t, []string{"sow_number", "end_date"}, e.Unresolved(template(), store))
}

func TestAttachImage_Dropped(t *testing.T) {
	e, log := newExporter(t, types.ExportConfig{})
	store := values.NewStore()

	assert.False(t, e.AttachImage(store, types.SlotLogo, []byte("not an image")))
	_, ok := store.Image(types.SlotLogo)
	assert.False(t, ok)
	assert.Contains(t, log.String(), "dropped: logo image")

	doc, err := e.ExportDOCX(template(), store, exportDate)
	require.NoError(t, err)
	assert.NoError(t, verify.DOCX(doc.Data))
}

func TestLoadImages_DataURL(t *testing.T) {
	e, _ := newExporter(t, types.ExportConfig{})
	store := values.NewStore()
	require.NoError(t, store.SetString("signature", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngBytes(t))))
	require.NoError(t, store.SetString("logo", "https://example.com/logo.png"))

	e.LoadImages(store)

	_, ok := store.Image(types.SlotSignature)
	assert.True(t, ok)
	_, ok = store.Image(types.SlotLogo)
	assert.False(t, ok)
}

func TestWriteDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteDocument(types.GeneratedDocument{Filename: "a.pdf", Data: []byte("%PDF")}, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteDocument_NeverReplaces(t *testing.T) {
	dir := t.TempDir()
	first, err := WriteDocument(types.GeneratedDocument{Filename: "a.pdf", Data: []byte("one")}, dir)
	require.NoError(t, err)
	second, err := WriteDocument(types.GeneratedDocument{Filename: "a.pdf", Data: []byte("two")}, dir)
	require.NoError(t, err)
	third, err := WriteDocument(types.GeneratedDocument{Filename: "a.pdf", Data: []byte("three")}, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "a.pdf"), first)
	assert.Equal(t, filepath.Join(dir, "a_2.pdf"), second)
	assert.Equal(t, filepath.Join(dir, "a_3.pdf"), third)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestExportBatch_CollidingNames(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(a, []byte("supplier_name: Globex\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("supplier_name: Initech\n"), 0o644))

	e, log := newExporter(t, types.ExportConfig{Format: types.OutputPDF})
	outDir := filepath.Join(dir, "out")
	result, docs := e.ExportBatch(template(), []string{a, b}, outDir, exportDate)

	assert.Equal(t, BatchResult{Exported: 2}, result)
	require.Len(t, docs, 2)
	assert.Equal(t, "SOW_Unnamed_Statement_of_Work_20260304.pdf", docs[0].Filename)
	assert.Equal(t, "SOW_Unnamed_Statement_of_Work_20260304_2.pdf", docs[1].Filename)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Contains(t, log.String(),
		"exported: b.yaml -> SOW_Unnamed_Statement_of_Work_20260304_2.pdf (SOW_Unnamed_Statement_of_Work_20260304.pdf already exists)")
}

func TestExportBatch(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "acme.yaml")
	other := filepath.Join(dir, "globex.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(good, []byte("client_name: Acme\n"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("client_name: Globex\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("client_name: [unclosed\n"), 0o644))

	e, log := newExporter(t, types.ExportConfig{})
	outDir := filepath.Join(dir, "out")
	result, docs := e.ExportBatch(template(), []string{good, bad, other, filepath.Join(dir, "missing.yaml")}, outDir, exportDate)

	assert.Equal(t, BatchResult{Exported: 2, Failed: 2}, result)
	assert.Equal(t, 4, result.Total())
	assert.True(t, result.HasFailures())
	require.Len(t, docs, 2)
	assert.Equal(t, "SOW_Acme_Statement_of_Work_20260304.docx", docs[0].Filename)
	assert.Equal(t, "SOW_Globex_Statement_of_Work_20260304.docx", docs[1].Filename)

	_, err := os.Stat(filepath.Join(outDir, docs[0].Filename))
	assert.NoError(t, err)

	out := log.String()
	assert.Contains(t, out, "exported: acme.yaml -> SOW_Acme_Statement_of_Work_20260304.docx")
	assert.Contains(t, out, "failed:  bad.yaml")
	assert.Contains(t, out, "Batch summary: 2 exported, 2 failed (total: 4)")
}

func TestErrSerializationInvariant_Wraps(t *testing.T) {
	err := errors.Join(ErrSerializationInvariant, verify.ErrDanglingReference)
	assert.ErrorIs(t, err, ErrSerializationInvariant)
}

func TestExportFile_DefaultImages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client_name: Acme\n"), 0o644))

	e, _ := newExporter(t, types.ExportConfig{})
	scratch := values.NewStore()
	require.True(t, e.AttachImage(scratch, types.SlotLogo, pngBytes(t)))
	e.UseImages(scratch.Images()...)

	doc, _, err := e.ExportFile(template(), path, filepath.Join(dir, "out"), exportDate)
	require.NoError(t, err)
	files, _, err := archive.ReadAll(doc.Data)
	require.NoError(t, err)
	assert.Contains(t, files, "word/media/image1.png")
}
