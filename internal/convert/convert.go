// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert loads template transcripts from plain-text or .docx
// files.
package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/sowgen/internal/export"
	"github.com/pdiddy/sowgen/internal/ooxml"
	"github.com/pdiddy/sowgen/internal/placeholder"
)

// ErrNotText is returned when a transcript file is neither UTF-8 text nor
// a .docx package.
var ErrNotText = errors.New("not a text transcript")

// Converter turns the raw bytes of a template file into transcript text.
type Converter interface {
	Convert(data []byte) (string, error)
}

// TextConverter reads UTF-8 text, normalizing line endings and dropping a
// byte order mark.
type TextConverter struct{}

// Convert implements Converter.
func (TextConverter) Convert(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrNotText
	}
	s := strings.TrimPrefix(string(data), "\ufeff")
	return strings.ReplaceAll(s, "\r\n", "\n"), nil
}

// DOCXConverter extracts one transcript line per paragraph of a .docx.
type DOCXConverter struct{}

// Convert implements Converter.
func (DOCXConverter) Convert(data []byte) (string, error) {
	return ooxml.ExtractText(data)
}

var zipMagic = []byte("PK\x03\x04")

// ForFile picks a converter from the file extension, falling back to the
// content when the extension is unknown.
func ForFile(path string, data []byte) Converter {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return DOCXConverter{}
	case ".txt", ".md", ".text":
		return TextConverter{}
	}
	if bytes.HasPrefix(data, zipMagic) {
		return DOCXConverter{}
	}
	return TextConverter{}
}

// Load reads a template file. The id and title come from the file name;
// a .docx keeps its bytes as the template source.
func Load(path string) (export.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return export.Template{}, fmt.Errorf("reading %s: %w", path, err)
	}
	c := ForFile(path, data)
	text, err := c.Convert(data)
	if err != nil {
		return export.Template{}, fmt.Errorf("converting %s: %w", filepath.Base(path), err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	tpl := export.Template{
		ID:         TemplateID(base),
		Title:      Title(base),
		Transcript: text,
	}
	if _, ok := c.(DOCXConverter); ok {
		tpl.Source = data
	}
	return tpl, nil
}

var nonID = regexp.MustCompile(`[^a-z0-9]+`)

// TemplateID derives a lowercase, dash-separated id from a file name.
func TemplateID(name string) string {
	id := strings.Trim(nonID.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if id == "" {
		return "template"
	}
	return id
}

// Title derives a display title from a file name: separators become
// spaces and words are title-cased.
func Title(name string) string {
	name = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(name)
	name = placeholder.CollapseSpace(name)
	if name == "" {
		return "Untitled"
	}
	return cases.Title(language.English, cases.NoLower).String(name)
}

// BatchResult holds the outcome of a batch load.
type BatchResult struct {
	Loaded int
	Failed int
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Loaded + r.Failed
}

// HasFailures reports whether any file failed to load.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// LoadBatch loads each path, printing per-file status to w. Templates are
// returned in input order for the files that loaded.
func LoadBatch(paths []string, w io.Writer) ([]export.Template, BatchResult) {
	var (
		result BatchResult
		tpls   []export.Template
	)
	for _, p := range paths {
		base := filepath.Base(p)
		tpl, err := Load(p)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "loaded: %s (%d placeholders)\n", base, len(placeholder.Extract(tpl.Transcript)))
		result.Loaded++
		tpls = append(tpls, tpl)
	}
	fmt.Fprintf(w, "\nBatch summary: %d loaded, %d failed (total: %d)\n",
		result.Loaded, result.Failed, result.Total())
	return tpls, result
}
