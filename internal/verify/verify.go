// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify re-reads generated documents and checks the structural
// invariants their writers promise. A failure here is a writer bug, never
// a user error.
package verify

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/sowgen/internal/archive"
	"github.com/pdiddy/sowgen/internal/ooxml"
	"github.com/pdiddy/sowgen/internal/pdf"
)

// Sentinel errors for invariant violations.
var (
	ErrMissingPart        = errors.New("required package part missing")
	ErrDanglingReference  = errors.New("dangling relationship reference")
	ErrXrefMismatch       = errors.New("xref offset mismatch")
	ErrStructurallyBroken = errors.New("document fails structural validation")
)

const nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

func init() {
	// Keep pdfcpu from creating a config directory under $HOME.
	model.ConfigPath = "disable"
}

// RequiredParts lists the parts every generated package carries.
var RequiredParts = []string{
	ooxml.ContentTypesPart,
	ooxml.RootRelsPart,
	ooxml.DocumentPart,
	ooxml.DocumentRelsPart,
	ooxml.StylesPart,
}

// DOCX checks that b is a readable ZIP, that the required parts exist, and
// that every r:embed in the document body resolves to a relationship
// whose target is in the archive.
func DOCX(b []byte) error {
	files, _, err := archive.ReadAll(b)
	if err != nil {
		return fmt.Errorf("reading package: %w", err)
	}
	for _, p := range RequiredParts {
		if _, ok := files[p]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingPart, p)
		}
	}

	rels, err := relationships(files[ooxml.DocumentRelsPart])
	if err != nil {
		return err
	}
	for id, target := range rels {
		if _, ok := files[path.Join("word", target)]; !ok {
			return fmt.Errorf("%w: relationship %s targets missing part word/%s", ErrDanglingReference, id, target)
		}
	}

	embeds, err := embedIDs(files[ooxml.DocumentPart])
	if err != nil {
		return err
	}
	for _, id := range embeds {
		if _, ok := rels[id]; !ok {
			return fmt.Errorf("%w: r:embed %q has no relationship", ErrDanglingReference, id)
		}
	}
	return nil
}

func relationships(data []byte) (map[string]string, error) {
	var doc struct {
		Items []struct {
			ID         string `xml:"Id,attr"`
			Target     string `xml:"Target,attr"`
			TargetMode string `xml:"TargetMode,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ooxml.DocumentRelsPart, err)
	}
	rels := make(map[string]string, len(doc.Items))
	for _, r := range doc.Items {
		if r.TargetMode == "External" {
			continue
		}
		rels[r.ID] = r.Target
	}
	return rels, nil
}

func embedIDs(doc []byte) ([]string, error) {
	var ids []string
	d := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return ids, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", ooxml.DocumentPart, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		for _, a := range se.Attr {
			if a.Name.Space == nsR && (a.Name.Local == "embed" || a.Name.Local == "id" || a.Name.Local == "link") {
				ids = append(ids, a.Value)
			}
		}
	}
}

// PDF checks that every xref offset lands on its "N 0 obj" token and that
// pdfcpu accepts the file in relaxed validation mode. It returns the page
// count.
func PDF(b []byte) (int, error) {
	if err := pdf.CheckOffsets(b); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrXrefMismatch, err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadContext(bytes.NewReader(b), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: pdfcpu read: %v", ErrStructurallyBroken, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return 0, fmt.Errorf("%w: pdfcpu validate: %v", ErrStructurallyBroken, err)
	}
	return ctx.PageCount, nil
}
