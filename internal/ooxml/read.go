// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ooxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/sowgen/internal/archive"
	"github.com/pdiddy/sowgen/internal/merge"
	"github.com/pdiddy/sowgen/pkg/types"
)

// ExtractParagraphs returns the paragraphs of word/document.xml. Run text
// is concatenated so placeholders split across runs come back whole; tabs
// and breaks become "\t" and "\n". Empty paragraphs are kept so blank-line
// spacing survives; paragraphs holding only a drawing are skipped.
func ExtractParagraphs(docx []byte) ([]Paragraph, error) {
	files, _, err := archive.ReadAll(docx)
	if err != nil {
		return nil, err
	}
	doc, ok := files[DocumentPart]
	if !ok {
		return nil, fmt.Errorf("reading docx: %s not found in archive", DocumentPart)
	}
	return parseDocument(doc)
}

// ExtractText returns the document as transcript text, one line per
// paragraph.
func ExtractText(docx []byte) (string, error) {
	ps, err := ExtractParagraphs(docx)
	if err != nil {
		return "", err
	}
	lines := make([]string, len(ps))
	for i, p := range ps {
		lines[i] = p.Text
	}
	return strings.Join(lines, "\n"), nil
}

func parseDocument(doc []byte) ([]Paragraph, error) {
	decoder := xml.NewDecoder(bytes.NewReader(doc))
	var (
		out     []Paragraph
		text    strings.Builder
		style   string
		inPara  bool
		inText  bool
		hasText bool
		drawing bool
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", DocumentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != nsW {
				continue
			}
			switch t.Name.Local {
			case "p":
				inPara = true
				hasText = false
				drawing = false
				text.Reset()
				style = ""
			case "pStyle":
				if inPara {
					style = attr(t, "val")
				}
			case "t":
				inText = inPara
				hasText = hasText || inPara
			case "drawing", "pict":
				drawing = drawing || inPara
			case "tab":
				if inPara {
					text.WriteByte('\t')
				}
			case "br", "cr":
				if inPara {
					text.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Space != nsW {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara && (hasText || text.Len() > 0 || !drawing) {
					out = append(out, Paragraph{Text: text.String(), Style: style})
				}
				inPara = false
			}
		}
	}
	return out, nil
}

func attr(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// FillTemplate substitutes placeholders in every paragraph of an uploaded
// .docx and rebuilds a package with the same paragraph text and styles.
// Images are embedded after the body text.
func FillTemplate(docx []byte, resolve merge.Resolver, policy types.UnfilledPolicy, images []types.ImageSlot) (*archive.FileMap, error) {
	ps, err := ExtractParagraphs(docx)
	if err != nil {
		return nil, err
	}
	for i := range ps {
		ps[i].Text = merge.Substitute(ps[i].Text, resolve, policy)
	}
	return Build(ps, images)
}
