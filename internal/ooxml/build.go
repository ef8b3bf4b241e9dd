// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ooxml builds and reads minimal WordprocessingML packages.
//
// Build produces the five required parts plus media; the archive package
// turns the resulting FileMap into bytes. ExtractParagraphs goes the other
// way and recovers paragraph text from an uploaded .docx.
package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/pdiddy/sowgen/internal/archive"
	"github.com/pdiddy/sowgen/pkg/types"
)

// Package part names.
const (
	ContentTypesPart = "[Content_Types].xml"
	RootRelsPart     = "_rels/.rels"
	DocumentPart     = "word/document.xml"
	DocumentRelsPart = "word/_rels/document.xml.rels"
	StylesPart       = "word/styles.xml"
)

// EMUPerPixel converts 96 DPI pixels to English Metric Units.
const EMUPerPixel = 9525

// stylesRelID is reserved; image relationships are numbered after it.
const stylesRelID = "rId1"

// Paragraph styles defined in styles.xml.
const (
	StyleNormal   = ""
	StyleTitle    = "Title"
	StyleHeading1 = "Heading1"
	StyleHeading2 = "Heading2"
)

// Paragraph is one <w:p>. A paragraph with Image set renders the named
// image slot instead of text.
type Paragraph struct {
	Text  string
	Style string
	Image string
}

// Text returns a plain paragraph.
func Text(s string) Paragraph { return Paragraph{Text: s} }

// Heading returns a Heading1 paragraph.
func Heading(s string) Paragraph { return Paragraph{Text: s, Style: StyleHeading1} }

// Image returns a paragraph holding the named image slot.
func Image(slot string) Paragraph { return Paragraph{Image: slot} }

// Paragraphs wraps plain lines.
func Paragraphs(lines []string) []Paragraph {
	out := make([]Paragraph, len(lines))
	for i, l := range lines {
		out[i] = Text(l)
	}
	return out
}

type embedded struct {
	slot   types.ImageSlot
	relID  string
	target string
	docPr  int
}

// Build assembles the package parts for paragraphs and images. Images are
// embedded in the order given; each gets the next relationship id after
// the styles relationship. An image no paragraph references is placed in
// its own paragraph at the end of the body. A paragraph referencing an
// unknown slot is dropped.
func Build(paragraphs []Paragraph, images []types.ImageSlot) (*archive.FileMap, error) {
	embeds := make([]embedded, 0, len(images))
	bySlot := make(map[string]*embedded, len(images))
	for i, img := range images {
		if img.Name == "" {
			return nil, fmt.Errorf("building package: image %d has no slot name", i)
		}
		if _, dup := bySlot[img.Name]; dup {
			return nil, fmt.Errorf("building package: duplicate image slot %q", img.Name)
		}
		ext := mediaExt(img)
		if ext == "" {
			return nil, fmt.Errorf("building package: image %s has unsupported type %q", img.Name, img.Ext)
		}
		embeds = append(embeds, embedded{
			slot:   img,
			relID:  fmt.Sprintf("rId%d", i+2),
			target: fmt.Sprintf("media/image%d.%s", i+1, ext),
			docPr:  i + 1,
		})
	}
	for i := range embeds {
		bySlot[embeds[i].slot.Name] = &embeds[i]
	}

	referenced := make(map[string]bool)
	for _, p := range paragraphs {
		if p.Image != "" {
			referenced[p.Image] = true
		}
	}
	body := paragraphs
	for _, e := range embeds {
		if !referenced[e.slot.Name] {
			body = append(body[:len(body):len(body)], Image(e.slot.Name))
		}
	}

	m := archive.NewFileMap()
	m.AddString(ContentTypesPart, contentTypesXML)
	m.AddString(RootRelsPart, rootRelsXML)
	m.Add(DocumentPart, documentXML(body, bySlot))
	m.Add(DocumentRelsPart, documentRelsXML(embeds))
	m.AddString(StylesPart, stylesXML)
	for _, e := range embeds {
		m.Add("word/"+e.target, e.slot.Data)
	}
	return m, nil
}

// Package builds the parts and serializes them with archive.Build.
func Package(paragraphs []Paragraph, images []types.ImageSlot) ([]byte, error) {
	m, err := Build(paragraphs, images)
	if err != nil {
		return nil, err
	}
	return archive.Build(m)
}

func mediaExt(img types.ImageSlot) string {
	switch strings.ToLower(img.Ext) {
	case "png":
		return "png"
	case "jpg", "jpeg":
		return "jpeg"
	default:
		return ""
	}
}

func documentXML(paragraphs []Paragraph, images map[string]*embedded) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<w:document xmlns:w="` + nsW + `" xmlns:r="` + nsR + `" xmlns:wp="` + nsWP + `" xmlns:a="` + nsA + `" xmlns:pic="` + nsPic + `">`)
	b.WriteString(`<w:body>`)
	for _, p := range paragraphs {
		if p.Image != "" {
			e, ok := images[p.Image]
			if !ok {
				continue
			}
			writeDrawing(&b, e)
			continue
		}
		writeParagraph(&b, p)
	}
	b.WriteString(`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/>`)
	b.WriteString(`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/></w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.Bytes()
}

func writeParagraph(b *bytes.Buffer, p Paragraph) {
	b.WriteString(`<w:p>`)
	if p.Style != StyleNormal {
		b.WriteString(`<w:pPr><w:pStyle w:val="`)
		escape(b, p.Style)
		b.WriteString(`"/></w:pPr>`)
	}
	for i, line := range strings.Split(p.Text, "\n") {
		b.WriteString(`<w:r>`)
		if i > 0 {
			b.WriteString(`<w:br/>`)
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		escape(b, line)
		b.WriteString(`</w:t></w:r>`)
	}
	b.WriteString(`</w:p>`)
}

func writeDrawing(b *bytes.Buffer, e *embedded) {
	cx := int64(e.slot.WidthPx) * EMUPerPixel
	cy := int64(e.slot.HeightPx) * EMUPerPixel
	var name bytes.Buffer
	escape(&name, e.slot.Name)

	fmt.Fprintf(b, `<w:p><w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`)
	fmt.Fprintf(b, `<wp:extent cx="%d" cy="%d"/>`, cx, cy)
	fmt.Fprintf(b, `<wp:docPr id="%d" name="%s"/>`, e.docPr, name.String())
	fmt.Fprintf(b, `<a:graphic><a:graphicData uri="%s"><pic:pic>`, nsPic)
	fmt.Fprintf(b, `<pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`, e.docPr, name.String())
	fmt.Fprintf(b, `<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`, e.relID)
	fmt.Fprintf(b, `<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, cx, cy)
	fmt.Fprintf(b, `<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`)
	fmt.Fprintf(b, `</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`)
}

func documentRelsXML(embeds []embedded) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<Relationships xmlns="` + nsPkgRels + `">`)
	fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="styles.xml"/>`, stylesRelID, relStyles)
	for _, e := range embeds {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, e.relID, relImage, e.target)
	}
	b.WriteString(`</Relationships>`)
	return b.Bytes()
}

func escape(b *bytes.Buffer, s string) {
	// EscapeText only fails on writer errors; bytes.Buffer never returns one.
	_ = xml.EscapeText(b, []byte(s))
}
