// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdf writes a minimal single-page PDF of text lines.
//
// The file has exactly six objects in a fixed order: font, content stream,
// resources, page, pages, catalog. Offsets are taken from the output buffer
// as each object is written, so the xref table always agrees with the
// bytes.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
)

// Page geometry in points.
const (
	PageWidth  = 612
	PageHeight = 792
	Margin     = 72
	FontSize   = 11
	Leading    = 14
)

// ObjectCount is the number of indirect objects in every generated file.
const ObjectCount = 6

// Object numbers.
const (
	objFont = iota + 1
	objContents
	objResources
	objPage
	objPages
	objCatalog
)

// MaxLines is how many lines fit between the top and bottom margins.
const MaxLines = (PageHeight - 2*Margin) / Leading

// BuildSinglePage renders lines top to bottom in 11 pt Helvetica, one
// line per T* advance. Lines past MaxLines fall below the bottom margin.
func BuildSinglePage(lines []string) []byte {
	content := contentStream(lines)

	objects := [ObjectCount]string{
		objFont - 1:      "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		objContents - 1:  fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		objResources - 1: fmt.Sprintf("<< /Font << /F1 %d 0 R >> >>", objFont),
		objPage - 1: fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %d %d] /Resources %d 0 R /Contents %d 0 R >>",
			objPages, PageWidth, PageHeight, objResources, objContents),
		objPages - 1:   fmt.Sprintf("<< /Type /Pages /Kids [%d 0 R] /Count 1 >>", objPage),
		objCatalog - 1: fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", objPages),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xE2\xE3\xCF\xD3\n")

	offsets := make([]int, ObjectCount)
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefPos := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", ObjectCount+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\n", ObjectCount+1, objCatalog)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefPos)
	return buf.Bytes()
}

func contentStream(lines []string) string {
	var b strings.Builder
	b.WriteString("BT\n")
	fmt.Fprintf(&b, "/F1 %d Tf\n%d TL\n", FontSize, Leading)
	fmt.Fprintf(&b, "%d %d Td\n", Margin, PageHeight-Margin)
	for i, line := range lines {
		if i > 0 {
			b.WriteString("T*\n")
		}
		b.WriteString("(")
		b.WriteString(Escape(line))
		b.WriteString(") Tj\n")
	}
	b.WriteString("ET")
	return b.String()
}

// winAnsiExtra maps the non-Latin-1 characters of WinAnsiEncoding.
var winAnsiExtra = map[rune]byte{
	'€': 0x80, '‚': 0x82, 'ƒ': 0x83, '„': 0x84, '…': 0x85, '†': 0x86, '‡': 0x87,
	'ˆ': 0x88, '‰': 0x89, 'Š': 0x8A, '‹': 0x8B, 'Œ': 0x8C, 'Ž': 0x8E,
	'‘': 0x91, '’': 0x92, '“': 0x93, '”': 0x94, '•': 0x95, '–': 0x96, '—': 0x97,
	'˜': 0x98, '™': 0x99, 'š': 0x9A, '›': 0x9B, 'œ': 0x9C, 'ž': 0x9E, 'Ÿ': 0x9F,
	'\uf0b7': 0x95,
}

// Escape encodes s as the body of a PDF literal string in WinAnsi.
// Backslash and parentheses are escaped, a carriage return becomes \r,
// tabs expand to four spaces and other line breaks to a space. Bytes
// above 0x7E are written as octal escapes; runes WinAnsi lacks become "?".
// The "o" of every "obj" is escaped so object headers only occur where
// the xref table points.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r == 'o' && strings.HasPrefix(s[i+1:], "bj"):
			b.WriteString(`\157`)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '(':
			b.WriteString(`\(`)
		case r == ')':
			b.WriteString(`\)`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString("    ")
		case r == '\n' || r == '\f' || r == '\v':
			b.WriteByte(' ')
		case r >= 0x20 && r <= 0x7E:
			b.WriteRune(r)
		case r >= 0xA0 && r <= 0xFF:
			fmt.Fprintf(&b, `\%03o`, r)
		default:
			if c, ok := winAnsiExtra[r]; ok {
				fmt.Fprintf(&b, `\%03o`, c)
				continue
			}
			b.WriteByte('?')
		}
	}
	return b.String()
}

// Wrap breaks lines longer than width runes at spaces. Words longer than
// width are split.
func Wrap(lines []string, width int) []string {
	if width <= 0 {
		return lines
	}
	var out []string
	for _, line := range lines {
		r := []rune(line)
		for len(r) > width {
			cut := width
			for i := width; i > 0; i-- {
				if r[i] == ' ' {
					cut = i
					break
				}
			}
			out = append(out, strings.TrimRight(string(r[:cut]), " "))
			r = r[cut:]
			for len(r) > 0 && r[0] == ' ' {
				r = r[1:]
			}
		}
		out = append(out, string(r))
	}
	return out
}
