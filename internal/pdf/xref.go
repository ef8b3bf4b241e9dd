// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// XrefEntry is one line of a cross-reference table.
type XrefEntry struct {
	Offset     int
	Generation int
	InUse      bool
}

// Xref reads the cross-reference table that startxref points at.
func Xref(pdf []byte) ([]XrefEntry, error) {
	i := bytes.LastIndex(pdf, []byte("startxref"))
	if i < 0 {
		return nil, fmt.Errorf("reading xref: no startxref")
	}
	fields := strings.Fields(string(pdf[i+len("startxref"):]))
	if len(fields) == 0 {
		return nil, fmt.Errorf("reading xref: startxref has no offset")
	}
	pos, err := strconv.Atoi(fields[0])
	if err != nil || pos < 0 || pos >= len(pdf) {
		return nil, fmt.Errorf("reading xref: bad startxref offset %q", fields[0])
	}
	if !bytes.HasPrefix(pdf[pos:], []byte("xref")) {
		return nil, fmt.Errorf("reading xref: startxref %d does not point at an xref table", pos)
	}

	lines := strings.Split(string(pdf[pos:]), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("reading xref: truncated table")
	}
	var first, count int
	if _, err := fmt.Sscanf(lines[1], "%d %d", &first, &count); err != nil {
		return nil, fmt.Errorf("reading xref: subsection header %q: %w", lines[1], err)
	}
	if first != 0 || len(lines) < 2+count {
		return nil, fmt.Errorf("reading xref: unsupported or truncated subsection %q", lines[1])
	}

	entries := make([]XrefEntry, 0, count)
	for n, line := range lines[2 : 2+count] {
		// Each entry is 20 bytes including the newline Split removed.
		if len(line) != 19 {
			return nil, fmt.Errorf("reading xref: entry %d is %d bytes, want 20", n, len(line)+1)
		}
		off, err1 := strconv.Atoi(line[0:10])
		gen, err2 := strconv.Atoi(line[11:16])
		if err1 != nil || err2 != nil || (line[17] != 'n' && line[17] != 'f') {
			return nil, fmt.Errorf("reading xref: malformed entry %d %q", n, line)
		}
		entries = append(entries, XrefEntry{Offset: off, Generation: gen, InUse: line[17] == 'n'})
	}
	return entries, nil
}

// CheckOffsets verifies that every in-use xref entry N points at the
// start of a line reading "N 0 obj", and that no earlier byte sequence
// reads "N 0 obj".
func CheckOffsets(pdf []byte) error {
	entries, err := Xref(pdf)
	if err != nil {
		return err
	}
	for n, e := range entries {
		if !e.InUse {
			continue
		}
		tok := fmt.Sprintf("%d 0 obj", n)
		if e.Offset <= 0 || e.Offset >= len(pdf) || !bytes.HasPrefix(pdf[e.Offset:], []byte(tok)) || pdf[e.Offset-1] != '\n' {
			return fmt.Errorf("object %d: xref offset %d does not start %q", n, e.Offset, tok)
		}
		if first := bytes.Index(pdf, []byte(tok)); first != e.Offset {
			return fmt.Errorf("object %d: %q first occurs at %d, xref offset is %d", n, tok, first, e.Offset)
		}
	}
	return nil
}
