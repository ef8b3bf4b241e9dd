// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrMalformedContainer reports bytes that are not a ZIP archive.
var ErrMalformedContainer = errors.New("malformed container")

// ContainerKind describes what non-ZIP input looks like.
type ContainerKind string

const (
	KindEmpty         ContainerKind = "empty"
	KindPlainText     ContainerKind = "plain-text"
	KindUnknownBinary ContainerKind = "unknown-binary"
)

// ContainerError is returned by CheckContainer. It matches
// ErrMalformedContainer with errors.Is.
type ContainerError struct {
	Kind ContainerKind
	Size int
}

func (e *ContainerError) Error() string {
	switch e.Kind {
	case KindPlainText:
		return "malformed container: input looks like a plain-text transcript, not a .docx file; pass it as text instead"
	case KindEmpty:
		return "malformed container: input is empty"
	default:
		return fmt.Sprintf("malformed container: %d bytes of unrelated binary data, not a .docx (ZIP) file", e.Size)
	}
}

func (e *ContainerError) Unwrap() error { return ErrMalformedContainer }

var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// sniffLen bounds how much input is inspected to classify non-ZIP data.
const sniffLen = 512

// CheckContainer verifies that b starts with a ZIP local file header. It
// runs before any parsing.
func CheckContainer(b []byte) error {
	if len(b) == 0 {
		return &ContainerError{Kind: KindEmpty}
	}
	if bytes.HasPrefix(b, zipMagic) {
		return nil
	}
	if looksLikeText(b) {
		return &ContainerError{Kind: KindPlainText, Size: len(b)}
	}
	return &ContainerError{Kind: KindUnknownBinary, Size: len(b)}
}

func looksLikeText(b []byte) bool {
	if len(b) > sniffLen {
		b = b[:sniffLen]
		// A cut may split a rune; drop at most its partial tail.
		for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
			if utf8.RuneStart(b[len(b)-i]) {
				if !utf8.FullRune(b[len(b)-i:]) {
					b = b[:len(b)-i]
				}
				break
			}
		}
	}
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if r == 0 || (r < 0x20 && r != '\n' && r != '\r' && r != '\t' && r != '\f') {
			return false
		}
	}
	return true
}

// ReadAll opens b with archive/zip and returns every entry's content plus
// the entry names in archive order.
func ReadAll(b []byte) (map[string][]byte, []string, error) {
	if err := CheckContainer(b); err != nil {
		return nil, nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, nil, fmt.Errorf("opening zip: %w", err)
	}
	files := make(map[string][]byte, len(zr.File))
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		content, err := readEntry(f)
		if err != nil {
			return nil, nil, err
		}
		files[f.Name] = content
		names = append(names, f.Name)
	}
	return files, names, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return content, nil
}
