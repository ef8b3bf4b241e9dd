// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sowgen/internal/archive"
	"github.com/pdiddy/sowgen/internal/ooxml"
	"github.com/pdiddy/sowgen/internal/pdf"
	"github.com/pdiddy/sowgen/pkg/types"
)

func logo() types.ImageSlot {
	return types.ImageSlot{Name: types.SlotLogo, Data: []byte{0x89, 'P', 'N', 'G'}, Ext: "png", WidthPx: 10, HeightPx: 10}
}

func TestDOCX_Generated(t *testing.T) {
	b, err := ooxml.Package([]ooxml.Paragraph{ooxml.Image(types.SlotLogo), ooxml.Text("Hello")}, []types.ImageSlot{logo()})
	require.NoError(t, err)
	assert.NoError(t, DOCX(b))
}

func TestDOCX_MissingPart(t *testing.T) {
	m, err := ooxml.Build(ooxml.Paragraphs([]string{"x"}), nil)
	require.NoError(t, err)

	broken := archive.NewFileMap()
	for _, name := range m.Names() {
		if name == ooxml.StylesPart {
			continue
		}
		data, _ := m.Get(name)
		broken.Add(name, data)
	}
	b, err := archive.Build(broken)
	require.NoError(t, err)
	assert.ErrorIs(t, DOCX(b), ErrMissingPart)
}

func TestDOCX_DanglingEmbed(t *testing.T) {
	m, err := ooxml.Build([]ooxml.Paragraph{ooxml.Image(types.SlotLogo)}, []types.ImageSlot{logo()})
	require.NoError(t, err)

	rels, _ := m.Get(ooxml.DocumentRelsPart)
	m.Add(ooxml.DocumentRelsPart, bytes.Replace(rels, []byte(`Id="rId2"`), []byte(`Id="rId9"`), 1))
	b, err := archive.Build(m)
	require.NoError(t, err)
	assert.ErrorIs(t, DOCX(b), ErrDanglingReference)
}

func TestDOCX_MissingMedia(t *testing.T) {
	m, err := ooxml.Build([]ooxml.Paragraph{ooxml.Image(types.SlotLogo)}, []types.ImageSlot{logo()})
	require.NoError(t, err)

	broken := archive.NewFileMap()
	for _, name := range m.Names() {
		if name == "word/media/image1.png" {
			continue
		}
		data, _ := m.Get(name)
		broken.Add(name, data)
	}
	b, err := archive.Build(broken)
	require.NoError(t, err)
	assert.ErrorIs(t, DOCX(b), ErrDanglingReference)
}

func TestDOCX_NotZip(t *testing.T) {
	assert.ErrorIs(t, DOCX([]byte("Name: [Client Name]")), archive.ErrMalformedContainer)
}

func TestPDF_Generated(t *testing.T) {
	pages, err := PDF(pdf.BuildSinglePage([]string{"Statement of Work", "Client: Acme (Pty) Ltd", "Total: €1,500.00"}))
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestPDF_ShiftedOffsets(t *testing.T) {
	b := pdf.BuildSinglePage([]string{"Hello"})
	shifted := bytes.Replace(b, []byte("1 0 obj\n"), []byte("1 0 obj\n\n"), 1)
	_, err := PDF(shifted)
	assert.ErrorIs(t, err, ErrXrefMismatch)
}
