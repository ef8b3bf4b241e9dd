// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_ScenarioC(t *testing.T) {
	m := NewFileMap()
	m.AddString("a.txt", "hi")

	b, err := Build(m)
	require.NoError(t, err)

	tail := b[len(b)-EndRecordLen:]
	assert.Equal(t, []byte{0x50, 0x4B, 0x05, 0x06}, tail[:4])

	end, err := ReadEndRecord(b)
	require.NoError(t, err)
	assert.Equal(t, 1, end.Entries)
	assert.Equal(t, uint32(LocalHeaderLen+len("a.txt")+len("hi")), end.DirectoryOffset)
	assert.Equal(t, uint32(CentralHeaderLen+len("a.txt")), end.DirectorySize)
	assert.Len(t, b, LocalHeaderLen+5+2+CentralHeaderLen+5+EndRecordLen)
}

func TestBuild_RoundTrip(t *testing.T) {
	m := NewFileMap()
	m.AddString("[Content_Types].xml", "<Types/>")
	m.AddString("word/document.xml", "<w:document>héllo</w:document>")
	m.Add("word/media/image1.png", []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3})
	m.Add("empty.bin", nil)

	b, err := Build(m)
	require.NoError(t, err)

	files, names, err := ReadAll(b)
	require.NoError(t, err)
	assert.Equal(t, m.Names(), names)
	for _, name := range m.Names() {
		want, _ := m.Get(name)
		assert.True(t, bytes.Equal(want, files[name]), name)
	}
}

func TestBuild_CentralOffsets(t *testing.T) {
	m := NewFileMap()
	m.AddString("one", "first")
	m.AddString("two", "second entry")

	b, err := Build(m)
	require.NoError(t, err)
	end, err := ReadEndRecord(b)
	require.NoError(t, err)

	le := binary.LittleEndian
	pos := int(end.DirectoryOffset)
	for i := 0; i < end.Entries; i++ {
		require.Equal(t, uint32(centralHeaderSig), le.Uint32(b[pos:]))
		nameLen := int(le.Uint16(b[pos+28:]))
		local := int(le.Uint32(b[pos+42:]))
		assert.Equal(t, uint32(localHeaderSig), le.Uint32(b[local:]), "entry %d", i)
		assert.Equal(t, b[pos+CentralHeaderLen:pos+CentralHeaderLen+nameLen], b[local+LocalHeaderLen:local+LocalHeaderLen+nameLen])
		pos += CentralHeaderLen + nameLen
	}
	assert.Equal(t, len(b)-EndRecordLen, pos)
}

func TestBuild_Deterministic(t *testing.T) {
	build := func() []byte {
		m := NewFileMap()
		m.AddString("b", "2")
		m.AddString("a", "1")
		b, err := Build(m)
		require.NoError(t, err)
		return b
	}
	assert.Equal(t, build(), build())
}

func TestFileMap_ReplaceKeepsOrder(t *testing.T) {
	m := NewFileMap()
	m.AddString("a", "1")
	m.AddString("b", "2")
	m.AddString("a", "3")

	assert.Equal(t, []string{"a", "b"}, m.Names())
	got, _ := m.Get("a")
	assert.Equal(t, "3", string(got))
}

func TestCRC32(t *testing.T) {
	inputs := [][]byte{nil, []byte("hi"), []byte("The quick brown fox jumps over the lazy dog"), bytes.Repeat([]byte{0xff}, 1000)}
	for _, in := range inputs {
		assert.Equal(t, crc32.ChecksumIEEE(in), CRC32(in))
	}
	assert.Equal(t, uint32(0x414fa339), CRC32([]byte("The quick brown fox jumps over the lazy dog")))
}

func TestCheckContainer(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		kind ContainerKind
		ok   bool
	}{
		{name: "zip", in: []byte{0x50, 0x4B, 0x03, 0x04, 0}, ok: true},
		{name: "empty", in: nil, kind: KindEmpty},
		{name: "transcript", in: []byte("Statement of Work\n1. Scope\n[Client Name]\n"), kind: KindPlainText},
		{name: "pdf", in: []byte("%PDF-1.4\n\x00\x01\x02binary"), kind: KindUnknownBinary},
		{name: "png", in: []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, kind: KindUnknownBinary},
		{name: "large png", in: append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, bytes.Repeat([]byte{0x00, 0x9c, 0xff}, 300)...), kind: KindUnknownBinary},
		{name: "large transcript", in: append(bytes.Repeat([]byte("a"), sniffLen-1), []byte("é and more text")...), kind: KindPlainText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckContainer(tt.in)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedContainer))
			var ce *ContainerError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.kind, ce.Kind)
		})
	}
}

func TestCheckContainer_Messages(t *testing.T) {
	err := CheckContainer([]byte("plain words"))
	assert.Contains(t, err.Error(), "plain-text transcript")

	err = CheckContainer([]byte{0xff, 0xfe, 0x00})
	assert.Contains(t, err.Error(), "unrelated binary")
}

func TestReadAll_RejectsText(t *testing.T) {
	_, _, err := ReadAll([]byte("not a zip"))
	assert.ErrorIs(t, err, ErrMalformedContainer)
}

func TestReadEndRecord_Errors(t *testing.T) {
	_, err := ReadEndRecord([]byte("short"))
	assert.Error(t, err)
	_, err = ReadEndRecord(make([]byte, 40))
	assert.Error(t, err)
}
