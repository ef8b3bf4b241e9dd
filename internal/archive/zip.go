// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive writes and reads the ZIP containers that carry OOXML
// packages. Entries are always stored uncompressed with a zero DOS
// timestamp, so the same FileMap always yields the same bytes.
package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Record signatures and fixed sizes.
const (
	localHeaderSig   = 0x04034b50
	centralHeaderSig = 0x02014b50
	endRecordSig     = 0x06054b50

	LocalHeaderLen   = 30
	CentralHeaderLen = 46
	EndRecordLen     = 22

	versionNeeded = 20
	methodStored  = 0
)

// FileMap is an ordered set of archive entries. Later Adds of an existing
// name replace the content but keep the original position.
type FileMap struct {
	names []string
	data  map[string][]byte
}

// NewFileMap returns an empty FileMap.
func NewFileMap() *FileMap {
	return &FileMap{data: make(map[string][]byte)}
}

// Add stores content under name.
func (m *FileMap) Add(name string, content []byte) {
	if _, ok := m.data[name]; !ok {
		m.names = append(m.names, name)
	}
	m.data[name] = content
}

// AddString stores a text entry.
func (m *FileMap) AddString(name, content string) {
	m.Add(name, []byte(content))
}

// Get returns the content stored under name.
func (m *FileMap) Get(name string) ([]byte, bool) {
	b, ok := m.data[name]
	return b, ok
}

// Names returns entry names in insertion order.
func (m *FileMap) Names() []string {
	return append([]string(nil), m.names...)
}

// Len returns the number of entries.
func (m *FileMap) Len() int { return len(m.names) }

type centralEntry struct {
	name   []byte
	crc    uint32
	size   uint32
	offset uint32
}

// Build serializes m as a ZIP archive: one local header plus content per
// entry, then the central directory, then the end record.
func Build(m *FileMap) ([]byte, error) {
	if m.Len() > math.MaxUint16 {
		return nil, fmt.Errorf("building zip: %d entries exceed the 65535 limit", m.Len())
	}

	var buf bytes.Buffer
	entries := make([]centralEntry, 0, m.Len())
	for _, name := range m.names {
		content := m.data[name]
		if len(name) > math.MaxUint16 {
			return nil, fmt.Errorf("building zip: entry name too long: %.40s...", name)
		}
		if uint64(len(content)) > math.MaxUint32 {
			return nil, fmt.Errorf("building zip: entry %s exceeds 4 GiB", name)
		}
		if uint64(buf.Len()) > math.MaxUint32 {
			return nil, fmt.Errorf("building zip: archive exceeds 4 GiB at entry %s", name)
		}
		e := centralEntry{
			name:   []byte(name),
			crc:    CRC32(content),
			size:   uint32(len(content)),
			offset: uint32(buf.Len()),
		}
		writeLocalHeader(&buf, e)
		buf.Write(e.name)
		buf.Write(content)
		entries = append(entries, e)
	}

	cdOffset := buf.Len()
	for _, e := range entries {
		writeCentralHeader(&buf, e)
		buf.Write(e.name)
	}
	cdSize := buf.Len() - cdOffset
	if uint64(buf.Len()) > math.MaxUint32 {
		return nil, fmt.Errorf("building zip: central directory beyond 4 GiB")
	}

	writeEndRecord(&buf, len(entries), cdSize, cdOffset)
	return buf.Bytes(), nil
}

func writeLocalHeader(buf *bytes.Buffer, e centralEntry) {
	var h [LocalHeaderLen]byte
	le := binary.LittleEndian
	le.PutUint32(h[0:], localHeaderSig)
	le.PutUint16(h[4:], versionNeeded)
	le.PutUint16(h[6:], 0) // flags
	le.PutUint16(h[8:], methodStored)
	le.PutUint16(h[10:], 0) // mod time
	le.PutUint16(h[12:], 0) // mod date
	le.PutUint32(h[14:], e.crc)
	le.PutUint32(h[18:], e.size)
	le.PutUint32(h[22:], e.size)
	le.PutUint16(h[26:], uint16(len(e.name)))
	le.PutUint16(h[28:], 0) // extra length
	buf.Write(h[:])
}

func writeCentralHeader(buf *bytes.Buffer, e centralEntry) {
	var h [CentralHeaderLen]byte
	le := binary.LittleEndian
	le.PutUint32(h[0:], centralHeaderSig)
	le.PutUint16(h[4:], versionNeeded) // version made by
	le.PutUint16(h[6:], versionNeeded)
	le.PutUint16(h[8:], 0)
	le.PutUint16(h[10:], methodStored)
	le.PutUint16(h[12:], 0)
	le.PutUint16(h[14:], 0)
	le.PutUint32(h[16:], e.crc)
	le.PutUint32(h[20:], e.size)
	le.PutUint32(h[24:], e.size)
	le.PutUint16(h[28:], uint16(len(e.name)))
	// extra, comment, disk start, internal and external attributes stay 0
	le.PutUint32(h[42:], e.offset)
	buf.Write(h[:])
}

func writeEndRecord(buf *bytes.Buffer, count, cdSize, cdOffset int) {
	var h [EndRecordLen]byte
	le := binary.LittleEndian
	le.PutUint32(h[0:], endRecordSig)
	le.PutUint16(h[8:], uint16(count))
	le.PutUint16(h[10:], uint16(count))
	le.PutUint32(h[12:], uint32(cdSize))
	le.PutUint32(h[16:], uint32(cdOffset))
	buf.Write(h[:])
}

// EndRecord holds the fields of the end-of-central-directory record.
type EndRecord struct {
	Entries         int
	DirectorySize   uint32
	DirectoryOffset uint32
}

// ReadEndRecord decodes the 22-byte end record at the tail of b. Archives
// with a trailing comment are not supported.
func ReadEndRecord(b []byte) (EndRecord, error) {
	if len(b) < EndRecordLen {
		return EndRecord{}, fmt.Errorf("reading end record: archive too short (%d bytes)", len(b))
	}
	tail := b[len(b)-EndRecordLen:]
	le := binary.LittleEndian
	if le.Uint32(tail) != endRecordSig {
		return EndRecord{}, fmt.Errorf("reading end record: bad signature %#08x", le.Uint32(tail))
	}
	return EndRecord{
		Entries:         int(le.Uint16(tail[10:])),
		DirectorySize:   le.Uint32(tail[12:]),
		DirectoryOffset: le.Uint32(tail[16:]),
	}, nil
}
