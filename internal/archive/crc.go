// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

// crcTable is the reflected table for polynomial 0xEDB88320. It is built
// once at package init and only read afterwards.
var crcTable = makeCRCTable(0xEDB88320)

func makeCRCTable(poly uint32) *[256]uint32 {
	t := new([256]uint32)
	for i := range t {
		c := uint32(i)
		for k := 0; k < 8; k++ {
			if c&1 == 1 {
				c = poly ^ (c >> 1)
			} else {
				c >>= 1
			}
		}
		t[i] = c
	}
	return t
}

// CRC32 returns the IEEE CRC-32 of b as stored in ZIP headers.
func CRC32(b []byte) uint32 {
	c := ^uint32(0)
	for _, x := range b {
		c = crcTable[byte(c)^x] ^ (c >> 8)
	}
	return ^c
}
