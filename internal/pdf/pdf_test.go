// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdf

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var objToken = regexp.MustCompile(`(?m)^\d+ 0 obj`)

func TestBuildSinglePage_ScenarioD(t *testing.T) {
	b := BuildSinglePage([]string{"Hello"})

	assert.Len(t, objToken.FindAll(b, -1), 6)

	entries, err := Xref(b)
	require.NoError(t, err)
	require.Len(t, entries, 7)
	assert.False(t, entries[0].InUse)
	assert.Equal(t, 65535, entries[0].Generation)
	for _, e := range entries[1:] {
		assert.True(t, e.InUse)
	}
	assert.Contains(t, string(b), "xref\n0 7\n0000000000 65535 f \n")
	assert.Contains(t, string(b), "(Hello) Tj")
}

func TestBuildSinglePage_OffsetsMatchIndex(t *testing.T) {
	inputs := [][]string{
		nil,
		{"Hello"},
		{"Statement of Work", "Client: Acme (Pty) Ltd", `C:\path`, "\ttabbed", "Café – naïve €5"},
		strings.Split(strings.Repeat("line of text\n", 80), "\n"),
		{"Ref: see 3 0 obj in annex", "4 0 obj\n5 0 obj", "endobj objects"},
	}
	for i, lines := range inputs {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			b := BuildSinglePage(lines)
			entries, err := Xref(b)
			require.NoError(t, err)
			for n := 1; n < len(entries); n++ {
				assert.Equal(t, bytes.Index(b, []byte(fmt.Sprintf("%d 0 obj", n))), entries[n].Offset, "object %d", n)
			}
			assert.NoError(t, CheckOffsets(b))
		})
	}
}

func TestBuildSinglePage_Layout(t *testing.T) {
	b := string(BuildSinglePage([]string{"one", "two", "three"}))

	assert.True(t, strings.HasPrefix(b, "%PDF-1.4\n"))
	assert.True(t, strings.HasSuffix(b, "%%EOF\n"))
	assert.Contains(t, b, "/MediaBox [0 0 612 792]")
	assert.Contains(t, b, "/BaseFont /Helvetica")
	assert.Contains(t, b, "trailer\n<< /Size 7 /Root 6 0 R >>")
	assert.Equal(t, 2, strings.Count(b, "T*\n"))

	order := []string{"/Type /Font", "stream", "/Font << /F1", "/Type /Page ", "/Type /Pages", "/Type /Catalog"}
	last := -1
	for _, s := range order {
		i := strings.Index(b, s)
		assert.Greater(t, i, last, s)
		last = i
	}
}

func TestBuildSinglePage_StreamLength(t *testing.T) {
	b := string(BuildSinglePage([]string{"Hello", "World"}))
	m := regexp.MustCompile(`/Length (\d+) >>\nstream\n`).FindStringSubmatchIndex(b)
	require.NotNil(t, m)
	var n int
	_, err := fmt.Sscan(b[m[2]:m[3]], &n)
	require.NoError(t, err)
	start := m[1]
	assert.Equal(t, "\nendstream", b[start+n:start+n+len("\nendstream")])
}

func TestBuildSinglePage_Deterministic(t *testing.T) {
	assert.Equal(t, BuildSinglePage([]string{"a", "b"}), BuildSinglePage([]string{"a", "b"}))
}

func TestEscape(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{`a\b`, `a\\b`},
		{"(x)", `\(x\)`},
		{"a\rb", `a\rb`},
		{"a\tb", "a    b"},
		{"a\nb", "a b"},
		{"é", `\351`},
		{"€", `\200`},
		{"\u2022 item", `\225 item`},
		{"日本", "??"},
		{"see 3 0 obj", `see 3 0 \157bj`},
		{"endobj", `end\157bj`},
		{"object", "object"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Escape(tt.in), tt.in)
	}
}

func TestXref_Errors(t *testing.T) {
	_, err := Xref([]byte("%PDF-1.4\n"))
	assert.Error(t, err)
	_, err = Xref([]byte("%PDF-1.4\nstartxref\n3\n%%EOF"))
	assert.Error(t, err)

	b := BuildSinglePage([]string{"x"})
	broken := bytes.Replace(b, []byte("00000 n \n"), []byte("00000 n\n"), 1)
	_, err = Xref(broken)
	assert.Error(t, err)
}

func TestCheckOffsets_DetectsShift(t *testing.T) {
	b := BuildSinglePage([]string{"x"})
	shifted := append([]byte("%"), b...)
	assert.Error(t, CheckOffsets(shifted))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"aaa bbb", "ccc"}, Wrap([]string{"aaa bbb ccc"}, 8))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, Wrap([]string{"abcdefghij"}, 4))
	assert.Equal(t, []string{"short", ""}, Wrap([]string{"short", ""}, 10))
	assert.Equal(t, []string{"x"}, Wrap([]string{"x"}, 0))
}

func TestMaxLines(t *testing.T) {
	assert.Equal(t, 46, MaxLines)
}

func TestCheckOffsets_EarlierObjectHeader(t *testing.T) {
	b := BuildSinglePage([]string{"xxxxxxx"})
	require.NoError(t, CheckOffsets(b))

	// Same length, so every xref offset still lands on its header.
	forged := bytes.Replace(b, []byte("(xxxxxxx)"), []byte("(3 0 obj)"), 1)
	assert.Error(t, CheckOffsets(forged))
}
