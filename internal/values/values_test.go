// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package values

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sowgen/pkg/types"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		in      string
		want    Path
		wantErr bool
	}{
		{in: "client_name", want: Path{{Name: "client_name"}}},
		{in: "a.b.c", want: Path{{Name: "a"}, {Name: "b"}, {Name: "c"}}},
		{in: "items[2].name", want: Path{{Name: "items"}, {Index: 2, IsIndex: true}, {Name: "name"}}},
		{in: "grid[1][0]", want: Path{{Name: "grid"}, {Index: 1, IsIndex: true}, {Index: 0, IsIndex: true}}},
		{in: "", wantErr: true},
		{in: "a..b", wantErr: true},
		{in: "a[x]", wantErr: true},
		{in: "a[1", wantErr: true},
		{in: "a[1]b", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePath(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestStore_SetGet(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.SetString("client_name", "Acme"))
	require.NoError(t, s.SetString("project_duration.start_date", "2026-01-05"))
	require.NoError(t, s.Set("deliverables[1]", String("Report")))

	v, ok := s.Get("client_name")
	require.True(t, ok)
	assert.Equal(t, String("Acme"), v)

	v, ok = s.Get("project_duration.start_date")
	require.True(t, ok)
	assert.Equal(t, String("2026-01-05"), v)

	v, ok = s.Get("deliverables")
	require.True(t, ok)
	assert.Equal(t, List{Null{}, String("Report")}, v)

	_, ok = s.Get("project_duration.end_date")
	assert.False(t, ok)
	_, ok = s.Get("client_name.first")
	assert.False(t, ok)
}

func TestStore_SetConflict(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.SetString("client_name", "Acme"))
	assert.Error(t, s.SetString("client_name.first", "x"))
	assert.Error(t, s.Set("[0]", String("x")))
}

func TestParse_KeepsOrderAndTypes(t *testing.T) {
	data := []byte(`
client_name: Acme
hourly_rate: 150.50
po_number: 0042
active: true
notes: ~
deliverables:
  - Design
  - Build
authorization_signatures:
  client_signer_name: Jane Roe
  client_signed_date: 2026-02-01
`)
	s, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"client_name", "hourly_rate", "po_number", "active", "notes", "deliverables", "authorization_signatures",
	}, s.Root().Keys())

	v, _ := s.Get("hourly_rate")
	assert.Equal(t, Number{Float: 150.5, Literal: "150.50"}, v)
	v, _ = s.Get("active")
	assert.Equal(t, Bool(true), v)
	v, _ = s.Get("notes")
	assert.Equal(t, Null{}, v)
	v, _ = s.Get("deliverables[1]")
	assert.Equal(t, String("Build"), v)
	v, _ = s.Get("authorization_signatures.client_signed_date")
	assert.Equal(t, String("2026-02-01"), v)
}

func TestParse_JSONAndDottedKeys(t *testing.T) {
	s, err := Parse([]byte(`{"project_duration.start_date": "2026-03-01", "client_name": "Acme"}`))
	require.NoError(t, err)

	v, ok := s.Get("project_duration.start_date")
	require.True(t, ok)
	assert.Equal(t, String("2026-03-01"), v)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("- a\n- b\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("key: [unclosed"))
	assert.Error(t, err)

	s, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Root().Len())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client_name: Acme\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	v, _ := s.Get("client_name")
	assert.Equal(t, String("Acme"), v)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestFromMap(t *testing.T) {
	s, err := FromMap(map[string]any{
		"client_name":         "Acme",
		"rate":                120,
		"scope.summary":       "Build it",
		"tags":                []any{"a", "b"},
		"authorization.dates": map[string]any{"client": "2026-01-01"},
	})
	require.NoError(t, err)

	v, _ := s.Get("rate")
	assert.Equal(t, Number{Float: 120, Literal: "120"}, v)
	v, _ = s.Get("scope.summary")
	assert.Equal(t, String("Build it"), v)
	v, _ = s.Get("authorization.dates.client")
	assert.Equal(t, String("2026-01-01"), v)

	_, err = FromMap(map[string]any{"bad": struct{}{}})
	assert.Error(t, err)
}

func TestIsEmpty(t *testing.T) {
	obj := NewObject()
	obj.Set("a", String(" "))
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(Null{}))
	assert.True(t, IsEmpty(String("  \n")))
	assert.True(t, IsEmpty(List{String(""), Null{}}))
	assert.True(t, IsEmpty(obj))
	assert.False(t, IsEmpty(String("x")))
	assert.False(t, IsEmpty(Number{}))
	assert.False(t, IsEmpty(Bool(false)))
}

func TestImages_Order(t *testing.T) {
	s := NewStore()
	s.SetImage(types.ImageSlot{Name: "stamp"})
	s.SetImage(types.ImageSlot{Name: types.SlotSignature})
	s.SetImage(types.ImageSlot{Name: types.SlotLogo})

	var names []string
	for _, img := range s.Images() {
		names = append(names, img.Name)
	}
	assert.Equal(t, []string{"logo", "signature", "stamp"}, names)

	_, ok := s.Image("logo")
	assert.True(t, ok)
	_, ok = s.Image("missing")
	assert.False(t, ok)
}
