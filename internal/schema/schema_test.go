// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sowgen/internal/segment"
	"github.com/pdiddy/sowgen/pkg/types"
)

const transcript = `Statement of Work No. [SOW Number]
This SOW is entered into by [Supplier Name] and [Client Name].

2. Deliverables
- [Deliverable One]
- Weekly status report

1. Project Duration
Work begins on [Kickoff Date].

3. Charges
The hourly rate is [Hourly Rate].

4. Change Control
Changes require written approval.

Authorization
Signed for and on behalf of the supplier.
`

func keys(fields []types.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Key
	}
	return out
}

func intp(n int) *int { return &n }

func TestFromTranscript_Structure(t *testing.T) {
	s := FromTranscript(transcript, "sow-basic", "Basic SOW")

	assert.Equal(t, "sow-basic", s.TemplateID)
	assert.Equal(t, "Basic SOW", s.Title)
	assert.Equal(t, []string{
		"statement_of_work_no",
		"project_duration",
		"deliverables",
		"charges",
		"change_control_details",
		AuthorizationKey,
	}, keys(s.Fields))
	require.NoError(t, s.Validate())
}

func TestBuild_GroupsAndCollapses(t *testing.T) {
	s := FromTranscript(transcript, "t", "T")

	sow, ok := s.Lookup("statement_of_work_no")
	require.True(t, ok)
	assert.Equal(t, types.KindObject, sow.Kind)
	assert.Equal(t, []string{"sow_number", "supplier_name", "client_name"}, keys(sow.Properties))

	cc, ok := s.Lookup("change_control_details")
	require.True(t, ok)
	assert.Equal(t, types.KindScalar, cc.Kind)
	assert.Equal(t, types.FieldTextarea, cc.Type)

	item, ok := s.Lookup("deliverables.deliverables_items")
	require.True(t, ok)
	assert.Equal(t, types.KindList, item.Kind)
}

func TestBuild_ProjectDurationNormalized(t *testing.T) {
	s := FromTranscript(transcript, "t", "T")

	pd, ok := s.Lookup("project_duration")
	require.True(t, ok)
	assert.Equal(t, types.KindObject, pd.Kind)
	assert.Equal(t, []string{"start_date", "end_date"}, keys(pd.Properties))
	for _, p := range pd.Properties {
		assert.Equal(t, types.FieldDate, p.Type)
	}
	_, ok = s.Lookup("project_duration.kickoff_date")
	assert.False(t, ok, "raw fields of the duration section are replaced")
}

func TestBuild_AppendsAuthorization(t *testing.T) {
	s := FromTranscript("1. Parties\n[Client Name] and [Supplier Name]", "t", "T")

	last := s.Fields[len(s.Fields)-1]
	assert.Equal(t, AuthorizationKey, last.Key)
	assert.Equal(t, []string{
		"supplier_signer_name", "supplier_signed_date",
		"client_signer_name", "client_signed_date",
	}, keys(last.Properties))

	count := 0
	for _, f := range s.Fields {
		if f.Key == AuthorizationKey {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestBuild_OrdinalSort(t *testing.T) {
	sections := []types.Section{
		{Title: "Intro", Fields: []types.Field{types.Scalar("intro", "Intro", types.FieldText)}},
		{Title: "Third", Ordinal: intp(3), Fields: []types.Field{types.Scalar("third", "Third", types.FieldText)}},
		{Title: "Note", Fields: []types.Field{types.Scalar("note", "Note", types.FieldText)}},
		{Title: "First", Ordinal: intp(1), Fields: []types.Field{types.Scalar("first", "First", types.FieldText)}},
		{Title: "Second", Ordinal: intp(2), Fields: []types.Field{types.Scalar("second", "Second", types.FieldText)}},
	}
	s := Build(sections, "t", "T")

	assert.Equal(t, []string{"intro", "first", "second", "third", "note", AuthorizationKey}, keys(s.Fields))
}

func TestBuild_UniqueKeys(t *testing.T) {
	sections := []types.Section{
		{Title: "A", Fields: []types.Field{types.Scalar("name", "Name", types.FieldText)}},
		{Title: "B", Fields: []types.Field{types.Scalar("name", "Name", types.FieldText)}},
		{Title: "C", Fields: []types.Field{types.Scalar("name", "Name", types.FieldText)}},
	}
	s := Build(sections, "t", "T")

	assert.Equal(t, []string{"name", "name_2", "name_3", AuthorizationKey}, keys(s.Fields))
	require.NoError(t, s.Validate())
}

func TestBuild_HoistsNestedObjects(t *testing.T) {
	s := FromTranscript("1. Term\n[Term Notes]\nFrom the start date to the end date.", "t", "T")

	assert.Equal(t, []string{"term_notes", "term_dates", AuthorizationKey}, keys(s.Fields))
}

func TestBuild_Idempotent(t *testing.T) {
	a := FromTranscript(transcript, "t", "T")
	b := FromTranscript(transcript, "t", "T")
	assert.Equal(t, a, b)

	again := Build(segment.Segment(transcript), "t", "T")
	assert.Equal(t, a, again)
}

func TestFlattenAndPathIndex(t *testing.T) {
	s := FromTranscript(transcript, "t", "T")

	entries := Flatten(s)
	require.NotEmpty(t, entries)
	assert.Equal(t, "statement_of_work_no.sow_number", entries[0].Path)

	idx := PathIndex(s)
	assert.Equal(t, "statement_of_work_no.client_name", idx["client_name"])
	assert.Equal(t, "charges.hourly_rate", idx["hourly_rate"])
	assert.Equal(t, "change_control_details", idx["change_control_details"])
	assert.Equal(t, AuthorizationKey+".client_signer_name", idx["client_signer_name"])
}
