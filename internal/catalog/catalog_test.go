package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSpecializations_GeneralFirst(t *testing.T) {
	s := New([]string{"Cardiology", "General", "Neurology", "Cardiology", ""}, nil)

	assert.Equal(t, []string{"General", "Cardiology", "Neurology"}, s.ListSpecializations())
}

func TestDefaultCatalog(t *testing.T) {
	s := NewDefault()

	labels := s.ListSpecializations()
	require.NotEmpty(t, labels)
	assert.Equal(t, General, labels[0])
	assert.True(t, s.Contains("Cardiology"))
	assert.False(t, s.Contains("cardiology"))
	assert.False(t, s.Contains("Cardiologist"))
}

func TestCanonical(t *testing.T) {
	s := NewDefault()

	l, ok := s.Canonical("Cardiologist")
	assert.True(t, ok)
	assert.Equal(t, "Cardiology", l)

	l, ok = s.Canonical("ENT")
	assert.True(t, ok)
	assert.Equal(t, "ENT", l)

	_, ok = s.Canonical("cardiologist")
	assert.False(t, ok)
}

func TestAliasToUnknownLabelIsDropped(t *testing.T) {
	s := New([]string{"Cardiology"}, map[string]string{"Oncologist": "Oncology"})

	_, ok := s.Canonical("Oncologist")
	assert.False(t, ok)
}

func TestSpecializationFor_LastUpsertWins(t *testing.T) {
	s := NewDefault()

	assert.Equal(t, Unknown, s.SpecializationFor("Dr. Smith"))

	s.Upsert("Dr. Smith", "Cardiology")
	s.Upsert("Dr. Smith", "Neurology")
	s.Upsert("Dr. Jones", "ENT")

	assert.Equal(t, "Neurology", s.SpecializationFor("Dr. Smith"))
	assert.Equal(t, "ENT", s.SpecializationFor("Dr. Jones"))
	assert.Equal(t, 2, s.Len())
}

func TestRename_MovesEntry(t *testing.T) {
	s := NewDefault()
	s.Upsert("Dr. Smith", "Cardiology")

	s.Rename("Dr. Smith", "Dr. Smith-Jones", "Cardiology")

	assert.Equal(t, Unknown, s.SpecializationFor("Dr. Smith"))
	assert.Equal(t, "Cardiology", s.SpecializationFor("Dr. Smith-Jones"))
	assert.Equal(t, 1, s.Len())
}

func TestRename_SameNameUpdatesLabel(t *testing.T) {
	s := NewDefault()
	s.Upsert("Dr. Smith", "Cardiology")

	s.Rename("Dr. Smith", "Dr. Smith", "Neurology")

	assert.Equal(t, "Neurology", s.SpecializationFor("Dr. Smith"))
	assert.Equal(t, 1, s.Len())
}

func TestRemove(t *testing.T) {
	s := NewDefault()
	s.Upsert("Dr. Smith", "Cardiology")

	assert.True(t, s.Remove("Dr. Smith"))
	assert.False(t, s.Remove("Dr. Smith"))
	assert.Equal(t, Unknown, s.SpecializationFor("Dr. Smith"))
	assert.Zero(t, s.Len())
}

func TestReset_FirstMatchWins(t *testing.T) {
	s := NewDefault()
	s.Upsert("Dr. Gone", "ENT")

	s.Reset([]Entry{
		{Name: "Dr. Smith", Specialization: "Cardiology"},
		{Name: "Dr. Smith", Specialization: "Neurology"},
		{Name: "", Specialization: "ENT"},
	})

	assert.Equal(t, "Cardiology", s.SpecializationFor("Dr. Smith"))
	assert.Equal(t, Unknown, s.SpecializationFor("Dr. Gone"))
	assert.Equal(t, 1, s.Len())
}

func TestImport(t *testing.T) {
	s := NewDefault()

	err := s.Import(strings.NewReader(`[
		{"name": "Dr. Smith", "specialization": "Cardiologist"},
		{"name": "Dr. Lee", "specialization": "ENT"}
	]`))
	require.NoError(t, err)

	assert.Equal(t, "Cardiology", s.SpecializationFor("Dr. Smith"))
	assert.Equal(t, "ENT", s.SpecializationFor("Dr. Lee"))
}

func TestImport_RejectsUnknownLabel(t *testing.T) {
	s := NewDefault()
	s.Upsert("Dr. Kept", "ENT")

	err := s.Import(strings.NewReader(`[{"name": "Dr. X", "specialization": "Astrology"}]`))
	require.Error(t, err)

	// a failed import leaves the index alone
	assert.Equal(t, "ENT", s.SpecializationFor("Dr. Kept"))
}
