package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hackgods/clinic-admin/internal/catalog"
	"github.com/hackgods/clinic-admin/internal/clinic"
)

func fixture() ([]clinic.Doctor, *catalog.Store) {
	cat := catalog.NewDefault()
	cat.Upsert("Dr. Legacy", "Cardiology")

	doctors := []clinic.Doctor{
		{ID: "1", Name: "Dr. Smith", Specialization: "Cardiology"},
		{ID: "2", Name: "Dr. Lee", Specialization: "ENT"},
		{ID: "3", Name: "Dr. Legacy"},
		{ID: "4", Name: "Dr. Old", Specialization: "Cardiologist"},
		{ID: "5", Name: "Dr. Lower", Specialization: "cardiology"},
		{ID: "6", Name: "Dr. Brown", Specialization: "General"},
	}
	return doctors, cat
}

func ids(ds []clinic.Doctor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.ID)
	}
	return out
}

func TestEligible_GeneralOrEmptyReturnsAll(t *testing.T) {
	doctors, cat := fixture()

	for _, sel := range []string{"", "General"} {
		got := Eligible(doctors, cat, sel)
		assert.Equal(t, doctors, got, "selection %q", sel)
	}
}

func TestEligible_ReturnsCopy(t *testing.T) {
	doctors, cat := fixture()

	got := Eligible(doctors, cat, "")
	got[0].Name = "changed"

	assert.Equal(t, "Dr. Smith", doctors[0].Name)
}

func TestEligible_ExactMatchPreservesOrder(t *testing.T) {
	doctors, cat := fixture()

	got := Eligible(doctors, cat, "Cardiology")

	// lower-case "cardiology" is not a label and does not match
	assert.Equal(t, []string{"1", "3", "4"}, ids(got))
}

func TestEligible_DiagnosisAlias(t *testing.T) {
	doctors, cat := fixture()

	assert.Equal(t, []string{"1", "3", "4"}, ids(Eligible(doctors, cat, "Cardiologist")))
}

func TestEligible_NoMatch(t *testing.T) {
	doctors, cat := fixture()

	assert.Empty(t, Eligible(doctors, cat, "Neurology"))
	assert.Empty(t, Eligible(nil, cat, "Neurology"))
}

func TestJoined_UnknownWhenMissingEverywhere(t *testing.T) {
	cat := catalog.NewDefault()

	assert.Equal(t, catalog.Unknown, Joined(clinic.Doctor{Name: "Dr. Nobody"}, cat))
}

func TestContains(t *testing.T) {
	doctors, _ := fixture()

	assert.True(t, Contains(doctors, "Dr. Lee"))
	assert.False(t, Contains(doctors, "Dr. Who"))
}
