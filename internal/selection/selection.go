package selection

import (
	"github.com/hackgods/clinic-admin/internal/catalog"
	"github.com/hackgods/clinic-admin/internal/clinic"
)

// Eligible returns the doctors that may be assigned to an appointment with
// the selected diagnosis. An empty selection or General returns every doctor.
// Otherwise a doctor qualifies when its joined specialization equals the
// catalog label for the selection, compared exactly. Order is preserved.
func Eligible(doctors []clinic.Doctor, cat *catalog.Store, selected string) []clinic.Doctor {
	if selected == "" || selected == catalog.General {
		out := make([]clinic.Doctor, len(doctors))
		copy(out, doctors)
		return out
	}

	want := selected
	if l, ok := cat.Canonical(selected); ok {
		want = l
	}

	out := make([]clinic.Doctor, 0, len(doctors))
	for _, d := range doctors {
		if Joined(d, cat) == want {
			out = append(out, d)
		}
	}
	return out
}

// Joined is the specialization a doctor is filtered on: the one carried by
// the record, resolved through the catalog, or the catalog index entry for
// its name when the record has none.
func Joined(d clinic.Doctor, cat *catalog.Store) string {
	if d.Specialization == "" {
		return cat.SpecializationFor(d.Name)
	}
	if l, ok := cat.Canonical(d.Specialization); ok {
		return l
	}
	return d.Specialization
}

// Contains reports whether a doctor with the given name is in the set.
func Contains(eligible []clinic.Doctor, name string) bool {
	for _, d := range eligible {
		if d.Name == name {
			return true
		}
	}
	return false
}
