package appointment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hackgods/clinic-admin/internal/clinic"
	"github.com/hackgods/clinic-admin/internal/selection"
)

// Draft is the raw, unvalidated content of the add-appointment form.
type Draft struct {
	PatientName string
	Age         string
	Diagnosis   string
	Doctor      string
	Date        string
	Time        string
	Meridiem    string // optional, AM or PM when Time is 12-hour
}

// IsZero reports whether no field has content.
func (d Draft) IsZero() bool {
	return d == Draft{}
}

// Validate checks fields in form order and reports the first problem.
// The doctor must be in eligible, the set offered for the diagnosis.
func (d Draft) Validate(eligible []clinic.Doctor, now time.Time) (clinic.NewAppointment, error) {
	name := strings.TrimSpace(d.PatientName)
	if name == "" {
		return clinic.NewAppointment{}, clinic.NewValidationError("patient_name", "is required")
	}

	ageRaw := strings.TrimSpace(d.Age)
	if ageRaw == "" {
		return clinic.NewAppointment{}, clinic.NewValidationError("age", "is required")
	}
	age, err := strconv.Atoi(ageRaw)
	if err != nil || age <= 0 {
		return clinic.NewAppointment{}, clinic.NewValidationError("age", fmt.Sprintf("%q is not a positive whole number", d.Age))
	}

	diagnosis := strings.TrimSpace(d.Diagnosis)
	if diagnosis == "" {
		return clinic.NewAppointment{}, clinic.NewValidationError("diagnosis", "is required")
	}

	if d.Doctor == "" {
		return clinic.NewAppointment{}, clinic.NewValidationError("doctor", "is required")
	}
	if !selection.Contains(eligible, d.Doctor) {
		return clinic.NewAppointment{}, clinic.NewValidationError("doctor", fmt.Sprintf("%s is not available for %s", d.Doctor, diagnosis))
	}

	if strings.TrimSpace(d.Date) == "" {
		return clinic.NewAppointment{}, clinic.NewValidationError("date", "is required")
	}
	date, err := parseDate(d.Date)
	if err != nil {
		return clinic.NewAppointment{}, clinic.NewValidationError("date", err.Error())
	}

	if strings.TrimSpace(d.Time) == "" {
		return clinic.NewAppointment{}, clinic.NewValidationError("time", "is required")
	}
	clock, err := ParseClock(d.Time, d.Meridiem)
	if err != nil {
		return clinic.NewAppointment{}, clinic.NewValidationError("time", err.Error())
	}

	return clinic.NewAppointment{
		PatientName: name,
		Age:         age,
		Diagnosis:   diagnosis,
		Doctor:      d.Doctor,
		Date:        date,
		Time:        clock,
		CreatedAt:   now.UTC(),
	}, nil
}
