package appointment

import (
	"context"
	"fmt"
	"sync"

	"github.com/hackgods/clinic-admin/internal/catalog"
	"github.com/hackgods/clinic-admin/internal/clinic"
	"github.com/hackgods/clinic-admin/internal/selection"
)

type State int

const (
	StateEmpty State = iota
	StateEditing
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Field string

const (
	FieldPatientName Field = "patient_name"
	FieldAge         Field = "age"
	FieldDiagnosis   Field = "diagnosis"
	FieldDoctor      Field = "doctor"
	FieldDate        Field = "date"
	FieldTime        Field = "time"
	FieldMeridiem    Field = "meridiem"
)

// DoctorSource provides the current doctor list, normally *doctor.Registry.
type DoctorSource interface {
	Doctors() []clinic.Doctor
}

// Form is the add-appointment form:
//
//	Empty -> Editing -> Submitting -> Empty (committed)
//	                              \-> Editing (rejected, Err set)
//
// The chosen doctor is cleared whenever it falls out of the eligible set.
type Form struct {
	registry *Registry
	doctors  DoctorSource
	catalog  *catalog.Store

	mu    sync.Mutex
	state State
	draft Draft
	err   error
}

func NewForm(registry *Registry, doctors DoctorSource, cat *catalog.Store) *Form {
	return &Form{
		registry: registry,
		doctors:  doctors,
		catalog:  cat,
	}
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Err is the error of the last rejected submission, nil otherwise.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Eligible is the doctor set offered for the current diagnosis.
func (f *Form) Eligible() []clinic.Doctor {
	f.mu.Lock()
	diagnosis := f.draft.Diagnosis
	f.mu.Unlock()
	return selection.Eligible(f.doctors.Doctors(), f.catalog, diagnosis)
}

// Set changes one field. A doctor outside the eligible set is refused.
func (f *Form) Set(field Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return clinic.ErrSubmissionInFlight
	}

	switch field {
	case FieldPatientName:
		f.draft.PatientName = value
	case FieldAge:
		f.draft.Age = value
	case FieldDiagnosis:
		f.draft.Diagnosis = value
	case FieldDoctor:
		if value != "" {
			eligible := selection.Eligible(f.doctors.Doctors(), f.catalog, f.draft.Diagnosis)
			if !selection.Contains(eligible, value) {
				return clinic.NewValidationError(string(FieldDoctor), fmt.Sprintf("%s is not available for %s", value, f.draft.Diagnosis))
			}
		}
		f.draft.Doctor = value
	case FieldDate:
		f.draft.Date = value
	case FieldTime:
		f.draft.Time = value
	case FieldMeridiem:
		f.draft.Meridiem = value
	default:
		return fmt.Errorf("unknown form field %q", field)
	}

	f.state = StateEditing
	f.err = nil
	f.reconcileLocked()
	return nil
}

// Reconcile clears the chosen doctor if it is no longer eligible. Call it
// after the doctor list or catalog changed.
func (f *Form) Reconcile() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconcileLocked()
}

func (f *Form) reconcileLocked() {
	if f.draft.Doctor == "" {
		return
	}
	eligible := selection.Eligible(f.doctors.Doctors(), f.catalog, f.draft.Diagnosis)
	if !selection.Contains(eligible, f.draft.Doctor) {
		f.draft.Doctor = ""
	}
}

// Reset discards the draft. It is refused while a submission is in flight.
func (f *Form) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return clinic.ErrSubmissionInFlight
	}
	f.state = StateEmpty
	f.draft = Draft{}
	f.err = nil
	return nil
}

// Submit sends the draft. On success the form is cleared; on failure it
// stays in Editing with Err set. A second Submit while the first is in
// flight fails with clinic.ErrSubmissionInFlight.
func (f *Form) Submit(ctx context.Context) (clinic.Appointment, error) {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return clinic.Appointment{}, clinic.ErrSubmissionInFlight
	}
	draft := f.draft
	eligible := selection.Eligible(f.doctors.Doctors(), f.catalog, draft.Diagnosis)
	f.state = StateSubmitting
	f.mu.Unlock()

	a, err := f.registry.Add(ctx, draft, eligible)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateEditing
		f.err = err
		return clinic.Appointment{}, err
	}
	f.state = StateEmpty
	f.draft = Draft{}
	f.err = nil
	return a, nil
}
