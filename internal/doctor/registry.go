package doctor

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-admin/internal/catalog"
	"github.com/hackgods/clinic-admin/internal/clinic"
	"github.com/hackgods/clinic-admin/internal/lock"
	"github.com/hackgods/clinic-admin/internal/selection"
)

// Backend is the part of the backend client the registry needs.
type Backend interface {
	ListDoctors(ctx context.Context) ([]clinic.Doctor, error)
	AddDoctor(ctx context.Context, in clinic.DoctorInput) (clinic.Doctor, error)
	UpdateDoctor(ctx context.Context, id string, upd clinic.DoctorUpdate) (clinic.Doctor, error)
	DeleteDoctor(ctx context.Context, id string) error
}

// Registry is the client-side view of the backend doctor list. Local state
// changes only after the backend confirms a mutation, and the catalog index
// is updated in the same critical section.
type Registry struct {
	backend Backend
	catalog *catalog.Store
	locker  lock.Locker
	log     zerolog.Logger

	mu      sync.RWMutex
	doctors []clinic.Doctor
}

func NewRegistry(backend Backend, cat *catalog.Store, locker lock.Locker, log zerolog.Logger) *Registry {
	return &Registry{
		backend: backend,
		catalog: cat,
		locker:  locker,
		log:     log.With().Str("component", "doctor_registry").Logger(),
	}
}

// Doctors returns a copy of the current list.
func (r *Registry) Doctors() []clinic.Doctor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]clinic.Doctor, len(r.doctors))
	copy(out, r.doctors)
	return out
}

func (r *Registry) Get(id string) (clinic.Doctor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		return r.doctors[i], true
	}
	return clinic.Doctor{}, false
}

// List refreshes the list from the backend. On failure the previous list
// is kept as is.
func (r *Registry) List(ctx context.Context) ([]clinic.Doctor, error) {
	fetched, err := r.backend.ListDoctors(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("list doctors failed")
		return nil, serviceError("list doctors", err)
	}

	joined := make([]clinic.Doctor, len(fetched))
	entries := make([]catalog.Entry, 0, len(fetched))
	for i, d := range fetched {
		spec := selection.Joined(d, r.catalog)
		if spec == catalog.Unknown {
			spec = ""
		}
		d.Specialization = spec
		joined[i] = d
		if spec != "" {
			entries = append(entries, catalog.Entry{Name: d.Name, Specialization: spec})
		}
	}

	r.mu.Lock()
	r.doctors = joined
	r.catalog.Reset(entries)
	r.mu.Unlock()

	r.log.Debug().Int("count", len(joined)).Msg("doctors loaded")
	return r.Doctors(), nil
}

// Add validates the input, creates the doctor on the backend and appends
// it locally.
func (r *Registry) Add(ctx context.Context, in clinic.DoctorInput) (clinic.Doctor, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	label, err := r.validate(in.Name, in.Email, in.Specialization, "")
	if err != nil {
		return clinic.Doctor{}, err
	}
	if in.Password == "" {
		return clinic.Doctor{}, clinic.NewValidationError("password", "is required")
	}
	in.Specialization = label

	var created clinic.Doctor
	err = r.guard(ctx, "doctors:add", func(ctx context.Context) error {
		d, err := r.backend.AddDoctor(ctx, in)
		if err != nil {
			return rejection("add doctor", err)
		}
		if d.Specialization == "" {
			d.Specialization = label
		}

		r.mu.Lock()
		r.doctors = append(r.doctors, d)
		r.syncNameLocked(d.Name)
		r.mu.Unlock()

		created = d
		return nil
	})
	if err != nil {
		r.log.Warn().Err(err).Str("name", in.Name).Msg("add doctor failed")
		return clinic.Doctor{}, err
	}

	r.log.Info().Str("doctor_id", created.ID).Str("specialization", created.Specialization).Msg("doctor added")
	return created, nil
}

// Update replaces name, email and specialization of the doctor with id. A
// rename moves its catalog entry.
func (r *Registry) Update(ctx context.Context, id string, upd clinic.DoctorUpdate) (clinic.Doctor, error) {
	upd.Name = strings.TrimSpace(upd.Name)
	upd.Email = strings.TrimSpace(upd.Email)

	current, ok := r.Get(id)
	if !ok {
		return clinic.Doctor{}, clinic.NewValidationError("id", fmt.Sprintf("no doctor with id %q", id))
	}

	label, err := r.validate(upd.Name, upd.Email, upd.Specialization, id)
	if err != nil {
		return clinic.Doctor{}, err
	}
	upd.Specialization = label

	var updated clinic.Doctor
	err = r.guard(ctx, "doctor:"+id, func(ctx context.Context) error {
		d, err := r.backend.UpdateDoctor(ctx, id, upd)
		if err != nil {
			return rejection("update doctor", err)
		}
		if d.Specialization == "" {
			d.Specialization = label
		}

		r.mu.Lock()
		if i := r.indexOf(id); i >= 0 {
			r.doctors[i] = d
		}
		r.catalog.Rename(current.Name, d.Name, d.Specialization)
		r.syncNameLocked(current.Name)
		r.syncNameLocked(d.Name)
		r.mu.Unlock()

		updated = d
		return nil
	})
	if err != nil {
		r.log.Warn().Err(err).Str("doctor_id", id).Msg("update doctor failed")
		return clinic.Doctor{}, err
	}

	r.log.Info().Str("doctor_id", id).Bool("renamed", current.Name != updated.Name).Msg("doctor updated")
	return updated, nil
}

// Remove deletes the doctor on the backend, then drops it locally together
// with its catalog entry. Appointments naming the doctor are not touched.
func (r *Registry) Remove(ctx context.Context, id string) error {
	err := r.guard(ctx, "doctor:"+id, func(ctx context.Context) error {
		if err := r.backend.DeleteDoctor(ctx, id); err != nil {
			return serviceError("delete doctor", err)
		}

		r.mu.Lock()
		defer r.mu.Unlock()

		i := r.indexOf(id)
		if i < 0 {
			return nil
		}
		name := r.doctors[i].Name
		r.doctors = append(r.doctors[:i:i], r.doctors[i+1:]...)
		r.syncNameLocked(name)
		return nil
	})
	if err != nil {
		r.log.Warn().Err(err).Str("doctor_id", id).Msg("delete doctor failed")
		return err
	}

	r.log.Info().Str("doctor_id", id).Msg("doctor deleted")
	return nil
}

func (r *Registry) validate(name, email, specialization, selfID string) (string, error) {
	if name == "" {
		return "", clinic.NewValidationError("name", "is required")
	}
	if email == "" {
		return "", clinic.NewValidationError("email", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", clinic.NewValidationError("email", fmt.Sprintf("%q is not a valid address", email))
	}
	if specialization == "" {
		return "", clinic.NewValidationError("specialization", "is required")
	}
	label, ok := r.catalog.Canonical(specialization)
	if !ok {
		return "", clinic.NewValidationError("specialization", fmt.Sprintf("%q is not one of %s",
			specialization, strings.Join(r.catalog.ListSpecializations(), ", ")))
	}

	r.mu.RLock()
	taken := r.hasName(name, selfID)
	r.mu.RUnlock()
	if taken {
		return "", clinic.NewValidationError("name", fmt.Sprintf("a doctor named %q already exists", name))
	}
	return label, nil
}

func (r *Registry) guard(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	err := r.locker.WithLock(ctx, key, fn)
	if errors.Is(err, lock.ErrLockNotAcquired) {
		return clinic.ErrSubmissionInFlight
	}
	return err
}

// indexOf and hasName expect r.mu to be held.
func (r *Registry) indexOf(id string) int {
	for i, d := range r.doctors {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) hasName(name, exceptID string) bool {
	for _, d := range r.doctors {
		if d.Name == name && d.ID != exceptID {
			return true
		}
	}
	return false
}

// syncNameLocked points the catalog entry for name at the first doctor
// still carrying it, or drops the entry when none does. r.mu must be held.
func (r *Registry) syncNameLocked(name string) {
	if name == "" {
		return
	}
	for _, d := range r.doctors {
		if d.Name != name {
			continue
		}
		if d.Specialization == "" {
			break
		}
		r.catalog.Upsert(name, d.Specialization)
		return
	}
	r.catalog.Remove(name)
}

// rejection reports a backend 4xx on a submitted doctor as a validation
// error, anything else as a service error.
func rejection(op string, err error) error {
	var sErr *clinic.ExternalServiceError
	if errors.As(err, &sErr) && sErr.Rejected() {
		return &clinic.ValidationError{Field: "doctor", Message: sErr.Message}
	}
	return serviceError(op, err)
}

func serviceError(op string, err error) error {
	var sErr *clinic.ExternalServiceError
	if errors.As(err, &sErr) {
		return err
	}
	return &clinic.ExternalServiceError{Op: op, Message: err.Error(), Err: err}
}
