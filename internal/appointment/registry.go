package appointment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-admin/internal/clinic"
	"github.com/hackgods/clinic-admin/internal/lock"
)

type Backend interface {
	ListAppointments(ctx context.Context) ([]clinic.Appointment, error)
	AddAppointment(ctx context.Context, a clinic.NewAppointment) (clinic.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
}

// Registry is the client-side view of the backend appointment list. There
// is no update operation. Local state changes only after the backend
// confirms.
type Registry struct {
	backend Backend
	locker  lock.Locker
	log     zerolog.Logger
	now     func() time.Time

	mu    sync.RWMutex
	items []clinic.Appointment
}

func NewRegistry(backend Backend, locker lock.Locker, log zerolog.Logger) *Registry {
	return &Registry{
		backend: backend,
		locker:  locker,
		log:     log.With().Str("component", "appointment_registry").Logger(),
		now:     time.Now,
	}
}

func (r *Registry) Appointments() []clinic.Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]clinic.Appointment, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Registry) List(ctx context.Context) ([]clinic.Appointment, error) {
	items, err := r.backend.ListAppointments(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("list appointments failed")
		return nil, serviceError("list appointments", err)
	}

	r.mu.Lock()
	r.items = append([]clinic.Appointment(nil), items...)
	r.mu.Unlock()

	return r.Appointments(), nil
}

// Add validates the draft against the eligible doctors, submits it and
// appends the stored record the backend returns.
func (r *Registry) Add(ctx context.Context, d Draft, eligible []clinic.Doctor) (clinic.Appointment, error) {
	na, err := d.Validate(eligible, r.now())
	if err != nil {
		return clinic.Appointment{}, err
	}

	var stored clinic.Appointment
	err = r.guard(ctx, "appointments:add", func(ctx context.Context) error {
		a, err := r.backend.AddAppointment(ctx, na)
		if err != nil {
			return serviceError("add appointment", err)
		}

		r.mu.Lock()
		r.items = append(r.items, a)
		r.mu.Unlock()

		stored = a
		return nil
	})
	if err != nil {
		r.log.Warn().Err(err).Str("doctor", na.Doctor).Msg("add appointment failed")
		return clinic.Appointment{}, err
	}

	r.log.Info().
		Str("appointment_id", stored.ID).
		Str("doctor", stored.Doctor).
		Str("status", stored.Status).
		Msg("appointment added")
	return stored, nil
}

func (r *Registry) Remove(ctx context.Context, id string) error {
	err := r.guard(ctx, "appointment:"+id, func(ctx context.Context) error {
		if err := r.backend.DeleteAppointment(ctx, id); err != nil {
			return serviceError("delete appointment", err)
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		for i, a := range r.items {
			if a.ID == id {
				r.items = append(r.items[:i:i], r.items[i+1:]...)
				break
			}
		}
		return nil
	})
	if err != nil {
		r.log.Warn().Err(err).Str("appointment_id", id).Msg("delete appointment failed")
		return err
	}

	r.log.Info().Str("appointment_id", id).Msg("appointment deleted")
	return nil
}

func (r *Registry) guard(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	err := r.locker.WithLock(ctx, key, fn)
	if errors.Is(err, lock.ErrLockNotAcquired) {
		return clinic.ErrSubmissionInFlight
	}
	return err
}

func serviceError(op string, err error) error {
	var sErr *clinic.ExternalServiceError
	if errors.As(err, &sErr) {
		return err
	}
	return &clinic.ExternalServiceError{Op: op, Message: err.Error(), Err: err}
}
