// Package store persists the records served by the api-server.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/hackgods/clinic-admin/internal/clinic"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateName  = errors.New("a doctor with this name already exists")
)

// FirstAppointmentNumber is the numeric part of the first appointment id.
const FirstAppointmentNumber = 10001

type Admin struct {
	Username     string
	PasswordHash string
}

// Store is implemented by MemoryStore and PgStore. Lists come back in
// insertion order.
type Store interface {
	GetAdmin(ctx context.Context, username string) (Admin, error)
	PutAdmin(ctx context.Context, a Admin) error

	ListDoctors(ctx context.Context) ([]clinic.Doctor, error)
	CreateDoctor(ctx context.Context, d clinic.Doctor, passwordHash string) (clinic.Doctor, error)
	// UpdateDoctor replaces name, email and specialization. An empty
	// passwordHash keeps the stored one.
	UpdateDoctor(ctx context.Context, d clinic.Doctor, passwordHash string) error
	DeleteDoctor(ctx context.Context, id string) error

	ListAppointments(ctx context.Context) ([]clinic.Appointment, error)
	CreateAppointment(ctx context.Context, a clinic.NewAppointment) (clinic.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
}

func appointmentID(n int64) string {
	return fmt.Sprintf("APT-%05d", n)
}
