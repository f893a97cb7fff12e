package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-admin/internal/clinic"
)

type doctorRow struct {
	clinic.Doctor
	passwordHash string
}

type MemoryStore struct {
	mu           sync.RWMutex
	admins       map[string]Admin
	doctors      []doctorRow
	appointments []clinic.Appointment
	nextAppt     int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		admins:   make(map[string]Admin),
		nextAppt: FirstAppointmentNumber,
	}
}

func (m *MemoryStore) GetAdmin(_ context.Context, username string) (Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.admins[username]
	if !ok {
		return Admin{}, ErrNotFound
	}
	return a, nil
}

func (m *MemoryStore) PutAdmin(_ context.Context, a Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[a.Username] = a
	return nil
}

func (m *MemoryStore) ListDoctors(_ context.Context) ([]clinic.Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]clinic.Doctor, 0, len(m.doctors))
	for _, d := range m.doctors {
		out = append(out, d.Doctor)
	}
	return out, nil
}

func (m *MemoryStore) CreateDoctor(_ context.Context, d clinic.Doctor, passwordHash string) (clinic.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.emailTakenLocked(d.Email, "") {
		return clinic.Doctor{}, ErrDuplicateEmail
	}
	if m.nameTakenLocked(d.Name, "") {
		return clinic.Doctor{}, ErrDuplicateName
	}
	d.ID = uuid.NewString()
	m.doctors = append(m.doctors, doctorRow{Doctor: d, passwordHash: passwordHash})
	return d, nil
}

func (m *MemoryStore) UpdateDoctor(_ context.Context, d clinic.Doctor, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.doctorIndexLocked(d.ID)
	if i < 0 {
		return ErrNotFound
	}
	if m.emailTakenLocked(d.Email, d.ID) {
		return ErrDuplicateEmail
	}
	if m.nameTakenLocked(d.Name, d.ID) {
		return ErrDuplicateName
	}
	if passwordHash == "" {
		passwordHash = m.doctors[i].passwordHash
	}
	m.doctors[i] = doctorRow{Doctor: d, passwordHash: passwordHash}
	return nil
}

func (m *MemoryStore) DeleteDoctor(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.doctorIndexLocked(id)
	if i < 0 {
		return ErrNotFound
	}
	m.doctors = append(m.doctors[:i:i], m.doctors[i+1:]...)
	return nil
}

func (m *MemoryStore) doctorIndexLocked(id string) int {
	for i, d := range m.doctors {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (m *MemoryStore) emailTakenLocked(email, exceptID string) bool {
	for _, d := range m.doctors {
		if d.ID != exceptID && strings.EqualFold(d.Email, email) {
			return true
		}
	}
	return false
}

func (m *MemoryStore) nameTakenLocked(name, exceptID string) bool {
	for _, d := range m.doctors {
		if d.ID != exceptID && d.Name == name {
			return true
		}
	}
	return false
}

func (m *MemoryStore) ListAppointments(_ context.Context) ([]clinic.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]clinic.Appointment, len(m.appointments))
	copy(out, m.appointments)
	return out, nil
}

func (m *MemoryStore) CreateAppointment(_ context.Context, na clinic.NewAppointment) (clinic.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := clinic.Appointment{
		ID:          appointmentID(m.nextAppt),
		PatientName: na.PatientName,
		Age:         na.Age,
		Diagnosis:   na.Diagnosis,
		Doctor:      na.Doctor,
		Date:        na.Date,
		Time:        na.Time,
		Status:      clinic.StatusBooked,
		CreatedAt:   na.CreatedAt,
	}
	m.nextAppt++
	m.appointments = append(m.appointments, a)
	return a, nil
}

func (m *MemoryStore) DeleteAppointment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, a := range m.appointments {
		if a.ID == id {
			m.appointments = append(m.appointments[:i:i], m.appointments[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
