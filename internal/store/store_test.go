package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-admin/internal/clinic"
	"github.com/hackgods/clinic-admin/internal/db"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	// admins
	_, err := s.GetAdmin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.PutAdmin(ctx, Admin{Username: "root", PasswordHash: "h1"}))
	require.NoError(t, s.PutAdmin(ctx, Admin{Username: "root", PasswordHash: "h2"}))
	a, err := s.GetAdmin(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, "h2", a.PasswordHash)

	// doctors
	lee, err := s.CreateDoctor(ctx, clinic.Doctor{Name: "Dr. Lee", Email: "lee@clinic.test", Specialization: "Cardiology"}, "hash")
	require.NoError(t, err)
	assert.NotEmpty(t, lee.ID)
	assert.Equal(t, "Cardiology", lee.Specialization)

	ray, err := s.CreateDoctor(ctx, clinic.Doctor{Name: "Dr. Ray", Email: "ray@clinic.test"}, "hash")
	require.NoError(t, err)
	assert.Empty(t, ray.Specialization)

	_, err = s.CreateDoctor(ctx, clinic.Doctor{Name: "Dr. Other", Email: "LEE@clinic.test"}, "hash")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = s.CreateDoctor(ctx, clinic.Doctor{Name: "Dr. Ray", Email: "ray2@clinic.test"}, "hash")
	assert.ErrorIs(t, err, ErrDuplicateName)

	lee.Name = "Dr. Leigh"
	lee.Specialization = "Neurology"
	require.NoError(t, s.UpdateDoctor(ctx, lee, ""))

	ray.Email = "lee@clinic.test"
	assert.ErrorIs(t, s.UpdateDoctor(ctx, ray, ""), ErrDuplicateEmail)

	ray.Email = "ray@clinic.test"
	ray.Name = "Dr. Leigh"
	assert.ErrorIs(t, s.UpdateDoctor(ctx, ray, ""), ErrDuplicateName)
	ray.Name = "Dr. Ray"

	doctors, err := s.ListDoctors(ctx)
	require.NoError(t, err)
	require.Len(t, doctors, 2)
	assert.Equal(t, "Dr. Leigh", doctors[0].Name)
	assert.Equal(t, "Neurology", doctors[0].Specialization)
	assert.Equal(t, "Dr. Ray", doctors[1].Name)

	require.NoError(t, s.DeleteDoctor(ctx, ray.ID))
	assert.ErrorIs(t, s.DeleteDoctor(ctx, ray.ID), ErrNotFound)

	// appointments
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	first, err := s.CreateAppointment(ctx, clinic.NewAppointment{
		PatientName: "Ann", Age: 40, Diagnosis: "Heart", Doctor: "Dr. Leigh",
		Date: "2024-05-02", Time: "14:30", CreatedAt: created,
	})
	require.NoError(t, err)
	assert.Regexp(t, `^APT-\d{5}$`, first.ID)
	assert.Equal(t, clinic.StatusBooked, first.Status)
	assert.True(t, created.Equal(first.CreatedAt))

	second, err := s.CreateAppointment(ctx, clinic.NewAppointment{
		PatientName: "Bo", Age: 9, Diagnosis: "General", Doctor: "Dr. Leigh",
		Date: "2024-05-03", Time: "09:00", CreatedAt: created,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	list, err := s.ListAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, "14:30", list[0].Time)

	require.NoError(t, s.DeleteAppointment(ctx, first.ID))
	assert.ErrorIs(t, s.DeleteAppointment(ctx, first.ID), ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_AppointmentNumbering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a, err := s.CreateAppointment(ctx, clinic.NewAppointment{PatientName: "A", Age: 1})
	require.NoError(t, err)
	b, err := s.CreateAppointment(ctx, clinic.NewAppointment{PatientName: "B", Age: 1})
	require.NoError(t, err)

	assert.Equal(t, "APT-10001", a.ID)
	assert.Equal(t, "APT-10002", b.ID)

	// ids are not reused after delete
	require.NoError(t, s.DeleteAppointment(ctx, b.ID))
	c, err := s.CreateAppointment(ctx, clinic.NewAppointment{PatientName: "C", Age: 1})
	require.NoError(t, err)
	assert.Equal(t, "APT-10003", c.ID)
}

func TestMemoryStore_UpdateKeepsPassword(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	d, err := s.CreateDoctor(ctx, clinic.Doctor{Name: "Dr. Lee", Email: "lee@clinic.test"}, "original")
	require.NoError(t, err)

	require.NoError(t, s.UpdateDoctor(ctx, d, ""))
	assert.Equal(t, "original", s.doctors[0].passwordHash)

	require.NoError(t, s.UpdateDoctor(ctx, d, "changed"))
	assert.Equal(t, "changed", s.doctors[0].passwordHash)

	d.ID = "missing"
	assert.ErrorIs(t, s.UpdateDoctor(ctx, d, ""), ErrNotFound)
}

func TestPgStore(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx := context.Background()

	pool, err := db.ConnectPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.EnsureSchema(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE admins, doctors, appointments`)
	require.NoError(t, err)

	exerciseStore(t, NewPgStore(pool))
}
