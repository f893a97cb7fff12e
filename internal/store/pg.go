package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinic-admin/internal/clinic"
)

const (
	uniqueViolation  = "23505"
	doctorsNameIndex = "doctors_name_key"
)

// PgStore expects the schema created by db.EnsureSchema.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Helpers

func scanDoctor(row pgx.Row) (clinic.Doctor, error) {
	var d clinic.Doctor
	var specialization *string

	err := row.Scan(&d.ID, &d.Name, &d.Email, &specialization)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return clinic.Doctor{}, ErrNotFound
		}
		return clinic.Doctor{}, err
	}

	if specialization != nil {
		d.Specialization = *specialization
	}
	return d, nil
}

func scanAppointment(row pgx.Row) (clinic.Appointment, error) {
	var a clinic.Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientName,
		&a.Age,
		&a.Diagnosis,
		&a.Doctor,
		&a.Date,
		&a.Time,
		&a.Status,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return clinic.Appointment{}, ErrNotFound
		}
		return clinic.Appointment{}, err
	}
	return a, nil
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if pgErr.ConstraintName == doctorsNameIndex {
			return ErrDuplicateName
		}
		return ErrDuplicateEmail
	}
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Interface methods

func (s *PgStore) GetAdmin(ctx context.Context, username string) (Admin, error) {
	var a Admin
	err := s.pool.QueryRow(ctx, `
		SELECT username, password_hash
		FROM admins
		WHERE username = $1
	`, username).Scan(&a.Username, &a.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Admin{}, ErrNotFound
	}
	return a, err
}

func (s *PgStore) PutAdmin(ctx context.Context, a Admin) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO admins (username, password_hash, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`, a.Username, a.PasswordHash)
	if err != nil {
		return fmt.Errorf("put admin: %w", err)
	}
	return nil
}

func (s *PgStore) ListDoctors(ctx context.Context) ([]clinic.Doctor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, specialization
		FROM doctors
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []clinic.Doctor{}
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PgStore) CreateDoctor(ctx context.Context, d clinic.Doctor, passwordHash string) (clinic.Doctor, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO doctors (id, name, email, specialization, password_hash, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, clock_timestamp(), now())
		RETURNING id, name, email, specialization
	`, d.Name, d.Email, nullable(d.Specialization), passwordHash)

	out, err := scanDoctor(row)
	if err != nil {
		return clinic.Doctor{}, mapWriteErr(err)
	}
	return out, nil
}

func (s *PgStore) UpdateDoctor(ctx context.Context, d clinic.Doctor, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE doctors
		SET name = $2,
		    email = $3,
		    specialization = $4,
		    password_hash = COALESCE(NULLIF($5, ''), password_hash),
		    updated_at = now()
		WHERE id = $1
	`, d.ID, d.Name, d.Email, nullable(d.Specialization), passwordHash)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStore) DeleteDoctor(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStore) ListAppointments(ctx context.Context) ([]clinic.Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, patient_name, age, diagnosis, doctor, date, time, status, created_at
		FROM appointments
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []clinic.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PgStore) CreateAppointment(ctx context.Context, na clinic.NewAppointment) (clinic.Appointment, error) {
	createdAt := na.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	row := s.pool.QueryRow(ctx, `
		WITH n AS (SELECT nextval('appointment_seq') AS seq)
		INSERT INTO appointments (seq, id, patient_name, age, diagnosis, doctor, date, time, status, created_at)
		SELECT n.seq, 'APT-' || lpad(n.seq::text, 5, '0'), $1, $2, $3, $4, $5, $6, $7, $8
		FROM n
		RETURNING id, patient_name, age, diagnosis, doctor, date, time, status, created_at
	`, na.PatientName, na.Age, na.Diagnosis, na.Doctor, na.Date, na.Time, clinic.StatusBooked, createdAt)

	return scanAppointment(row)
}

func (s *PgStore) DeleteAppointment(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
