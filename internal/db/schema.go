package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS admins (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS doctors (
	id             UUID PRIMARY KEY,
	name           TEXT NOT NULL,
	email          TEXT NOT NULL,
	specialization TEXT,
	password_hash  TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS doctors_email_key ON doctors (lower(email));
CREATE UNIQUE INDEX IF NOT EXISTS doctors_name_key ON doctors (name);

CREATE SEQUENCE IF NOT EXISTS appointment_seq START 10001;

CREATE TABLE IF NOT EXISTS appointments (
	seq          BIGINT NOT NULL UNIQUE,
	id           TEXT PRIMARY KEY,
	patient_name TEXT NOT NULL,
	age          INT NOT NULL CHECK (age > 0),
	diagnosis    TEXT NOT NULL,
	doctor       TEXT NOT NULL,
	date         TEXT NOT NULL,
	time         TEXT NOT NULL,
	status       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the api-server tables if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
