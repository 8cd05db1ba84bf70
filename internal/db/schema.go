package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS public.users (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	display_name  TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'employee',
	email         TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_login_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS public.workplaces (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	number_label TEXT NOT NULL DEFAULT '',
	kind         TEXT NOT NULL,
	branch       TEXT NOT NULL,
	x            INTEGER NOT NULL DEFAULT 0,
	y            INTEGER NOT NULL DEFAULT 0,
	capacity     INTEGER,
	sort_order   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS workplaces_branch_idx ON public.workplaces (branch, sort_order);

CREATE TABLE IF NOT EXISTS public.bookings (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	workplace_id   TEXT NOT NULL,
	workplace_name TEXT NOT NULL,
	branch         TEXT NOT NULL,
	booking_date   DATE NOT NULL,
	start_time     CHAR(5) NOT NULL,
	end_time       CHAR(5) NOT NULL,
	purpose        TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'confirmed',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS bookings_user_idx ON public.bookings (user_id, created_at);
CREATE INDEX IF NOT EXISTS bookings_workplace_date_idx ON public.bookings (workplace_id, booking_date, status);
`

// CreateSchema creates the tables the server needs. It is safe to run on every start.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
