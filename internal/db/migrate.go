package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer runs a statement; *pgxpool.Pool satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Migration is one idempotent schema step.
type Migration struct {
	Name string
	SQL  string
}

// Migrations lists the schema in application order. Every step must be safe
// to re-run.
var Migrations = []Migration{
	{
		Name: "create_application_status_enum",
		SQL: `DO $$ BEGIN
	CREATE TYPE application_status AS ENUM (
		'submitted', 'reviewing', 'interview_scheduled', 'interview_completed',
		'offered', 'accepted', 'rejected', 'withdrawn'
	);
EXCEPTION WHEN duplicate_object THEN NULL;
END $$`,
	},
	{
		Name: "create_positions",
		SQL: `CREATE TABLE IF NOT EXISTS positions (
	id                 UUID PRIMARY KEY,
	title              TEXT NOT NULL,
	summary            TEXT NOT NULL DEFAULT '',
	description        TEXT NOT NULL DEFAULT '',
	category_slug      TEXT,
	location           TEXT NOT NULL DEFAULT '',
	employment_type    TEXT NOT NULL DEFAULT '',
	level              TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL DEFAULT 'draft',
	salary_min         DOUBLE PRECISION,
	salary_max         DOUBLE PRECISION,
	featured           BOOLEAN NOT NULL DEFAULT FALSE,
	urgent             BOOLEAN NOT NULL DEFAULT FALSE,
	active             BOOLEAN NOT NULL DEFAULT TRUE,
	views              INTEGER NOT NULL DEFAULT 0,
	applications_count INTEGER NOT NULL DEFAULT 0,
	deadline           TIMESTAMPTZ,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		Name: "create_projects",
		SQL: `CREATE TABLE IF NOT EXISTS projects (
	id            UUID PRIMARY KEY,
	kind          TEXT NOT NULL CHECK (kind IN ('project', 'product')),
	title         TEXT NOT NULL,
	summary       TEXT NOT NULL DEFAULT '',
	category_slug TEXT,
	status        TEXT NOT NULL DEFAULT 'draft',
	featured      BOOLEAN NOT NULL DEFAULT FALSE,
	active        BOOLEAN NOT NULL DEFAULT TRUE,
	views         INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		Name: "create_posts",
		SQL: `CREATE TABLE IF NOT EXISTS posts (
	id            UUID PRIMARY KEY,
	title         TEXT NOT NULL,
	excerpt       TEXT NOT NULL DEFAULT '',
	author_name   TEXT NOT NULL DEFAULT '',
	category_slug TEXT,
	status        TEXT NOT NULL DEFAULT 'draft',
	tags          TEXT[] NOT NULL DEFAULT '{}',
	featured      BOOLEAN NOT NULL DEFAULT FALSE,
	views         INTEGER NOT NULL DEFAULT 0,
	published_at  TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		Name: "create_applications",
		SQL: `CREATE TABLE IF NOT EXISTS applications (
	id               UUID PRIMARY KEY,
	position_id      UUID NOT NULL REFERENCES positions(id) ON DELETE CASCADE,
	position_title   TEXT NOT NULL DEFAULT '',
	candidate_name   TEXT NOT NULL,
	candidate_email  TEXT NOT NULL,
	status           application_status NOT NULL DEFAULT 'submitted',
	notes            TEXT NOT NULL DEFAULT '',
	history_log      JSONB NOT NULL DEFAULT '[]'::jsonb,
	applied_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_activity_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		Name: "index_listing_columns",
		SQL: `CREATE INDEX IF NOT EXISTS positions_status_created_idx ON positions (status, created_at DESC);
CREATE INDEX IF NOT EXISTS positions_deadline_open_idx ON positions (deadline) WHERE status = 'open';
CREATE INDEX IF NOT EXISTS projects_kind_created_idx ON projects (kind, created_at DESC);
CREATE INDEX IF NOT EXISTS posts_status_created_idx ON posts (status, created_at DESC);
CREATE INDEX IF NOT EXISTS applications_applied_idx ON applications (applied_at DESC)`,
	},
}

// Migrate applies every migration in order and stops at the first failure.
func Migrate(ctx context.Context, db Execer) error {
	slog.Info("starting database migrations", "count", len(Migrations))
	for _, m := range Migrations {
		if _, err := db.Exec(ctx, m.SQL); err != nil {
			slog.Error("migration failed", "name", m.Name, "err", err)
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		slog.Info("migration completed", "name", m.Name)
	}
	return nil
}
