// Package store is the Record Source backed by PostgreSQL.
//
// Listing reads filter, sort and paginate on the server with the same
// semantics as the in-memory listing engine. Every driver failure is
// reported as apperr.ErrSourceUnavailable; missing rows as
// apperr.ErrNotFound.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"careers/listing-service/internal/kanban"
	"careers/listing-service/internal/listing"
	"careers/listing-service/internal/model"
)

// DB is the subset of pgxpool.Pool used by the store.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Catalog is the listing and editing surface for the public content kinds.
type Catalog interface {
	ListPositions(ctx context.Context, q listing.Query) (listing.Page[model.Position], error)
	CreatePosition(ctx context.Context, in model.PositionInput) (*model.Position, error)
	UpdatePosition(ctx context.Context, id string, patch model.PositionPatch) (*model.Position, error)
	DeletePosition(ctx context.Context, id string) error

	ListProjects(ctx context.Context, q listing.Query) (listing.Page[model.Project], error)
	CreateProject(ctx context.Context, in model.ProjectInput) (*model.Project, error)
	UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error)
	DeleteProject(ctx context.Context, id string) error

	ListPosts(ctx context.Context, q listing.Query) (listing.Page[model.Post], error)
}

// Source is everything the service reads and writes.
type Source interface {
	Catalog
	kanban.Store
	CloseExpiredPositions(ctx context.Context, now time.Time) (int64, error)
}

// Postgres implements Source.
type Postgres struct {
	db  DB
	now func() time.Time
}

var _ Source = (*Postgres)(nil)

// New returns a store over db.
func New(db DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

// WithClock overrides the time source used for created_at/updated_at.
func (p *Postgres) WithClock(now func() time.Time) *Postgres {
	p.now = now
	return p
}

// validID reports whether id can name a row; malformed ids cannot exist.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
