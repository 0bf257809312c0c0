package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"careers/listing-service/internal/apperr"
	"careers/listing-service/internal/listing"
	"careers/listing-service/internal/model"
)

// ListPositions returns one page of career listings.
func (p *Postgres) ListPositions(ctx context.Context, q listing.Query) (listing.Page[model.Position], error) {
	return listPage[model.Position](ctx, p.db, positions, q)
}

// GetPosition returns one position.
func (p *Postgres) GetPosition(ctx context.Context, id string) (*model.Position, error) {
	if !validID(id) {
		return nil, apperr.ErrNotFound
	}
	return getOne[model.Position](ctx, p.db, positions, id)
}

// CreatePosition validates in and inserts a new position.
func (p *Postgres) CreatePosition(ctx context.Context, in model.PositionInput) (*model.Position, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := p.now().UTC()
	query, args, err := squirrel.Insert(positions.name).
		Columns(
			"id", "title", "summary", "description", "category_slug", "location",
			"employment_type", "level", "status", "salary_min", "salary_max",
			"featured", "urgent", "active", "views", "applications_count",
			"deadline", "created_at", "updated_at",
		).
		Values(
			uuid.NewString(), in.Title, in.Summary, in.Description, in.CategorySlug, in.Location,
			in.EmploymentType, in.Level, in.Status, in.SalaryMin, in.SalaryMax,
			in.Featured, in.Urgent, true, 0, 0,
			in.Deadline, now, now,
		).
		Suffix(returning(positions)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building insert query: %w", err)
	}
	var pos model.Position
	if err := pgxscan.Get(ctx, p.db, &pos, query, args...); err != nil {
		return nil, apperr.Source("create position", err)
	}
	return &pos, nil
}

// UpdatePosition applies a partial update. An empty patch returns the
// current record.
func (p *Postgres) UpdatePosition(ctx context.Context, id string, patch model.PositionPatch) (*model.Position, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, apperr.ErrNotFound
	}
	cols := patch.Columns()
	if len(cols) == 0 {
		return p.GetPosition(ctx, id)
	}
	return updateOne[model.Position](ctx, p.db, positions, id, cols, p.now())
}

// DeletePosition removes a position.
func (p *Postgres) DeletePosition(ctx context.Context, id string) error {
	return deleteOne(ctx, p.db, positions, id)
}

// CloseExpiredPositions closes every open position whose deadline is
// before now and returns how many were closed.
func (p *Postgres) CloseExpiredPositions(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := squirrel.Update(positions.name).
		Set("status", model.PositionClosed).
		Set("updated_at", now.UTC()).
		Where(squirrel.Eq{"status": model.PositionOpen}).
		Where(squirrel.NotEq{"deadline": nil}).
		Where(squirrel.Lt{"deadline": now.UTC()}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building update query: %w", err)
	}
	tag, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, apperr.Source("close expired positions", err)
	}
	return tag.RowsAffected(), nil
}

func returning(t table) string {
	return "RETURNING " + strings.Join(t.columns, ", ")
}

func getOne[T any](ctx context.Context, db DB, t table, id string) (*T, error) {
	query, args, err := squirrel.Select(t.columns...).
		From(t.name).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var rec T
	if err := pgxscan.Get(ctx, db, &rec, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Source("get "+t.name, err)
	}
	return &rec, nil
}

func updateOne[T any](ctx context.Context, db DB, t table, id string, cols map[string]any, now time.Time) (*T, error) {
	query, args, err := squirrel.Update(t.name).
		SetMap(cols).
		Set("updated_at", now.UTC()).
		Where(squirrel.Eq{"id": id}).
		Suffix(returning(t)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building update query: %w", err)
	}
	var rec T
	if err := pgxscan.Get(ctx, db, &rec, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Source("update "+t.name, err)
	}
	return &rec, nil
}

func deleteOne(ctx context.Context, db DB, t table, id string) error {
	if !validID(id) {
		return apperr.ErrNotFound
	}
	query, args, err := squirrel.Delete(t.name).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return apperr.Source("delete "+t.name, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
