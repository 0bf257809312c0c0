package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"careers/listing-service/internal/apperr"
	"careers/listing-service/internal/kanban"
)

var applications = table{
	name: "applications",
	columns: []string{
		"id", "position_id", "position_title", "candidate_name", "candidate_email",
		"status", "notes", "history_log", "applied_at", "last_activity_at", "updated_at",
	},
}

// appendNote appends the bound note to notes on its own line.
const appendNote = "concat_ws(E'\\n', NULLIF(notes, ''), ?::text)"

// ListApplications returns every application, newest first.
func (p *Postgres) ListApplications(ctx context.Context) ([]kanban.Application, error) {
	query, args, err := squirrel.Select(applications.columns...).
		From(applications.name).
		OrderBy("applied_at DESC", "id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	apps := []kanban.Application{}
	if err := pgxscan.Select(ctx, p.db, &apps, query, args...); err != nil {
		return nil, apperr.Source("list applications", err)
	}
	return apps, nil
}

// GetApplication returns one application.
func (p *Postgres) GetApplication(ctx context.Context, id string) (*kanban.Application, error) {
	if !validID(id) {
		return nil, apperr.ErrNotFound
	}
	return getOne[kanban.Application](ctx, p.db, applications, id)
}

// UpdateApplicationStatus moves id from → to in a single statement guarded
// by the expected current status. When no row matches, the record is looked
// up again to tell a missing application from a concurrent change.
func (p *Postgres) UpdateApplicationStatus(ctx context.Context, id string, from, to kanban.Status, entry kanban.HistoryEntry, noteLine string) (*kanban.Application, error) {
	if !validID(id) {
		return nil, apperr.ErrNotFound
	}
	at, err := time.Parse(time.RFC3339, entry.At)
	if err != nil {
		at = p.now()
	}
	at = at.UTC()
	logEntry, err := json.Marshal([]kanban.HistoryEntry{entry})
	if err != nil {
		return nil, fmt.Errorf("encoding history entry: %w", err)
	}

	qb := squirrel.Update(applications.name).
		Set("status", string(to)).
		Set("last_activity_at", at).
		Set("updated_at", at).
		Set("history_log", squirrel.Expr("COALESCE(history_log, '[]'::jsonb) || ?::jsonb", string(logEntry)))
	if noteLine != "" {
		qb = qb.Set("notes", squirrel.Expr(appendNote, noteLine))
	}
	query, args, err := qb.
		Where(squirrel.Eq{"id": id, "status": string(from)}).
		Suffix(returning(applications)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building update query: %w", err)
	}

	var app kanban.Application
	if err := pgxscan.Get(ctx, p.db, &app, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, p.raced(ctx, id, string(to))
		}
		return nil, apperr.Source("update application status", err)
	}
	return &app, nil
}

// AppendApplicationNote appends noteLine to notes and bumps
// last_activity_at.
func (p *Postgres) AppendApplicationNote(ctx context.Context, id, noteLine string) (*kanban.Application, error) {
	if !validID(id) {
		return nil, apperr.ErrNotFound
	}
	now := p.now().UTC()
	query, args, err := squirrel.Update(applications.name).
		Set("notes", squirrel.Expr(appendNote, noteLine)).
		Set("last_activity_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		Suffix(returning(applications)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building update query: %w", err)
	}
	var app kanban.Application
	if err := pgxscan.Get(ctx, p.db, &app, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Source("append application note", err)
	}
	return &app, nil
}

// DeleteApplication removes id only while its status is required.
func (p *Postgres) DeleteApplication(ctx context.Context, id string, required kanban.Status) error {
	if !validID(id) {
		return apperr.ErrNotFound
	}
	query, args, err := squirrel.Delete(applications.name).
		Where(squirrel.Eq{"id": id, "status": string(required)}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}
	tag, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		return apperr.Source("delete application", err)
	}
	if tag.RowsAffected() == 0 {
		return p.raced(ctx, id, "")
	}
	return nil
}

// raced explains a guarded write that matched no row.
func (p *Postgres) raced(ctx context.Context, id, to string) error {
	cur, err := p.GetApplication(ctx, id)
	if err != nil {
		return err
	}
	return &apperr.TransitionError{From: string(cur.Status), To: to, Reason: "status changed concurrently"}
}
