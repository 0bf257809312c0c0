package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"careers/listing-service/internal/apperr"
	"careers/listing-service/internal/listing"
	"careers/listing-service/internal/model"
)

// ListProjects returns one page of projects and products; the kind is
// filtered through the type criterion.
func (p *Postgres) ListProjects(ctx context.Context, q listing.Query) (listing.Page[model.Project], error) {
	return listPage[model.Project](ctx, p.db, projects, q)
}

// GetProject returns one project.
func (p *Postgres) GetProject(ctx context.Context, id string) (*model.Project, error) {
	if !validID(id) {
		return nil, apperr.ErrNotFound
	}
	return getOne[model.Project](ctx, p.db, projects, id)
}

// CreateProject validates in and inserts a new project or product.
func (p *Postgres) CreateProject(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := p.now().UTC()
	query, args, err := squirrel.Insert(projects.name).
		Columns(projects.columns...).
		Values(
			uuid.NewString(), in.Kind, in.Title, in.Summary, in.CategorySlug, in.Status,
			in.Featured, true, 0, now, now,
		).
		Suffix(returning(projects)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building insert query: %w", err)
	}
	var pr model.Project
	if err := pgxscan.Get(ctx, p.db, &pr, query, args...); err != nil {
		return nil, apperr.Source("create project", err)
	}
	return &pr, nil
}

// UpdateProject applies a partial update.
func (p *Postgres) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, apperr.ErrNotFound
	}
	cols := patch.Columns()
	if len(cols) == 0 {
		return p.GetProject(ctx, id)
	}
	return updateOne[model.Project](ctx, p.db, projects, id, cols, p.now())
}

// DeleteProject removes a project.
func (p *Postgres) DeleteProject(ctx context.Context, id string) error {
	return deleteOne(ctx, p.db, projects, id)
}

// ListPosts returns one page of blog posts.
func (p *Postgres) ListPosts(ctx context.Context, q listing.Query) (listing.Page[model.Post], error) {
	return listPage[model.Post](ctx, p.db, posts, q)
}
