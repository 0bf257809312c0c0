// Package cache decorates the record source with a Redis read cache for
// listing pages.
//
// Keys are listing:<kind>:<generation>:<query hash>. Writes through the
// decorator bump the kind's generation, so stale pages are never read again
// and expire on their own TTL. A Redis failure degrades to the source.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"careers/listing-service/internal/kanban"
	"careers/listing-service/internal/listing"
	"careers/listing-service/internal/model"
	"careers/listing-service/internal/store"
)

// Cached kinds.
const (
	KindPositions    = "positions"
	KindProjects     = "projects"
	KindPosts        = "posts"
	KindApplications = "applications"
)

// Observer is told about every cache lookup.
type Observer interface {
	CacheHit(kind string)
	CacheMiss(kind string)
}

// Listings implements store.Source on top of another store.Source.
type Listings struct {
	next     store.Source
	rdb      redis.UniversalClient
	ttl      time.Duration
	observer Observer
}

var _ store.Source = (*Listings)(nil)

// New wraps next. A non-positive ttl disables caching.
func New(next store.Source, rdb redis.UniversalClient, ttl time.Duration) *Listings {
	return &Listings{next: next, rdb: rdb, ttl: ttl}
}

// WithObserver reports hits and misses to o.
func (l *Listings) WithObserver(o Observer) *Listings {
	l.observer = o
	return l
}

// ─── Reads ───────────────────────────────────────────────────────────────────

func (l *Listings) ListPositions(ctx context.Context, q listing.Query) (listing.Page[model.Position], error) {
	return cached(ctx, l, KindPositions, q.CacheKey(), func() (listing.Page[model.Position], error) {
		return l.next.ListPositions(ctx, q)
	})
}

func (l *Listings) ListProjects(ctx context.Context, q listing.Query) (listing.Page[model.Project], error) {
	return cached(ctx, l, KindProjects, q.CacheKey(), func() (listing.Page[model.Project], error) {
		return l.next.ListProjects(ctx, q)
	})
}

func (l *Listings) ListPosts(ctx context.Context, q listing.Query) (listing.Page[model.Post], error) {
	return cached(ctx, l, KindPosts, q.CacheKey(), func() (listing.Page[model.Post], error) {
		return l.next.ListPosts(ctx, q)
	})
}

func (l *Listings) ListApplications(ctx context.Context) ([]kanban.Application, error) {
	return cached(ctx, l, KindApplications, "all", func() ([]kanban.Application, error) {
		return l.next.ListApplications(ctx)
	})
}

func (l *Listings) GetApplication(ctx context.Context, id string) (*kanban.Application, error) {
	return l.next.GetApplication(ctx, id)
}

// ─── Writes ──────────────────────────────────────────────────────────────────

func (l *Listings) CreatePosition(ctx context.Context, in model.PositionInput) (*model.Position, error) {
	return written[*model.Position](ctx, l, KindPositions)(l.next.CreatePosition(ctx, in))
}

func (l *Listings) UpdatePosition(ctx context.Context, id string, patch model.PositionPatch) (*model.Position, error) {
	return written[*model.Position](ctx, l, KindPositions)(l.next.UpdatePosition(ctx, id, patch))
}

func (l *Listings) DeletePosition(ctx context.Context, id string) error {
	return l.bumpOnSuccess(ctx, KindPositions, l.next.DeletePosition(ctx, id))
}

func (l *Listings) CreateProject(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	return written[*model.Project](ctx, l, KindProjects)(l.next.CreateProject(ctx, in))
}

func (l *Listings) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	return written[*model.Project](ctx, l, KindProjects)(l.next.UpdateProject(ctx, id, patch))
}

func (l *Listings) DeleteProject(ctx context.Context, id string) error {
	return l.bumpOnSuccess(ctx, KindProjects, l.next.DeleteProject(ctx, id))
}

func (l *Listings) UpdateApplicationStatus(ctx context.Context, id string, from, to kanban.Status, entry kanban.HistoryEntry, noteLine string) (*kanban.Application, error) {
	return written[*kanban.Application](ctx, l, KindApplications)(l.next.UpdateApplicationStatus(ctx, id, from, to, entry, noteLine))
}

func (l *Listings) AppendApplicationNote(ctx context.Context, id, noteLine string) (*kanban.Application, error) {
	return written[*kanban.Application](ctx, l, KindApplications)(l.next.AppendApplicationNote(ctx, id, noteLine))
}

func (l *Listings) DeleteApplication(ctx context.Context, id string, required kanban.Status) error {
	return l.bumpOnSuccess(ctx, KindApplications, l.next.DeleteApplication(ctx, id, required))
}

// CloseExpiredPositions invalidates the positions pages only when a row
// actually changed.
func (l *Listings) CloseExpiredPositions(ctx context.Context, now time.Time) (int64, error) {
	n, err := l.next.CloseExpiredPositions(ctx, now)
	if err == nil && n > 0 {
		l.bump(ctx, KindPositions)
	}
	return n, err
}

// ─── Internals ───────────────────────────────────────────────────────────────

func genKey(kind string) string { return "listing:" + kind + ":gen" }

// key returns the page key under the current generation of kind.
func (l *Listings) key(ctx context.Context, kind, hash string) (string, error) {
	gen, err := l.rdb.Get(ctx, genKey(kind)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("listing:%s:%d:%s", kind, gen, hash), nil
}

func cached[T any](ctx context.Context, l *Listings, kind, hash string, load func() (T, error)) (T, error) {
	if l.ttl <= 0 {
		return load()
	}
	key, err := l.key(ctx, kind, hash)
	if err != nil {
		slog.Warn("listing cache unavailable", "kind", kind, "err", err)
		return load()
	}

	raw, err := l.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			l.hit(kind)
			return v, nil
		}
		slog.Warn("discarding undecodable cache entry", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("listing cache read failed", "key", key, "err", err)
	}
	l.miss(kind)

	v, err := load()
	if err != nil {
		return v, err
	}
	if payload, err := json.Marshal(v); err == nil {
		if err := l.rdb.Set(ctx, key, payload, l.ttl).Err(); err != nil {
			slog.Warn("listing cache write failed", "key", key, "err", err)
		}
	}
	return v, nil
}

// written bumps the generation of kind after a successful single-record
// write.
func written[T any](ctx context.Context, l *Listings, kind string) func(T, error) (T, error) {
	return func(v T, err error) (T, error) {
		if err == nil {
			l.bump(ctx, kind)
		}
		return v, err
	}
}

func (l *Listings) bumpOnSuccess(ctx context.Context, kind string, err error) error {
	if err == nil {
		l.bump(ctx, kind)
	}
	return err
}

func (l *Listings) bump(ctx context.Context, kind string) {
	if err := l.rdb.Incr(ctx, genKey(kind)).Err(); err != nil {
		slog.Warn("listing cache invalidation failed", "kind", kind, "err", err)
	}
}

func (l *Listings) hit(kind string) {
	if l.observer != nil {
		l.observer.CacheHit(kind)
	}
}

func (l *Listings) miss(kind string) {
	if l.observer != nil {
		l.observer.CacheMiss(kind)
	}
}
