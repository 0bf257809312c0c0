package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"careers/listing-service/internal/apperr"
	"careers/listing-service/internal/listing"
)

// table describes how the listing criteria and sort keys map onto one
// relation. A criterion with no column never matches, like a missing
// relation in memory. Sort keys with no expression compare equal.
type table struct {
	name     string
	columns  []string
	search   []string
	facets   map[listing.Key]string
	salary   string
	deadline string
}

var positions = table{
	name: "positions",
	columns: []string{
		"id", "title", "summary", "description", "category_slug", "location",
		"employment_type", "level", "status", "salary_min", "salary_max",
		"featured", "urgent", "active", "views", "applications_count",
		"deadline", "created_at", "updated_at",
	},
	search: []string{"title", "summary", "description"},
	facets: map[listing.Key]string{
		listing.KeyCategory: "category_slug",
		listing.KeyLocation: "location",
		listing.KeyType:     "employment_type",
		listing.KeyLevel:    "level",
		listing.KeyStatus:   "status",
		listing.KeyFeatured: "featured",
	},
	salary:   "COALESCE(salary_max, salary_min, 0)",
	deadline: "deadline",
}

var projects = table{
	name: "projects",
	columns: []string{
		"id", "kind", "title", "summary", "category_slug", "status",
		"featured", "active", "views", "created_at", "updated_at",
	},
	search: []string{"title", "summary"},
	facets: map[listing.Key]string{
		listing.KeyCategory: "category_slug",
		listing.KeyType:     "kind",
		listing.KeyStatus:   "status",
		listing.KeyFeatured: "featured",
	},
}

var posts = table{
	name: "posts",
	columns: []string{
		"id", "title", "excerpt", "author_name", "category_slug", "status",
		"tags", "featured", "views", "published_at", "created_at",
	},
	search: []string{"title", "excerpt", "author_name"},
	facets: map[listing.Key]string{
		listing.KeyCategory: "category_slug",
		listing.KeyStatus:   "status",
		listing.KeyFeatured: "featured",
	},
}

// where translates c into a conjunction of SQL predicates.
func (t table) where(c listing.Criteria) squirrel.And {
	conds := squirrel.And{}
	if c.Search != "" {
		pattern := "%" + escapeLike(c.Search) + "%"
		or := squirrel.Or{}
		for _, col := range t.search {
			or = append(or, squirrel.ILike{col: pattern})
		}
		conds = append(conds, or)
	}
	for _, k := range listing.Keys {
		if k == listing.KeySearch {
			continue
		}
		want := c.Get(k)
		if want == "" {
			continue
		}
		col, ok := t.facets[k]
		if !ok {
			conds = append(conds, squirrel.Expr("FALSE"))
			continue
		}
		if k == listing.KeyFeatured {
			conds = append(conds, squirrel.Eq{col: *c.Featured})
			continue
		}
		conds = append(conds, squirrel.Eq{col: want})
	}
	return conds
}

// orderBy renders s followed by the tie-breakers.
func (t table) orderBy(s listing.SortSpec) []string {
	s = s.Normalize()
	dir := strings.ToUpper(string(s.Direction))
	var primary string
	switch s.Key {
	case listing.SortNewest, listing.SortOldest:
		primary = "created_at " + dir
	case listing.SortTitle:
		primary = "lower(title) " + dir
	case listing.SortSalaryHigh, listing.SortSalaryLow:
		if t.salary != "" {
			primary = t.salary + " " + dir
		}
	case listing.SortDeadline:
		if t.deadline != "" {
			primary = t.deadline + " " + dir + " NULLS LAST"
		}
	}
	order := []string{"created_at DESC", "id"}
	if primary != "" && primary != order[0] {
		order = append([]string{primary}, order...)
	}
	return order
}

// listPage counts the matches, clamps the requested page and fetches the
// window.
func listPage[T any](ctx context.Context, db DB, t table, q listing.Query) (listing.Page[T], error) {
	q = q.Normalize()
	where := t.where(q.Criteria)
	op := "list " + t.name

	countSQL, args, err := squirrel.Select("COUNT(*)").
		From(t.name).
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return listing.Page[T]{}, fmt.Errorf("building count query: %w", err)
	}
	var total int
	if err := db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return listing.Page[T]{}, apperr.Source(op, err)
	}

	w := listing.NewWindow(total, q.Page, q.PageSize)
	if w.Limit == 0 {
		return listing.PageOf([]T{}, w), nil
	}

	query, args, err := squirrel.Select(t.columns...).
		From(t.name).
		Where(where).
		OrderBy(t.orderBy(q.Sort)...).
		Limit(uint64(w.PageSize)).
		Offset(uint64(w.Offset)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return listing.Page[T]{}, fmt.Errorf("building select query: %w", err)
	}
	var items []T
	if err := pgxscan.Select(ctx, db, &items, query, args...); err != nil {
		return listing.Page[T]{}, apperr.Source(op, err)
	}
	return listing.PageOf(items, w), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
