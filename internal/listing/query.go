package listing

import (
	"net/url"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Query is the complete, immutable state of a listing view. Callers replace
// it wholesale through the With* helpers instead of mutating fields.
type Query struct {
	Criteria Criteria
	Sort     SortSpec
	Page     int
	PageSize int
}

// NewQuery returns the first page of an unfiltered listing in default order.
func NewQuery(pageSize int) Query {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Query{Sort: DefaultSort, Page: 1, PageSize: pageSize}
}

// ParseQuery reads a query from query-string values. Malformed page and
// page size values are replaced by defaults without error.
func ParseQuery(v url.Values, defaultPageSize int) Query {
	q := NewQuery(defaultPageSize)
	q.Criteria = ParseCriteria(v)
	q.Sort = NewSortSpec(v.Get("sort"), v.Get("dir"))
	if p, err := strconv.Atoi(v.Get("page")); err == nil && p > 0 {
		q.Page = p
	}
	if s, err := strconv.Atoi(v.Get("pageSize")); err == nil && s > 0 {
		q.PageSize = min(s, MaxPageSize)
	}
	return q
}

// Values encodes q into query-string form.
func (q Query) Values() url.Values {
	v := q.Criteria.Values()
	s := q.Sort.Normalize()
	v.Set("sort", string(s.Key))
	v.Set("dir", string(s.Direction))
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	return v
}

// WithCriterion sets one criterion and resets to the first page.
func (q Query) WithCriterion(key Key, value string) Query {
	q.Criteria = q.Criteria.Set(key, value)
	q.Page = 1
	return q
}

// WithCriteria replaces every criterion and resets to the first page.
func (q Query) WithCriteria(c Criteria) Query {
	q.Criteria = c
	q.Page = 1
	return q
}

// WithSort changes the ordering and resets to the first page.
func (q Query) WithSort(s SortSpec) Query {
	q.Sort = s.Normalize()
	q.Page = 1
	return q
}

// WithPage moves to page p; clamping happens when the query is applied.
func (q Query) WithPage(p int) Query {
	q.Page = p
	return q
}

// Normalize returns q with a valid sort, page and page size.
func (q Query) Normalize() Query {
	q.Sort = q.Sort.Normalize()
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	q.PageSize = min(q.PageSize, MaxPageSize)
	return q
}

// CacheKey is a stable digest of the normalised query.
func (q Query) CacheKey() string {
	enc := q.Normalize().Values().Encode()
	return strconv.FormatUint(xxhash.Sum64String(enc), 16)
}

// Apply runs the whole pipeline on an in-memory collection.
func Apply[T Listable](items []T, q Query) Page[T] {
	q = q.Normalize()
	return Paginate(Sort(Filter(items, q.Criteria), q.Sort), q.Page, q.PageSize)
}
