package listing

import (
	"fmt"

	"careers/listing-service/internal/apperr"
)

// DefaultPageSize is used when a non-positive page size is requested.
const DefaultPageSize = 12

// MaxPageSize caps the page size accepted from clients.
const MaxPageSize = 100

// Page is one window of an ordered collection plus its metadata.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Window is the page metadata derived from a total count.
type Window struct {
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	Offset     int
	Limit      int
}

// TotalPages returns max(1, ceil(total/pageSize)).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// NewWindow clamps page into [1, totalPages] and computes the slice bounds.
// Server-side sources call it after counting, before fetching rows.
func NewWindow(total, page, pageSize int) Window {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}
	pages := TotalPages(total, pageSize)
	page = min(max(page, 1), pages)
	offset := (page - 1) * pageSize
	return Window{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: pages,
		Offset:     offset,
		Limit:      max(0, min(pageSize, total-offset)),
	}
}

// PageOf wraps already-windowed items with the metadata of w.
func PageOf[T any](items []T, w Window) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      w.Total,
		Page:       w.Page,
		PageSize:   w.PageSize,
		TotalPages: w.TotalPages,
		HasNext:    w.Page < w.TotalPages,
		HasPrev:    w.Page > 1,
	}
}

// Paginate returns the requested page of items. Out-of-range pages are
// clamped; an empty collection yields a single empty page.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	w := NewWindow(len(items), page, pageSize)
	window := make([]T, w.Limit)
	copy(window, items[w.Offset:w.Offset+w.Limit])
	return PageOf(window, w)
}

// Relay checks the metadata of a page produced by a server-side source and
// returns it unchanged. It never re-windows the items.
func Relay[T any](p Page[T]) (Page[T], error) {
	switch {
	case p.PageSize <= 0:
		return p, apperr.Invalid("page size %d must be positive", p.PageSize)
	case p.Total < 0:
		return p, apperr.Invalid("total %d must not be negative", p.Total)
	case p.TotalPages != TotalPages(p.Total, p.PageSize):
		return p, apperr.Invalid("total pages %d inconsistent with total %d and page size %d",
			p.TotalPages, p.Total, p.PageSize)
	case p.Page < 1 || p.Page > p.TotalPages:
		return p, apperr.Invalid("page %d outside [1, %d]", p.Page, p.TotalPages)
	case p.HasNext != (p.Page < p.TotalPages) || p.HasPrev != (p.Page > 1):
		return p, apperr.Invalid("navigation flags inconsistent with page %d of %d", p.Page, p.TotalPages)
	case len(p.Items) > p.PageSize:
		return p, apperr.Invalid("%d items exceed page size %d", len(p.Items), p.PageSize)
	}
	if p.Items == nil {
		p.Items = []T{}
	}
	return p, nil
}

// String is used in log lines.
func (w Window) String() string {
	return fmt.Sprintf("page %d/%d (size %d, total %d)", w.Page, w.TotalPages, w.PageSize, w.Total)
}
