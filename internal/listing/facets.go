// Package listing is the content-listing engine: a filter predicate, a sort
// comparator and a pagination windower over any record type exposing its
// Facets. All functions are pure and never mutate their input slices.
//
//	records ──► Filter ──► Sort ──► Paginate ──► Page
package listing

import "time"

// Facets is the filterable and sortable projection of a record.
//
// Empty attribute strings mean the relation is missing; a zero Deadline means
// the record has none.
type Facets struct {
	ID    string
	Title string
	// Text holds every field the free-text search looks at.
	Text []string

	Category string
	Location string
	Type     string
	Level    string
	Status   string

	Featured bool
	Urgent   bool
	Active   bool

	Views        int
	Applications int

	Created  time.Time
	Updated  time.Time
	Salary   float64
	Deadline time.Time
}

// Listable is implemented by every record type the engine can list.
type Listable interface {
	Facets() Facets
}
