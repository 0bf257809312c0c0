package listing

import (
	"cmp"
	"slices"
	"strings"
)

// SortKey is one of the closed set of orderings the listings offer.
type SortKey string

const (
	SortNewest     SortKey = "newest"
	SortOldest     SortKey = "oldest"
	SortTitle      SortKey = "title"
	SortSalaryHigh SortKey = "salary_high"
	SortSalaryLow  SortKey = "salary_low"
	SortDeadline   SortKey = "deadline"
)

// Direction of a sort. The empty direction means the key's natural one.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortSpec pairs a key with a direction.
type SortSpec struct {
	Key       SortKey
	Direction Direction
}

// DefaultSort is applied when no (or an unknown) key is requested.
var DefaultSort = SortSpec{Key: SortNewest, Direction: Desc}

// ParseSortKey validates raw, returning false for unknown keys.
func ParseSortKey(raw string) (SortKey, bool) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(raw))); k {
	case SortNewest, SortOldest, SortTitle, SortSalaryHigh, SortSalaryLow, SortDeadline:
		return k, true
	}
	return "", false
}

// NewSortSpec builds a normalised spec; unknown keys fall back to
// DefaultSort and unknown directions to the key's natural direction.
func NewSortSpec(key, dir string) SortSpec {
	k, ok := ParseSortKey(key)
	if !ok {
		return DefaultSort
	}
	s := SortSpec{Key: k}
	switch d := Direction(strings.ToLower(strings.TrimSpace(dir))); d {
	case Asc, Desc:
		s.Direction = d
	}
	return s.Normalize()
}

// Normalize fills in the natural direction for the key.
func (s SortSpec) Normalize() SortSpec {
	if _, ok := ParseSortKey(string(s.Key)); !ok {
		return DefaultSort
	}
	if s.Direction == "" {
		s.Direction = naturalDirection(s.Key)
	}
	return s
}

func naturalDirection(k SortKey) Direction {
	switch k {
	case SortNewest, SortSalaryHigh:
		return Desc
	default:
		return Asc
	}
}

// Compare orders a against b under s, returning -1, 0 or 1.
//
// Missing salaries compare as 0. Records without a deadline come after every
// record with one, whatever the direction.
func Compare(a, b Facets, s SortSpec) int {
	s = s.Normalize()
	var c int
	switch s.Key {
	case SortNewest, SortOldest:
		c = a.Created.Compare(b.Created)
	case SortTitle:
		c = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortSalaryHigh, SortSalaryLow:
		c = cmp.Compare(a.Salary, b.Salary)
	case SortDeadline:
		az, bz := a.Deadline.IsZero(), b.Deadline.IsZero()
		switch {
		case az && bz:
			return 0
		case az:
			return 1
		case bz:
			return -1
		}
		c = a.Deadline.Compare(b.Deadline)
	}
	if s.Direction == Desc {
		c = -c
	}
	return c
}

// Sort returns a stably sorted copy of items; equal keys keep input order.
func Sort[T Listable](items []T, s SortSpec) []T {
	out := slices.Clone(items)
	if out == nil {
		out = []T{}
	}
	s = s.Normalize()
	slices.SortStableFunc(out, func(a, b T) int {
		return Compare(a.Facets(), b.Facets(), s)
	})
	return out
}
