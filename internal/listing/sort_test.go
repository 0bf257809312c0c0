package listing_test

import (
	"testing"
	"time"

	"careers/listing-service/internal/listing"
)

func day(n int) time.Time { return base.AddDate(0, 0, n) }

func sortable() []item {
	return []item{
		{listing.Facets{ID: "a", Title: "beta", Created: day(2), Salary: 50000, Deadline: day(30)}},
		{listing.Facets{ID: "b", Title: "Alpha", Created: day(5), Salary: 0}},
		{listing.Facets{ID: "c", Title: "gamma", Created: day(1), Salary: 90000, Deadline: day(10)}},
		{listing.Facets{ID: "d", Title: "alpha", Created: day(5), Salary: 50000}},
	}
}

func TestSort_Keys(t *testing.T) {
	cases := []struct {
		spec listing.SortSpec
		want []string
	}{
		{listing.SortSpec{Key: listing.SortNewest}, []string{"b", "d", "a", "c"}},
		{listing.SortSpec{Key: listing.SortOldest}, []string{"c", "a", "b", "d"}},
		{listing.SortSpec{Key: listing.SortTitle}, []string{"b", "d", "a", "c"}},
		{listing.SortSpec{Key: listing.SortSalaryHigh}, []string{"c", "a", "d", "b"}},
		{listing.SortSpec{Key: listing.SortSalaryLow}, []string{"b", "a", "d", "c"}},
		{listing.SortSpec{Key: listing.SortDeadline}, []string{"c", "a", "b", "d"}},
		{listing.SortSpec{Key: listing.SortDeadline, Direction: listing.Desc}, []string{"a", "c", "b", "d"}},
	}
	for _, c := range cases {
		got := ids(listing.Sort(sortable(), c.spec))
		if !equal(got, c.want) {
			t.Errorf("Sort(%+v) = %v, want %v", c.spec, got, c.want)
		}
	}
}

func TestSort_Stable(t *testing.T) {
	var items []item
	for _, id := range []string{"x1", "x2", "x3", "x4"} {
		items = append(items, item{listing.Facets{ID: id, Title: "same", Created: base}})
	}
	for _, k := range []listing.SortKey{listing.SortNewest, listing.SortTitle, listing.SortSalaryHigh, listing.SortDeadline} {
		got := ids(listing.Sort(items, listing.SortSpec{Key: k}))
		if !equal(got, []string{"x1", "x2", "x3", "x4"}) {
			t.Errorf("Sort(%s) reordered equal keys: %v", k, got)
		}
	}
}

func TestSort_FixedPoint(t *testing.T) {
	for _, k := range []listing.SortKey{listing.SortNewest, listing.SortOldest, listing.SortTitle, listing.SortSalaryHigh, listing.SortSalaryLow, listing.SortDeadline} {
		spec := listing.SortSpec{Key: k}
		once := listing.Sort(sortable(), spec)
		twice := listing.Sort(once, spec)
		if !equal(ids(once), ids(twice)) {
			t.Errorf("Sort(%s) not a fixed point: %v vs %v", k, ids(once), ids(twice))
		}
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	in := sortable()
	_ = listing.Sort(in, listing.SortSpec{Key: listing.SortTitle})
	if got := ids(in); !equal(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("input mutated: %v", got)
	}
}

func TestCompare_Values(t *testing.T) {
	a := listing.Facets{Created: day(1)}
	b := listing.Facets{Created: day(2)}
	if got := listing.Compare(a, b, listing.SortSpec{Key: listing.SortNewest}); got != 1 {
		t.Errorf("newest: Compare(older, newer) = %d, want 1", got)
	}
	if got := listing.Compare(a, b, listing.SortSpec{Key: listing.SortOldest}); got != -1 {
		t.Errorf("oldest: Compare(older, newer) = %d, want -1", got)
	}
	if got := listing.Compare(a, a, listing.SortSpec{Key: listing.SortOldest}); got != 0 {
		t.Errorf("Compare(a, a) = %d, want 0", got)
	}
}

func TestNewSortSpec_Fallbacks(t *testing.T) {
	if got := listing.NewSortSpec("popularity", "asc"); got != listing.DefaultSort {
		t.Errorf("unknown key: got %+v, want %+v", got, listing.DefaultSort)
	}
	if got := listing.NewSortSpec("salary_high", "sideways"); got.Direction != listing.Desc {
		t.Errorf("unknown direction: got %+v, want natural desc", got)
	}
	if got := listing.NewSortSpec(" Title ", "DESC"); got.Key != listing.SortTitle || got.Direction != listing.Desc {
		t.Errorf("got %+v", got)
	}
}
