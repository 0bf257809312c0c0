package listing_test

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"careers/listing-service/internal/listing"
)

// item is a minimal Listable used across the listing tests.
type item struct{ f listing.Facets }

func (i item) Facets() listing.Facets { return i.f }

var base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func ids[T listing.Listable](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Facets().ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sample() []item {
	return []item{
		{listing.Facets{ID: "1", Title: "Senior Go Engineer", Text: []string{"Senior Go Engineer", "backend"}, Category: "engineering", Location: "paris", Type: "full_time", Level: "senior", Status: "open", Featured: true}},
		{listing.Facets{ID: "2", Title: "Product Designer", Text: []string{"Product Designer", "figma"}, Category: "design", Location: "remote", Type: "contract", Level: "mid", Status: "open"}},
		{listing.Facets{ID: "3", Title: "Data engineer", Text: []string{"Data engineer", "pipelines"}, Category: "engineering", Location: "remote", Type: "full_time", Level: "mid", Status: "closed"}},
		{listing.Facets{ID: "4", Title: "Office Manager", Text: []string{"Office Manager"}, Location: "paris", Type: "part_time", Level: "junior", Status: "open"}},
	}
}

func featured(b bool) *bool { return &b }

// ── Matches ────────────────────────────────────────────────────────────────

func TestMatches_EmptyCriteriaMatchesEverything(t *testing.T) {
	for _, it := range sample() {
		if !listing.Matches(it.Facets(), listing.Criteria{}) {
			t.Errorf("record %s should match empty criteria", it.f.ID)
		}
	}
}

func TestMatches_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	got := ids(listing.Filter(sample(), listing.Criteria{Search: "ENGINEER"}))
	if want := []string{"1", "3"}; !equal(got, want) {
		t.Errorf("Filter(search=ENGINEER) = %v, want %v", got, want)
	}
}

func TestMatches_SearchLooksAtEveryTextField(t *testing.T) {
	got := ids(listing.Filter(sample(), listing.Criteria{Search: "figma"}))
	if want := []string{"2"}; !equal(got, want) {
		t.Errorf("Filter(search=figma) = %v, want %v", got, want)
	}
}

func TestMatches_EqualityCriteriaAreANDed(t *testing.T) {
	c := listing.Criteria{Category: "engineering", Location: "remote"}
	got := ids(listing.Filter(sample(), c))
	if want := []string{"3"}; !equal(got, want) {
		t.Errorf("Filter(%+v) = %v, want %v", c, got, want)
	}
}

func TestMatches_MissingRelation(t *testing.T) {
	office := sample()[3].Facets()
	if listing.Matches(office, listing.Criteria{Category: "engineering"}) {
		t.Error("record without category must not match a category filter")
	}
	if !listing.Matches(office, listing.Criteria{Location: "paris"}) {
		t.Error("record without category must match when no category filter is set")
	}
}

func TestMatches_Featured(t *testing.T) {
	if got := ids(listing.Filter(sample(), listing.Criteria{Featured: featured(true)})); !equal(got, []string{"1"}) {
		t.Errorf("featured=true got %v", got)
	}
	if got := ids(listing.Filter(sample(), listing.Criteria{Featured: featured(false)})); !equal(got, []string{"2", "3", "4"}) {
		t.Errorf("featured=false got %v", got)
	}
}

// ── Criteria ───────────────────────────────────────────────────────────────

func TestCriteriaSet_AllSentinelIsAbsence(t *testing.T) {
	c := listing.Criteria{}.Set(listing.KeyCategory, "all").Set(listing.KeyStatus, "ALL")
	if !c.IsEmpty() {
		t.Errorf("criteria %+v should be empty", c)
	}
	all := listing.Filter(sample(), c)
	if len(all) != len(sample()) {
		t.Errorf("'all' filters removed records: got %d", len(all))
	}
}

func TestCriteriaSet_InvalidFeaturedIgnored(t *testing.T) {
	c := listing.Criteria{}.Set(listing.KeyFeatured, "maybe")
	if c.Featured != nil {
		t.Errorf("Featured = %v, want nil", *c.Featured)
	}
}

func TestCriteriaSet_UnknownKeyIgnored(t *testing.T) {
	c := listing.Criteria{}.Set(listing.Key("colour"), "red")
	if !c.IsEmpty() {
		t.Errorf("unknown key changed criteria: %+v", c)
	}
}

func TestParseCriteria_RoundTrip(t *testing.T) {
	v := url.Values{"search": {" go "}, "category": {"all"}, "featured": {"true"}, "level": {"senior"}}
	c := listing.ParseCriteria(v)
	if c.Search != "go" || c.Category != "" || c.Level != "senior" || c.Featured == nil || !*c.Featured {
		t.Fatalf("ParseCriteria = %+v", c)
	}
	back := listing.ParseCriteria(c.Values())
	if back.Get(listing.KeySearch) != "go" || back.Get(listing.KeyFeatured) != "true" {
		t.Errorf("round trip lost values: %+v", back)
	}
}

// ── Properties ─────────────────────────────────────────────────────────────

func TestFilter_Idempotent(t *testing.T) {
	for _, c := range []listing.Criteria{
		{}, {Search: "e"}, {Category: "engineering"}, {Location: "paris", Status: "open"},
		{Featured: featured(false), Search: "o"},
	} {
		once := listing.Filter(sample(), c)
		twice := listing.Filter(once, c)
		if !equal(ids(once), ids(twice)) {
			t.Errorf("filter not idempotent for %+v: %v vs %v", c, ids(once), ids(twice))
		}
	}
}

func TestFilter_Monotonic(t *testing.T) {
	start := listing.Criteria{Status: "open"}
	before := len(listing.Filter(sample(), start))
	for _, k := range listing.Keys {
		for _, v := range []string{"engineering", "paris", "full_time", "senior", "open", "true", "e"} {
			narrowed := start.Set(k, v)
			if k == listing.KeyStatus {
				continue
			}
			if after := len(listing.Filter(sample(), narrowed)); after > before {
				t.Errorf("adding %s=%s grew the result from %d to %d", k, v, before, after)
			}
		}
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	in := sample()
	_ = listing.Filter(in, listing.Criteria{Search: "engineer"})
	if got := ids(in); !equal(got, []string{"1", "2", "3", "4"}) {
		t.Errorf("input mutated: %v", got)
	}
}

func TestFilter_ClearingSearchRestoresAll(t *testing.T) {
	var items []item
	for i := range 10 {
		items = append(items, item{listing.Facets{ID: fmt.Sprint(i), Title: "Junior role", Text: []string{"Junior role"}}})
	}
	q := listing.NewQuery(10).WithCriterion(listing.KeySearch, "Senior")
	if p := listing.Apply(items, q); p.Total != 0 {
		t.Fatalf("total = %d, want 0", p.Total)
	}
	q = q.WithCriterion(listing.KeySearch, "")
	if p := listing.Apply(items, q); p.Total != 10 {
		t.Errorf("after clearing search total = %d, want 10", p.Total)
	}
}
