package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// Key names a filter criterion.
type Key string

const (
	KeySearch   Key = "search"
	KeyCategory Key = "category"
	KeyLocation Key = "location"
	KeyType     Key = "type"
	KeyLevel    Key = "level"
	KeyStatus   Key = "status"
	KeyFeatured Key = "featured"
)

// All is the sentinel value equivalent to "no constraint".
const All = "all"

// Keys lists every criterion in a fixed order.
var Keys = []Key{KeySearch, KeyCategory, KeyLocation, KeyType, KeyLevel, KeyStatus, KeyFeatured}

// Criteria is the set of active filter constraints. Empty fields and a nil
// Featured mean no constraint. Criteria is a plain value: applying it twice
// to the same collection yields the same result.
type Criteria struct {
	Search   string
	Category string
	Location string
	Type     string
	Level    string
	Status   string
	Featured *bool
}

// Set returns a copy of c with key set to value. The "all" sentinel and
// blank values clear the criterion; unknown keys and unparsable booleans
// leave c unchanged.
func (c Criteria) Set(key Key, value string) Criteria {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, All) {
		value = ""
	}
	switch key {
	case KeySearch:
		c.Search = value
	case KeyCategory:
		c.Category = value
	case KeyLocation:
		c.Location = value
	case KeyType:
		c.Type = value
	case KeyLevel:
		c.Level = value
	case KeyStatus:
		c.Status = value
	case KeyFeatured:
		if value == "" {
			c.Featured = nil
			break
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			break
		}
		c.Featured = &b
	}
	return c
}

// Get returns the raw value of key ("" when inactive).
func (c Criteria) Get(key Key) string {
	switch key {
	case KeySearch:
		return c.Search
	case KeyCategory:
		return c.Category
	case KeyLocation:
		return c.Location
	case KeyType:
		return c.Type
	case KeyLevel:
		return c.Level
	case KeyStatus:
		return c.Status
	case KeyFeatured:
		if c.Featured != nil {
			return strconv.FormatBool(*c.Featured)
		}
	}
	return ""
}

// IsEmpty reports whether no criterion is active.
func (c Criteria) IsEmpty() bool {
	for _, k := range Keys {
		if c.Get(k) != "" {
			return false
		}
	}
	return true
}

// ParseCriteria reads criteria from query-string values.
func ParseCriteria(v url.Values) Criteria {
	var c Criteria
	for _, k := range Keys {
		if raw, ok := v[string(k)]; ok && len(raw) > 0 {
			c = c.Set(k, raw[0])
		}
	}
	return c
}

// Values encodes c back into query-string form, omitting inactive keys.
func (c Criteria) Values() url.Values {
	v := url.Values{}
	for _, k := range Keys {
		if s := c.Get(k); s != "" {
			v.Set(string(k), s)
		}
	}
	return v
}

// Matches reports whether a record with facets f satisfies every active
// criterion in c.
func Matches(f Facets, c Criteria) bool {
	if c.Search != "" && !containsFold(f.Text, c.Search) {
		return false
	}
	if !equalOrUnset(f.Category, c.Category) ||
		!equalOrUnset(f.Location, c.Location) ||
		!equalOrUnset(f.Type, c.Type) ||
		!equalOrUnset(f.Level, c.Level) ||
		!equalOrUnset(f.Status, c.Status) {
		return false
	}
	if c.Featured != nil && f.Featured != *c.Featured {
		return false
	}
	return true
}

// Filter returns the records matching c, in input order.
func Filter[T Listable](items []T, c Criteria) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if Matches(it.Facets(), c) {
			out = append(out, it)
		}
	}
	return out
}

func equalOrUnset(have, want string) bool {
	return want == "" || have == want
}

func containsFold(fields []string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
