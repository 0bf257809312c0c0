package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"careers/listing-service/internal/listing"
	"careers/listing-service/internal/model"
)

func TestBrowseFlagsQuery(t *testing.T) {
	search, status, empty := "go", "open", ""
	f := browseFlags{
		criteria: map[listing.Key]*string{},
		sort:     "title",
		page:     3,
	}
	for _, k := range listing.Keys {
		f.criteria[k] = &empty
	}
	f.criteria[listing.KeySearch] = &search
	f.criteria[listing.KeyStatus] = &status

	q := f.query(12)
	assert.Equal(t, "go", q.Criteria.Search)
	assert.Equal(t, "open", q.Criteria.Status)
	assert.Equal(t, listing.SortTitle, q.Sort.Key)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 12, q.PageSize)
}

func TestPrintPage(t *testing.T) {
	var buf bytes.Buffer
	page := listing.Paginate([]model.Position{{ID: "a", Title: "Go Engineer", Status: "open"}}, 1, 10)

	printPage(&buf, page, positionRow, []string{"ID", "TITLE", "LOCATION", "TYPE", "LEVEL", "STATUS"})

	out := buf.String()
	assert.Contains(t, out, "Go Engineer")
	assert.Contains(t, out, "page 1/1")
	assert.Contains(t, out, "1 total")
}
