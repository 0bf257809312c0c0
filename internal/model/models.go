// Package model defines the record shapes served by the listing endpoints.
//
// Every type implements listing.Listable so the same filter, sort and
// pagination code runs over all of them.
package model

import (
	"time"

	"careers/listing-service/internal/listing"
)

// Position mirrors a row of the positions table (a career listing).
type Position struct {
	ID                string     `json:"id"                db:"id"`
	Title             string     `json:"title"             db:"title"`
	Summary           string     `json:"summary"           db:"summary"`
	Description       string     `json:"description"       db:"description"`
	CategorySlug      *string    `json:"categorySlug"      db:"category_slug"`
	Location          string     `json:"location"          db:"location"`
	EmploymentType    string     `json:"employmentType"    db:"employment_type"`
	Level             string     `json:"level"             db:"level"`
	Status            string     `json:"status"            db:"status"`
	SalaryMin         *float64   `json:"salaryMin"         db:"salary_min"`
	SalaryMax         *float64   `json:"salaryMax"         db:"salary_max"`
	Featured          bool       `json:"featured"          db:"featured"`
	Urgent            bool       `json:"urgent"            db:"urgent"`
	Active            bool       `json:"active"            db:"active"`
	Views             int        `json:"views"             db:"views"`
	ApplicationsCount int        `json:"applicationsCount" db:"applications_count"`
	Deadline          *time.Time `json:"deadline"          db:"deadline"`
	CreatedAt         time.Time  `json:"createdAt"         db:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt"         db:"updated_at"`
}

// Position statuses.
const (
	PositionDraft  = "draft"
	PositionOpen   = "open"
	PositionClosed = "closed"
)

// Salary is the sortable salary: the maximum, else the minimum, else 0.
func (p Position) Salary() float64 {
	switch {
	case p.SalaryMax != nil:
		return *p.SalaryMax
	case p.SalaryMin != nil:
		return *p.SalaryMin
	}
	return 0
}

func (p Position) Facets() listing.Facets {
	f := listing.Facets{
		ID:           p.ID,
		Title:        p.Title,
		Text:         []string{p.Title, p.Summary, p.Description},
		Category:     deref(p.CategorySlug),
		Location:     p.Location,
		Type:         p.EmploymentType,
		Level:        p.Level,
		Status:       p.Status,
		Featured:     p.Featured,
		Urgent:       p.Urgent,
		Active:       p.Active,
		Views:        p.Views,
		Applications: p.ApplicationsCount,
		Created:      p.CreatedAt,
		Updated:      p.UpdatedAt,
		Salary:       p.Salary(),
	}
	if p.Deadline != nil {
		f.Deadline = *p.Deadline
	}
	return f
}

// Project kinds. Projects and products share a table.
const (
	KindProject = "project"
	KindProduct = "product"
)

// Project is a portfolio project or a product.
type Project struct {
	ID           string    `json:"id"           db:"id"`
	Kind         string    `json:"kind"         db:"kind"`
	Title        string    `json:"title"        db:"title"`
	Summary      string    `json:"summary"      db:"summary"`
	CategorySlug *string   `json:"categorySlug" db:"category_slug"`
	Status       string    `json:"status"       db:"status"`
	Featured     bool      `json:"featured"     db:"featured"`
	Active       bool      `json:"active"       db:"active"`
	Views        int       `json:"views"        db:"views"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"    db:"updated_at"`
}

func (p Project) Facets() listing.Facets {
	return listing.Facets{
		ID:       p.ID,
		Title:    p.Title,
		Text:     []string{p.Title, p.Summary},
		Category: deref(p.CategorySlug),
		Type:     p.Kind,
		Status:   p.Status,
		Featured: p.Featured,
		Active:   p.Active,
		Views:    p.Views,
		Created:  p.CreatedAt,
		Updated:  p.UpdatedAt,
	}
}

// Post is a blog article.
type Post struct {
	ID           string     `json:"id"           db:"id"`
	Title        string     `json:"title"        db:"title"`
	Excerpt      string     `json:"excerpt"      db:"excerpt"`
	AuthorName   string     `json:"authorName"   db:"author_name"`
	CategorySlug *string    `json:"categorySlug" db:"category_slug"`
	Status       string     `json:"status"       db:"status"`
	Tags         []string   `json:"tags"         db:"tags"`
	Featured     bool       `json:"featured"     db:"featured"`
	Views        int        `json:"views"        db:"views"`
	PublishedAt  *time.Time `json:"publishedAt"  db:"published_at"`
	CreatedAt    time.Time  `json:"createdAt"    db:"created_at"`
}

func (p Post) Facets() listing.Facets {
	return listing.Facets{
		ID:       p.ID,
		Title:    p.Title,
		Text:     []string{p.Title, p.Excerpt, p.AuthorName},
		Category: deref(p.CategorySlug),
		Status:   p.Status,
		Featured: p.Featured,
		Views:    p.Views,
		Created:  p.CreatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
