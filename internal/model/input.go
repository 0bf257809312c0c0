package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"careers/listing-service/internal/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PositionInput is the create payload for a position.
type PositionInput struct {
	Title          string     `json:"title"          validate:"required,max=200"`
	Summary        string     `json:"summary"        validate:"max=1000"`
	Description    string     `json:"description"`
	CategorySlug   *string    `json:"categorySlug"   validate:"omitempty,max=80"`
	Location       string     `json:"location"       validate:"max=120"`
	EmploymentType string     `json:"employmentType" validate:"omitempty,oneof=full_time part_time contract internship"`
	Level          string     `json:"level"          validate:"omitempty,oneof=junior mid senior lead"`
	Status         string     `json:"status"         validate:"omitempty,oneof=draft open closed"`
	SalaryMin      *float64   `json:"salaryMin"      validate:"omitempty,gte=0"`
	SalaryMax      *float64   `json:"salaryMax"      validate:"omitempty,gte=0"`
	Featured       bool       `json:"featured"`
	Urgent         bool       `json:"urgent"`
	Deadline       *time.Time `json:"deadline"`
}

// Validate checks struct tags and cross-field rules, defaulting the status.
func (in *PositionInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = PositionDraft
	}
	if err := check(in); err != nil {
		return err
	}
	if in.SalaryMin != nil && in.SalaryMax != nil && *in.SalaryMin > *in.SalaryMax {
		return apperr.Invalid("salaryMin must not exceed salaryMax")
	}
	return nil
}

// PositionPatch is a partial update; nil fields are left untouched.
type PositionPatch struct {
	Title          *string    `json:"title"          validate:"omitempty,min=1,max=200"`
	Summary        *string    `json:"summary"        validate:"omitempty,max=1000"`
	Description    *string    `json:"description"`
	CategorySlug   *string    `json:"categorySlug"   validate:"omitempty,max=80"`
	Location       *string    `json:"location"       validate:"omitempty,max=120"`
	EmploymentType *string    `json:"employmentType" validate:"omitempty,oneof=full_time part_time contract internship"`
	Level          *string    `json:"level"          validate:"omitempty,oneof=junior mid senior lead"`
	Status         *string    `json:"status"         validate:"omitempty,oneof=draft open closed"`
	SalaryMin      *float64   `json:"salaryMin"      validate:"omitempty,gte=0"`
	SalaryMax      *float64   `json:"salaryMax"      validate:"omitempty,gte=0"`
	Featured       *bool      `json:"featured"`
	Urgent         *bool      `json:"urgent"`
	Active         *bool      `json:"active"`
	Deadline       *time.Time `json:"deadline"`
}

// Validate checks struct tags.
func (p *PositionPatch) Validate() error { return check(p) }

// Columns maps the non-nil fields to their column names.
func (p *PositionPatch) Columns() map[string]any {
	m := map[string]any{}
	set(m, "title", p.Title)
	set(m, "summary", p.Summary)
	set(m, "description", p.Description)
	set(m, "category_slug", p.CategorySlug)
	set(m, "location", p.Location)
	set(m, "employment_type", p.EmploymentType)
	set(m, "level", p.Level)
	set(m, "status", p.Status)
	set(m, "salary_min", p.SalaryMin)
	set(m, "salary_max", p.SalaryMax)
	set(m, "featured", p.Featured)
	set(m, "urgent", p.Urgent)
	set(m, "active", p.Active)
	set(m, "deadline", p.Deadline)
	return m
}

// ApplyTo returns a copy of pos with the patch applied.
func (p *PositionPatch) ApplyTo(pos Position) Position {
	assign(&pos.Title, p.Title)
	assign(&pos.Summary, p.Summary)
	assign(&pos.Description, p.Description)
	if p.CategorySlug != nil {
		pos.CategorySlug = p.CategorySlug
	}
	assign(&pos.Location, p.Location)
	assign(&pos.EmploymentType, p.EmploymentType)
	assign(&pos.Level, p.Level)
	assign(&pos.Status, p.Status)
	if p.SalaryMin != nil {
		pos.SalaryMin = p.SalaryMin
	}
	if p.SalaryMax != nil {
		pos.SalaryMax = p.SalaryMax
	}
	assign(&pos.Featured, p.Featured)
	assign(&pos.Urgent, p.Urgent)
	assign(&pos.Active, p.Active)
	if p.Deadline != nil {
		pos.Deadline = p.Deadline
	}
	return pos
}

// ProjectInput is the create payload for a project or product.
type ProjectInput struct {
	Kind         string  `json:"kind"         validate:"required,oneof=project product"`
	Title        string  `json:"title"        validate:"required,max=200"`
	Summary      string  `json:"summary"      validate:"max=1000"`
	CategorySlug *string `json:"categorySlug" validate:"omitempty,max=80"`
	Status       string  `json:"status"       validate:"omitempty,oneof=draft published archived"`
	Featured     bool    `json:"featured"`
}

// Validate checks struct tags, defaulting the status.
func (in *ProjectInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = "draft"
	}
	return check(in)
}

// ProjectPatch is a partial update of a project.
type ProjectPatch struct {
	Title        *string `json:"title"        validate:"omitempty,min=1,max=200"`
	Summary      *string `json:"summary"      validate:"omitempty,max=1000"`
	CategorySlug *string `json:"categorySlug" validate:"omitempty,max=80"`
	Status       *string `json:"status"       validate:"omitempty,oneof=draft published archived"`
	Featured     *bool   `json:"featured"`
	Active       *bool   `json:"active"`
}

// Validate checks struct tags.
func (p *ProjectPatch) Validate() error { return check(p) }

// Columns maps the non-nil fields to their column names.
func (p *ProjectPatch) Columns() map[string]any {
	m := map[string]any{}
	set(m, "title", p.Title)
	set(m, "summary", p.Summary)
	set(m, "category_slug", p.CategorySlug)
	set(m, "status", p.Status)
	set(m, "featured", p.Featured)
	set(m, "active", p.Active)
	return m
}

// ApplyTo returns a copy of pr with the patch applied.
func (p *ProjectPatch) ApplyTo(pr Project) Project {
	assign(&pr.Title, p.Title)
	assign(&pr.Summary, p.Summary)
	if p.CategorySlug != nil {
		pr.CategorySlug = p.CategorySlug
	}
	assign(&pr.Status, p.Status)
	assign(&pr.Featured, p.Featured)
	assign(&pr.Active, p.Active)
	return pr
}

// check runs the validator and folds its field errors into one
// *apperr.ValidationError.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Invalid("invalid payload: %v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return apperr.Invalid("invalid payload: %s", strings.Join(msgs, "; "))
}

func set[T any](m map[string]any, col string, v *T) {
	if v != nil {
		m[col] = *v
	}
}

func assign[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
