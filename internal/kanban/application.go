package kanban

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"careers/listing-service/internal/listing"
)

// Application is a candidate's application to a position, as stored in the
// applications table and returned to clients.
type Application struct {
	ID             string          `json:"id"             db:"id"`
	PositionID     string          `json:"positionId"     db:"position_id"`
	PositionTitle  string          `json:"positionTitle"  db:"position_title"`
	CandidateName  string          `json:"candidateName"  db:"candidate_name"`
	CandidateEmail string          `json:"candidateEmail" db:"candidate_email"`
	Status         Status          `json:"status"         db:"status"`
	Notes          string          `json:"notes"          db:"notes"`
	HistoryLog     json.RawMessage `json:"historyLog"     db:"history_log"`
	AppliedAt      time.Time       `json:"appliedAt"      db:"applied_at"`
	LastActivityAt time.Time       `json:"lastActivityAt" db:"last_activity_at"`
	UpdatedAt      time.Time       `json:"updatedAt"      db:"updated_at"`
}

// Facets exposes the application to the listing engine. Applications sort
// by applied_at; the category facet is the position they target.
func (a Application) Facets() listing.Facets {
	return listing.Facets{
		ID:       a.ID,
		Title:    a.CandidateName,
		Text:     []string{a.CandidateName, a.CandidateEmail, a.PositionTitle},
		Category: a.PositionID,
		Status:   string(a.Status),
		Created:  a.AppliedAt,
		Updated:  a.UpdatedAt,
	}
}

// HistoryEntry is one element of history_log.
type HistoryEntry struct {
	From Status `json:"from"`
	To   Status `json:"to"`
	At   string `json:"at"`
	Note string `json:"note,omitempty"`
}

// History decodes history_log; a malformed or empty log yields nil.
func (a Application) History() []HistoryEntry {
	if len(a.HistoryLog) == 0 {
		return nil
	}
	var out []HistoryEntry
	if err := json.Unmarshal(a.HistoryLog, &out); err != nil {
		return nil
	}
	return out
}

// FormatNote renders a note line appended to the notes field. The status
// change, when present, is recorded alongside the text.
func FormatNote(at time.Time, from, to Status, note string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", at.UTC().Format(time.RFC3339))
	if from != "" && to != "" && from != to {
		fmt.Fprintf(&b, " (%s → %s)", from, to)
	}
	b.WriteString(" ")
	b.WriteString(strings.TrimSpace(note))
	return b.String()
}

// AppendNote returns notes with line appended on its own line.
func AppendNote(notes, line string) string {
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}
