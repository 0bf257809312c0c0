// Package kanban contains the pure business logic of the application
// tracking board. It is transport-agnostic: used by the REST handlers
// (httpapi) and the gRPC server (grpcserver).
package kanban

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"careers/listing-service/internal/apperr"
)

// ─── Collaborators ───────────────────────────────────────────────────────────

// Store is the record source for applications. Implementations must make
// each method atomic: a failed call leaves the record unchanged.
type Store interface {
	ListApplications(ctx context.Context) ([]Application, error)
	GetApplication(ctx context.Context, id string) (*Application, error)
	// UpdateApplicationStatus moves id from → to only if its status is still
	// from, appending entry to history_log and noteLine (if any) to notes.
	// A concurrent change yields a *apperr.TransitionError.
	UpdateApplicationStatus(ctx context.Context, id string, from, to Status, entry HistoryEntry, noteLine string) (*Application, error)
	AppendApplicationNote(ctx context.Context, id, noteLine string) (*Application, error)
	// DeleteApplication removes id only while its status is required.
	DeleteApplication(ctx context.Context, id string, required Status) error
}

// Event types published after successful mutations.
const (
	EventStatusChanged = "EVENT_APPLICATION_STATUS_CHANGED"
	EventNoteAdded     = "EVENT_APPLICATION_NOTE_ADDED"
	EventDeleted       = "EVENT_APPLICATION_DELETED"
)

// Event is the refresh signal sent to listening clients.
type Event struct {
	Type          string    `json:"type"`
	ApplicationID string    `json:"applicationId"`
	From          Status    `json:"from,omitempty"`
	To            Status    `json:"to,omitempty"`
	At            time.Time `json:"at"`
}

// EventPublisher delivers events; failures are logged, never returned.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Observer receives workflow outcomes (metrics).
type Observer interface {
	TransitionApplied(to Status)
	TransitionRejected()
	ApplicationDeleted()
}

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates the status workflow. It has no dependency on any
// transport.
type Service struct {
	store    Store
	events   EventPublisher
	observer Observer
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithObserver reports workflow outcomes to o.
func WithObserver(o Observer) Option { return func(s *Service) { s.observer = o } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService returns a configured Service. events may be nil.
func NewService(store Store, events EventPublisher, opts ...Option) *Service {
	s := &Service{store: store, events: events, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ─── Queries ─────────────────────────────────────────────────────────────────

// List returns every application, newest first. Filtering, sorting and
// pagination happen on the caller's side.
func (s *Service) List(ctx context.Context) ([]Application, error) {
	apps, err := s.store.ListApplications(ctx)
	if err != nil {
		return nil, apperr.Source("listApplications", err)
	}
	return apps, nil
}

// Get returns one application.
func (s *Service) Get(ctx context.Context, id string) (*Application, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return nil, apperr.Source("getApplication", err)
	}
	return app, nil
}

// Actions returns the guided actions offered for an application.
func (s *Service) Actions(ctx context.Context, id string) ([]Action, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return GuidedActions(app.Status), nil
}

// ─── Mutations ───────────────────────────────────────────────────────────────

// ApplyTransition moves an application to newStatus through an explicit
// status selection, optionally recording a note.
//
// Requesting the current status changes nothing; a note sent with it is
// appended as a plain note.
// Returns apperr.ErrNotFound when the application does not exist and a
// *apperr.TransitionError when the move is refused or raced.
func (s *Service) ApplyTransition(ctx context.Context, id, newStatus, note string) (*Application, error) {
	to, err := ParseStatus(newStatus)
	if err != nil {
		return nil, &apperr.ValidationError{Msg: err.Error()}
	}
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status == to {
		if strings.TrimSpace(note) != "" {
			return s.AddNote(ctx, id, note)
		}
		return app, nil
	}
	if !IsTransitionAllowed(app.Status, to) {
		return nil, s.rejected(&apperr.TransitionError{
			From: string(app.Status), To: string(to), Reason: "unknown current status",
		})
	}
	return s.move(ctx, app, to, note)
}

// ApplyAction runs a guided one-click action such as "review" or "reject".
// Actions not offered from the current status are refused.
func (s *Service) ApplyAction(ctx context.Context, id, action, note string) (*Application, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a, ok := FindAction(app.Status, action)
	if !ok {
		return nil, s.rejected(&apperr.TransitionError{
			From:   string(app.Status),
			Reason: fmt.Sprintf("action %q is not offered", action),
		})
	}
	return s.move(ctx, app, a.To, note)
}

// AddNote appends a timestamped note without changing the status.
func (s *Service) AddNote(ctx context.Context, id, note string) (*Application, error) {
	if strings.TrimSpace(note) == "" {
		return nil, &apperr.ValidationError{Msg: "note must not be empty"}
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	at := s.now()
	app, err := s.store.AppendApplicationNote(ctx, id, FormatNote(at, "", "", note))
	if err != nil {
		return nil, apperr.Source("appendApplicationNote", err)
	}
	s.publish(ctx, Event{Type: EventNoteAdded, ApplicationID: id, At: at})
	return app, nil
}

// Delete hard-deletes an application. Only rejected applications may be
// deleted; the check is repeated by the store at write time.
func (s *Service) Delete(ctx context.Context, id string) error {
	app, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanDelete(app.Status) {
		return s.rejected(&apperr.TransitionError{
			From:   string(app.Status),
			Reason: "only rejected applications can be deleted",
		})
	}
	if err := s.store.DeleteApplication(ctx, id, StatusRejected); err != nil {
		if apperr.IsTransitionRejected(err) {
			return s.rejected(err)
		}
		return apperr.Source("deleteApplication", err)
	}
	if s.observer != nil {
		s.observer.ApplicationDeleted()
	}
	s.publish(ctx, Event{Type: EventDeleted, ApplicationID: id, From: app.Status, At: s.now()})
	return nil
}

func (s *Service) move(ctx context.Context, app *Application, to Status, note string) (*Application, error) {
	at := s.now()
	note = strings.TrimSpace(note)
	entry := HistoryEntry{From: app.Status, To: to, At: at.UTC().Format(time.RFC3339), Note: note}
	var line string
	if note != "" {
		line = FormatNote(at, app.Status, to, note)
	}

	updated, err := s.store.UpdateApplicationStatus(ctx, app.ID, app.Status, to, entry, line)
	if err != nil {
		if apperr.IsTransitionRejected(err) {
			return nil, s.rejected(err)
		}
		return nil, apperr.Source("updateApplicationStatus", err)
	}

	if s.observer != nil {
		s.observer.TransitionApplied(to)
	}
	s.publish(ctx, Event{Type: EventStatusChanged, ApplicationID: app.ID, From: app.Status, To: to, At: at})
	return updated, nil
}

func (s *Service) rejected(err error) error {
	if s.observer != nil {
		s.observer.TransitionRejected()
	}
	return err
}

// publish is non-fatal: the write already succeeded.
func (s *Service) publish(ctx context.Context, ev Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		slog.Warn("publish application event failed", "type", ev.Type, "applicationId", ev.ApplicationID, "err", err)
	}
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &apperr.ValidationError{Msg: fmt.Sprintf("invalid application id %q", id)}
	}
	return nil
}
