// Package kanban defines the status workflow for job applications.
//
// Guided (one-click) status graph:
//
//	SUBMITTED ──► REVIEWING ──► INTERVIEW_SCHEDULED ┄┄► INTERVIEW_COMPLETED ──► OFFERED ──► ACCEPTED
//	    │             │                  │                        │                 │
//	    └─────────────┴──────────────────┴────────────────────────┴─────────────────┴──► REJECTED
//
// The dotted edge and every other move are only reachable through an explicit
// status selection. ACCEPTED, REJECTED and WITHDRAWN are terminal: no guided
// action is offered from them. Deletion is allowed from REJECTED only.
package kanban

import "fmt"

// Status values mirror the application_status enum in PostgreSQL.
type Status string

const (
	StatusSubmitted          Status = "submitted"
	StatusReviewing          Status = "reviewing"
	StatusInterviewScheduled Status = "interview_scheduled"
	StatusInterviewCompleted Status = "interview_completed"
	StatusOffered            Status = "offered"
	StatusAccepted           Status = "accepted"
	StatusRejected           Status = "rejected"
	StatusWithdrawn          Status = "withdrawn"
)

// Statuses lists every status in typical progression order.
var Statuses = []Status{
	StatusSubmitted,
	StatusReviewing,
	StatusInterviewScheduled,
	StatusInterviewCompleted,
	StatusOffered,
	StatusAccepted,
	StatusRejected,
	StatusWithdrawn,
}

// Action is a guided, one-click transition.
type Action struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	To    Status `json:"to"`
}

var (
	actionReview   = Action{Name: "review", Label: "Review", To: StatusReviewing}
	actionSchedule = Action{Name: "schedule_interview", Label: "Schedule Interview", To: StatusInterviewScheduled}
	actionOffer    = Action{Name: "make_offer", Label: "Make Offer", To: StatusOffered}
	actionAccept   = Action{Name: "accept", Label: "Accept", To: StatusAccepted}
	actionReject   = Action{Name: "reject", Label: "Reject", To: StatusRejected}
)

// guidedActions lists the one-click actions offered from each status.
var guidedActions = map[Status][]Action{
	StatusSubmitted:          {actionReview, actionReject},
	StatusReviewing:          {actionSchedule, actionReject},
	StatusInterviewScheduled: {actionReject},
	StatusInterviewCompleted: {actionOffer, actionReject},
	StatusOffered:            {actionAccept, actionReject},
	// accepted, rejected and withdrawn are terminal
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	for _, known := range Statuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsTerminal reports whether no guided action is offered from s.
func IsTerminal(s Status) bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusWithdrawn
}

// GuidedActions returns the one-click actions offered from s.
func GuidedActions(s Status) []Action {
	out := make([]Action, len(guidedActions[s]))
	copy(out, guidedActions[s])
	return out
}

// FindAction returns the guided action called name offered from s.
func FindAction(s Status, name string) (Action, bool) {
	for _, a := range guidedActions[s] {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// IsGuidedTransition returns true when from → to is offered as a one-click
// action.
func IsGuidedTransition(from, to Status) bool {
	for _, a := range guidedActions[from] {
		if a.To == to {
			return true
		}
	}
	return false
}

// IsTransitionAllowed reports whether an explicit status selection may move
// an application from → to. Any known status may be selected from any other;
// selecting the current status is a no-op, not a transition.
func IsTransitionAllowed(from, to Status) bool {
	if _, err := ParseStatus(string(from)); err != nil {
		return false
	}
	if _, err := ParseStatus(string(to)); err != nil {
		return false
	}
	return from != to
}

// CanDelete reports whether an application in status s may be hard-deleted.
func CanDelete(s Status) bool { return s == StatusRejected }
