package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"careers/listing-service/internal/session"
)

// listApplications loads every application and filters, sorts and
// paginates them in memory.
func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	defer h.observe("applications", time.Now())
	page, err := session.LocalSource(h.deps.Applications.List)(r.Context(), h.query(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, page)
}

func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.deps.Applications.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) listActions(w http.ResponseWriter, r *http.Request) {
	actions, err := h.deps.Applications.Actions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, actions)
}

func (h *Handler) moveApplication(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Status == "" {
		jsonError(w, "body must contain status", http.StatusBadRequest)
		return
	}
	app, err := h.deps.Applications.ApplyTransition(r.Context(), mux.Vars(r)["id"], body.Status, body.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) applyAction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Note string `json:"note"`
	}
	if r.ContentLength != 0 {
		if err := decode(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}
	}
	vars := mux.Vars(r)
	app, err := h.deps.Applications.ApplyAction(r.Context(), vars["id"], vars["action"], body.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) addNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Note string `json:"note"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	app, err := h.deps.Applications.AddNote(r.Context(), mux.Vars(r)["id"], body.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) deleteApplication(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Applications.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
