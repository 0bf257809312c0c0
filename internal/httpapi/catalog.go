package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"careers/listing-service/internal/listing"
	"careers/listing-service/internal/model"
)

func (h *Handler) query(r *http.Request) listing.Query {
	return listing.ParseQuery(r.URL.Query(), h.deps.DefaultPageSize)
}

// ─── Positions ───────────────────────────────────────────────────────────────

func (h *Handler) listPositions(w http.ResponseWriter, r *http.Request) {
	defer h.observe("positions", time.Now())
	page, err := h.deps.Catalog.ListPositions(r.Context(), h.query(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, page)
}

func (h *Handler) createPosition(w http.ResponseWriter, r *http.Request) {
	var in model.PositionInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	pos, err := h.deps.Catalog.CreatePosition(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonStatus(w, http.StatusCreated, pos)
}

func (h *Handler) updatePosition(w http.ResponseWriter, r *http.Request) {
	var patch model.PositionPatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	pos, err := h.deps.Catalog.UpdatePosition(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, pos)
}

func (h *Handler) deletePosition(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Catalog.DeletePosition(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Projects ────────────────────────────────────────────────────────────────

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	defer h.observe("projects", time.Now())
	page, err := h.deps.Catalog.ListProjects(r.Context(), h.query(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, page)
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var in model.ProjectInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	pr, err := h.deps.Catalog.CreateProject(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonStatus(w, http.StatusCreated, pr)
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	var patch model.ProjectPatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	pr, err := h.deps.Catalog.UpdateProject(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, pr)
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Catalog.DeleteProject(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Posts ───────────────────────────────────────────────────────────────────

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	defer h.observe("posts", time.Now())
	page, err := h.deps.Catalog.ListPosts(r.Context(), h.query(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, page)
}
