// Package httpapi implements the REST transport of the listing service.
//
// Routes:
//
//	GET    /health
//	GET    /metrics
//	GET    /positions                         → filtered, sorted page of positions
//	POST   /positions                         → create
//	PATCH  /positions/{id}                    → partial update
//	DELETE /positions/{id}
//	GET    /projects, POST /projects, PATCH|DELETE /projects/{id}
//	GET    /posts
//	GET    /applications                      → filtered, sorted page of applications
//	GET    /applications/{id}
//	GET    /applications/{id}/actions         → guided actions for the current status
//	POST   /applications/{id}/status          → explicit status selection
//	POST   /applications/{id}/actions/{action}
//	POST   /applications/{id}/notes
//	DELETE /applications/{id}                 → rejected applications only
//
// List endpoints accept search, category, location, type, level, status,
// featured, sort, dir, page and pageSize query parameters.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"careers/listing-service/internal/kanban"
	"careers/listing-service/internal/store"
)

// ListObserver is told about every served listing read.
type ListObserver interface {
	ObserveList(kind string, d time.Duration)
}

// Deps are the collaborators of the REST handlers.
type Deps struct {
	Catalog         store.Catalog
	Applications    *kanban.Service
	DefaultPageSize int
	Observer        ListObserver // optional
	Metrics         http.Handler // optional, mounted on /metrics
	Version         string
}

// Handler holds shared dependencies.
type Handler struct {
	deps Deps
}

// NewRouter mounts every route and the middleware chain.
func NewRouter(deps Deps) *mux.Router {
	h := &Handler{deps: deps}
	r := mux.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(LoggingMiddleware)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics).Methods(http.MethodGet)
	}

	r.HandleFunc("/positions", h.listPositions).Methods(http.MethodGet)
	r.HandleFunc("/positions", h.createPosition).Methods(http.MethodPost)
	r.HandleFunc("/positions/{id}", h.updatePosition).Methods(http.MethodPatch)
	r.HandleFunc("/positions/{id}", h.deletePosition).Methods(http.MethodDelete)

	r.HandleFunc("/projects", h.listProjects).Methods(http.MethodGet)
	r.HandleFunc("/projects", h.createProject).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}", h.updateProject).Methods(http.MethodPatch)
	r.HandleFunc("/projects/{id}", h.deleteProject).Methods(http.MethodDelete)

	r.HandleFunc("/posts", h.listPosts).Methods(http.MethodGet)

	r.HandleFunc("/applications", h.listApplications).Methods(http.MethodGet)
	r.HandleFunc("/applications/{id}", h.getApplication).Methods(http.MethodGet)
	r.HandleFunc("/applications/{id}", h.deleteApplication).Methods(http.MethodDelete)
	r.HandleFunc("/applications/{id}/actions", h.listActions).Methods(http.MethodGet)
	r.HandleFunc("/applications/{id}/actions/{action}", h.applyAction).Methods(http.MethodPost)
	r.HandleFunc("/applications/{id}/status", h.moveApplication).Methods(http.MethodPost)
	r.HandleFunc("/applications/{id}/notes", h.addNote).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		jsonError(w, "route not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	jsonOK(w, map[string]string{
		"status":  "ok",
		"service": "listing-service",
		"version": h.deps.Version,
	})
}

func (h *Handler) observe(kind string, start time.Time) {
	if h.deps.Observer != nil {
		h.deps.Observer.ObserveList(kind, time.Since(start))
	}
}
