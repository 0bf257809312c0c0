package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careers/listing-service/internal/apperr"
	"careers/listing-service/internal/httpapi"
	"careers/listing-service/internal/kanban"
	"careers/listing-service/internal/listing"
	"careers/listing-service/internal/model"
	"careers/listing-service/internal/store"
)

// memCatalog serves positions from memory through the listing engine.
type memCatalog struct {
	store.Catalog
	mu        sync.Mutex
	positions []model.Position
	fail      error
}

func (m *memCatalog) ListPositions(_ context.Context, q listing.Query) (listing.Page[model.Position], error) {
	if m.fail != nil {
		return listing.Page[model.Position]{}, m.fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return listing.Apply(m.positions, q), nil
}

func (m *memCatalog) CreatePosition(_ context.Context, in model.PositionInput) (*model.Position, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := model.Position{ID: fmt.Sprintf("p%d", len(m.positions)+1), Title: in.Title, Status: in.Status}
	m.positions = append(m.positions, p)
	return &p, nil
}

func (m *memCatalog) DeletePosition(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.positions {
		if p.ID == id {
			m.positions = append(m.positions[:i], m.positions[i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}

// memApps is a kanban.Store over a map.
type memApps struct {
	mu   sync.Mutex
	apps map[string]kanban.Application
}

func (m *memApps) ListApplications(context.Context) ([]kanban.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]kanban.Application, 0, len(m.apps))
	for _, a := range m.apps {
		out = append(out, a)
	}
	return out, nil
}

func (m *memApps) GetApplication(_ context.Context, id string) (*kanban.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &a, nil
}

func (m *memApps) UpdateApplicationStatus(_ context.Context, id string, from, to kanban.Status, _ kanban.HistoryEntry, noteLine string) (*kanban.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.apps[id]
	if a.Status != from {
		return nil, &apperr.TransitionError{From: string(a.Status), To: string(to), Reason: "status changed concurrently"}
	}
	a.Status = to
	if noteLine != "" {
		a.Notes = kanban.AppendNote(a.Notes, noteLine)
	}
	m.apps[id] = a
	return &a, nil
}

func (m *memApps) AppendApplicationNote(_ context.Context, id, noteLine string) (*kanban.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	a.Notes = kanban.AppendNote(a.Notes, noteLine)
	m.apps[id] = a
	return &a, nil
}

func (m *memApps) DeleteApplication(_ context.Context, id string, required kanban.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.apps[id].Status != required {
		return &apperr.TransitionError{From: string(m.apps[id].Status), Reason: "status changed concurrently"}
	}
	delete(m.apps, id)
	return nil
}

const (
	submittedID = "7f8c2c4e-4f3a-4d0e-9a61-0c1b2d3e4f50"
	rejectedID  = "1b4e28ba-2fa1-41d2-883f-0016d3cca427"
)

func newServer(t *testing.T) (*httptest.Server, *memCatalog) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cat := &memCatalog{}
	for i := 1; i <= 25; i++ {
		title := fmt.Sprintf("Designer %d", i)
		if i%4 != 3 {
			title = fmt.Sprintf("Software Engineer %d", i)
		}
		status := model.PositionOpen
		if i%5 == 0 {
			status = model.PositionClosed
		}
		cat.positions = append(cat.positions, model.Position{
			ID: fmt.Sprintf("p%d", i), Title: title, Status: status,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	apps := &memApps{apps: map[string]kanban.Application{
		submittedID: {ID: submittedID, CandidateName: "Ada", Status: kanban.StatusSubmitted, AppliedAt: base},
		rejectedID:  {ID: rejectedID, CandidateName: "Grace", Status: kanban.StatusRejected, AppliedAt: base.Add(time.Hour)},
	}}
	router := httpapi.NewRouter(httpapi.Deps{
		Catalog:         cat,
		Applications:    kanban.NewService(apps, nil),
		DefaultPageSize: 12,
		Version:         "test",
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, cat
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestListPositions_FilterSortPaginate(t *testing.T) {
	srv, _ := newServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/positions?search=engineer&status=open&sort=title&pageSize=10&page=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 15, body["total"])
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 2, body["totalPages"])
	assert.Equal(t, false, body["hasNext"])
	assert.Equal(t, true, body["hasPrev"])
	assert.Len(t, body["items"], 5)
}

func TestListPositions_MalformedNumbersFallBack(t *testing.T) {
	srv, _ := newServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/positions?page=abc&pageSize=-4&sort=bogus&status=all", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 25, body["total"])
	assert.EqualValues(t, 1, body["page"])
	assert.EqualValues(t, 12, body["pageSize"])
}

func TestListPositions_OutOfRangePageClamps(t *testing.T) {
	srv, _ := newServer(t)
	_, body := do(t, http.MethodGet, srv.URL+"/positions?page=99", "")
	assert.EqualValues(t, 3, body["page"])
}

func TestListPositions_SourceUnavailable(t *testing.T) {
	srv, cat := newServer(t)
	cat.fail = apperr.Source("list positions", errors.New("dial tcp: refused"))

	resp, body := do(t, http.MethodGet, srv.URL+"/positions", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "record source unavailable", body["error"])
}

func TestCreatePosition(t *testing.T) {
	srv, _ := newServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/positions", `{"title":"Platform Engineer","status":"open"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Platform Engineer", body["title"])

	resp, body = do(t, http.MethodPost, srv.URL+"/positions", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "Title")

	resp, _ = do(t, http.MethodPost, srv.URL+"/positions", `{"title":"x","unknown":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeletePosition(t *testing.T) {
	srv, _ := newServer(t)

	resp, _ := do(t, http.MethodDelete, srv.URL+"/positions/p1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodDelete, srv.URL+"/positions/p1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApplications_GuidedAction(t *testing.T) {
	srv, _ := newServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/applications/"+submittedID+"/actions/review", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "reviewing", body["status"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/applications/"+submittedID+"/actions/accept", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestApplications_ExplicitStatusWithNote(t *testing.T) {
	srv, _ := newServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/applications/"+submittedID+"/status", `{"status":"interview_scheduled","note":"Friday 10:00"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "interview_scheduled", body["status"])
	assert.Contains(t, body["notes"], "(submitted → interview_scheduled) Friday 10:00")

	resp, _ = do(t, http.MethodPost, srv.URL+"/applications/"+submittedID+"/status", `{"status":"hired"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/applications/"+submittedID+"/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestApplications_DeleteGuard(t *testing.T) {
	srv, _ := newServer(t)

	resp, _ := do(t, http.MethodDelete, srv.URL+"/applications/"+submittedID, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/applications/"+rejectedID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body := do(t, http.MethodGet, srv.URL+"/applications", "")
	assert.EqualValues(t, 1, body["total"])
}

func TestApplications_ListFiltersByStatus(t *testing.T) {
	srv, _ := newServer(t)

	_, body := do(t, http.MethodGet, srv.URL+"/applications?status=rejected", "")
	assert.EqualValues(t, 1, body["total"])
	items := body["items"].([]any)
	assert.Equal(t, "Grace", items[0].(map[string]any)["candidateName"])
}

func TestApplications_Actions(t *testing.T) {
	srv, _ := newServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/applications/"+submittedID+"/actions", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var actions []kanban.Action
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&actions))
	require.Len(t, actions, 2)
	assert.Equal(t, "review", actions[0].Name)
	assert.Equal(t, "reject", actions[1].Name)
}

func TestApplications_NotFound(t *testing.T) {
	srv, _ := newServer(t)
	resp, _ := do(t, http.MethodGet, srv.URL+"/applications/9b2f1c3a-0000-4000-8000-000000000000", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "route not found", body["error"])
}
