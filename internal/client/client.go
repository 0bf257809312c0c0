// Package client is a REST client for a running listing-service.
//
// Error responses are mapped back onto the apperr taxonomy so callers can
// use errors.Is and errors.As the same way they would against the store.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"careers/listing-service/internal/apperr"
	"careers/listing-service/internal/kanban"
	"careers/listing-service/internal/listing"
	"careers/listing-service/internal/model"
)

// Client talks to the REST API.
type Client struct {
	http *resty.Client
}

// Option configures a Client.
type Option func(*resty.Client)

// WithRetries retries reads that hit a network failure or a 5xx/429 response
// up to n times. Writes are always sent exactly once.
func WithRetries(n int) Option {
	return func(c *resty.Client) {
		c.SetRetryCount(n).
			SetRetryWaitTime(100 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second).
			AddRetryCondition(retryCondition)
	}
}

// New creates a client rooted at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("base URL must be an absolute http(s) URL, got %q", baseURL)
	}
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{http: rc}, nil
}

func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil {
		return false
	}
	if m := r.Request.Method; m != http.MethodGet && m != http.MethodHead {
		return false
	}
	if err != nil {
		return true
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests
}

// ─── Listings ────────────────────────────────────────────────────────────────

// ListPositions fetches one page of positions.
func (c *Client) ListPositions(ctx context.Context, q listing.Query) (listing.Page[model.Position], error) {
	return list[model.Position](ctx, c, "/positions", q)
}

// ListProjects fetches one page of projects and products.
func (c *Client) ListProjects(ctx context.Context, q listing.Query) (listing.Page[model.Project], error) {
	return list[model.Project](ctx, c, "/projects", q)
}

// ListPosts fetches one page of posts.
func (c *Client) ListPosts(ctx context.Context, q listing.Query) (listing.Page[model.Post], error) {
	return list[model.Post](ctx, c, "/posts", q)
}

// ListApplications fetches one page of applications.
func (c *Client) ListApplications(ctx context.Context, q listing.Query) (listing.Page[kanban.Application], error) {
	return list[kanban.Application](ctx, c, "/applications", q)
}

// list fetches a server-windowed page and checks its metadata.
func list[T any](ctx context.Context, c *Client, path string, q listing.Query) (listing.Page[T], error) {
	var page listing.Page[T]
	req := c.http.R().SetContext(ctx).SetQueryParamsFromValues(q.Values()).SetResult(&page)
	if err := c.send(req, http.MethodGet, path); err != nil {
		return listing.Page[T]{}, err
	}
	return listing.Relay(page)
}

// ─── Catalog writes ──────────────────────────────────────────────────────────

func (c *Client) CreatePosition(ctx context.Context, in model.PositionInput) (*model.Position, error) {
	return call[model.Position](ctx, c, http.MethodPost, "/positions", in)
}

func (c *Client) UpdatePosition(ctx context.Context, id string, patch model.PositionPatch) (*model.Position, error) {
	return call[model.Position](ctx, c, http.MethodPatch, "/positions/"+url.PathEscape(id), patch)
}

func (c *Client) DeletePosition(ctx context.Context, id string) error {
	return c.send(c.http.R().SetContext(ctx), http.MethodDelete, "/positions/"+url.PathEscape(id))
}

func (c *Client) CreateProject(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	return call[model.Project](ctx, c, http.MethodPost, "/projects", in)
}

func (c *Client) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	return call[model.Project](ctx, c, http.MethodPatch, "/projects/"+url.PathEscape(id), patch)
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.send(c.http.R().SetContext(ctx), http.MethodDelete, "/projects/"+url.PathEscape(id))
}

// ─── Applications ────────────────────────────────────────────────────────────

// Actions returns the guided actions offered for an application.
func (c *Client) Actions(ctx context.Context, id string) ([]kanban.Action, error) {
	var actions []kanban.Action
	req := c.http.R().SetContext(ctx).SetResult(&actions)
	if err := c.send(req, http.MethodGet, "/applications/"+url.PathEscape(id)+"/actions"); err != nil {
		return nil, err
	}
	return actions, nil
}

// MoveApplication requests an explicit status change.
func (c *Client) MoveApplication(ctx context.Context, id, status, note string) (*kanban.Application, error) {
	body := map[string]string{"status": status, "note": note}
	return call[kanban.Application](ctx, c, http.MethodPost, "/applications/"+url.PathEscape(id)+"/status", body)
}

// ApplyAction runs a guided action.
func (c *Client) ApplyAction(ctx context.Context, id, action, note string) (*kanban.Application, error) {
	body := map[string]string{"note": note}
	path := "/applications/" + url.PathEscape(id) + "/actions/" + url.PathEscape(action)
	return call[kanban.Application](ctx, c, http.MethodPost, path, body)
}

// AddNote appends a note without changing the status.
func (c *Client) AddNote(ctx context.Context, id, note string) (*kanban.Application, error) {
	body := map[string]string{"note": note}
	return call[kanban.Application](ctx, c, http.MethodPost, "/applications/"+url.PathEscape(id)+"/notes", body)
}

// DeleteApplication removes a rejected application.
func (c *Client) DeleteApplication(ctx context.Context, id string) error {
	return c.send(c.http.R().SetContext(ctx), http.MethodDelete, "/applications/"+url.PathEscape(id))
}

// ─── Internals ───────────────────────────────────────────────────────────────

// errorBody is the JSON error envelope written by the server.
type errorBody struct {
	Error string `json:"error"`
}

func call[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	out := new(T)
	req := c.http.R().SetContext(ctx).SetHeader("Content-Type", "application/json").SetBody(body).SetResult(out)
	if err := c.send(req, method, path); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) send(req *resty.Request, method, path string) error {
	req.SetError(&errorBody{})
	resp, err := req.Execute(method, path)
	if err != nil {
		return apperr.Source(method+" "+path, err)
	}
	if resp.StatusCode() < 400 {
		return nil
	}
	msg := resp.Status()
	if eb, ok := resp.Error().(*errorBody); ok && eb != nil && eb.Error != "" {
		msg = eb.Error
	}
	return statusError(resp.StatusCode(), msg, method+" "+path)
}

// statusError maps an HTTP error status onto the apperr taxonomy.
func statusError(code int, msg, op string) error {
	switch code {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	case http.StatusBadRequest:
		return &apperr.ValidationError{Msg: msg}
	case http.StatusConflict:
		return &apperr.TransitionError{Reason: msg}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return apperr.Source(op, errors.New(msg))
	default:
		return fmt.Errorf("%s: unexpected status %d: %s", op, code, msg)
	}
}
