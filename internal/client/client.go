// Package client is an HTTP client for the task API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskverse/internal/models"
)

// APIError is a non-success response, carrying the server's envelope.
type APIError struct {
	Status   int
	Envelope models.Envelope
}

func (e *APIError) Error() string {
	if r := e.Envelope.Reason(); r != "" {
		return fmt.Sprintf("api: %d %s", e.Status, r)
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func WithToken(token string) Option { return func(c *Client) { c.token = token } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetToken sets the bearer token for later requests. Empty means guest.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env models.Envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !env.OK() {
		return &APIError{Status: resp.StatusCode, Envelope: env}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// List fetches every task, newest first.
func (c *Client) List(ctx context.Context) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) Create(ctx context.Context, patch models.TaskPatch) (models.Task, error) {
	var t models.Task
	err := c.do(ctx, http.MethodPost, "/tasks/createTask", patch, &t)
	return t, err
}

// Update returns nil without error when the server reports success with no
// data, which is its answer for an unknown id.
func (c *Client) Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	var t *models.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), patch, &t); err != nil {
		return nil, err
	}
	return t, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// Login signs in and keeps the returned token for later requests.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Session, error) {
	var s models.Session
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &s); err != nil {
		return nil, err
	}
	c.token = s.Token
	return &s, nil
}
