// Package api implements the REST client for the reminder backend: JSON over
// HTTPS, bearer-token authenticated except for login and register.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/georemind/georemind/internal/client/models"
)

// API is the backend surface the client core depends on. HTTPClient is the
// production implementation; tests substitute doubles.
type API interface {
	Login(ctx context.Context, username, password string) (LoginResult, error)
	Register(ctx context.Context, username, password string) error
	ListReminders(ctx context.Context, token string) ([]models.Reminder, error)
	CreateReminders(ctx context.Context, token string, batch []models.WireReminder) ([]models.Reminder, error)
	SyncReminders(ctx context.Context, token string, batch []models.WireReminder, lastSync string) (SyncResult, error)
	DeleteReminder(ctx context.Context, token string, id int64) error
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// SyncResult is the backend's answer to a sync request: its authoritative
// reminder list for the user plus the server timestamp to store as the next
// watermark.
type SyncResult struct {
	Data       []models.Reminder `json:"data"`
	ServerTime string            `json:"serverTime"`
}

// StatusError reports a non-2xx backend response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

// HTTPClient talks to the backend over net/http.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

// NewHTTPClient constructs a client for the backend at baseURL. A
// non-positive timeout falls back to 15 seconds.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (LoginResult, error) {
	req := map[string]string{"username": username, "password": password}
	var out LoginResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", "", req, &out); err != nil {
		return LoginResult{}, err
	}
	return out, nil
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) error {
	req := map[string]string{"username": username, "password": password}
	return c.doJSON(ctx, http.MethodPost, "/api/register", "", req, nil)
}

func (c *HTTPClient) ListReminders(ctx context.Context, token string) ([]models.Reminder, error) {
	var out dataResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/reminders", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) CreateReminders(ctx context.Context, token string, batch []models.WireReminder) ([]models.Reminder, error) {
	req := struct {
		Reminders []models.WireReminder `json:"reminders"`
	}{Reminders: batch}

	var out dataResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/reminders", token, req, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) SyncReminders(ctx context.Context, token string, batch []models.WireReminder, lastSync string) (SyncResult, error) {
	req := struct {
		Reminders []models.WireReminder `json:"reminders"`
		LastSync  *string               `json:"lastSync"`
	}{Reminders: batch}
	if lastSync != "" {
		req.LastSync = &lastSync
	}

	var out SyncResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/reminders/sync", token, req, &out); err != nil {
		return SyncResult{}, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteReminder(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/reminders/%d", id), token, nil, nil)
}

type dataResponse struct {
	Data []models.Reminder `json:"data"`
}

// doJSON performs one request. A transport failure comes back as the
// underlying error; a non-2xx response as *StatusError. 2xx bodies are
// decoded into out when out is non-nil.
func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
