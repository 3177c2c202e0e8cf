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
)

// Client makes REST calls to the WorkPulse timer backend.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a client targeting the given base URL
// (e.g. "http://127.0.0.1:8080").
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Current fetches GET /timers/current. A nil Timer with a nil error means
// the backend reports no live session for this user.
func (c *Client) Current(ctx context.Context) (*Timer, error) {
	var out CurrentResponse
	if err := c.get(ctx, "/timers/current", &out); err != nil {
		return nil, err
	}
	return out.Timer, nil
}

// Start sends POST /timers/start. The tag is validated locally first: an
// empty or blank tag never reaches the network.
func (c *Client) Start(ctx context.Context, tag string, durationMinutes int) (*Timer, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, &ValidationError{Field: "tag", Msg: "task name must not be empty"}
	}
	if durationMinutes < 0 {
		return nil, &ValidationError{Field: "duration", Msg: "duration must not be negative"}
	}
	var out timerResponse
	body := startRequest{Tag: tag, Duration: durationMinutes}
	if err := c.post(ctx, "/timers/start", body, &out); err != nil {
		return nil, err
	}
	return out.Timer, nil
}

// Pause sends POST /timers/{id}/pause.
func (c *Client) Pause(ctx context.Context, id string) (*Timer, error) {
	return c.mutate(ctx, id, "pause", nil)
}

// Resume sends POST /timers/{id}/resume.
func (c *Client) Resume(ctx context.Context, id string) (*Timer, error) {
	return c.mutate(ctx, id, "resume", nil)
}

// Complete sends POST /timers/{id}/complete with an optional note.
func (c *Client) Complete(ctx context.Context, id, note string) (*Timer, error) {
	return c.mutate(ctx, id, "complete", &noteRequest{Note: note})
}

// Cancel sends POST /timers/{id}/cancel with an optional note.
func (c *Client) Cancel(ctx context.Context, id, note string) (*Timer, error) {
	return c.mutate(ctx, id, "cancel", &noteRequest{Note: note})
}

func (c *Client) mutate(ctx context.Context, id, action string, body any) (*Timer, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Msg: "missing session id"}
	}
	var out timerResponse
	path := "/timers/" + id + "/" + action
	if err := c.post(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return out.Timer, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.setAuth(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &RequestError{Method: "GET", Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &RequestError{Method: "POST", Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
