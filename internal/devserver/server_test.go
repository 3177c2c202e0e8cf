package devserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(NewStore(), NewNotifier(), "")
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeTimer(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out struct {
		Timer map[string]any `json:"timer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out.Timer
}

func TestStartEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/timers/start", map[string]any{"tag": "focus block", "duration": 25})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	timer := decodeTimer(t, resp)
	if timer["status"] != "running" {
		t.Errorf("status = %v", timer["status"])
	}
	if timer["tag"] != "focus block" {
		t.Errorf("tag = %v", timer["tag"])
	}
	if timer["elapsedSeconds"].(float64) != 0 {
		t.Errorf("elapsedSeconds = %v, want 0", timer["elapsedSeconds"])
	}
}

func TestStartValidation(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/timers/start", map[string]any{"tag": "  "})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDoubleStartConflicts(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/timers/start", map[string]any{"tag": "one"})
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/timers/start", map[string]any{"tag": "two"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

func TestCurrentLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// Idle: no timer.
	resp, err := http.Get(ts.URL + "/timers/current")
	if err != nil {
		t.Fatal(err)
	}
	var cur struct {
		IsRunning bool            `json:"isRunning"`
		Timer     *map[string]any `json:"timer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cur); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if cur.IsRunning || cur.Timer != nil {
		t.Fatalf("idle current = %+v", cur)
	}

	// Start, then pause, then cancel; current tracks the transitions.
	started := decodeTimer(t, postJSON(t, ts.URL+"/timers/start", map[string]any{"tag": "life"}))
	id := started["id"].(string)

	resp = postJSON(t, ts.URL+"/timers/"+id+"/pause", nil)
	if got := decodeTimer(t, resp)["status"]; got != "paused" {
		t.Fatalf("after pause status = %v", got)
	}

	resp, err = http.Get(ts.URL + "/timers/current")
	if err != nil {
		t.Fatal(err)
	}
	if err := json.NewDecoder(resp.Body).Decode(&cur); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if cur.IsRunning {
		t.Fatal("paused session must report isRunning=false")
	}
	if cur.Timer == nil {
		t.Fatal("paused session is still current")
	}

	resp = postJSON(t, ts.URL+"/timers/"+id+"/cancel", map[string]any{"note": "nvm"})
	if got := decodeTimer(t, resp)["status"]; got != "cancelled" {
		t.Fatalf("after cancel status = %v", got)
	}

	// Terminal: gone from current.
	resp, err = http.Get(ts.URL + "/timers/current")
	if err != nil {
		t.Fatal(err)
	}
	cur.IsRunning = false
	cur.Timer = nil
	if err := json.NewDecoder(resp.Body).Decode(&cur); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if cur.Timer != nil {
		t.Fatal("terminal session must not be current")
	}
}

func TestUnknownActionIs404(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/timers/some-id/freeze", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	srv := NewServer(NewStore(), NewNotifier(), "hunter2")
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/timers/current")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/timers/current", nil)
	req.Header.Set("Authorization", "Bearer hunter2")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
