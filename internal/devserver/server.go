package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Server exposes the timer HTTP contract over an in-memory store.
type Server struct {
	store     *Store
	notifier  *Notifier
	authToken string
	now       func() time.Time
}

// NewServer creates a server. An empty authToken disables auth.
func NewServer(store *Store, notifier *Notifier, authToken string) *Server {
	return &Server{
		store:     store,
		notifier:  notifier,
		authToken: authToken,
		now:       time.Now,
	}
}

// SetupRoutes registers all handlers on the mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/timers/start", s.handleStart)
	mux.HandleFunc("/timers/current", s.handleCurrent)
	mux.HandleFunc("/timers/", s.handleTimerAction)
	mux.HandleFunc("/ws", s.handleWS)
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(host string, port int) error {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("dev backend listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

type startBody struct {
	Tag      string `json:"tag"`
	Duration int    `json:"duration"`
}

type noteBody struct {
	Note string `json:"note"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authorize(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body startBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sess, err := s.store.Start(user, body.Tag, body.Duration)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.notifier.TimerChanged()
	s.writeTimer(w, sess)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authorize(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess := s.store.Current(user)
	w.Header().Set("Content-Type", "application/json")
	if sess == nil {
		json.NewEncoder(w).Encode(map[string]any{"isRunning": false})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"isRunning": sess.Status == StatusRunning,
		"timer":     sess.wire(s.now()),
	})
}

// handleTimerAction routes POST /timers/{id}/{pause|resume|complete|cancel}.
func (s *Server) handleTimerAction(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authorize(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/timers/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	id, action := parts[0], parts[1]

	var note string
	if action == "complete" || action == "cancel" {
		var body noteBody
		// An empty body is fine; the note is optional.
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			note = body.Note
		}
	}

	var sess *Session
	var err error
	switch action {
	case "pause":
		sess, err = s.store.Pause(user, id)
	case "resume":
		sess, err = s.store.Resume(user, id)
	case "complete":
		sess, err = s.store.Complete(user, id, note)
	case "cancel":
		sess, err = s.store.Cancel(user, id, note)
	default:
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.notifier.TimerChanged()
	s.writeTimer(w, sess)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	c := s.notifier.AddClient(conn)
	go func() {
		defer s.notifier.RemoveClient(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// authorize checks the bearer token and returns the user key. The dev
// backend identifies users by their token so multiple clients with
// different tokens get independent timers.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if s.authToken != "" && token != s.authToken {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	if token == "" {
		token = "default"
	}
	return token, true
}

func (s *Server) writeTimer(w http.ResponseWriter, sess *Session) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"timer": sess.wire(s.now())})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoSession):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrEmptyTag):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrAlreadyRunning),
		errors.Is(err, ErrNotRunning),
		errors.Is(err, ErrNotPaused),
		errors.Is(err, ErrTerminal):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
