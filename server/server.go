// Package server provides a local HTTP server for browsing parsed
// sessions in a web UI.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/veedhi/agentwire/core"
	"github.com/veedhi/agentwire/parse"
	htmlrender "github.com/veedhi/agentwire/render/html"
)

// Server serves parsed sessions over HTTP for local browsing.
type Server struct {
	// Registry selects parsers for loaded log files.
	Registry *parse.Registry
	// Provider is an optional parser hint applied to every loaded file.
	Provider string
	// Port is the TCP port to listen on.
	Port int

	sessions map[string]*core.Session
	renderer *htmlrender.Renderer
}

// New creates a Server backed by the given registry.
func New(registry *parse.Registry, port int) *Server {
	renderer := htmlrender.New()
	renderer.SessionHref = func(id string) string {
		return "/session/" + id
	}
	return &Server{
		Registry: registry,
		Port:     port,
		sessions: make(map[string]*core.Session),
		renderer: renderer,
	}
}

// Add registers a parsed session for serving, replacing any previous
// session with the same id.
func (s *Server) Add(session *core.Session) {
	s.sessions[session.SessionID] = session
}

// LoadFile parses one log file and registers its session.
func (s *Server) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	session, err := s.Registry.ParseSession(string(data), s.Provider)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	s.Add(session)
	return nil
}

// LoadDir parses every .json and .jsonl file in dir. Files that fail to
// parse are logged and skipped, so one broken log does not hide the rest.
func (s *Server) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".jsonl" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := s.LoadFile(path); err != nil {
			log.Warn("skipping unparsable log", "file", path, "error", err)
			continue
		}
		loaded++
	}

	if loaded == 0 {
		return fmt.Errorf("no parsable session logs in %s", dir)
	}
	return nil
}

// Sessions returns loaded sessions sorted newest-first.
func (s *Server) Sessions() []*core.Session {
	sorted := make([]*core.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sorted = append(sorted, session)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime.After(sorted[j].StartTime)
	})
	return sorted
}

// Handler returns the HTTP routes: an index page, per-session HTML pages,
// and per-session canonical JSON.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.renderer.RenderIndex(w, s.Sessions()); err != nil {
			log.Error("render index", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("GET /session/{id}", func(w http.ResponseWriter, req *http.Request) {
		session, ok := s.sessions[req.PathValue("id")]
		if !ok {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.renderer.Render(w, session); err != nil {
			log.Error("render session", "session_id", session.SessionID, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("GET /session/{id}/json", func(w http.ResponseWriter, req *http.Request) {
		session, ok := s.sessions[req.PathValue("id")]
		if !ok {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(session); err != nil {
			log.Error("encode session", "session_id", session.SessionID, "error", err)
		}
	})

	return mux
}

// ListenAndServe starts the server and blocks.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.Port)
	log.Info("serving", "addr", "http://localhost"+addr, "sessions", len(s.sessions))
	return http.ListenAndServe(addr, s.Handler())
}
