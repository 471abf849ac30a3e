package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"

	"csvview/internal/view"
)

// handleState returns the current application state as JSON.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.appState.Snapshot())
}

// handleRender returns the current body HTML, used when the websocket is down.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := RenderHTML(s.appState.Tree())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, body)
}

// handleAction applies one action posted as JSON. A copy action answers with
// the text the caller should place on its clipboard.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var msg actionMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	eff, err := s.dispatch(msg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch eff.Kind {
	case view.EffectNone:
		json.NewEncoder(w).Encode(map[string]string{"status": "ignored"})
	case view.EffectWriteClipboard:
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "clipboard": eff.Text})
	default:
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// handleRaw returns the source text exactly as fetched.
func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	raw, ok := s.appState.Raw()
	if !ok {
		http.Error(w, "CSV not loaded", http.StatusServiceUnavailable)
		return
	}

	name := path.Base(strings.ReplaceAll(s.appState.Address(), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = "data.csv"
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write([]byte(raw))
}

// handleLogs returns the in-memory log ring.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.appState.Logs())
}
