package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"csvview/internal/state"
	"csvview/internal/view"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for simplicity
	},
}

// Options configures a Server.
type Options struct {
	Port          string
	Version       string
	AdminUsername string
	AdminPassword string // empty disables the login page
}

// Server serves the viewer page, the websocket action channel and the JSON API.
type Server struct {
	appState      *state.AppState
	port          string
	version       string
	adminUsername string
	adminPassword string
	sessions      sync.Map // token -> login time
	clients       map[*client]bool
	clientsMu     sync.RWMutex
	broadcast     chan []byte
	done          chan struct{}
	closeOnce     sync.Once
	httpServer    *http.Server
}

// client serialises writes to one websocket connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *client) sendRaw(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// actionMessage is what the page sends for every user action.
type actionMessage struct {
	Type  string `json:"type"`
	Index int    `json:"index,omitempty"`
	Text  string `json:"text,omitempty"`
	OK    bool   `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

// renderMessage carries a full body re-render.
type renderMessage struct {
	Type string `json:"type"`
	HTML string `json:"html"`
}

// clipboardMessage asks the page that pressed copy to write text to its clipboard.
type clipboardMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// New creates a new web server.
func New(appState *state.AppState, opts Options) *Server {
	s := &Server{
		appState:      appState,
		port:          opts.Port,
		version:       opts.Version,
		adminUsername: opts.AdminUsername,
		adminPassword: opts.AdminPassword,
		clients:       make(map[*client]bool),
		broadcast:     make(chan []byte, 256),
		done:          make(chan struct{}),
	}

	// Start broadcast handler
	go s.handleBroadcasts()

	// Start state change monitor
	go s.monitorStateChanges()

	return s
}

// Handler builds the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	// WebSocket endpoint
	mux.HandleFunc("/ws", s.requireAuth(s.handleWebSocket))

	// API endpoints
	mux.HandleFunc("/api/state", s.requireAuth(s.handleState))
	mux.HandleFunc("/api/render", s.requireAuth(s.handleRender))
	mux.HandleFunc("/api/action", s.requireAuth(s.handleAction))
	mux.HandleFunc("/api/raw", s.requireAuth(s.handleRaw))
	mux.HandleFunc("/api/logs", s.requireAuth(s.handleLogs))

	// Serve the UI
	mux.HandleFunc("/", s.requireAuth(s.handleUI))

	return mux
}

// Start starts the web server in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%s", s.port)
	s.httpServer = &http.Server{Addr: addr, Handler: s.Handler()}
	slog.Info("Web UI listening", "address", addr, "component", "Web")

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Web server failed", "error", err, "component", "Web")
		}
	}()
}

// Shutdown stops the HTTP server and the background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Close()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Close stops the broadcast and monitor goroutines and drops all clients.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.clientsMu.Lock()
		for c := range s.clients {
			c.conn.Close()
			delete(s.clients, c)
		}
		s.clientsMu.Unlock()
	})
}

// handleWebSocket upgrades HTTP connection to WebSocket and manages client lifecycle.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err, "component", "Web")
		return
	}
	defer conn.Close()
	c := &client{conn: conn}

	// The initial render goes out before the client joins the broadcast set.
	s.clientsMu.Lock()
	if body, err := RenderHTML(s.appState.Tree()); err == nil {
		_ = c.send(renderMessage{Type: "render", HTML: body})
	}
	s.clients[c] = true
	s.clientsMu.Unlock()

	slog.Debug("WebSocket client connected", "component", "Web")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg actionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("Invalid WebSocket message", "error", err, "component", "Web")
			continue
		}
		eff, err := s.dispatch(msg)
		if err != nil {
			slog.Warn("Rejected action", "type", msg.Type, "error", err, "component", "Web")
			continue
		}
		if eff.Kind == view.EffectWriteClipboard {
			if err := c.send(clipboardMessage{Type: "clipboard", Text: eff.Text}); err != nil {
				break
			}
		}
	}

	// Unregister client
	s.clientsMu.Lock()
	delete(s.clients, c)
	s.clientsMu.Unlock()

	slog.Debug("WebSocket client disconnected", "component", "Web")
}

// dispatch turns a page message into a view event and applies it.
func (s *Server) dispatch(msg actionMessage) (view.Effect, error) {
	ev, err := toEvent(msg)
	if err != nil {
		return view.Effect{}, err
	}
	if ev.Kind == view.EventCopyResult && ev.Err != nil {
		slog.Error("Failed to copy text", "error", ev.Err, "component", "Web")
	}
	slog.Debug("Action received", "type", msg.Type, "component", "Web")
	return s.appState.Dispatch(ev), nil
}

func toEvent(msg actionMessage) (view.Event, error) {
	switch view.EventKind(msg.Type) {
	case view.EventToggleView:
		return view.ToggleView(), nil
	case view.EventSort:
		return view.SortColumn(msg.Index), nil
	case view.EventSearch:
		return view.Search(msg.Text), nil
	case view.EventCopy:
		return view.Copy(), nil
	case view.EventCopyResult:
		if msg.OK {
			return view.CopyResult(nil), nil
		}
		reason := msg.Error
		if reason == "" {
			reason = "clipboard write failed"
		}
		return view.CopyResult(errors.New(reason)), nil
	}
	return view.Event{}, errors.Errorf("unknown action %q", msg.Type)
}

// handleBroadcasts sends renders to all connected WebSocket clients.
func (s *Server) handleBroadcasts() {
	for {
		select {
		case <-s.done:
			return
		case message := <-s.broadcast:
			s.clientsMu.RLock()
			var dead []*client
			for c := range s.clients {
				if err := c.sendRaw(message); err != nil {
					dead = append(dead, c)
				}
			}
			s.clientsMu.RUnlock()

			if len(dead) > 0 {
				s.clientsMu.Lock()
				for _, c := range dead {
					c.conn.Close()
					delete(s.clients, c)
				}
				s.clientsMu.Unlock()
			}
		}
	}
}

// monitorStateChanges re-renders immediately on any mutation, with a 1-second
// ticker as a fallback to catch any updates that may be missed.
func (s *Server) monitorStateChanges() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	changeCh := s.appState.ChangeCh()

	var last string
	for {
		select {
		case <-s.done:
			return
		case <-changeCh:
			last = s.pushRender(last)
		case <-ticker.C:
			last = s.pushRender(last)
		}
	}
}

// pushRender queues the current body for broadcast unless it equals last.
// It returns the body that clients are known to receive; a dropped send keeps
// the previous value so the next tick retries.
func (s *Server) pushRender(last string) string {
	body, err := RenderHTML(s.appState.Tree())
	if err != nil {
		slog.Error("Render failed", "error", err, "component", "Web")
		return last
	}
	if body == last {
		return last
	}
	data, err := json.Marshal(renderMessage{Type: "render", HTML: body})
	if err != nil {
		return last
	}
	select {
	case s.broadcast <- data:
		return body
	default:
		slog.Warn("Broadcast queue full, render deferred", "component", "Web")
		return last
	}
}
