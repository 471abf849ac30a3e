package state

import (
	"sync"
	"time"

	"csvview/internal/view"
)

// LoadStatus tracks the one-shot fetch and parse of the source.
type LoadStatus string

const (
	StatusLoading LoadStatus = "loading"
	StatusReady   LoadStatus = "ready"
	StatusFailed  LoadStatus = "failed"
)

// LogEntry holds a single log entry.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Label     string    `json:"label"`
	Message   string    `json:"message"`
}

// SnapshotData holds a point-in-time copy of AppState for JSON serialization.
type SnapshotData struct {
	Address string     `json:"address"`
	Version string     `json:"version"`
	Status  LoadStatus `json:"status"`
	Tree    view.Tree  `json:"tree"`
	Logs    []LogEntry `json:"logs"`
}

// AppState holds the loaded page and everything the surfaces share. All
// transitions go through Dispatch, which serialises them.
type AppState struct {
	mu       sync.RWMutex
	address  string
	version  string
	status   LoadStatus
	loadErr  string
	page     view.Page
	logs     []LogEntry
	maxLogs  int
	changeCh chan struct{} // receives a value on every state mutation
}

// New creates an AppState for address with a max log buffer size.
func New(maxLogs int, address, version string) *AppState {
	return &AppState{
		address:  address,
		version:  version,
		status:   StatusLoading,
		logs:     []LogEntry{},
		maxLogs:  maxLogs,
		changeCh: make(chan struct{}, 1),
	}
}

// notifyChange does a non-blocking send on changeCh to signal a state mutation.
// Must be called while NOT holding mu (the receiver will re-read state).
func (s *AppState) notifyChange() {
	select {
	case s.changeCh <- struct{}{}:
	default:
	}
}

// ChangeCh returns a channel that receives a value whenever the state changes.
func (s *AppState) ChangeCh() <-chan struct{} {
	return s.changeCh
}

// Address returns the source address being viewed.
func (s *AppState) Address() string {
	return s.address
}

// SetPage installs a freshly loaded page.
func (s *AppState) SetPage(p view.Page) {
	s.mu.Lock()
	s.page = p
	s.status = StatusReady
	s.loadErr = ""
	s.mu.Unlock()
	s.notifyChange()
}

// SetLoadFailed records the message shown instead of the viewer. The page
// stays in this state for the rest of the process lifetime.
func (s *AppState) SetLoadFailed(message string) {
	s.mu.Lock()
	s.status = StatusFailed
	s.loadErr = message
	s.mu.Unlock()
	s.notifyChange()
}

// Status returns the load status.
func (s *AppState) Status() LoadStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Dispatch applies ev to the current page and returns the effect the caller
// must carry out. Events arriving before the page is ready are ignored.
func (s *AppState) Dispatch(ev view.Event) view.Effect {
	s.mu.Lock()
	if s.status != StatusReady {
		s.mu.Unlock()
		return view.Effect{Kind: view.EffectNone}
	}
	next, eff := s.page.Update(ev)
	s.page = next
	s.mu.Unlock()

	if eff.Kind != view.EffectNone {
		s.notifyChange()
	}
	return eff
}

// Page returns the current page.
func (s *AppState) Page() view.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// Raw returns the verbatim source text once loaded.
func (s *AppState) Raw() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status != StatusReady {
		return "", false
	}
	return s.page.Raw, true
}

// Tree renders the current state.
func (s *AppState) Tree() view.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.treeLocked()
}

func (s *AppState) treeLocked() view.Tree {
	switch s.status {
	case StatusReady:
		return view.Render(s.page)
	case StatusFailed:
		return view.ErrorTree(s.loadErr)
	default:
		return view.LoadingTree()
	}
}

// AddLog appends a log entry, trimming old entries if needed.
func (s *AppState) AddLog(level, label, message string) {
	s.mu.Lock()
	entry := LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Label:     label,
		Message:   message,
	}
	s.logs = append(s.logs, entry)
	if len(s.logs) > s.maxLogs {
		s.logs = s.logs[len(s.logs)-s.maxLogs:]
	}
	s.mu.Unlock()
}

// Logs returns a copy of the log ring.
func (s *AppState) Logs() []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}

// Snapshot returns a copy of the current state for JSON serialization.
func (s *AppState) Snapshot() SnapshotData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := make([]LogEntry, len(s.logs))
	copy(logs, s.logs)
	return SnapshotData{
		Address: s.address,
		Version: s.version,
		Status:  s.status,
		Tree:    s.treeLocked(),
		Logs:    logs,
	}
}
