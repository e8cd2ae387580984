package service

import (
	"errors"
	"sync"
	"time"

	"floorplan/internal/geometry/editor"
	"floorplan/internal/geometry/walk"

	"github.com/google/uuid"
)

// ============================================================
// Session Manager
// ============================================================

var ErrSessionNotFound = errors.New("session not found")

type walkSession struct {
	mu      sync.Mutex
	builder *walk.Builder
	opened  time.Time
}

type editSession struct {
	mu     sync.Mutex
	editor *editor.Editor
	opened time.Time
}

// SessionManager owns in-progress walk and edit sessions. Each session has its
// own lock, so calls on one session are serialized while different sessions
// proceed independently.
type SessionManager struct {
	mu    sync.Mutex
	walks map[string]*walkSession
	edits map[string]*editSession
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		walks: make(map[string]*walkSession),
		edits: make(map[string]*editSession),
	}
}

// OpenWalk registers b under its own id.
func (m *SessionManager) OpenWalk(b *walk.Builder) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.walks[b.ID()] = &walkSession{builder: b, opened: time.Now()}
	return b.ID()
}

// WithWalk runs fn while holding the walk session's lock.
func (m *SessionManager) WithWalk(id string, fn func(*walk.Builder) error) error {
	m.mu.Lock()
	s, ok := m.walks[id]
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.builder)
}

// DropWalk discards a walk session. Dropping is how a capture is cancelled.
func (m *SessionManager) DropWalk(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.walks[id]
	delete(m.walks, id)
	return ok
}

func (m *SessionManager) OpenEdit(e *editor.Editor) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.edits[id] = &editSession{editor: e, opened: time.Now()}
	return id
}

func (m *SessionManager) WithEditor(id string, fn func(*editor.Editor) error) error {
	m.mu.Lock()
	s, ok := m.edits[id]
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.editor)
}

func (m *SessionManager) DropEdit(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.edits[id]
	delete(m.edits, id)
	return ok
}

// Counts reports open walk and edit sessions.
func (m *SessionManager) Counts() (walks, edits int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.walks), len(m.edits)
}

// Expire drops sessions opened before cutoff and returns how many were removed.
func (m *SessionManager) Expire(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.walks {
		if s.opened.Before(cutoff) {
			delete(m.walks, id)
			n++
		}
	}
	for id, s := range m.edits {
		if s.opened.Before(cutoff) {
			delete(m.edits, id)
			n++
		}
	}
	return n
}
