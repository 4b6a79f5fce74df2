package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already open for that day")
)

// Session is a registered controller addressed by id.
type Session struct {
	ID         string
	EmployeeID string
	*Controller

	m       *Manager
	key     string // YYYY-MM-DD, guarded by m.mu
	touched time.Time
}

// DateKey returns the day the session is registered under, as YYYY-MM-DD.
func (s *Session) DateKey() string {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return s.key
}

// Manager keeps at most one session per employee and day.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session // id -> session
	views    map[string]string   // employee|date -> id
	now      func() time.Time
}

// NewManager creates an empty registry. A nil clock uses time.Now.
func NewManager(now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		sessions: make(map[string]*Session),
		views:    make(map[string]string),
		now:      now,
	}
}

func viewKey(employeeID, date string) string {
	return employeeID + "|" + date
}

// Open returns the session registered for the employee's day, creating one from newController
// when none exists. The bool reports whether a new session was created.
func (m *Manager) Open(employeeID, date string, newController func() *Controller) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.views[viewKey(employeeID, date)]; ok {
		if s, ok := m.sessions[id]; ok {
			s.touched = m.now()
			return s, false
		}
	}

	s := &Session{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Controller: newController(),
		m:          m,
		key:        date,
		touched:    m.now(),
	}
	m.sessions[s.ID] = s
	m.views[viewKey(employeeID, date)] = s.ID
	return s, true
}

// Get looks up a session and refreshes its idle timer.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touched = m.now()
	return s, nil
}

// Close removes a session. Closing an unknown id is a no-op.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(id)
}

func (m *Manager) remove(id string) {
	s, ok := m.sessions[id]
	if !ok {
		return
	}
	delete(m.sessions, id)
	if m.views[viewKey(s.EmployeeID, s.key)] == id {
		delete(m.views, viewKey(s.EmployeeID, s.key))
	}
}

// Move re-registers a session under another day and runs apply, if any, before the registry
// is unlocked, so the key and the controller cannot drift apart. It fails when that day
// already has a session of its own.
func (m *Manager) Move(id, date string, apply func(*Controller)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if other, ok := m.views[viewKey(s.EmployeeID, date)]; ok && other != id {
		return ErrSessionExists
	}
	if s.key != date {
		delete(m.views, viewKey(s.EmployeeID, s.key))
		s.key = date
		m.views[viewKey(s.EmployeeID, date)] = id
	}
	s.touched = m.now()
	if apply != nil {
		apply(s.Controller)
	}
	return nil
}

// Prune drops sessions idle for longer than ttl and returns how many were removed.
func (m *Manager) Prune(ttl time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-ttl)
	n := 0
	for id, s := range m.sessions {
		if s.touched.Before(cutoff) {
			m.remove(id)
			n++
		}
	}
	return n
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
