package server

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"sort"
	"sync"

	"pkt.systems/pslog"
)

const sessionIDBytes = 12

func newSessionID() string {
	buf := make([]byte, sessionIDBytes)
	_, _ = rand.Read(buf)
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
}

// Manager tracks live pty sessions and enforces the session cap.
type Manager struct {
	logger pslog.Logger
	max    int

	mu       sync.RWMutex
	sessions map[string]*Session
	// pending counts slots reserved for spawns in flight, so concurrent
	// Spawn calls cannot slip past the cap between check and insert.
	pending int
}

// NewManager constructs a Manager. max <= 0 means unlimited.
func NewManager(logger pslog.Logger, max int) *Manager {
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	return &Manager{
		logger:   logger,
		max:      max,
		sessions: make(map[string]*Session),
	}
}

// Spawn creates a new session and registers it.
func (m *Manager) Spawn(spec SpawnSpec) (*Session, error) {
	if len(spec.Command) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	m.mu.Lock()
	if m.max > 0 && len(m.sessions)+m.pending >= m.max {
		m.mu.Unlock()
		return nil, fmt.Errorf("session limit reached (%d)", m.max)
	}
	m.pending++
	id := newSessionID()
	m.mu.Unlock()

	sess, err := newSession(id, spec)

	m.mu.Lock()
	m.pending--
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.sessions[id] = sess
	m.mu.Unlock()

	m.logger.Info("session spawned", "session", id, "pid", sess.Pid(), "argv0", spec.Command[0])
	return sess, nil
}

// Get returns the session with the given id, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Remove drops the session from the registry and releases its resources.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	sess := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if sess != nil {
		_ = sess.Close()
		m.logger.Info("session removed", "session", id)
	}
}

// List returns session infos sorted by start time.
func (m *Manager) List() []Info {
	m.mu.RLock()
	infos := make([]Info, 0, len(m.sessions))
	for _, sess := range m.sessions {
		infos = append(infos, sess.info())
	}
	m.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].StartedAt.Before(infos[j].StartedAt)
	})
	return infos
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll kills and removes every session, used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, sess := range m.sessions {
		sessions = append(sessions, sess)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, sess := range sessions {
		_ = sess.Close()
	}
}
