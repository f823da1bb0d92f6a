package state

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry owns every Session. It hands out non-overlapping state keyed
// by session id; callers within one turn operate on the session by
// reference and never keep it past the turn. Sessions live in memory
// only and do not survive a process restart.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// GetOrCreate returns the session for the id, creating it on first use.
// A blank id mints a fresh one.
func (r *Registry) GetOrCreate(sessionID string) *Session {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[sessionID]; ok {
		return sess
	}
	sess := NewSession(sessionID, r.now())
	r.sessions[sessionID] = sess
	return sess
}

// Get returns the session if it exists.
func (r *Registry) Get(sessionID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[sessionID]
	return sess, ok
}

// Reset replaces the session with fresh defaults, discarding cart,
// profile, and history. The returned session is observationally
// identical to a newly created one.
func (r *Registry) Reset(sessionID string) *Session {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess := NewSession(sessionID, r.now())
	r.sessions[sessionID] = sess
	return sess
}

// Delete removes the session entirely.
func (r *Registry) Delete(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}
