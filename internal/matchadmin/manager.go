// internal/matchadmin/manager.go
package matchadmin

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pachanga/matchday/internal/clubapi"
	"github.com/pachanga/matchday/internal/journal"
)

// Manager holds the live admin sessions, one per (match, admin) pair. Each
// session exclusively owns its in-memory state; the manager only creates,
// hands out and evicts them.
type Manager struct {
	api     clubapi.API
	journal *journal.Journal

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(api clubapi.API, jnl *journal.Journal) *Manager {
	return &Manager{
		api:      api,
		journal:  jnl,
		sessions: make(map[string]*Session),
	}
}

func sessionKey(matchID, actorID string) string {
	return matchID + "|" + actorID
}

// Session returns the live session for the match and admin, loading a new
// one on first access.
func (m *Manager) Session(ctx context.Context, matchID, actorID string) (*Session, error) {
	m.mu.Lock()
	if existing, ok := m.sessions[sessionKey(matchID, actorID)]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.mu.Unlock()

	session := NewSession(matchID, actorID, m.api, m.journal)
	if err := session.Load(ctx); err != nil {
		session.Close()
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have loaded the same session while we did.
	if existing, ok := m.sessions[sessionKey(matchID, actorID)]; ok {
		session.Close()
		return existing, nil
	}
	m.sessions[sessionKey(matchID, actorID)] = session
	return session, nil
}

// PruneIdle evicts sessions that have not served a command within maxIdle
// and reports how many were closed.
func (m *Manager) PruneIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	var evicted []*Session
	for key, session := range m.sessions {
		if session.LastActive().Before(cutoff) {
			delete(m.sessions, key)
			evicted = append(evicted, session)
		}
	}
	m.mu.Unlock()

	for _, session := range evicted {
		session.Close()
	}
	if len(evicted) > 0 {
		log.Info().Int("evicted", len(evicted)).Msg("Pruned idle admin sessions")
	}
	return len(evicted)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
