// Package session manages scan sessions: creation, state transitions, the
// one-active-per-scope rule, and retention. Sessions are passive records;
// the scanner, decision engine, and executor drive their transitions.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"diskwise/internal/common"
	"diskwise/internal/model"
	"diskwise/internal/service"
	"diskwise/internal/storage"
)

// Manager owns the in-process session registry and mirrors every mutation
// to durable storage.
type Manager struct {
	store    service.Storage
	sessions map[string]*model.Session
	byScope  map[string]string
	keep     int
	mu       sync.RWMutex
}

// NewManager creates a session manager. keep bounds how many historical
// sessions are retained; values below 1 default to 20.
func NewManager(store service.Storage, keep int) *Manager {
	if keep < 1 {
		keep = 20
	}
	return &Manager{
		store:    store,
		sessions: make(map[string]*model.Session),
		byScope:  make(map[string]string),
		keep:     keep,
	}
}

// Start creates a new session for a scan scope. At most one session per
// scope may be active at a time.
func (m *Manager) Start(ctx context.Context, scope string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byScope[scope]; ok {
		if existing, ok := m.sessions[id]; ok && !existing.State.Terminal() {
			return nil, fmt.Errorf("scope %s: %w", scope, common.ErrSessionActive)
		}
	}

	if m.store != nil {
		existing, err := m.store.GetActiveSession(ctx, scope)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to check active session: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("scope %s: %w", scope, common.ErrSessionActive)
		}
	}

	session := &model.Session{
		ID:        uuid.NewString(),
		Scope:     scope,
		State:     model.StateInitializing,
		StartedAt: time.Now(),
	}

	if err := m.persist(ctx, session); err != nil {
		return nil, err
	}

	m.sessions[session.ID] = session
	m.byScope[scope] = session.ID
	return session, nil
}

// Get returns a session by id, loading it from storage when it is not in
// the in-process registry.
func (m *Manager) Get(ctx context.Context, id string) (*model.Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return session, nil
	}

	if m.store == nil {
		return nil, fmt.Errorf("session %s: %w", id, common.ErrSessionNotFound)
	}

	session, err := m.store.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, common.ErrSessionNotFound)
		}
		return nil, err
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()
	return session, nil
}

// Transition moves a session to a new state. Terminal sessions reject
// further transitions.
func (m *Manager) Transition(ctx context.Context, session *model.Session, state model.SessionState) error {
	m.mu.Lock()
	if session.State.Terminal() {
		m.mu.Unlock()
		return fmt.Errorf("session %s in state %s: %w", session.ID, session.State, common.ErrSessionTerminal)
	}
	session.State = state
	if state.Terminal() {
		now := time.Now()
		session.CompletedAt = &now
	}
	m.mu.Unlock()

	return m.persist(ctx, session)
}

// Fail marks a session failed with an error message.
func (m *Manager) Fail(ctx context.Context, session *model.Session, cause error) error {
	m.mu.Lock()
	session.Error = cause.Error()
	m.mu.Unlock()
	return m.Transition(ctx, session, model.StateFailed)
}

// Cancel marks a session cancelled.
func (m *Manager) Cancel(ctx context.Context, session *model.Session) error {
	return m.Transition(ctx, session, model.StateCancelled)
}

// Save persists the session's current contents.
func (m *Manager) Save(ctx context.Context, session *model.Session) error {
	session.Recount()
	return m.persist(ctx, session)
}

// Recent lists the most recently started sessions.
func (m *Manager) Recent(ctx context.Context, limit int) ([]*model.Session, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.GetRecentSessions(ctx, limit)
}

// PruneHistory drops sessions beyond the retention count.
func (m *Manager) PruneHistory(ctx context.Context) (int, error) {
	if m.store == nil {
		return 0, nil
	}
	return m.store.PruneSessions(ctx, m.keep)
}

func (m *Manager) persist(ctx context.Context, session *model.Session) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}
