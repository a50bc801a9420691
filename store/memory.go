// Package store file: store/memory.go
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go-live-polls/models"
)

// MemoryStore keeps everything in process memory. Values handed out are copies,
// so callers never alias stored state.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session // by id
	codes    map[string]string          // code -> session id
	polls    map[string]*models.Poll
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
		codes:    make(map[string]string),
		polls:    make(map[string]*models.Poll),
	}
}

// FindSessionByCode returns the session registered under code.
func (m *MemoryStore) FindSessionByCode(_ context.Context, code string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.codes[code]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return m.sessions[id].Clone(), nil
}

// CreateSession stores a new session with an empty poll set.
func (m *MemoryStore) CreateSession(_ context.Context, code string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.codes[code]; taken {
		return nil, ErrDuplicateSessionCode
	}
	s := &models.Session{ID: uuid.NewString(), Code: code, PollIDs: []string{}}
	m.sessions[s.ID] = s
	m.codes[code] = s.ID
	return s.Clone(), nil
}

// FindPollByID returns a copy of the stored poll.
func (m *MemoryStore) FindPollByID(_ context.Context, id string) (*models.Poll, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.polls[id]
	if !ok {
		return nil, ErrPollNotFound
	}
	return p.Clone(), nil
}

// SavePoll stores a copy of poll, replacing any previous version.
func (m *MemoryStore) SavePoll(_ context.Context, poll *models.Poll) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls[poll.ID] = poll.Clone()
	return nil
}

// AppendPollToSession adds pollID to the session's poll set.
func (m *MemoryStore) AppendPollToSession(_ context.Context, sessionID, pollID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if !s.HasPoll(pollID) {
		s.PollIDs = append(s.PollIDs, pollID)
	}
	return nil
}

// ListSessionPolls returns the session's polls in the order they were appended.
func (m *MemoryStore) ListSessionPolls(_ context.Context, sessionID string) ([]*models.Poll, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	polls := make([]*models.Poll, 0, len(s.PollIDs))
	for _, id := range s.PollIDs {
		if p, ok := m.polls[id]; ok {
			polls = append(polls, p.Clone())
		}
	}
	return polls, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
