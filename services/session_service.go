// Package services file: services/session_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"go-live-polls/logger"
	"go-live-polls/models"
	"go-live-polls/store"
)

// maxCodeAttempts bounds the search for an unused session code.
const maxCodeAttempts = 100

// ErrCodeSpaceExhausted is returned when no unused code was found in time.
var ErrCodeSpaceExhausted = errors.New("could not allocate a unique session code")

// CodeGenerator returns a candidate six-digit session code.
type CodeGenerator func() string

// SessionStore is the part of the store a SessionService needs.
type SessionStore interface {
	FindSessionByCode(ctx context.Context, code string) (*models.Session, error)
	CreateSession(ctx context.Context, code string) (*models.Session, error)
	ListSessionPolls(ctx context.Context, sessionID string) ([]*models.Poll, error)
}

// SessionService creates sessions and reads them back with their polls.
type SessionService struct {
	store    SessionStore
	generate CodeGenerator
}

var _ SessionServiceInterface = (*SessionService)(nil)

// NewSessionService uses RandomSessionCode when generate is nil.
func NewSessionService(store SessionStore, generate CodeGenerator) *SessionService {
	if generate == nil {
		generate = RandomSessionCode
	}
	return &SessionService{store: store, generate: generate}
}

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomSessionCode draws uniformly from 100000..999999.
func RandomSessionCode() string {
	rngMu.Lock()
	n := 100000 + rng.Intn(900000)
	rngMu.Unlock()
	return strconv.Itoa(n)
}

// CreateSession samples codes until one is unused and creates the session.
// A concurrent creator taking the same code is treated like any other collision.
func (s *SessionService) CreateSession(ctx context.Context) (*models.Session, error) {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code := s.generate()
		if !models.IsValidSessionCode(code) {
			continue
		}

		_, err := s.store.FindSessionByCode(ctx, code)
		switch {
		case err == nil:
			logger.Debug.Printf("[SessionService.CreateSession] Code %s in use (attempt %d)", code, attempt)
			continue
		case !errors.Is(err, store.ErrSessionNotFound):
			return nil, fmt.Errorf("check session code: %w", err)
		}

		session, err := s.store.CreateSession(ctx, code)
		if errors.Is(err, store.ErrDuplicateSessionCode) {
			continue
		}
		if err != nil {
			logger.Error.Printf("[SessionService.CreateSession] Failed to create session %s: %v", code, err)
			return nil, fmt.Errorf("create session: %w", err)
		}
		logger.Info.Printf("[SessionService.CreateSession] Session %s created with code %s", session.ID, session.Code)
		return session, nil
	}
	logger.Error.Printf("[SessionService.CreateSession] Gave up after %d attempts", maxCodeAttempts)
	return nil, ErrCodeSpaceExhausted
}

// GetSession returns the session for code with its polls in creation order.
func (s *SessionService) GetSession(ctx context.Context, code string) (*models.SessionView, error) {
	session, err := s.store.FindSessionByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("find session %s: %w", code, err)
	}
	polls, err := s.store.ListSessionPolls(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list polls of session %s: %w", code, err)
	}
	if polls == nil {
		polls = []*models.Poll{}
	}
	return &models.SessionView{ID: session.ID, Code: session.Code, Polls: polls}, nil
}
