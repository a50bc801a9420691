// Package services file: services/poll_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go-live-polls/logger"
	"go-live-polls/models"
)

// EventNewPoll is broadcast to a session's room when a poll is created.
const EventNewPoll = "newPoll"

// PollCreationStore is the part of the store a PollService needs.
type PollCreationStore interface {
	FindSessionByCode(ctx context.Context, code string) (*models.Session, error)
	SavePoll(ctx context.Context, poll *models.Poll) error
	AppendPollToSession(ctx context.Context, sessionID, pollID string) error
}

// PollService creates polls inside existing sessions.
type PollService struct {
	store       PollCreationStore
	broadcaster Broadcaster
}

var _ PollServiceInterface = (*PollService)(nil)

// NewPollService creates a PollService.
func NewPollService(store PollCreationStore, broadcaster Broadcaster) *PollService {
	return &PollService{store: store, broadcaster: broadcaster}
}

// CreatePoll validates req, stores a new poll with empty results, attaches it
// to the session and announces it to the session's room.
func (s *PollService) CreatePoll(ctx context.Context, sessionCode string, req CreatePollRequest) (*models.Poll, error) {
	session, err := s.store.FindSessionByCode(ctx, sessionCode)
	if err != nil {
		return nil, fmt.Errorf("find session %s: %w", sessionCode, err)
	}

	poll := &models.Poll{
		ID:         uuid.NewString(),
		SessionID:  session.ID,
		AccessCode: session.Code,
		Question:   strings.TrimSpace(req.Question),
		Type:       req.Type,
		Options:    append([]string{}, req.Options...),
		Results:    map[string]int{},
	}
	if err := poll.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.SavePoll(ctx, poll); err != nil {
		return nil, fmt.Errorf("save poll: %w", err)
	}
	if err := s.store.AppendPollToSession(ctx, session.ID, poll.ID); err != nil {
		return nil, fmt.Errorf("attach poll to session %s: %w", sessionCode, err)
	}
	logger.Info.Printf("[PollService.CreatePoll] Poll %s created in session %s", poll.ID, sessionCode)

	s.broadcaster.Publish(session.Code, EventNewPoll, poll.Clone())
	return poll, nil
}
