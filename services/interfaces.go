// Package services holds the session, poll and vote logic shared by the HTTP
// controllers and the WebSocket handlers.
// File: services/interfaces.go
package services

import (
	"context"

	"go-live-polls/models"
)

// Broadcaster delivers an event to every live member of a session's room.
type Broadcaster interface {
	Publish(sessionCode, event string, data interface{}) int
}

// SessionServiceInterface is what the session controller depends on.
type SessionServiceInterface interface {
	CreateSession(ctx context.Context) (*models.Session, error)
	GetSession(ctx context.Context, code string) (*models.SessionView, error)
}

// PollServiceInterface is what the poll controller depends on for creation.
type PollServiceInterface interface {
	CreatePoll(ctx context.Context, sessionCode string, req CreatePollRequest) (*models.Poll, error)
}

// VoteServiceInterface is shared by the HTTP and WebSocket vote paths.
type VoteServiceInterface interface {
	Vote(ctx context.Context, pollID, option string) (*models.Poll, error)
}

// CreatePollRequest carries the client-supplied fields of a new poll.
type CreatePollRequest struct {
	Question string          `json:"question"`
	Type     models.PollType `json:"type"`
	Options  []string        `json:"options"`
}
