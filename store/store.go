// Package store persists sessions and polls; it is the single source of truth
// for vote counts and poll membership.
// File: store/store.go
package store

import (
	"context"
	"errors"
	"fmt"

	"go-live-polls/models"
)

// lookup and write errors shared by every backend
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrPollNotFound         = errors.New("poll not found")
	ErrDuplicateSessionCode = errors.New("session code already in use")
)

// Store is the narrow interface the real-time core reads and writes through.
type Store interface {
	FindSessionByCode(ctx context.Context, code string) (*models.Session, error)
	// CreateSession expects a code the caller has already checked is unused.
	CreateSession(ctx context.Context, code string) (*models.Session, error)
	FindPollByID(ctx context.Context, id string) (*models.Poll, error)
	// SavePoll inserts the poll or replaces it entirely, results included.
	SavePoll(ctx context.Context, poll *models.Poll) error
	AppendPollToSession(ctx context.Context, sessionID, pollID string) error
	ListSessionPolls(ctx context.Context, sessionID string) ([]*models.Poll, error)
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver        string // memory, sqlite, postgres or mongo
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
}

// Open builds the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite", "postgres":
		return OpenSQLStore(ctx, opts.Driver, opts.DatabaseURL)
	case "mongo":
		return OpenMongoStore(ctx, opts.MongoURI, opts.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
