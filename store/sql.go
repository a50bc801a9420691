// Package store file: store/sql.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go-live-polls/logger"
	"go-live-polls/models"
	_ "modernc.org/sqlite"
)

// SQLStore persists sessions and polls through database/sql. Queries use $n
// placeholders, which both PostgreSQL and SQLite accept.
type SQLStore struct {
	db     *sql.DB
	driver string
}

var _ Store = (*SQLStore)(nil)

// OpenSQLStore connects with driver ("sqlite" or "postgres"), verifies the
// connection and creates the schema.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// SQLite allows a single writer; serialise through one connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}
	s := &SQLStore{db: db, driver: driver}
	if err := s.CreateSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info.Printf("[SQLStore] %s schema ready", driver)
	return s, nil
}

// CreateSchema creates all tables. Safe to call multiple times.
func (s *SQLStore) CreateSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS voting_session (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES voting_session(id) ON DELETE CASCADE,
    access_code TEXT NOT NULL,
    question TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('multiple-choice', 'open-ended')),
    options TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_poll_access_code ON poll(access_code);

CREATE TABLE IF NOT EXISTS poll_result (
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    option_label TEXT NOT NULL,
    votes INTEGER NOT NULL CHECK (votes >= 0),
    PRIMARY KEY (poll_id, option_label)
);

CREATE TABLE IF NOT EXISTS session_poll (
    session_id TEXT NOT NULL REFERENCES voting_session(id) ON DELETE CASCADE,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    PRIMARY KEY (session_id, poll_id)
);
`

// FindSessionByCode loads the session and its poll ids.
func (s *SQLStore) FindSessionByCode(ctx context.Context, code string) (*models.Session, error) {
	sess := &models.Session{PollIDs: []string{}}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, code FROM voting_session WHERE code = $1
	`, code).Scan(&sess.ID, &sess.Code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session %s: %w", code, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT poll_id FROM session_poll WHERE session_id = $1 ORDER BY position, poll_id
	`, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("query session polls: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session poll: %w", err)
		}
		sess.PollIDs = append(sess.PollIDs, id)
	}
	return sess, rows.Err()
}

// CreateSession inserts a session with a fresh id.
func (s *SQLStore) CreateSession(ctx context.Context, code string) (*models.Session, error) {
	sess := &models.Session{ID: uuid.NewString(), Code: code, PollIDs: []string{}}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO voting_session (id, code) VALUES ($1, $2)
	`, sess.ID, sess.Code)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSessionCode
		}
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// FindPollByID loads a poll and its results.
func (s *SQLStore) FindPollByID(ctx context.Context, id string) (*models.Poll, error) {
	p := &models.Poll{}
	var pollType, options string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, access_code, question, type, options FROM poll WHERE id = $1
	`, id).Scan(&p.ID, &p.SessionID, &p.AccessCode, &p.Question, &pollType, &options)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query poll %s: %w", id, err)
	}
	p.Type = models.PollType(pollType)
	if err := json.Unmarshal([]byte(options), &p.Options); err != nil {
		return nil, fmt.Errorf("decode options of poll %s: %w", id, err)
	}

	p.Results, err = s.loadResults(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SQLStore) loadResults(ctx context.Context, pollID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT option_label, votes FROM poll_result WHERE poll_id = $1
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := make(map[string]int)
	for rows.Next() {
		var label string
		var votes int
		if err := rows.Scan(&label, &votes); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results[label] = votes
	}
	return results, rows.Err()
}

// SavePoll upserts the poll row and replaces its results in one transaction.
func (s *SQLStore) SavePoll(ctx context.Context, poll *models.Poll) error {
	options, err := json.Marshal(poll.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll (id, session_id, access_code, question, type, options)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			session_id = excluded.session_id,
			access_code = excluded.access_code,
			question = excluded.question,
			type = excluded.type,
			options = excluded.options
	`, poll.ID, poll.SessionID, poll.AccessCode, poll.Question, string(poll.Type), string(options))
	if err != nil {
		return fmt.Errorf("upsert poll %s: %w", poll.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM poll_result WHERE poll_id = $1`, poll.ID); err != nil {
		return fmt.Errorf("clear results of poll %s: %w", poll.ID, err)
	}
	for label, votes := range poll.Results {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO poll_result (poll_id, option_label, votes) VALUES ($1, $2, $3)
		`, poll.ID, label, votes)
		if err != nil {
			return fmt.Errorf("insert result %q of poll %s: %w", label, poll.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit poll %s: %w", poll.ID, err)
	}
	return nil
}

// AppendPollToSession links pollID to the session after its existing polls.
func (s *SQLStore) AppendPollToSession(ctx context.Context, sessionID, pollID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM voting_session WHERE id = $1`, sessionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("query session %s: %w", sessionID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO session_poll (session_id, poll_id, position)
		SELECT $1, $2, COALESCE(MAX(position), 0) + 1 FROM session_poll WHERE session_id = $1
		ON CONFLICT (session_id, poll_id) DO NOTHING
	`, sessionID, pollID)
	if err != nil {
		return fmt.Errorf("append poll %s to session %s: %w", pollID, sessionID, err)
	}
	return tx.Commit()
}

// ListSessionPolls loads every poll linked to the session, in append order.
func (s *SQLStore) ListSessionPolls(ctx context.Context, sessionID string) ([]*models.Poll, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT poll_id FROM session_poll WHERE session_id = $1 ORDER BY position, poll_id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session polls: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan session poll: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	polls := make([]*models.Poll, 0, len(ids))
	for _, id := range ids {
		p, err := s.FindPollByID(ctx, id)
		if err != nil {
			return nil, err
		}
		polls = append(polls, p)
	}
	return polls, nil
}

// Close closes the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// isUniqueViolation matches the constraint errors reported by lib/pq and SQLite.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
