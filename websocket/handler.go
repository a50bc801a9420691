// Package websocket: contains the inbound event handlers
// file: websocket/handler.go
package websocket

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"go-live-polls/logger"
	"go-live-polls/models"
	"go-live-polls/store"
)

// handleIncoming decodes one inbound message and routes it. Failures stay
// inside this call: the connection remains usable for the next message.
func (m *Manager) handleIncoming(c *Connection, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error.Printf("[handleIncoming] Recovered from panic on %s: %v\n%s", c.ID(), r, debug.Stack())
		}
	}()

	msg, err := decodeInbound(raw)
	if err != nil {
		logger.Warn.Printf("[handleIncoming] Invalid JSON from %s: %v", c.ID(), err)
		return
	}

	switch msg.Event {
	case EventJoinSession:
		code, err := decodeSessionCode(msg.Data)
		if err != nil {
			logger.Warn.Printf("[handleIncoming] Invalid joinSession payload from %s: %v", c.ID(), err)
			return
		}
		m.handleJoin(c, code)
	case EventVote:
		vote, err := decodeVote(msg.Data)
		if err != nil {
			logger.Warn.Printf("[handleIncoming] Invalid vote payload from %s: %v", c.ID(), err)
			return
		}
		m.handleVote(c, vote)
	default:
		logger.Debug.Printf("[handleIncoming] Unhandled event: %s", msg.Event)
	}
}

// handleJoin validates the session and adds c to its room. Joining several
// sessions from one connection is allowed.
func (m *Manager) handleJoin(c *Connection, code string) {
	// store calls are never cancelled by connection termination
	_, err := m.sessions.FindSessionByCode(context.Background(), code)
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		logger.Info.Printf("[handleJoin] %s tried to join unknown session %s", c.ID(), code)
		_ = c.SendEvent(EventSessionError, "Session not found")
		return
	case err != nil:
		logger.Error.Printf("[handleJoin] Session lookup for %s failed: %v", code, err)
		_ = c.SendEvent(EventSessionError, "Failed to join session")
		return
	}

	if !c.IsOpen() {
		return
	}
	m.registry.Join(code, c)
	if !c.IsOpen() {
		// closed while joining; its cleanup may already have run
		m.registry.Leave(code, c)
		return
	}
	c.markJoined()
	m.metrics.RoomConnections(code, m.registry.RoomSize(code))

	logger.Info.Printf("[handleJoin] %s joined session %s", c.ID(), code)
	_ = c.SendEvent(EventSessionJoined, fmt.Sprintf("Successfully joined session %s", code))
}

// handleVote runs the vote protocol and acknowledges to the voter only.
func (m *Manager) handleVote(c *Connection, vote VotePayload) {
	logger.Info.Printf("[handleVote] Received vote for poll=%s option=%q from %s", vote.PollID, vote.Option, c.ID())

	_, err := m.voter.Vote(context.Background(), vote.PollID, vote.Option)
	switch {
	case errors.Is(err, store.ErrPollNotFound):
		_ = c.SendEvent(EventVoteError, "Poll not found")
	case errors.Is(err, models.ErrInvalidOption):
		_ = c.SendEvent(EventVoteError, "Invalid option")
	case err != nil:
		logger.Error.Printf("[handleVote] Vote on poll %s failed: %v", vote.PollID, err)
		_ = c.SendEvent(EventVoteError, "Failed to process vote")
	default:
		_ = c.SendEvent(EventVoteSuccess, fmt.Sprintf("Vote recorded for %s", vote.Option))
	}
}
