// Package services file: services/vote_service.go
package services

import (
	"context"
	"fmt"

	"go-live-polls/logger"
	"go-live-polls/metrics"
	"go-live-polls/models"
)

// EventUpdateResults is broadcast to a poll's room after every accepted vote.
const EventUpdateResults = "updateResults"

// PollStore is the part of the store a VoteService needs.
type PollStore interface {
	FindPollByID(ctx context.Context, id string) (*models.Poll, error)
	SavePoll(ctx context.Context, poll *models.Poll) error
}

// ResultsUpdate is the payload of an updateResults broadcast.
type ResultsUpdate struct {
	PollID  string         `json:"pollId"`
	Results map[string]int `json:"results"`
}

// VoteService applies votes and broadcasts the new tallies.
type VoteService struct {
	store       PollStore
	broadcaster Broadcaster
	metrics     metrics.Publisher
	locks       *pollLocks
}

var _ VoteServiceInterface = (*VoteService)(nil)

// NewVoteService creates a VoteService. A nil publisher disables metrics.
func NewVoteService(store PollStore, broadcaster Broadcaster, pub metrics.Publisher) *VoteService {
	if pub == nil {
		pub = metrics.Noop{}
	}
	return &VoteService{
		store:       store,
		broadcaster: broadcaster,
		metrics:     pub,
		locks:       newPollLocks(),
	}
}

// Vote adds exactly one vote for option and broadcasts updateResults to the
// room named by the poll's access code. Nothing is broadcast unless the new
// tally was persisted. Read-increment-write is serialised per poll.
func (s *VoteService) Vote(ctx context.Context, pollID, option string) (*models.Poll, error) {
	poll, err := s.record(ctx, pollID, option)
	if err != nil {
		return nil, err
	}

	s.metrics.VoteRecorded(poll.AccessCode)
	s.broadcaster.Publish(poll.AccessCode, EventUpdateResults, ResultsUpdate{
		PollID:  poll.ID,
		Results: models.CloneResults(poll.Results),
	})
	return poll, nil
}

func (s *VoteService) record(ctx context.Context, pollID, option string) (*models.Poll, error) {
	unlock := s.locks.Lock(pollID)
	defer unlock()

	poll, err := s.store.FindPollByID(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("find poll %s: %w", pollID, err)
	}
	if !poll.AcceptsOption(option) {
		logger.Warn.Printf("[VoteService.Vote] Rejected option %q for poll %s", option, pollID)
		return nil, models.ErrInvalidOption
	}

	if poll.Results == nil {
		poll.Results = make(map[string]int)
	}
	poll.Results[option]++

	if err := s.store.SavePoll(ctx, poll); err != nil {
		logger.Error.Printf("[VoteService.Vote] Failed to save poll %s: %v", pollID, err)
		return nil, fmt.Errorf("save poll %s: %w", pollID, err)
	}
	logger.Info.Printf("[VoteService.Vote] Vote recorded for poll=%s option=%q total=%d", pollID, option, poll.TotalVotes())
	return poll, nil
}
