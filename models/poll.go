// Package models defines data structures used across the application.
// File: models/poll.go
package models

import (
	"errors"
	"strings"
)

// PollType is the kind of answers a poll accepts.
type PollType string

// supported poll types
const (
	PollTypeMultipleChoice PollType = "multiple-choice"
	PollTypeOpenEnded      PollType = "open-ended"
)

// validation errors returned by Poll.Validate
var (
	ErrEmptyQuestion   = errors.New("question is required")
	ErrInvalidPollType = errors.New("type must be multiple-choice or open-ended")
	ErrTooFewOptions   = errors.New("multiple-choice polls need at least two options")
	ErrInvalidOptions  = errors.New("options must be non-empty and distinct")
	// ErrInvalidOption is a vote for a label the poll does not accept.
	ErrInvalidOption = errors.New("invalid option")
)

// ------------------------ poll model -----------------------

// Poll is a single question with a tally of votes per option label.
// AccessCode duplicates the owning session's code so broadcasts need no join.
type Poll struct {
	ID         string         `json:"id" bson:"_id"`
	SessionID  string         `json:"sessionId" bson:"sessionId"`
	AccessCode string         `json:"accessCode" bson:"accessCode"`
	Question   string         `json:"question" bson:"question"`
	Type       PollType       `json:"type" bson:"type"`
	Options    []string       `json:"options" bson:"options"`
	Results    map[string]int `json:"results" bson:"results"`
}

// Validate checks the fields a client supplies when creating a poll.
func (p *Poll) Validate() error {
	if strings.TrimSpace(p.Question) == "" {
		return ErrEmptyQuestion
	}
	switch p.Type {
	case PollTypeMultipleChoice:
		if len(p.Options) < 2 {
			return ErrTooFewOptions
		}
	case PollTypeOpenEnded:
	default:
		return ErrInvalidPollType
	}

	seen := make(map[string]bool, len(p.Options))
	for _, o := range p.Options {
		if strings.TrimSpace(o) == "" || seen[o] {
			return ErrInvalidOptions
		}
		seen[o] = true
	}
	return nil
}

// AcceptsOption reports whether a vote for label is allowed. Multiple-choice
// polls only take their fixed labels; open-ended polls take any label.
func (p *Poll) AcceptsOption(label string) bool {
	if strings.TrimSpace(label) == "" {
		return false
	}
	if p.Type != PollTypeMultipleChoice {
		return true
	}
	for _, o := range p.Options {
		if o == label {
			return true
		}
	}
	return false
}

// TotalVotes sums every option's count.
func (p *Poll) TotalVotes() int {
	total := 0
	for _, n := range p.Results {
		total += n
	}
	return total
}

// Clone returns a deep copy so callers can mutate results without aliasing.
func (p *Poll) Clone() *Poll {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Options = cloneStrings(p.Options)
	cp.Results = CloneResults(p.Results)
	return &cp
}

// cloneStrings copies s, keeping an empty slice empty rather than nil so it
// still encodes as [].
func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// CloneResults copies a results map; a nil map becomes an empty one.
func CloneResults(results map[string]int) map[string]int {
	out := make(map[string]int, len(results))
	for k, v := range results {
		out[k] = v
	}
	return out
}
