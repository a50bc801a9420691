// Package models file: models/session.go
package models

// SessionCodeLength is the number of digits in a session code.
const SessionCodeLength = 6

// ------------------------ session model -----------------------

// Session groups polls under a short numeric code shared by all participants.
type Session struct {
	ID      string   `json:"id" bson:"_id"`
	Code    string   `json:"sessionCode" bson:"sessionCode"`
	PollIDs []string `json:"polls" bson:"polls"`
}

// SessionView is a session with its polls populated, as returned to clients.
type SessionView struct {
	ID    string  `json:"id"`
	Code  string  `json:"sessionCode"`
	Polls []*Poll `json:"polls"`
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.PollIDs = cloneStrings(s.PollIDs)
	return &cp
}

// HasPoll reports whether pollID already belongs to the session.
func (s *Session) HasPoll(pollID string) bool {
	for _, id := range s.PollIDs {
		if id == pollID {
			return true
		}
	}
	return false
}

// IsValidSessionCode reports whether code is six ASCII digits without a leading zero.
func IsValidSessionCode(code string) bool {
	if len(code) != SessionCodeLength || code[0] == '0' {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
