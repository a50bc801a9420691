// Package websocket file: websocket/messages.go
package websocket

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// inbound events (client -> server)
const (
	EventJoinSession = "joinSession"
	EventVote        = "vote"
)

// outbound events (server -> client)
const (
	EventSessionJoined = "sessionJoined"
	EventSessionError  = "sessionError"
	EventNewPoll       = "newPoll"
	EventUpdateResults = "updateResults"
	EventVoteSuccess   = "voteSuccess"
	EventVoteError     = "voteError"
)

var errMalformedMessage = errors.New("malformed message")

// Event is the {event, data} envelope used in both directions.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// inboundMessage defers decoding of data until the event name is known.
type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// VotePayload is the data of an inbound vote event.
type VotePayload struct {
	PollID string `json:"pollId"`
	Option string `json:"option"`
}

func encodeEvent(event string, data interface{}) ([]byte, error) {
	return json.Marshal(Event{Event: event, Data: data})
}

func decodeInbound(raw []byte) (inboundMessage, error) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return inboundMessage{}, errMalformedMessage
	}
	if msg.Event == "" {
		return inboundMessage{}, errMalformedMessage
	}
	return msg, nil
}

// decodeSessionCode accepts the code as a JSON string or a bare number.
func decodeSessionCode(data json.RawMessage) (string, error) {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		var n json.Number
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&n); err != nil {
			return "", errMalformedMessage
		}
		code = n.String()
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return "", errMalformedMessage
	}
	return code, nil
}

func decodeVote(data json.RawMessage) (VotePayload, error) {
	var v VotePayload
	if err := json.Unmarshal(data, &v); err != nil {
		return VotePayload{}, errMalformedMessage
	}
	if v.PollID == "" || strings.TrimSpace(v.Option) == "" {
		return VotePayload{}, errMalformedMessage
	}
	return v, nil
}
