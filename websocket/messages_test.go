package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSessionCode(t *testing.T) {
	code, err := decodeSessionCode(json.RawMessage(`"482913"`))
	require.NoError(t, err)
	assert.Equal(t, "482913", code)

	code, err = decodeSessionCode(json.RawMessage(`482913`))
	require.NoError(t, err)
	assert.Equal(t, "482913", code)

	for _, raw := range []string{`""`, `"  "`, `null`, `{"code":"482913"}`, `[1]`} {
		_, err := decodeSessionCode(json.RawMessage(raw))
		assert.ErrorIs(t, err, errMalformedMessage, raw)
	}
}

func TestDecodeVote(t *testing.T) {
	v, err := decodeVote(json.RawMessage(`{"pollId":"p1","option":"Red"}`))
	require.NoError(t, err)
	assert.Equal(t, VotePayload{PollID: "p1", Option: "Red"}, v)

	for _, raw := range []string{`{"pollId":"p1"}`, `{"option":"Red"}`, `{"pollId":"p1","option":" "}`, `"Red"`} {
		_, err := decodeVote(json.RawMessage(raw))
		assert.ErrorIs(t, err, errMalformedMessage, raw)
	}
}

func TestEncodeEvent(t *testing.T) {
	raw, err := encodeEvent(EventSessionJoined, "Successfully joined session 482913")
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"sessionJoined","data":"Successfully joined session 482913"}`, string(raw))
}
