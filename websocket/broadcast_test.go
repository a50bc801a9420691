package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, c *Connection) wireEvent {
	t.Helper()
	select {
	case raw := <-c.send:
		var ev wireEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		return ev
	default:
		t.Fatal("nothing queued")
		return wireEvent{}
	}
}

func TestPublish_DeliversToEveryMember(t *testing.T) {
	r := NewRoomRegistry()
	rec := newRecordingMetrics()
	d := NewDispatcher(r, rec)
	a, b, other := detached("a"), detached("b"), detached("other")
	r.Join("482913", a)
	r.Join("482913", b)
	r.Join("111111", other)

	n := d.Publish("482913", EventUpdateResults, map[string]interface{}{"pollId": "p1", "results": map[string]int{"Red": 1}})

	assert.Equal(t, 2, n)
	for _, c := range []*Connection{a, b} {
		ev := drain(t, c)
		assert.Equal(t, EventUpdateResults, ev.Event)
		assert.JSONEq(t, `{"pollId":"p1","results":{"Red":1}}`, string(ev.Data))
	}
	assert.Len(t, other.send, 0)
	assert.Equal(t, []int{2}, rec.fanouts)
}

func TestPublish_EmptyRoom(t *testing.T) {
	r := NewRoomRegistry()
	d := NewDispatcher(r, nil)

	assert.Equal(t, 0, d.Publish("999999", EventNewPoll, "x"))
	assert.False(t, r.HasRoom("999999"))
}

func TestPublish_PrunesClosedMembers(t *testing.T) {
	r := NewRoomRegistry()
	d := NewDispatcher(r, nil)
	live, dead := detached("live"), detached("dead")
	r.Join("482913", live)
	r.Join("482913", dead)
	dead.Close()

	assert.Equal(t, 1, d.Publish("482913", EventNewPoll, "x"))
	assert.Equal(t, []*Connection{live}, r.Members("482913"))
	assert.Equal(t, EventNewPoll, drain(t, live).Event)
}

func TestPublish_FullBufferSkipsOnlyThatMember(t *testing.T) {
	r := NewRoomRegistry()
	d := NewDispatcher(r, nil)
	slow, fast := detached("slow"), detached("fast")
	r.Join("482913", slow)
	r.Join("482913", fast)
	for i := 0; i < sendBufferSize; i++ {
		require.NoError(t, slow.enqueue([]byte("{}")))
	}

	assert.Equal(t, 1, d.Publish("482913", EventNewPoll, "x"))
	assert.Equal(t, 2, r.RoomSize("482913"), "a slow member stays in the room")
	assert.Equal(t, EventNewPoll, drain(t, fast).Event)
}

func TestPublish_UnencodableData(t *testing.T) {
	r := NewRoomRegistry()
	d := NewDispatcher(r, nil)
	a := detached("a")
	r.Join("482913", a)

	assert.Equal(t, 0, d.Publish("482913", EventNewPoll, make(chan int)))
	assert.Len(t, a.send, 0)
}
