// helpers_test.go

// fakeConn simulates a WSConn so connection logic can be tested without any
// real network I/O.

package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go-live-polls/models"
	"go-live-polls/store"
)

type fakeConn struct {
	inbound   chan []byte
	writes    chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	pings   int
	pingErr error
	pong    func(string) error
	// deadline of the most recent ping
	pingDeadline time.Time

	// when set, a ping signals pingStarted and waits for pingHold
	pingStarted chan struct{}
	pingHold    chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound: make(chan []byte, 16),
		writes:  make(chan []byte, 64),
		closed:  make(chan struct{}),
	}
}

func (fc *fakeConn) WriteMessage(_ int, data []byte) error {
	select {
	case <-fc.closed:
		return errors.New("use of closed network connection")
	default:
	}
	fc.writes <- append([]byte(nil), data...)
	return nil
}

func (fc *fakeConn) WriteControl(messageType int, _ []byte, deadline time.Time) error {
	if messageType == websocket.PingMessage && fc.pingHold != nil {
		fc.pingStarted <- struct{}{}
		<-fc.pingHold
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if messageType == websocket.PingMessage {
		fc.pings++
		fc.pingDeadline = deadline
	}
	return fc.pingErr
}

func (fc *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (fc *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-fc.inbound:
		return websocket.TextMessage, msg, nil
	case <-fc.closed:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
}

func (fc *fakeConn) Close() error {
	fc.closeOnce.Do(func() { close(fc.closed) })
	return nil
}

func (fc *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345}
}

func (fc *fakeConn) SetReadLimit(int64) {}

func (fc *fakeConn) SetPongHandler(h func(string) error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.pong = h
}

func (fc *fakeConn) hasPongHandler() bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.pong != nil
}

func (fc *fakeConn) firePong() {
	fc.mu.Lock()
	h := fc.pong
	fc.mu.Unlock()
	if h != nil {
		_ = h("")
	}
}

func (fc *fakeConn) pingCount() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.pings
}

func (fc *fakeConn) isClosed() bool {
	select {
	case <-fc.closed:
		return true
	default:
		return false
	}
}

// receive sends raw text to the connection as if from the client.
func (fc *fakeConn) receive(raw string) {
	fc.inbound <- []byte(raw)
}

type wireEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// nextEvent waits for the next frame the server wrote.
func nextEvent(t *testing.T, fc *fakeConn) wireEvent {
	t.Helper()
	select {
	case raw := <-fc.writes:
		var ev wireEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an outbound event")
		return wireEvent{}
	}
}

func nextString(t *testing.T, fc *fakeConn, event string) string {
	t.Helper()
	ev := nextEvent(t, fc)
	require.Equal(t, event, ev.Event)
	var s string
	require.NoError(t, json.Unmarshal(ev.Data, &s))
	return s
}

func assertNoEvent(t *testing.T, fc *fakeConn) {
	t.Helper()
	select {
	case raw := <-fc.writes:
		t.Fatalf("unexpected outbound event: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

// fakeSessions knows a fixed set of session codes.
type fakeSessions struct {
	codes map[string]bool
	err   error
}

func (f fakeSessions) FindSessionByCode(_ context.Context, code string) (*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.codes[code] {
		return &models.Session{ID: "s-" + code, Code: code}, nil
	}
	return nil, store.ErrSessionNotFound
}

type voteCall struct {
	pollID string
	option string
}

// fakeVoter records calls and returns a fixed outcome.
type fakeVoter struct {
	mu    sync.Mutex
	calls []voteCall
	err   error
}

func (f *fakeVoter) Vote(_ context.Context, pollID, option string) (*models.Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, voteCall{pollID, option})
	if f.err != nil {
		return nil, f.err
	}
	return &models.Poll{ID: pollID, Results: map[string]int{option: 1}}, nil
}

func (f *fakeVoter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// recordingMetrics captures room sizes and fan-outs.
type recordingMetrics struct {
	mu      sync.Mutex
	rooms   map[string]int
	fanouts []int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{rooms: make(map[string]int)}
}

func (r *recordingMetrics) RoomConnections(code string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[code] = n
}

func (r *recordingMetrics) VoteRecorded(string) {}

func (r *recordingMetrics) BroadcastFanout(_ string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fanouts = append(r.fanouts, n)
}

func (r *recordingMetrics) roomSize(code string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rooms[code]
	return n, ok
}

func newTestManager(codes ...string) (*Manager, *RoomRegistry, *fakeVoter) {
	known := make(map[string]bool, len(codes))
	for _, c := range codes {
		known[c] = true
	}
	registry := NewRoomRegistry()
	voter := &fakeVoter{}
	m := NewManager(registry, fakeSessions{codes: known}, voter, Config{HeartbeatInterval: time.Hour})
	return m, registry, voter
}
