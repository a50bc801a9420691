// Package websocket provides the WebSocket server and connection handling.
// file: websocket/connection.go
package websocket

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go-live-polls/logger"
)

// WSConn is the subset of *websocket.Conn a Connection uses, so tests can
// substitute a fake transport.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
}

// Configuration constants.
const (
	writeWait      = 10 * time.Second
	pingWait       = 5 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 256
)

var (
	errConnectionClosed = errors.New("connection closed")
	errSendBufferFull   = errors.New("send buffer full")
)

// ConnState is the lifecycle state of one connection.
type ConnState int32

// Connected -> Joined -> Closed; there is no way back.
const (
	StateConnected ConnState = iota
	StateJoined
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Connection represents a single participant's WebSocket channel.
type Connection struct {
	id      string
	conn    WSConn
	send    chan []byte
	manager *Manager

	alive atomic.Bool
	state atomic.Int32

	mu        sync.Mutex // guards closed and closing send
	closed    bool
	closeOnce sync.Once
}

func newConnection(id string, conn WSConn, m *Manager) *Connection {
	c := &Connection{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		manager: m,
	}
	c.alive.Store(true)
	c.state.Store(int32(StateConnected))
	return c
}

// ID identifies the connection in logs.
func (c *Connection) ID() string { return c.id }

// State returns the current lifecycle state.
func (c *Connection) State() ConnState { return ConnState(c.state.Load()) }

// IsOpen reports whether the connection can still receive messages.
func (c *Connection) IsOpen() bool { return c.State() != StateClosed }

// markJoined moves a Connected connection to Joined; Joined stays Joined.
func (c *Connection) markJoined() {
	c.state.CompareAndSwap(int32(StateConnected), int32(StateJoined))
}

// enqueue hands msg to the writer without blocking.
func (c *Connection) enqueue(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnectionClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return errSendBufferFull
	}
}

// SendEvent unicasts one event to this connection only.
func (c *Connection) SendEvent(event string, data interface{}) error {
	payload, err := encodeEvent(event, data)
	if err != nil {
		logger.Error.Printf("[Connection.SendEvent] Error marshalling %s: %v", event, err)
		return err
	}
	if err := c.enqueue(payload); err != nil {
		logger.Warn.Printf("[Connection.SendEvent] Could not send %s to %s: %v", event, c.id, err)
		return err
	}
	return nil
}

// ping sends a heartbeat probe. WriteControl may run alongside the writer.
func (c *Connection) ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pingWait))
}

// Close terminates the connection and runs Closed handling exactly once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))

		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		if err := c.conn.Close(); err != nil {
			logger.Debug.Printf("[Connection.Close] Transport close for %s: %v", c.id, err)
		}
		if c.manager != nil {
			c.manager.release(c)
		}
		logger.Info.Printf("[Connection.Close] Connection %s closed", c.id)
	})
}

// readPump handles inbound messages sequentially, in the order received.
func (c *Connection) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn.Printf("[readPump] Read error from %s: %v", c.id, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			logger.Debug.Printf("[readPump] Ignoring non-text messageType=%d from %s", messageType, c.id)
			continue
		}
		c.manager.handleIncoming(c, message)
	}
}

// writePump is the only goroutine writing data frames to the transport.
func (c *Connection) writePump() {
	for message := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			c.Close()
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Warn.Printf("[writePump] Error writing to %s: %v", c.id, err)
			c.Close()
			return
		}
	}
	logger.Debug.Printf("[writePump] Send channel closed for %s", c.id)
}

func remoteAddr(conn WSConn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}
