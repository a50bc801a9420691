// Package websocket file: websocket/manager.go
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go-live-polls/logger"
	"go-live-polls/metrics"
	"go-live-polls/models"
)

// DefaultHeartbeatInterval is how often the liveness sweep runs.
const DefaultHeartbeatInterval = 30 * time.Second

// SessionFinder looks sessions up in the durable store.
type SessionFinder interface {
	FindSessionByCode(ctx context.Context, code string) (*models.Session, error)
}

// Voter runs the vote aggregation protocol, broadcast included.
type Voter interface {
	Vote(ctx context.Context, pollID, option string) (*models.Poll, error)
}

// Config tunes a Manager.
type Config struct {
	HeartbeatInterval time.Duration
	AllowedOrigins    []string
	Metrics           metrics.Publisher
}

// Manager owns every live connection: it upgrades requests, routes inbound
// events, runs the liveness sweep and cleans up closed connections.
type Manager struct {
	registry *RoomRegistry
	sessions SessionFinder
	voter    Voter
	metrics  metrics.Publisher
	upgrader websocket.Upgrader
	interval time.Duration

	mu    sync.RWMutex
	conns map[*Connection]struct{}
}

// NewManager wires a Manager to the registry it shares with the Dispatcher.
func NewManager(registry *RoomRegistry, sessions SessionFinder, voter Voter, cfg Config) *Manager {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Noop{}
	}
	m := &Manager{
		registry: registry,
		sessions: sessions,
		voter:    voter,
		metrics:  cfg.Metrics,
		interval: cfg.HeartbeatInterval,
		conns:    make(map[*Connection]struct{}),
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return m
}

// originChecker allows requests without an Origin header, listed origins,
// and everything when the list contains "*".
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}

// ServeWs upgrades the HTTP request and starts the connection's pumps.
func (m *Manager) ServeWs(w http.ResponseWriter, r *http.Request) {
	wsConn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written an HTTP error response
		logger.Error.Printf("[ServeWs] WebSocket upgrade error: %v", err)
		return
	}
	c := m.Accept(wsConn)
	logger.Info.Printf("[ServeWs] Connection %s opened from %s", c.ID(), remoteAddr(wsConn))
}

// Accept registers an established transport and starts its reader and writer.
func (m *Manager) Accept(conn WSConn) *Connection {
	c := newConnection(uuid.NewString(), conn, m)

	m.mu.Lock()
	m.conns[c] = struct{}{}
	m.mu.Unlock()

	go c.writePump()
	go c.readPump()
	return c
}

// release is the Closed handling: forget the connection and prune it from
// every room. Called once per connection from Connection.Close.
func (m *Manager) release(c *Connection) {
	m.mu.Lock()
	delete(m.conns, c)
	m.mu.Unlock()

	for _, code := range m.registry.RemoveEverywhere(c) {
		m.metrics.RoomConnections(code, m.registry.RoomSize(code))
	}
}

// Connections returns a snapshot of every live connection.
func (m *Manager) Connections() []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Connection, 0, len(m.conns))
	for c := range m.conns {
		out = append(out, c)
	}
	return out
}

// Count returns the number of live connections.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Shutdown closes every live connection.
func (m *Manager) Shutdown() {
	conns := m.Connections()
	for _, c := range conns {
		c.Close()
	}
	logger.Info.Printf("[Manager.Shutdown] Closed %d connections", len(conns))
}
