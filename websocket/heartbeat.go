// Package websocket websocket/heartbeat.go
package websocket

import (
	"context"
	"sync"
	"time"

	"go-live-polls/logger"
)

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	logger.Info.Printf("[Manager.Run] Liveness sweep every %v", m.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Sweep terminates connections that have not answered a probe since the
// previous sweep, then marks the rest not-alive and probes them again.
// Probes go out concurrently so a stalled peer cannot delay the others.
// It returns how many connections were terminated.
func (m *Manager) Sweep() int {
	terminated := 0
	var wg sync.WaitGroup
	for _, c := range m.Connections() {
		if !c.alive.Load() {
			logger.Info.Printf("[Manager.Sweep] Terminating unresponsive connection %s", c.ID())
			c.Close()
			terminated++
			continue
		}
		c.alive.Store(false)
		wg.Add(1)
		go func(c *Connection) {
			defer wg.Done()
			if err := c.ping(); err != nil {
				// the next sweep terminates it unless a pong still arrives
				logger.Warn.Printf("[Manager.Sweep] Ping failed for %s: %v", c.ID(), err)
			}
		}(c)
	}
	wg.Wait()
	if terminated > 0 {
		logger.Info.Printf("[Manager.Sweep] Terminated %d connections, %d remain", terminated, m.Count())
	}
	return terminated
}
