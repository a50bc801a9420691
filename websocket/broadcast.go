// Package websocket handles real-time WebSocket communication between
// participants of a polling session.
// file: websocket/broadcast.go
package websocket

import (
	"errors"

	"go-live-polls/logger"
	"go-live-polls/metrics"
)

// Dispatcher fans events out to every live member of a room.
type Dispatcher struct {
	registry *RoomRegistry
	metrics  metrics.Publisher
}

// NewDispatcher creates a Dispatcher over registry. A nil publisher disables metrics.
func NewDispatcher(registry *RoomRegistry, pub metrics.Publisher) *Dispatcher {
	if pub == nil {
		pub = metrics.Noop{}
	}
	return &Dispatcher{registry: registry, metrics: pub}
}

// Publish delivers one {event, data} message to every open member of the room
// for sessionCode and returns how many members it was queued for. Delivery is
// best effort: a closed member is pruned from the registry, a member with a
// full buffer misses this message, and neither stops delivery to the others.
func (d *Dispatcher) Publish(sessionCode, event string, data interface{}) int {
	payload, err := encodeEvent(event, data)
	if err != nil {
		logger.Error.Printf("[Dispatcher.Publish] Error marshalling %s for session %s: %v", event, sessionCode, err)
		return 0
	}

	members := d.registry.Members(sessionCode)
	if len(members) == 0 {
		logger.Debug.Printf("[Dispatcher.Publish] No connections in session %s for %s", sessionCode, event)
		return 0
	}

	delivered := 0
	for _, c := range members {
		if !c.IsOpen() {
			d.registry.RemoveEverywhere(c)
			continue
		}
		if err := c.enqueue(payload); err != nil {
			if errors.Is(err, errConnectionClosed) {
				d.registry.RemoveEverywhere(c)
			} else {
				logger.Warn.Printf("[Dispatcher.Publish] Dropping %s for connection %s: %v", event, c.ID(), err)
			}
			continue
		}
		delivered++
	}

	logger.Debug.Printf("[Dispatcher.Publish] session=%s event=%s delivered=%d/%d", sessionCode, event, delivered, len(members))
	d.metrics.BroadcastFanout(sessionCode, delivered)
	return delivered
}
