// Package websocket file: websocket/registry.go
package websocket

import (
	"sort"
	"sync"
)

// RoomRegistry maps a session code to the live connections in its room.
// It also keeps the reverse index so a closing connection leaves only the
// rooms it actually joined. Empty rooms are never kept.
type RoomRegistry struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Connection]struct{}
	joined map[*Connection]map[string]struct{}
}

// NewRoomRegistry creates an empty registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:  make(map[string]map[*Connection]struct{}),
		joined: make(map[*Connection]map[string]struct{}),
	}
}

// Join adds c to the room for code, creating the room on first join.
// It reports whether c was newly added.
func (r *RoomRegistry) Join(code string, c *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[code]
	if !ok {
		members = make(map[*Connection]struct{})
		r.rooms[code] = members
	}
	if _, dup := members[c]; dup {
		return false
	}
	members[c] = struct{}{}

	codes, ok := r.joined[c]
	if !ok {
		codes = make(map[string]struct{})
		r.joined[c] = codes
	}
	codes[code] = struct{}{}
	return true
}

// Leave removes c from the room for code and drops the room once empty.
func (r *RoomRegistry) Leave(code string, c *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(code, c)
}

func (r *RoomRegistry) leaveLocked(code string, c *Connection) bool {
	members, ok := r.rooms[code]
	if !ok {
		return false
	}
	if _, ok := members[c]; !ok {
		return false
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, code)
	}
	if codes, ok := r.joined[c]; ok {
		delete(codes, code)
		if len(codes) == 0 {
			delete(r.joined, c)
		}
	}
	return true
}

// RemoveEverywhere removes c from every room it belongs to and returns the
// codes of those rooms, sorted.
func (r *RoomRegistry) RemoveEverywhere(c *Connection) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	codes := make([]string, 0, len(r.joined[c]))
	for code := range r.joined[c] {
		codes = append(codes, code)
	}
	for _, code := range codes {
		r.leaveLocked(code, c)
	}
	sort.Strings(codes)
	return codes
}

// Members returns a snapshot of the connections in the room for code.
func (r *RoomRegistry) Members(code string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[code]
	out := make([]*Connection, 0, len(members))
	for c := range members {
		out = append(out, c)
	}
	return out
}

// RoomSize returns the number of connections in the room for code.
func (r *RoomRegistry) RoomSize(code string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[code])
}

// RoomCount returns how many non-empty rooms exist.
func (r *RoomRegistry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// HasRoom reports whether a room entry exists for code.
func (r *RoomRegistry) HasRoom(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[code]
	return ok
}

// RoomsOf returns the sorted codes of every room c belongs to.
func (r *RoomRegistry) RoomsOf(c *Connection) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.joined[c]))
	for code := range r.joined[c] {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
