package chat

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSendBuffer is the per-member outbound queue size used when the
// registry is created with a non-positive buffer.
const DefaultSendBuffer = 64

// Registry owns all live rooms, keyed by order id. A room exists exactly
// while it has members: the first join creates it, the last leave evicts
// it. The registry map has its own lock; room operations run under the
// room's lock, so traffic in one room never stalls another.
type Registry struct {
	store  OrderStore
	log    *zap.Logger
	buffer int

	mu    sync.RWMutex
	rooms map[uuid.UUID]*Room
}

// NewRegistry creates an empty room registry. sendBuffer sets the
// per-member outbound queue capacity.
func NewRegistry(store OrderStore, sendBuffer int, log *zap.Logger) *Registry {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		store:  store,
		log:    log,
		buffer: sendBuffer,
		rooms:  make(map[uuid.UUID]*Room),
	}
}

// Join attaches a new member for the participant to the order's room,
// creating the room if absent. Authorization has already happened at the
// session gate, so Join itself cannot fail.
func (g *Registry) Join(orderID uuid.UUID, p Participant) (*Room, *Member) {
	m := newMember(p, g.buffer)
	for {
		g.mu.Lock()
		room, ok := g.rooms[orderID]
		if !ok {
			room = newRoom(orderID, g.store, g.log)
			g.rooms[orderID] = room
		}
		g.mu.Unlock()

		// The room may have been evicted between the map lookup and the
		// join; retry against a fresh instance.
		if room.join(m) {
			return room, m
		}
	}
}

// Leave detaches the member from the order's room and evicts the room
// when it becomes empty. Safe to call for a member that already left.
func (g *Registry) Leave(orderID uuid.UUID, m *Member) {
	g.mu.RLock()
	room, ok := g.rooms[orderID]
	g.mu.RUnlock()
	if !ok {
		m.close()
		return
	}

	_, empty := room.leave(m)
	if !empty {
		return
	}

	g.mu.Lock()
	if current, ok := g.rooms[orderID]; ok && current == room && room.markClosed() {
		delete(g.rooms, orderID)
	}
	g.mu.Unlock()
}

// Room returns the live room for an order, if any.
func (g *Registry) Room(orderID uuid.UUID) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[orderID]
	return room, ok
}

// Len returns the number of active rooms.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
