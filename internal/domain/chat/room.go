package chat

import (
	"context"

	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Room is the live conversation for one order. It holds the member set and
// relays every broadcast to all members. All membership mutations and
// broadcasts for a room run under its mutex, so every member observes the
// room's events in one consistent order. Rooms for different orders share
// nothing and never block each other.
type Room struct {
	orderID uuid.UUID
	store   OrderStore
	log     *zap.Logger

	mu      sync.Mutex
	members map[*Member]struct{}
	closed  bool
}

func newRoom(orderID uuid.UUID, store OrderStore, log *zap.Logger) *Room {
	return &Room{
		orderID: orderID,
		store:   store,
		log:     log,
		members: make(map[*Member]struct{}),
	}
}

// OrderID returns the order this room is scoped to.
func (r *Room) OrderID() uuid.UUID {
	return r.orderID
}

// Size returns the current number of members.
func (r *Room) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// join adds the member and announces it to everyone, including the new
// member itself. Returns false if the room has already been evicted from
// the registry; the caller must retry against a fresh room.
func (r *Room) join(m *Member) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.members[m] = struct{}{}
	r.broadcastLocked(joinEvent(m.participant))
	return true
}

// Message relays text from the member to every current member, sender
// included. A message from a member that already left is dropped silently.
// When the sender is staff, the order's last responder is recorded before
// the room lock is released, so concurrent staff messages to one order
// cannot race the persisted pointer.
func (r *Room) Message(ctx context.Context, m *Member, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[m]; !ok {
		return
	}
	r.broadcastLocked(messageEvent(m.participant, text))
	if m.participant.Staff {
		if err := r.store.RecordResponder(ctx, r.orderID, m.participant.UserID); err != nil {
			r.log.Error("failed to record last responder",
				zap.String("order_id", r.orderID.String()),
				zap.String("user_id", m.participant.UserID.String()),
				zap.Error(err),
			)
		}
	}
}

// leave removes the member, announces the departure to the remaining
// members only, and reports whether the member was present and whether
// the room is now empty. Removing an absent member is a no-op.
func (r *Room) leave(m *Member) (removed, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[m]; !ok {
		return false, len(r.members) == 0
	}
	delete(r.members, m)
	m.close()
	r.broadcastLocked(leaveEvent(m.participant))
	return true, len(r.members) == 0
}

// markClosed is called by the registry under both locks when it evicts an
// empty room, so a concurrent join cannot attach to the orphaned instance.
func (r *Room) markClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) > 0 {
		return false
	}
	r.closed = true
	return true
}

func (r *Room) broadcastLocked(ev Event) {
	for m := range r.members {
		m.deliver(ev)
	}
}
