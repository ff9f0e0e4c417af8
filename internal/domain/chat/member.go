package chat

import (
	"sync"

	"github.com/google/uuid"
)

// Member is one connection's membership in a room. A participant may hold
// several simultaneous connections; each one is a distinct member.
type Member struct {
	id          uuid.UUID
	participant Participant

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func newMember(p Participant, buffer int) *Member {
	return &Member{
		id:          uuid.New(),
		participant: p,
		events:      make(chan Event, buffer),
		done:        make(chan struct{}),
	}
}

// ID returns the member's connection-scoped identifier.
func (m *Member) ID() uuid.UUID {
	return m.id
}

// Participant returns the identity this member connected with.
func (m *Member) Participant() Participant {
	return m.participant
}

// Events is the member's outbound event stream, in room broadcast order.
func (m *Member) Events() <-chan Event {
	return m.events
}

// Done is closed when the member can no longer receive events, either
// because it left the room or because its outbound queue overflowed.
// The connection adapter must tear the connection down when this fires.
func (m *Member) Done() <-chan struct{} {
	return m.done
}

// deliver enqueues an event without blocking the room. A member that
// cannot keep up is treated as a failed transport and closed; the adapter
// then runs the normal leave path.
func (m *Member) deliver(ev Event) {
	select {
	case <-m.done:
	case m.events <- ev:
	default:
		m.close()
	}
}

func (m *Member) close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
}
