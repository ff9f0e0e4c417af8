package chat

import (
	"encoding/json"
	"sync"

	"github.com/booktime/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Subscriber is one staff connection on the notification channel. It has
// no room affiliation.
type Subscriber struct {
	id          uuid.UUID
	participant Participant

	events    chan json.RawMessage
	done      chan struct{}
	closeOnce sync.Once
}

// ID returns the subscriber's connection-scoped identifier.
func (s *Subscriber) ID() uuid.UUID {
	return s.id
}

// Events is the stream of published payloads for this subscriber.
func (s *Subscriber) Events() <-chan json.RawMessage {
	return s.events
}

// Done is closed when the subscriber has been dropped.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

func (s *Subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Notifier is the process-wide staff-only broadcast channel. Published
// payloads reach every current subscriber exactly once; nothing is
// buffered for late subscribers. Its subscriber set is guarded
// independently of the room registry.
type Notifier struct {
	log    *zap.Logger
	buffer int

	mu   sync.RWMutex
	subs map[*Subscriber]struct{}
}

// NewNotifier creates an empty notification channel.
func NewNotifier(sendBuffer int, log *zap.Logger) *Notifier {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		log:    log,
		buffer: sendBuffer,
		subs:   make(map[*Subscriber]struct{}),
	}
}

// Subscribe registers a staff participant on the channel. Non-staff
// participants are rejected with shared.ErrUnauthorized before any state
// is created.
func (n *Notifier) Subscribe(p Participant) (*Subscriber, error) {
	if !p.Staff {
		return nil, shared.ErrUnauthorized
	}
	s := &Subscriber{
		id:          uuid.New(),
		participant: p,
		events:      make(chan json.RawMessage, n.buffer),
		done:        make(chan struct{}),
	}
	n.mu.Lock()
	n.subs[s] = struct{}{}
	n.mu.Unlock()
	return s, nil
}

// Unsubscribe removes the subscriber. Idempotent; no side effects on room
// or order state.
func (n *Notifier) Unsubscribe(s *Subscriber) {
	n.mu.Lock()
	delete(n.subs, s)
	n.mu.Unlock()
	s.close()
}

// Publish fans the payload out to every current subscriber. Subscribers
// that cannot keep up are dropped the same way slow room members are.
func (n *Notifier) Publish(payload json.RawMessage) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for s := range n.subs {
		select {
		case <-s.done:
		case s.events <- payload:
		default:
			s.close()
		}
	}
}

// Len returns the number of current subscribers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
