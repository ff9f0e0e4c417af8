package chat

import (
	"context"

	"github.com/booktime/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SessionGate decides whether a connection attempt may enter an order's
// room. It runs once per attempt, before any room state is touched, and
// has no side effects.
type SessionGate struct {
	orders OrderStore
}

// NewSessionGate creates a session gate backed by the given order store.
func NewSessionGate(orders OrderStore) *SessionGate {
	return &SessionGate{orders: orders}
}

// Authorize admits staff into any order's room and customers into rooms
// for orders they own. Returns shared.ErrOrderNotFound when the order does
// not exist and shared.ErrUnauthorized for everyone else.
func (g *SessionGate) Authorize(ctx context.Context, p Participant, orderID uuid.UUID) error {
	ownerID, err := g.orders.OwnerOf(ctx, orderID)
	if err != nil {
		return err
	}
	if p.Staff || ownerID == p.UserID {
		return nil
	}
	return shared.ErrUnauthorized
}
