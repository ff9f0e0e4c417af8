package chat

import (
	"context"

	"github.com/google/uuid"
)

// Participant identifies one side of a customer-service conversation.
// It is supplied by the auth layer at connection time and immutable for
// the lifetime of the connection.
type Participant struct {
	UserID      uuid.UUID
	DisplayName string
	Staff       bool
}

// OrderStore is the narrow view of order storage the chat core needs:
// resolving an order's owner for admission checks and recording the last
// staff member who responded in the order's room.
type OrderStore interface {
	// OwnerOf returns the owning user of the order, or shared.ErrOrderNotFound.
	OwnerOf(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error)

	// RecordResponder persists the given user as the order's last staff responder.
	RecordResponder(ctx context.Context, orderID, userID uuid.UUID) error
}
