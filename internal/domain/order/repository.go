package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for order persistence. It also backs
// the chat core's session gate and last-responder tracking.
type Repository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByUser finds all orders placed by a user, newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)

	// Save creates or updates an order together with its lines
	Save(ctx context.Context, o *Order) error

	// OwnerOf returns the owning user id of an order
	OwnerOf(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error)

	// RecordResponder sets the order's last staff responder
	RecordResponder(ctx context.Context, orderID, userID uuid.UUID) error

	// CountByUser counts orders placed by a user
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
