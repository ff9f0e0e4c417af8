package order

import (
	"context"

	"github.com/booktime/backend/internal/domain/order"
	"github.com/booktime/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService exposes storefront order queries. Customers see only
// their own orders; staff can inspect any order.
type OrderService struct {
	repo   order.Repository
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repo order.Repository, logger *zap.Logger) *OrderService {
	return &OrderService{repo: repo, logger: logger}
}

// GetOrder returns an order when the requester owns it or is staff
func (s *OrderService) GetOrder(ctx context.Context, requesterID uuid.UUID, staff bool, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !staff && o.UserID != requesterID {
		return nil, shared.ErrForbidden
	}
	return o, nil
}

// ListMyOrders returns the requester's orders, newest first
func (s *OrderService) ListMyOrders(ctx context.Context, requesterID uuid.UUID) ([]order.Order, int64, error) {
	orders, err := s.repo.FindByUser(ctx, requesterID)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.CountByUser(ctx, requesterID)
	if err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}
