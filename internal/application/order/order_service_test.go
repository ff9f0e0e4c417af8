package order

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/booktime/backend/internal/domain/order"
	"github.com/booktime/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]order.Order
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: make(map[uuid.UUID]order.Order)}
}

func (r *memoryOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrOrderNotFound
	}
	return &o, nil
}

func (r *memoryOrderRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []order.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryOrderRepo) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = *o
	return nil
}

func (r *memoryOrderRepo) OwnerOf(_ context.Context, orderID uuid.UUID) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return uuid.Nil, shared.ErrOrderNotFound
	}
	return o.UserID, nil
}

func (r *memoryOrderRepo) RecordResponder(_ context.Context, orderID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return shared.ErrOrderNotFound
	}
	o.LastSpokenToID = &userID
	r.orders[orderID] = o
	return nil
}

func (r *memoryOrderRepo) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, o := range r.orders {
		if o.UserID == userID {
			count++
		}
	}
	return count, nil
}

func placeOrder(t *testing.T, repo *memoryOrderRepo, userID uuid.UUID, number string) *order.Order {
	t.Helper()
	o, err := order.NewOrder(userID, number)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), o))
	return o
}

func TestOrderService_GetOrder(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryOrderRepo()
	svc := NewOrderService(repo, zap.NewNop())

	ownerID := uuid.New()
	o := placeOrder(t, repo, ownerID, "BT-2026-0001")

	t.Run("owner can read", func(t *testing.T) {
		got, err := svc.GetOrder(ctx, ownerID, false, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.Number, got.Number)
	})

	t.Run("staff can read any order", func(t *testing.T) {
		got, err := svc.GetOrder(ctx, uuid.New(), true, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		_, err := svc.GetOrder(ctx, uuid.New(), false, o.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := svc.GetOrder(ctx, ownerID, false, uuid.New())
		assert.ErrorIs(t, err, shared.ErrOrderNotFound)
	})
}

func TestOrderService_ListMyOrders(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryOrderRepo()
	svc := NewOrderService(repo, zap.NewNop())

	userID := uuid.New()
	placeOrder(t, repo, userID, "BT-2026-0002")
	placeOrder(t, repo, userID, "BT-2026-0003")
	placeOrder(t, repo, uuid.New(), "BT-2026-0004")

	orders, count, err := svc.ListMyOrders(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, int64(2), count)
}
