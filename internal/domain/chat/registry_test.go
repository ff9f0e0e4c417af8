package chat

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RoomCreatedOnFirstJoin(t *testing.T) {
	store := newFakeOrderStore()
	reg := NewRegistry(store, 16, nil)
	orderID := store.addOrder(uuid.New())

	_, ok := reg.Room(orderID)
	assert.False(t, ok)

	room, m := reg.Join(orderID, customer("John Smith"))
	require.NotNil(t, m)

	got, ok := reg.Room(orderID)
	require.True(t, ok)
	assert.Same(t, room, got)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_RoomEvictedOnLastLeave(t *testing.T) {
	store := newFakeOrderStore()
	reg := NewRegistry(store, 16, nil)
	orderID := store.addOrder(uuid.New())

	_, first := reg.Join(orderID, customer("John Smith"))
	_, second := reg.Join(orderID, staff("Adam Ford"))

	reg.Leave(orderID, first)
	_, ok := reg.Room(orderID)
	assert.True(t, ok, "room must survive while members remain")

	reg.Leave(orderID, second)
	_, ok = reg.Room(orderID)
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_FreshRoomAfterEviction(t *testing.T) {
	store := newFakeOrderStore()
	reg := NewRegistry(store, 16, nil)
	orderID := store.addOrder(uuid.New())

	first, m := reg.Join(orderID, customer("John Smith"))
	reg.Leave(orderID, m)

	second, m2 := reg.Join(orderID, customer("John Smith"))
	assert.NotSame(t, first, second)
	assert.Equal(t, 1, second.Size())

	// No residual state: only the new member's own join is queued.
	events := drainEvents(m2)
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeJoin, events[0].Type)
}

func TestRegistry_LeaveIsIdempotent(t *testing.T) {
	store := newFakeOrderStore()
	reg := NewRegistry(store, 16, nil)
	orderID := store.addOrder(uuid.New())

	_, first := reg.Join(orderID, customer("John Smith"))
	_, second := reg.Join(orderID, staff("Adam Ford"))
	drainEvents(second)

	reg.Leave(orderID, first)
	reg.Leave(orderID, first)
	reg.Leave(orderID, first)

	// Exactly one leave broadcast reaches the remaining member.
	events := drainEvents(second)
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeLeave, events[0].Type)
}

func TestRegistry_LeaveUnknownOrderIsNoOp(t *testing.T) {
	store := newFakeOrderStore()
	reg := NewRegistry(store, 16, nil)
	orderID := store.addOrder(uuid.New())

	_, m := reg.Join(orderID, customer("John Smith"))
	reg.Leave(uuid.New(), m)

	_, ok := reg.Room(orderID)
	assert.True(t, ok)
}

func TestRegistry_RoomsAreIndependent(t *testing.T) {
	store := newFakeOrderStore()
	reg := NewRegistry(store, 16, nil)
	orderA := store.addOrder(uuid.New())
	orderB := store.addOrder(uuid.New())

	roomA, memberA := reg.Join(orderA, customer("John Smith"))
	_, memberB := reg.Join(orderB, customer("Jane Smith"))
	drainEvents(memberA)
	drainEvents(memberB)

	roomA.Message(context.Background(), memberA, "hello")

	assert.Len(t, drainEvents(memberA), 1)
	assert.Empty(t, drainEvents(memberB))
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_ConcurrentJoinLeaveSameOrder(t *testing.T) {
	store := newFakeOrderStore()
	reg := NewRegistry(store, 256, nil)
	orderID := store.addOrder(uuid.New())

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				room, m := reg.Join(orderID, customer("Worker"))
				room.Message(context.Background(), m, "ping")
				reg.Leave(orderID, m)
			}
		}()
	}
	wg.Wait()

	// Every member left, so the room must be gone.
	_, ok := reg.Room(orderID)
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}
