package support

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/booktime/backend/internal/domain/chat"
	"github.com/booktime/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrderStore struct {
	mu         sync.Mutex
	owners     map[uuid.UUID]uuid.UUID
	responders map[uuid.UUID]uuid.UUID
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		owners:     make(map[uuid.UUID]uuid.UUID),
		responders: make(map[uuid.UUID]uuid.UUID),
	}
}

func (f *fakeOrderStore) addOrder(ownerID uuid.UUID) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	orderID := uuid.New()
	f.owners[orderID] = ownerID
	return orderID
}

func (f *fakeOrderStore) OwnerOf(_ context.Context, orderID uuid.UUID) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, ok := f.owners[orderID]
	if !ok {
		return uuid.Nil, shared.ErrOrderNotFound
	}
	return owner, nil
}

func (f *fakeOrderStore) RecordResponder(_ context.Context, orderID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responders[orderID] = userID
	return nil
}

func (f *fakeOrderStore) responderOf(orderID uuid.UUID) (uuid.UUID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.responders[orderID]
	return id, ok
}

func newTestService(store chat.OrderStore) *ChatService {
	return NewChatService(store, 16, zap.NewNop())
}

func TestChatService_JoinRoomAuthorization(t *testing.T) {
	ctx := context.Background()
	store := newFakeOrderStore()
	svc := newTestService(store)

	owner := chat.Participant{UserID: uuid.New(), DisplayName: "John Smith"}
	orderID := store.addOrder(owner.UserID)

	t.Run("owner admitted", func(t *testing.T) {
		room, member, err := svc.JoinRoom(ctx, owner, orderID)
		require.NoError(t, err)
		require.NotNil(t, member)
		assert.Equal(t, 1, room.Size())
		svc.LeaveRoom(orderID, member)
	})

	t.Run("staff admitted to any order", func(t *testing.T) {
		agent := chat.Participant{UserID: uuid.New(), DisplayName: "Adam Ford", Staff: true}
		_, member, err := svc.JoinRoom(ctx, agent, orderID)
		require.NoError(t, err)
		svc.LeaveRoom(orderID, member)
	})

	t.Run("stranger rejected without creating a room", func(t *testing.T) {
		stranger := chat.Participant{UserID: uuid.New(), DisplayName: "Eve Intruder"}
		_, _, err := svc.JoinRoom(ctx, stranger, orderID)
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
		assert.Equal(t, 0, svc.ActiveRooms())
	})

	t.Run("unknown order rejected", func(t *testing.T) {
		_, _, err := svc.JoinRoom(ctx, owner, uuid.New())
		assert.ErrorIs(t, err, shared.ErrOrderNotFound)
	})
}

func TestChatService_CustomerJoinNotifiesStaff(t *testing.T) {
	ctx := context.Background()
	store := newFakeOrderStore()
	svc := newTestService(store)

	agent := chat.Participant{UserID: uuid.New(), DisplayName: "Adam Ford", Staff: true}
	sub, err := svc.SubscribeNotifications(agent)
	require.NoError(t, err)
	defer svc.UnsubscribeNotifications(sub)

	owner := chat.Participant{UserID: uuid.New(), DisplayName: "John Smith"}
	orderID := store.addOrder(owner.UserID)

	_, member, err := svc.JoinRoom(ctx, owner, orderID)
	require.NoError(t, err)
	defer svc.LeaveRoom(orderID, member)

	select {
	case payload := <-sub.Events():
		var got map[string]string
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, "assistance_request", got["type"])
		assert.Equal(t, orderID.String(), got["order_id"])
		assert.Equal(t, "John Smith", got["username"])
	default:
		t.Fatal("expected an assistance notification")
	}
}

func TestChatService_StaffJoinDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	store := newFakeOrderStore()
	svc := newTestService(store)

	sub, err := svc.SubscribeNotifications(chat.Participant{UserID: uuid.New(), DisplayName: "Adam Ford", Staff: true})
	require.NoError(t, err)
	defer svc.UnsubscribeNotifications(sub)

	agent := chat.Participant{UserID: uuid.New(), DisplayName: "Beth Ford", Staff: true}
	orderID := store.addOrder(uuid.New())

	_, member, err := svc.JoinRoom(ctx, agent, orderID)
	require.NoError(t, err)
	defer svc.LeaveRoom(orderID, member)

	select {
	case <-sub.Events():
		t.Fatal("staff join must not trigger a notification")
	default:
	}
}

func TestChatService_StaffMessageRecordsResponder(t *testing.T) {
	ctx := context.Background()
	store := newFakeOrderStore()
	svc := newTestService(store)

	owner := chat.Participant{UserID: uuid.New(), DisplayName: "John Smith"}
	orderID := store.addOrder(owner.UserID)

	agent := chat.Participant{UserID: uuid.New(), DisplayName: "Adam Ford", Staff: true}
	room, member, err := svc.JoinRoom(ctx, agent, orderID)
	require.NoError(t, err)
	defer svc.LeaveRoom(orderID, member)

	svc.SendMessage(ctx, room, member, "how can I help?")

	responder, ok := store.responderOf(orderID)
	require.True(t, ok)
	assert.Equal(t, agent.UserID, responder)
}

func TestChatService_PublishNotification(t *testing.T) {
	svc := newTestService(newFakeOrderStore())

	agent := chat.Participant{UserID: uuid.New(), DisplayName: "Adam Ford", Staff: true}
	sub, err := svc.SubscribeNotifications(agent)
	require.NoError(t, err)
	defer svc.UnsubscribeNotifications(sub)

	t.Run("staff can publish", func(t *testing.T) {
		require.NoError(t, svc.PublishNotification(agent, json.RawMessage(`{"type":"ping"}`)))
		select {
		case payload := <-sub.Events():
			assert.JSONEq(t, `{"type":"ping"}`, string(payload))
		default:
			t.Fatal("expected published payload")
		}
	})

	t.Run("non-staff rejected", func(t *testing.T) {
		customer := chat.Participant{UserID: uuid.New(), DisplayName: "John Smith"}
		err := svc.PublishNotification(customer, json.RawMessage(`{"type":"ping"}`))
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("invalid json rejected", func(t *testing.T) {
		err := svc.PublishNotification(agent, json.RawMessage(`{not json`))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestChatService_RoomEvictedWhenEmpty(t *testing.T) {
	ctx := context.Background()
	store := newFakeOrderStore()
	svc := newTestService(store)

	owner := chat.Participant{UserID: uuid.New(), DisplayName: "John Smith"}
	orderID := store.addOrder(owner.UserID)

	_, member, err := svc.JoinRoom(ctx, owner, orderID)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.ActiveRooms())

	svc.LeaveRoom(orderID, member)
	assert.Equal(t, 0, svc.ActiveRooms())
}
