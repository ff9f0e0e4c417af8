package support

import (
	"context"
	"encoding/json"

	"github.com/booktime/backend/internal/domain/chat"
	"github.com/booktime/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatService fronts the customer-service chat core: room admission,
// message relay, and the staff notification channel.
type ChatService struct {
	gate     *chat.SessionGate
	registry *chat.Registry
	notifier *chat.Notifier
	logger   *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(store chat.OrderStore, sendBuffer int, logger *zap.Logger) *ChatService {
	return &ChatService{
		gate:     chat.NewSessionGate(store),
		registry: chat.NewRegistry(store, sendBuffer, logger),
		notifier: chat.NewNotifier(sendBuffer, logger),
		logger:   logger,
	}
}

// assistanceRequest is broadcast to the notification channel when a
// customer enters their order's room.
type assistanceRequest struct {
	Type     string `json:"type"`
	OrderID  string `json:"order_id"`
	Username string `json:"username"`
}

// JoinRoom admits a participant to the room for an order. Authorization
// runs before any room state is touched. When a customer joins, staff
// subscribed to the notification channel are alerted.
func (s *ChatService) JoinRoom(ctx context.Context, p chat.Participant, orderID uuid.UUID) (*chat.Room, *chat.Member, error) {
	if err := s.gate.Authorize(ctx, p, orderID); err != nil {
		s.logger.Warn("Chat admission denied",
			zap.String("order_id", orderID.String()),
			zap.String("user_id", p.UserID.String()),
			zap.Error(err))
		return nil, nil, err
	}

	room, member := s.registry.Join(orderID, p)
	s.logger.Info("Participant joined room",
		zap.String("order_id", orderID.String()),
		zap.String("user_id", p.UserID.String()),
		zap.Bool("staff", p.Staff),
		zap.Int("members", room.Size()))

	if !p.Staff {
		payload, err := json.Marshal(assistanceRequest{
			Type:     "assistance_request",
			OrderID:  orderID.String(),
			Username: p.DisplayName,
		})
		if err == nil {
			s.notifier.Publish(payload)
		}
	}

	return room, member, nil
}

// LeaveRoom removes a member from the room for an order. Idempotent.
func (s *ChatService) LeaveRoom(orderID uuid.UUID, m *chat.Member) {
	s.registry.Leave(orderID, m)
}

// SendMessage relays a chat message through the member's room
func (s *ChatService) SendMessage(ctx context.Context, room *chat.Room, m *chat.Member, text string) {
	room.Message(ctx, m, text)
}

// SubscribeNotifications adds a staff participant to the notification
// channel; non-staff are rejected with ErrUnauthorized.
func (s *ChatService) SubscribeNotifications(p chat.Participant) (*chat.Subscriber, error) {
	sub, err := s.notifier.Subscribe(p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Staff subscribed to notifications",
		zap.String("user_id", p.UserID.String()))
	return sub, nil
}

// UnsubscribeNotifications removes a subscriber. Idempotent.
func (s *ChatService) UnsubscribeNotifications(sub *chat.Subscriber) {
	s.notifier.Unsubscribe(sub)
}

// PublishNotification fans a payload out to subscribed staff. The
// publisher must be staff.
func (s *ChatService) PublishNotification(p chat.Participant, payload json.RawMessage) error {
	if !p.Staff {
		return shared.ErrUnauthorized
	}
	if !json.Valid(payload) {
		return shared.ErrInvalidInput
	}
	s.notifier.Publish(payload)
	return nil
}

// ActiveRooms reports how many rooms currently exist
func (s *ChatService) ActiveRooms() int {
	return s.registry.Len()
}

// Subscribers reports how many staff are on the notification channel
func (s *ChatService) Subscribers() int {
	return s.notifier.Len()
}
