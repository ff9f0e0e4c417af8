package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/booktime/backend/internal/application/support"
	"github.com/booktime/backend/internal/domain/chat"
	"github.com/booktime/backend/internal/domain/shared"
	"github.com/booktime/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubOrderStore struct{}

func (stubOrderStore) OwnerOf(context.Context, uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, shared.ErrOrderNotFound
}

func (stubOrderStore) RecordResponder(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func newSupportRouter(staff bool) (*gin.Engine, *support.ChatService) {
	gin.SetMode(gin.TestMode)
	chatService := support.NewChatService(stubOrderStore{}, 8, zap.NewNop())
	h := NewSupportHandler(chatService)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, uuid.NewString())
		c.Set(middleware.JWTUsernameKey, "Bob Jones")
		c.Set(middleware.JWTStaffKey, staff)
	})
	api := engine.Group("/api/v1")
	h.Routes().RegisterRoutes(api)
	return engine, chatService
}

func TestSupportHandler_Notify(t *testing.T) {
	t.Run("staff publish reaches subscribers", func(t *testing.T) {
		engine, chatService := newSupportRouter(true)

		sub, err := chatService.SubscribeNotifications(chat.Participant{
			UserID:      uuid.New(),
			DisplayName: "Carol White",
			Staff:       true,
		})
		require.NoError(t, err)
		defer chatService.UnsubscribeNotifications(sub)

		body := `{"type":"restock","product":"Practical Go"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/support/notify", strings.NewReader(body))
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		select {
		case payload := <-sub.Events():
			assert.JSONEq(t, body, string(payload))
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the published payload")
		}
	})

	t.Run("non-staff rejected", func(t *testing.T) {
		engine, _ := newSupportRouter(false)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/support/notify", strings.NewReader(`{"type":"x"}`))
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid json rejected", func(t *testing.T) {
		engine, _ := newSupportRouter(true)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/support/notify", strings.NewReader(`{not json`))
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		engine, _ := newSupportRouter(true)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/support/notify", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSupportHandler_Status(t *testing.T) {
	t.Run("staff sees occupancy", func(t *testing.T) {
		engine, chatService := newSupportRouter(true)

		sub, err := chatService.SubscribeNotifications(chat.Participant{
			UserID: uuid.New(), DisplayName: "Carol White", Staff: true,
		})
		require.NoError(t, err)
		defer chatService.UnsubscribeNotifications(sub)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/support/status", nil)
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				ActiveRooms int `json:"active_rooms"`
				Subscribers int `json:"subscribers"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Zero(t, resp.Data.ActiveRooms)
		assert.Equal(t, 1, resp.Data.Subscribers)
	})

	t.Run("non-staff rejected", func(t *testing.T) {
		engine, _ := newSupportRouter(false)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/support/status", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
