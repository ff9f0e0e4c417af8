package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/booktime/backend/internal/application/support"
	"github.com/booktime/backend/internal/domain/chat"
	"github.com/booktime/backend/internal/interfaces/http/middleware"
	"github.com/booktime/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// maxNotifyPayload bounds the size of an accepted notification body
const maxNotifyPayload = 16 << 10

// SupportHandler serves the HTTP side of customer-service chat:
// publishing staff notifications and inspecting chat status.
type SupportHandler struct {
	BaseHandler
	chatService *support.ChatService
}

// NewSupportHandler creates a new support handler
func NewSupportHandler(chatService *support.ChatService) *SupportHandler {
	return &SupportHandler{chatService: chatService}
}

// Routes returns the support route group
func (h *SupportHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("support", "/support").
		POST("/notify", h.Notify).
		GET("/status", h.Status)
}

// participantFromContext builds a chat participant from JWT claims
func participantFromContext(c *gin.Context) (chat.Participant, error) {
	userID, err := getUserID(c)
	if err != nil {
		return chat.Participant{}, err
	}
	return chat.Participant{
		UserID:      userID,
		DisplayName: middleware.GetJWTUsername(c),
		Staff:       middleware.IsJWTStaff(c),
	}, nil
}

// Notify fans an arbitrary JSON payload out to staff subscribed on the
// notification channel. Staff only.
func (h *SupportHandler) Notify(c *gin.Context) {
	p, err := participantFromContext(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxNotifyPayload))
	if err != nil {
		h.BadRequest(c, "Notification payload too large")
		return
	}
	if len(payload) == 0 {
		h.BadRequest(c, "Notification payload is required")
		return
	}

	if err := h.chatService.PublishNotification(p, json.RawMessage(payload)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Status reports chat occupancy. Staff only.
func (h *SupportHandler) Status(c *gin.Context) {
	if !middleware.IsJWTStaff(c) {
		h.Forbidden(c, "Staff access required")
		return
	}

	h.Success(c, gin.H{
		"active_rooms": h.chatService.ActiveRooms(),
		"subscribers":  h.chatService.Subscribers(),
	})
}
