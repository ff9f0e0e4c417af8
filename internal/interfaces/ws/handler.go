package ws

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/booktime/backend/internal/application/support"
	"github.com/booktime/backend/internal/domain/chat"
	"github.com/booktime/backend/internal/domain/shared"
	"github.com/booktime/backend/internal/infrastructure/config"
	"github.com/booktime/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades authenticated HTTP requests into chat connections.
// Authorization failures are reported as plain HTTP errors before the
// upgrade, so rejected clients never hold a socket.
type Handler struct {
	chatService *support.ChatService
	upgrader    websocket.Upgrader
	cfg         settings
	log         *zap.Logger
}

// NewHandler creates a websocket handler wired to the chat service.
func NewHandler(chatService *support.ChatService, cfg config.ChatConfig, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		chatService: chatService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		cfg: settings{
			readLimit:    cfg.ReadLimit,
			writeTimeout: cfg.WriteTimeout,
			pingInterval: cfg.PingInterval,
			pongTimeout:  cfg.PongTimeout,
		},
		log: log,
	}
}

// originChecker builds the upgrade origin policy. An empty allow list
// admits same-origin requests only; a "*" entry admits every origin.
// Requests without an Origin header are always admitted; those come from
// non-browser clients.
func originChecker(allowed []string) func(*http.Request) bool {
	allowAll := false
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[strings.ToLower(o)] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		if len(set) == 0 {
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, r.Host)
		}
		_, ok := set[strings.ToLower(origin)]
		return ok
	}
}

// RegisterRoutes mounts the chat endpoints on the given group. The group
// must carry JWT auth with query-token extraction enabled, since browser
// websocket clients cannot set an Authorization header.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/customer-service/notify", h.Notify)
	group.GET("/customer-service/:order_id", h.Room)
}

// participant builds a chat participant from the request's JWT claims.
func participant(c *gin.Context) (chat.Participant, bool) {
	idStr := middleware.GetJWTUserID(c)
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return chat.Participant{}, false
	}
	return chat.Participant{
		UserID:      userID,
		DisplayName: middleware.GetJWTUsername(c),
		Staff:       middleware.IsJWTStaff(c),
	}, true
}

// Room joins the caller to the room for one order and upgrades the
// connection. Customers may only enter rooms for their own orders.
func (h *Handler) Room(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	p, ok := participant(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	room, member, err := h.chatService.JoinRoom(c.Request.Context(), p, orderID)
	if err != nil {
		status := http.StatusForbidden
		if errors.Is(err, shared.ErrOrderNotFound) {
			status = http.StatusNotFound
		}
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.chatService.LeaveRoom(orderID, member)
		return
	}

	client := &roomClient{
		conn:    conn,
		chat:    h.chatService,
		room:    room,
		member:  member,
		orderID: orderID,
		cfg:     h.cfg,
		log:     h.log,
	}
	// The request context dies with the handler; pumps outlive it.
	client.run(context.Background())
}

// Notify subscribes the caller to the staff notification channel and
// upgrades the connection. Staff only.
func (h *Handler) Notify(c *gin.Context) {
	p, ok := participant(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	sub, err := h.chatService.SubscribeNotifications(p)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.chatService.UnsubscribeNotifications(sub)
		return
	}

	client := &notifyClient{
		conn: conn,
		chat: h.chatService,
		sub:  sub,
		cfg:  h.cfg,
		log:  h.log,
	}
	client.run()
}
