package handler

import (
	"time"

	apporder "github.com/booktime/backend/internal/application/order"
	"github.com/booktime/backend/internal/domain/order"
	"github.com/booktime/backend/internal/interfaces/http/dto"
	"github.com/booktime/backend/internal/interfaces/http/middleware"
	"github.com/booktime/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderHandler serves "my orders" queries
type OrderHandler struct {
	BaseHandler
	orderService *apporder.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *apporder.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Routes returns the order route group
func (h *OrderHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("orders", "/orders").
		GET("", h.ListMine).
		GET("/:id", h.Get)
}

// OrderLineResponse is the wire shape of an order line
type OrderLineResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// OrderResponse is the wire shape of an order
type OrderResponse struct {
	ID             string              `json:"id"`
	Number         string              `json:"number"`
	Status         string              `json:"status"`
	Total          decimal.Decimal     `json:"total"`
	Lines          []OrderLineResponse `json:"lines"`
	LastSpokenToID *string             `json:"last_spoken_to_id,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineResponse{
			ProductID:   l.ProductID.String(),
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	resp := OrderResponse{
		ID:        o.ID.String(),
		Number:    o.Number,
		Status:    o.Status.String(),
		Total:     o.Total(),
		Lines:     lines,
		CreatedAt: o.CreatedAt,
	}
	if o.LastSpokenToID != nil {
		s := o.LastSpokenToID.String()
		resp.LastSpokenToID = &s
	}
	return resp
}

// ListMine returns the authenticated user's orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orders, total, err := h.orderService.ListMyOrders(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	h.Success(c, gin.H{"orders": out, "count": total})
}

// Get returns one order; staff can read any order
func (h *OrderHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	o, err := h.orderService.GetOrder(c.Request.Context(), userID, middleware.IsJWTStaff(c), uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}
