package models

import (
	"time"

	"github.com/booktime/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate.
// LastSpokenToID references the staff user who most recently answered
// in the order's customer-service room.
type OrderModel struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Number          string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	Status          string           `gorm:"type:varchar(10);not null;default:'NEW'"`
	BillingName     string           `gorm:"type:varchar(200)"`
	BillingAddress  string           `gorm:"type:text"`
	ShippingName    string           `gorm:"type:varchar(200)"`
	ShippingAddress string           `gorm:"type:text"`
	LastSpokenToID  *uuid.UUID       `gorm:"type:uuid;index"`
	Lines           []OrderLineModel `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time        `gorm:"not null"`
	UpdatedAt       time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel is the persistence model for a single order line.
type OrderLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *order.Order {
	lines := make([]order.Line, len(m.Lines))
	for i, lm := range m.Lines {
		lines[i] = order.Line{
			ID:          lm.ID,
			OrderID:     lm.OrderID,
			ProductID:   lm.ProductID,
			ProductName: lm.ProductName,
			Quantity:    lm.Quantity,
			UnitPrice:   lm.UnitPrice,
		}
	}
	return &order.Order{
		ID:              m.ID,
		Number:          m.Number,
		UserID:          m.UserID,
		Status:          order.Status(m.Status),
		BillingName:     m.BillingName,
		BillingAddress:  m.BillingAddress,
		ShippingName:    m.ShippingName,
		ShippingAddress: m.ShippingAddress,
		Lines:           lines,
		LastSpokenToID:  m.LastSpokenToID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	lines := make([]OrderLineModel, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineModel{
			ID:          l.ID,
			OrderID:     l.OrderID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return &OrderModel{
		ID:              o.ID,
		Number:          o.Number,
		UserID:          o.UserID,
		Status:          o.Status.String(),
		BillingName:     o.BillingName,
		BillingAddress:  o.BillingAddress,
		ShippingName:    o.ShippingName,
		ShippingAddress: o.ShippingAddress,
		LastSpokenToID:  o.LastSpokenToID,
		Lines:           lines,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
