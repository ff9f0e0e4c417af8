package order

import (
	"strings"
	"time"

	"github.com/booktime/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an order
type Status string

const (
	StatusNew  Status = "NEW"
	StatusPaid Status = "PAID"
	StatusDone Status = "DONE"
)

// IsValid checks whether the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusPaid, StatusDone:
		return true
	}
	return false
}

// String returns the status as a string
func (s Status) String() string {
	return string(s)
}

// Order is a placed storefront order. LastSpokenToID tracks the last
// staff member who responded in the order's customer-service room.
type Order struct {
	ID              uuid.UUID
	Number          string
	UserID          uuid.UUID
	Status          Status
	BillingName     string
	BillingAddress  string
	ShippingName    string
	ShippingAddress string
	Lines           []Line
	LastSpokenToID  *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Line is a single product position on an order.
type Line struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// NewOrder creates a new order for a user.
func NewOrder(userID uuid.UUID, number string) (*Order, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number is required")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Order must belong to a user")
	}
	now := time.Now()
	return &Order{
		ID:        uuid.New(),
		Number:    number,
		UserID:    userID,
		Status:    StatusNew,
		Lines:     make([]Line, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AddLine appends a product position to the order.
func (o *Order) AddLine(productID uuid.UUID, productName string, quantity int, unitPrice decimal.Decimal) (*Line, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	line := Line{
		ID:          uuid.New(),
		OrderID:     o.ID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
	o.Lines = append(o.Lines, line)
	o.UpdatedAt = time.Now()
	return &o.Lines[len(o.Lines)-1], nil
}

// Total returns the sum of all line amounts.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// MarkPaid transitions the order from NEW to PAID.
func (o *Order) MarkPaid() error {
	if o.Status != StatusNew {
		return shared.ErrInvalidState
	}
	o.Status = StatusPaid
	o.UpdatedAt = time.Now()
	return nil
}

// MarkDone transitions the order from PAID to DONE.
func (o *Order) MarkDone() error {
	if o.Status != StatusPaid {
		return shared.ErrInvalidState
	}
	o.Status = StatusDone
	o.UpdatedAt = time.Now()
	return nil
}

// SetLastSpokenTo records the staff member who most recently responded
// in the order's chat room. Last writer wins.
func (o *Order) SetLastSpokenTo(userID uuid.UUID) {
	o.LastSpokenToID = &userID
	o.UpdatedAt = time.Now()
}
