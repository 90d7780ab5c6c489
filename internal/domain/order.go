package domain

import (
	"fmt"
	"time"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusPreparing OrderStatus = "Preparing"
	StatusReady     OrderStatus = "Ready"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

// OrderStatuses lists every valid status in lifecycle order
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusDelivered,
	StatusCancelled,
}

// ParseOrderStatus validates a status string
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, status := range OrderStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid statuses: %v)", ErrInvalidStatus, s, OrderStatuses)
}

// IsTerminal reports whether the order can no longer change or be cancelled
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// IsActive reports whether the order may still be cancelled by the customer
func (s OrderStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Customer identifies who placed an order
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// OrderItem is one priced line of an order
type OrderItem struct {
	ItemID     string  `json:"item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

// Order is a persisted customer order
type Order struct {
	OrderID         string      `json:"order_id"`
	User            Customer    `json:"user"`
	Items           []OrderItem `json:"items"`
	TotalPrice      float64     `json:"total_price"`
	Status          OrderStatus `json:"status"`
	OriginalMessage string      `json:"original_message"`
	UnclearItems    []string    `json:"unclear_items,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderSummary is the short form shown when a customer asks for recent orders
type OrderSummary struct {
	OrderID    string      `json:"order_id"`
	Total      float64     `json:"total"`
	Status     OrderStatus `json:"status"`
	ItemsCount int         `json:"items_count"`
}

// Summary returns the short form of the order
func (o *Order) Summary() OrderSummary {
	return OrderSummary{
		OrderID:    o.OrderID,
		Total:      o.TotalPrice,
		Status:     o.Status,
		ItemsCount: len(o.Items),
	}
}

// NewOrderID builds an ID of the form ORD_YYYYMMDD_HHMMSS_<suffix>
func NewOrderID(now time.Time, suffix string) string {
	return fmt.Sprintf("ORD_%s_%s", now.Format("20060102_150405"), suffix)
}

// Chat message senders
const (
	SenderUser   = "user"
	SenderSystem = "system"
)

// ChatLog records one message exchanged about an order
type ChatLog struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"order_id"`
	Sender         string    `json:"sender"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
	ParsedIntent   string    `json:"parsed_intent,omitempty"`
	ExtractedItems []string  `json:"extracted_items,omitempty"`
}
