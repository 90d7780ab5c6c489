package domain

import (
	"context"
	"time"
)

// MenuRepository defines the interface for menu catalog storage
type MenuRepository interface {
	ListMenu(ctx context.Context) ([]MenuItem, error)
	SaveMenuItem(ctx context.Context, item MenuItem) error
}

// OrderQuery filters an order listing. Zero values mean no filter.
type OrderQuery struct {
	Limit    int
	Statuses []OrderStatus
}

// OrderRepository defines the interface for order persistence.
// ListOrders returns orders newest first.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus, at time.Time) error
	ListOrders(ctx context.Context, q OrderQuery) ([]*Order, error)
}

// ChatRepository defines the interface for chat transcript persistence
type ChatRepository interface {
	AppendChatLog(ctx context.Context, entry ChatLog) error
	ChatHistory(ctx context.Context, orderID string) ([]ChatLog, error)
}

// Store bundles every repository plus a connectivity check
type Store interface {
	MenuRepository
	OrderRepository
	ChatRepository
	Ping(ctx context.Context) error
}

// ZeroShotClassifier picks the most likely label for a text from a fixed candidate set.
// It is an optional capability consulted only after every rule has failed.
type ZeroShotClassifier interface {
	Classify(ctx context.Context, text string, labels []string) (label string, score float64, err error)
}

// NumberParser converts a phrase of number words into an integer
type NumberParser interface {
	ParseNumber(text string) (int, error)
}
