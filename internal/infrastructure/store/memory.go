package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tastybyte/orderbot/internal/domain"
)

// MemoryStore is a thread-safe in-memory document store implementing every repository
type MemoryStore struct {
	menu      []domain.MenuItem
	menuIndex map[string]int
	orders    map[string]*domain.Order
	chats     map[string][]domain.ChatLog
	mutex     sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		menuIndex: make(map[string]int),
		orders:    make(map[string]*domain.Order),
		chats:     make(map[string][]domain.ChatLog),
	}
}

// ListMenu returns every menu item in insertion order
func (s *MemoryStore) ListMenu(ctx context.Context) ([]domain.MenuItem, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]domain.MenuItem, 0, len(s.menu))
	for _, item := range s.menu {
		var cp domain.MenuItem
		if err := roundTrip(item, &cp); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

// SaveMenuItem inserts or replaces a menu item keyed by ItemID
func (s *MemoryStore) SaveMenuItem(ctx context.Context, item domain.MenuItem) error {
	if item.ItemID == "" {
		return fmt.Errorf("%w: menu item id is required", domain.ErrInvalidRequest)
	}

	var cp domain.MenuItem
	if err := roundTrip(item, &cp); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if i, ok := s.menuIndex[item.ItemID]; ok {
		s.menu[i] = cp
		return nil
	}
	s.menuIndex[item.ItemID] = len(s.menu)
	s.menu = append(s.menu, cp)
	return nil
}

// CreateOrder stores a new order
func (s *MemoryStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order == nil || order.OrderID == "" {
		return fmt.Errorf("%w: order id is required", domain.ErrInvalidRequest)
	}

	cp := new(domain.Order)
	if err := roundTrip(order, cp); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.orders[order.OrderID] = cp
	return nil
}

// GetOrder retrieves an order by ID
func (s *MemoryStore) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	order, exists := s.orders[orderID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}

	cp := new(domain.Order)
	if err := roundTrip(order, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// UpdateOrderStatus sets the status and update time of an order
func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, at time.Time) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	order, exists := s.orders[orderID]
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	order.Status = status
	order.UpdatedAt = at
	return nil
}

// ListOrders returns orders newest first, filtered and limited by q
func (s *MemoryStore) ListOrders(ctx context.Context, q domain.OrderQuery) ([]*domain.Order, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]*domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		if !matchesStatus(order.Status, q.Statuses) {
			continue
		}
		cp := new(domain.Order)
		if err := roundTrip(order, cp); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].OrderID > out[j].OrderID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// AppendChatLog records a chat message for an order
func (s *MemoryStore) AppendChatLog(ctx context.Context, entry domain.ChatLog) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.chats[entry.OrderID] = append(s.chats[entry.OrderID], entry)
	return nil
}

// ChatHistory returns the chat messages of an order oldest first
func (s *MemoryStore) ChatHistory(ctx context.Context, orderID string) ([]domain.ChatLog, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	logs := s.chats[orderID]
	out := make([]domain.ChatLog, len(logs))
	copy(out, logs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// Ping always succeeds for the in-memory store
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Size returns the number of stored orders (for debugging/monitoring)
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.orders)
}

// Clear removes everything from the store
func (s *MemoryStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.menu = nil
	s.menuIndex = make(map[string]int)
	s.orders = make(map[string]*domain.Order)
	s.chats = make(map[string][]domain.ChatLog)
}

// roundTrip copies src into dst through JSON so callers never share memory
// with the store. This mimics a real document store.
func roundTrip(src, dst interface{}) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func matchesStatus(status domain.OrderStatus, wanted []domain.OrderStatus) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if w == status {
			return true
		}
	}
	return false
}
