package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tastybyte/orderbot/internal/domain"
)

// RedisStore keeps menu items, orders and chat logs as JSON documents in Redis.
//
// Layout (all keys carry the configured prefix):
//
//	menu           hash   item_id -> MenuItem JSON
//	menu:ids       list   item ids in insertion order
//	order:<id>     string Order JSON
//	orders         zset   order ids scored by created_at (unix millis)
//	chat:<id>      list   ChatLog JSON in append order
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the Redis server at url (redis://host:port/db)
func NewRedisStore(url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	return NewRedisStoreFromClient(redis.NewClient(opts), prefix), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping tests the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *RedisStore) key(parts ...string) string {
	k := s.prefix
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}

// ListMenu returns every menu item in insertion order
func (s *RedisStore) ListMenu(ctx context.Context) ([]domain.MenuItem, error) {
	ids, err := s.client.LRange(ctx, s.key("menu", "ids"), 0, -1).Result()
	if err != nil {
		return nil, unavailable("list menu ids", err)
	}
	if len(ids) == 0 {
		return []domain.MenuItem{}, nil
	}

	values, err := s.client.HMGet(ctx, s.key("menu"), ids...).Result()
	if err != nil {
		return nil, unavailable("load menu", err)
	}

	items := make([]domain.MenuItem, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var item domain.MenuItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("decode menu item %s: %w", ids[i], err)
		}
		items = append(items, item)
	}
	return items, nil
}

// SaveMenuItem inserts or replaces a menu item keyed by ItemID
func (s *RedisStore) SaveMenuItem(ctx context.Context, item domain.MenuItem) error {
	if item.ItemID == "" {
		return fmt.Errorf("%w: menu item id is required", domain.ErrInvalidRequest)
	}
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}

	isNew, err := s.client.HSetNX(ctx, s.key("menu"), item.ItemID, data).Result()
	if err != nil {
		return unavailable("save menu item", err)
	}
	if isNew {
		if err := s.client.RPush(ctx, s.key("menu", "ids"), item.ItemID).Err(); err != nil {
			return unavailable("index menu item", err)
		}
		return nil
	}
	if err := s.client.HSet(ctx, s.key("menu"), item.ItemID, data).Err(); err != nil {
		return unavailable("save menu item", err)
	}
	return nil
}

// CreateOrder stores a new order and indexes it by creation time
func (s *RedisStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order == nil || order.OrderID == "" {
		return fmt.Errorf("%w: order id is required", domain.ErrInvalidRequest)
	}
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key("order", order.OrderID), data, 0)
		pipe.ZAdd(ctx, s.key("orders"), redis.Z{
			Score:  float64(order.CreatedAt.UnixMilli()),
			Member: order.OrderID,
		})
		return nil
	})
	if err != nil {
		return unavailable("create order", err)
	}
	return nil
}

// GetOrder retrieves an order by ID
func (s *RedisStore) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	raw, err := s.client.Get(ctx, s.key("order", orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, unavailable("get order", err)
	}

	order := new(domain.Order)
	if err := json.Unmarshal(raw, order); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", orderID, err)
	}
	return order, nil
}

// UpdateOrderStatus sets the status and update time of an order.
// The read-modify-write runs under WATCH so concurrent updates retry.
func (s *RedisStore) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, at time.Time) error {
	key := s.key("order", orderID)

	update := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
		}
		if err != nil {
			return err
		}

		var order domain.Order
		if err := json.Unmarshal(raw, &order); err != nil {
			return fmt.Errorf("decode order %s: %w", orderID, err)
		}
		order.Status = status
		order.UpdatedAt = at

		data, err := json.Marshal(&order)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	const maxRetries = 3
	for i := 0; i < maxRetries; i++ {
		err := s.client.Watch(ctx, update, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
			return unavailable("update order status", err)
		}
		return err
	}
	return unavailable("update order status", redis.TxFailedErr)
}

// ListOrders returns orders newest first, filtered and limited by q
func (s *RedisStore) ListOrders(ctx context.Context, q domain.OrderQuery) ([]*domain.Order, error) {
	stop := int64(-1)
	if q.Limit > 0 && len(q.Statuses) == 0 {
		stop = int64(q.Limit - 1)
	}

	ids, err := s.client.ZRevRange(ctx, s.key("orders"), 0, stop).Result()
	if err != nil {
		return nil, unavailable("list orders", err)
	}
	if len(ids) == 0 {
		return []*domain.Order{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key("order", id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, unavailable("load orders", err)
	}

	orders := make([]*domain.Order, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		order := new(domain.Order)
		if err := json.Unmarshal([]byte(raw), order); err != nil {
			return nil, fmt.Errorf("decode order %s: %w", ids[i], err)
		}
		if !matchesStatus(order.Status, q.Statuses) {
			continue
		}
		orders = append(orders, order)
		if q.Limit > 0 && len(orders) == q.Limit {
			break
		}
	}
	return orders, nil
}

// AppendChatLog records a chat message for an order
func (s *RedisStore) AppendChatLog(ctx context.Context, entry domain.ChatLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := s.client.RPush(ctx, s.key("chat", entry.OrderID), data).Err(); err != nil {
		return unavailable("append chat log", err)
	}
	return nil
}

// ChatHistory returns the chat messages of an order oldest first
func (s *RedisStore) ChatHistory(ctx context.Context, orderID string) ([]domain.ChatLog, error) {
	values, err := s.client.LRange(ctx, s.key("chat", orderID), 0, -1).Result()
	if err != nil {
		return nil, unavailable("chat history", err)
	}

	logs := make([]domain.ChatLog, 0, len(values))
	for _, raw := range values {
		var entry domain.ChatLog
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("decode chat log: %w", err)
		}
		logs = append(logs, entry)
	}
	return logs, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
