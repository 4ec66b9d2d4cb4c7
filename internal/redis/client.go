package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"restaurant_pos/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

type SessionData struct {
	Caller    models.CallerContext `json:"caller"`
	CreatedAt time.Time            `json:"created_at"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func sessionKey(token string) string { return "session:" + token }

func activeOrdersKey(branchID string) string { return "active_orders:" + branchID }

func activeOrdersGenKey(branchID string) string { return "active_orders_gen:" + branchID }

// fillActiveOrders stores the list only if the branch generation is still
// the one the caller read. A missing generation counts as 0.
var fillActiveOrders = redis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Session management
func (c *Client) SaveSession(ctx context.Context, token string, caller models.CallerContext, ttl time.Duration) error {
	jsonData, err := json.Marshal(SessionData{Caller: caller, CreatedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}
	return c.rdb.Set(ctx, sessionKey(token), jsonData, ttl).Err()
}

func (c *Client) LoadSession(ctx context.Context, token string) (*models.CallerContext, bool, error) {
	val, err := c.rdb.Get(ctx, sessionKey(token)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get session: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal(val, &session); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	return &session.Caller, true, nil
}

func (c *Client) DeleteSession(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, sessionKey(token)).Err()
}

// Active orders cache
func (c *Client) GetActiveOrders(ctx context.Context, branchID string) ([]models.Order, bool, error) {
	val, err := c.rdb.Get(ctx, activeOrdersKey(branchID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get active orders: %w", err)
	}

	var orders []models.Order
	if err := json.Unmarshal(val, &orders); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal active orders: %w", err)
	}
	return orders, true, nil
}

func (c *Client) ActiveOrdersGeneration(ctx context.Context, branchID string) (int64, error) {
	gen, err := c.rdb.Get(ctx, activeOrdersGenKey(branchID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get active orders generation: %w", err)
	}
	return gen, nil
}

// SetActiveOrders caches the list unless the branch was invalidated after
// generation was read. The bool reports whether the list was stored.
func (c *Client) SetActiveOrders(ctx context.Context, branchID string, orders []models.Order, generation int64, ttl time.Duration) (bool, error) {
	jsonData, err := json.Marshal(orders)
	if err != nil {
		return false, fmt.Errorf("failed to marshal active orders: %w", err)
	}

	keys := []string{activeOrdersGenKey(branchID), activeOrdersKey(branchID)}
	stored, err := fillActiveOrders.Run(ctx, c.rdb, keys, strconv.FormatInt(generation, 10), jsonData, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to set active orders: %w", err)
	}
	return stored == 1, nil
}

// InvalidateActiveOrders drops the cached list and bumps the generation so
// fills that started earlier are discarded.
func (c *Client) InvalidateActiveOrders(ctx context.Context, branchID string) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, activeOrdersGenKey(branchID))
		pipe.Del(ctx, activeOrdersKey(branchID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate active orders: %w", err)
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
