package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	idempotencyPrefix = "idempotency:open_order:"
	pendingValue      = "pending"
	openCountChannel  = "tabletrack:open_count"
)

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// Initialize connects and pings. ttl bounds how long idempotency keys live.
func Initialize(redisURL string, ttl time.Duration) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Client{rdb: rdb, ttl: ttl}, nil
}

func idempotencyKey(key string) string {
	return idempotencyPrefix + key
}

// Idempotency keys

// Reserve claims key with SETNX. A taken key yields the stored order id, or
// "" while the original request is still pending.
func (c *Client) Reserve(ctx context.Context, key string) (string, bool, error) {
	ok, err := c.rdb.SetNX(ctx, idempotencyKey(key), pendingValue, c.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if ok {
		return "", true, nil
	}

	val, err := c.rdb.Get(ctx, idempotencyKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			// Expired between SETNX and GET; report as in flight so the client retries.
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	return storedOrderID(val), false, nil
}

func (c *Client) Complete(ctx context.Context, key, orderID string) error {
	return c.rdb.Set(ctx, idempotencyKey(key), orderID, c.ttl).Err()
}

func (c *Client) Release(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, idempotencyKey(key)).Err()
}

func storedOrderID(val string) string {
	if val == pendingValue {
		return ""
	}
	return val
}

// Open-order count relay

func (c *Client) PublishOpenCount(ctx context.Context, count int64) error {
	return c.rdb.Publish(ctx, openCountChannel, strconv.FormatInt(count, 10)).Err()
}

// SubscribeOpenCount streams counts published by any replica. The channel
// is closed once the returned close func runs or the connection drops.
func (c *Client) SubscribeOpenCount(ctx context.Context) (<-chan int64, func() error, error) {
	pubsub := c.rdb.Subscribe(ctx, openCountChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", openCountChannel, err)
	}

	out := make(chan int64, 1)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			count, err := parseCount(msg.Payload)
			if err != nil {
				continue
			}
			offerLatest(out, count)
		}
	}()
	return out, pubsub.Close, nil
}

// offerLatest replaces a count still waiting in out. out has a single writer.
func offerLatest(out chan int64, count int64) {
	select {
	case <-out:
	default:
	}
	select {
	case out <- count:
	default:
	}
}

func parseCount(payload string) (int64, error) {
	count, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid open count payload %q: %w", payload, err)
	}
	if count < 0 {
		return 0, fmt.Errorf("negative open count %d", count)
	}
	return count, nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
