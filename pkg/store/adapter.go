package store

import (
	"context"
	"time"

	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

// Ensure RedisAdapter implements Store.
var _ Store = (*RedisAdapter)(nil)

// Options contains the settings for connecting to Redis.
type Options struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient creates a Redis client and checks the connection.
func NewRedisClient(o Options) (*redis.Client, error) {
	if o.Address == "" {
		return nil, errors.New("missing Redis address")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         o.Address,
		Password:     o.Password,
		DB:           o.DB,
		MaxRetries:   10,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := client.Ping().Err(); err != nil {
		_ = client.Close()
		return nil, errors.WithStack(err)
	}
	return client, nil
}

// NewRedisAdapter creates a new RedisAdapter.
func NewRedisAdapter(c *redis.Client) *RedisAdapter {
	if c == nil {
		panic("nil store client")
	}
	return &RedisAdapter{c: c}
}

// RedisAdapter for a Redis client to implement the Store interface.
//
// Values are stored as given, so lists written by other Redis clients can be
// read back without any extra encoding.
type RedisAdapter struct {
	c *redis.Client
}

// PushLeft pushes a value onto the head of a Redis list with LPUSH.
//
// This function is thread-safe.
func (r *RedisAdapter) PushLeft(ctx context.Context, key, value string) (int64, error) {
	client := r.c.WithContext(ctx)
	n, err := client.LPush(key, value).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "error pushing to Redis list %q", key)
	}
	return n, nil
}

// BlockingPopRight pops the tail of a Redis list with BRPOP.
//
// The reply is returned exactly as Redis sent it so that callers can check
// its shape.
func (r *RedisAdapter) BlockingPopRight(ctx context.Context, key string, timeout time.Duration) ([]string, error) {
	client := r.c.WithContext(ctx)
	values, err := client.BRPop(timeout, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error reading from Redis list %q", key)
	}
	return values, nil
}
