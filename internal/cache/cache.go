package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired is returned when another holder kept the lock for the whole wait.
var ErrLockNotAcquired = errors.New("lock not acquired")

const lockRetryInterval = 100 * time.Millisecond

// unlockScript deletes the key only if it still carries our token.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Client wraps redis.Client for cross-process coordination. It fails safe:
// a nil Client, or one whose server is down, lets callers run unlocked.
type Client struct {
	client *redis.Client
}

// New creates a new Redis client. An empty address disables Redis and returns nil.
func New(addr, password string, db int) *Client {
	if addr == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return &Client{client: redis.NewClient(opts)}
}

// Enabled reports whether a Redis server is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Lock tries to take a cross-process lock on key, retrying until wait elapses.
// The lock expires after ttl even if release is never called. When Redis is
// disabled or unreachable Lock returns a no-op release and a nil error, so
// callers degrade to running unlocked.
func (c *Client) Lock(ctx context.Context, key string, ttl, wait time.Duration) (release func(), err error) {
	noop := func() {}
	if !c.Enabled() {
		return noop, nil
	}

	token, err := newToken()
	if err != nil {
		return noop, nil
	}

	deadline := time.Now().Add(wait)
	for {
		ok, err := c.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			// fail safe: run without the lock
			return noop, nil
		}
		if ok {
			return func() {
				_ = unlockScript.Run(context.WithoutCancel(ctx), c.client, []string{key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return noop, ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return noop, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

// Ping checks connectivity. A disabled client always succeeds.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
