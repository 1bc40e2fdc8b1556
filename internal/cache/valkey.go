package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/senticheck/senticheck/config"
)

const keyPrefix = "senticheck:analytics"

// Cache is a TTL cache for serialized analytics responses. A nil *Cache is
// valid and behaves as a permanent miss, so callers never branch on whether
// caching is enabled.
type Cache struct {
	client valkey.Client
	mu     sync.Mutex
	ttl    time.Duration
}

// New connects to valkey and pings it. When cfg.ValkeyAddress is empty
// caching is disabled and New returns (nil, nil).
func New(cfg *config.Config) (*Cache, error) {
	if cfg.ValkeyAddress == "" {
		slog.Info("[Cache] No valkey address configured, response caching disabled")
		return nil, nil
	}

	opts := valkey.ClientOption{
		InitAddress:      []string{cfg.ValkeyAddress},
		Password:         cfg.ValkeyPassword,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if cfg.ValkeyTLS {
		opts.TLSConfig = &tls.Config{}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[Cache] failed to create valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[Cache] failed to ping valkey: %w", err)
	}

	slog.Info("[Cache] Connected to valkey",
		slog.String("address", cfg.ValkeyAddress))

	return &Cache{client: client, ttl: cfg.ValkeyTTL}, nil
}

func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.client.Close()
}

// Key builds a cache key from the endpoint name and its parameters.
func Key(endpoint string, params ...string) string {
	if len(params) == 0 {
		return keyPrefix + ":" + endpoint
	}
	return keyPrefix + ":" + endpoint + ":" + strings.Join(params, ":")
}

// Get returns the cached payload for key, or ok=false on a miss or any
// valkey error. Errors degrade to misses; a cold cache must never take an
// analytics read down with it.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	res := c.doWithRetry(ctx, c.client.B().Get().Key(key).Build(), 3)
	if err := res.Error(); err != nil {
		if !valkey.IsValkeyNil(err) {
			slog.Warn("[Cache] Get failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return nil, false
	}

	payload, err := res.AsBytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

// Set stores payload under key with the configured TTL. Failures are logged
// and swallowed.
func (c *Cache) Set(ctx context.Context, key string, payload []byte) {
	if c == nil {
		return
	}

	res := c.doWithRetry(ctx,
		c.client.B().Set().Key(key).Value(valkey.BinaryString(payload)).
			Ex(c.ttl).Build(), 3)
	if err := res.Error(); err != nil {
		slog.Warn("[Cache] Set failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// InvalidateEndpoint drops every cached entry for one endpoint, with or
// without parameters in the key.
func (c *Cache) InvalidateEndpoint(ctx context.Context, endpoint string) {
	if c == nil {
		return
	}

	pattern := keyPrefix + ":" + endpoint + "*"
	scan := c.doWithRetry(ctx, c.client.B().Keys().Pattern(pattern).Build(), 3)
	keys, err := scan.AsStrSlice()
	if err != nil || len(keys) == 0 {
		return
	}

	res := c.doWithRetry(ctx, c.client.B().Del().Key(keys...).Build(), 3)
	if err := res.Error(); err != nil {
		slog.Warn("[Cache] Invalidate failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
	}
}

func (c *Cache) doWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		c.mu.Lock()
		result = c.client.Do(ctx, completed)
		c.mu.Unlock()

		err := result.Error()
		if err == nil || valkey.IsValkeyNil(err) {
			break
		}
		if !isConnectionError(err) {
			break
		}

		slog.Warn("[Cache] Command failed, retrying",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		time.Sleep(250 * time.Millisecond)
	}
	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
