package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
)

// RedisStore implements the dedup ledger on Redis. SETNX carries the
// uniqueness constraint and the key TTL doubles as the retention window, so
// no explicit purge pass is needed. Suitable for distributed deployments
// where multiple instances share webhook traffic.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	retention time.Duration
}

// RedisConfig holds Redis connection configuration for the dedup store.
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	Retention time.Duration
}

// NewRedisStore creates a Redis-backed dedup store and verifies the
// connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("dedup: failed to connect to Redis: %w", err)
	}

	retention := cfg.Retention
	if retention <= 0 {
		retention = 72 * time.Hour
	}

	return &RedisStore{
		client:    client,
		keyPrefix: "webhook:dedup:",
		retention: retention,
	}, nil
}

// NewRedisStoreWithClient creates a store sharing an existing client. Used in
// tests and when the client is shared across components.
func NewRedisStoreWithClient(client *redis.Client, retention time.Duration) *RedisStore {
	if retention <= 0 {
		retention = 72 * time.Hour
	}
	return &RedisStore{client: client, keyPrefix: "webhook:dedup:", retention: retention}
}

func (s *RedisStore) key(code platform.Code, eventID string) string {
	return s.keyPrefix + string(code) + ":" + eventID
}

// Admit records the event with SETNX; the single atomic operation decides the
// winner between racing deliveries.
func (s *RedisStore) Admit(ctx context.Context, event *platform.ProcessedEvent) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(event.PlatformCode, event.EventID), string(event.Outcome), s.retention).Result()
	if err != nil {
		return false, fmt.Errorf("dedup: failed to admit event: %w", err)
	}
	return ok, nil
}

// PurgeOlderThan is a no-op for Redis; key TTLs expire entries on their own.
func (s *RedisStore) PurgeOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements DedupStore.
var _ platform.DedupStore = (*RedisStore)(nil)
