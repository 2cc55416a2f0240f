package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cristianxmm/tv-signage-system/internal/config"
	"github.com/cristianxmm/tv-signage-system/internal/domain"
)

// RedisStore is a Redis-backed implementation of Store. Suitable for
// multi-instance deployments where all dispatcher instances must agree on
// the current assignment. Entries are written without a TTL: the cache is
// process-lifetime state, not a durability promise.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

func (s *RedisStore) key(target string) string {
	return s.keyPrefix + target
}

// Set records the descriptor as the current content for its target.
func (s *RedisStore) Set(ctx context.Context, desc *domain.ContentDescriptor) error {
	data, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("failed to marshal descriptor: %w", err)
	}

	if err := s.client.Set(ctx, s.key(desc.Target), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save state to redis: %w", err)
	}
	return nil
}

// Get returns the entry for exactly this target, or nil if absent.
func (s *RedisStore) Get(ctx context.Context, target string) (*domain.ContentDescriptor, error) {
	data, err := s.client.Get(ctx, s.key(target)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get state from redis: %w", err)
	}

	var desc domain.ContentDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal descriptor: %w", err)
	}
	return &desc, nil
}

// Resolve fetches the zone entry and the "all" entry in one round trip and
// applies the zone-first fallback.
func (s *RedisStore) Resolve(ctx context.Context, zone string) (*domain.ContentDescriptor, error) {
	values, err := s.client.MGet(ctx, s.key(zone), s.key(domain.TargetAll)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state from redis: %w", err)
	}

	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var desc domain.ContentDescriptor
		if err := json.Unmarshal([]byte(str), &desc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal descriptor: %w", err)
		}
		return &desc, nil
	}
	return nil, nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
