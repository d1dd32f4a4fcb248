package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "hcen/pkg/domain"
)

// RedisStore shares the processed-message set across peripheral instances,
// so two consumers in the same group rebalancing mid-stream do not both act
// on the same redelivered confirmation.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed dedup store with the given retention.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func dedupKey(messageID id.MessageID) string {
	return "hcen:sync:confirm:" + messageID.String()
}

// MarkProcessed uses SETNX: the first writer wins, later writers observe a
// duplicate. Redis being down degrades to "treat everything as first seen",
// which the idempotent sentinel stores absorb.
func (s *RedisStore) MarkProcessed(ctx context.Context, messageID id.MessageID) (bool, error) {
	first, err := s.client.SetNX(ctx, dedupKey(messageID), 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark confirmation processed: %w", err)
	}
	return first, nil
}
