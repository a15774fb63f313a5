package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore maps client-supplied Idempotency-Key values to the id of
// the work item the first request created.
// Key format: idempotency:work-item:<key>
type IdempotencyStore struct {
	client *redis.Client
}

func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

func (s *IdempotencyStore) Reserve(ctx context.Context, key, workItemID string, ttl time.Duration) (string, bool, error) {
	k := s.key(key)
	ok, err := s.client.SetNX(ctx, k, workItemID, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("idempotency reserve: %w", err)
	}
	if ok {
		return "", true, nil
	}

	id, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; claim it again.
		return s.Reserve(ctx, key, workItemID, ttl)
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency reserve: %w", err)
	}
	return id, false, nil
}

// releaseScript deletes the key only while it still holds the caller's id.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (s *IdempotencyStore) Release(ctx context.Context, key, workItemID string) error {
	if err := releaseScript.Run(ctx, s.client, []string{s.key(key)}, workItemID).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(key string) string {
	return fmt.Sprintf("idempotency:work-item:%s", key)
}
