package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefixes
const (
	responsePrefix = "idempotency:response:"
	pendingPrefix  = "idempotency:pending:"
)

// ResponseStore keeps serialized HTTP responses for retried chat callbacks.
type ResponseStore struct {
	client *redis.Client
}

// NewResponseStore creates a new ResponseStore.
func NewResponseStore(client *redis.Client) *ResponseStore {
	return &ResponseStore{client: client}
}

// Get returns the stored response for key. Returns nil, nil on a miss.
func (s *ResponseStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, responsePrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}
	return data, nil
}

// Set stores a response for key and releases the pending marker.
func (s *ResponseStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, responsePrefix+key, data, ttl)
	pipe.Del(ctx, pendingPrefix+key)
	_, err := pipe.Exec(ctx)
	return err
}

// Reserve marks key as in flight. It reports false when another request
// holds the marker, so a retry racing the original is not executed twice.
func (s *ResponseStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, pendingPrefix+key, "1", ttl).Result()
}

// Release drops the in-flight marker without storing a response.
func (s *ResponseStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, pendingPrefix+key).Err()
}
