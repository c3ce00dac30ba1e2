package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRepository stores browser session namespaces in Redis. Each namespace key maps to
// one Redis string so the pair can be written in MULTI/EXEC and read with a single MGET.
type SessionRepository struct {
	client *redis.Client
	prefix string
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(client *redis.Client, prefix string) *SessionRepository {
	if prefix == "" {
		prefix = "coursehub:session"
	}
	return &SessionRepository{client: client, prefix: prefix}
}

func (r *SessionRepository) key(namespace, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, namespace, key)
}

// SetAll writes every value inside one transaction.
func (r *SessionRepository) SetAll(ctx context.Context, namespace string, values map[string]string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, r.key(namespace, k), v, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set session %s: %w", namespace, err)
	}
	return nil
}

// GetAll reads keys with one MGET; missing keys are omitted from the result.
func (r *SessionRepository) GetAll(ctx context.Context, namespace string, keys ...string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = r.key(namespace, k)
	}

	values, err := r.client.MGet(ctx, fullKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get session %s: %w", namespace, err)
	}
	for i, raw := range values {
		if s, ok := raw.(string); ok {
			result[keys[i]] = s
		}
	}
	return result, nil
}

// Delete removes keys with a single DEL.
func (r *SessionRepository) Delete(ctx context.Context, namespace string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = r.key(namespace, k)
	}
	if err := r.client.Del(ctx, fullKeys...).Err(); err != nil {
		return fmt.Errorf("redis delete session %s: %w", namespace, err)
	}
	return nil
}
