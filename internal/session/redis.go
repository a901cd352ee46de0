package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each session as a JSON blob under session:<token> with a
// rolling TTL: every write pushes expiry out by the configured lifetime.
type RedisStore struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{RDB: rdb, TTL: ttl}
}

func key(token string) string { return "session:" + token }

func (s *RedisStore) Get(ctx context.Context, token string) (*State, error) {
	state := &State{}
	if token == "" {
		return state, nil
	}

	val, err := s.RDB.Get(ctx, key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}

	if err := json.Unmarshal([]byte(val), state); err != nil {
		// A corrupt blob is treated as an expired session rather than
		// locking the browser out of the site.
		return &State{}, nil
	}
	return state, nil
}

func (s *RedisStore) Mutate(ctx context.Context, token string, fn func(*State) error) error {
	state, err := s.Get(ctx, token)
	if err != nil {
		return err
	}

	if err := fn(state); err != nil {
		return err
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := s.RDB.Set(ctx, key(token), data, s.TTL).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.RDB.Del(ctx, key(token)).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}
