// Package session keeps wizard sessions: live controllers in memory, their
// snapshots mirrored to a key/value store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("NOT_FOUND")

// Store is the persistence the builder needs: plain keys for session
// snapshots and capped lists for event buffers.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Append adds value to the list at key and, when maxLen > 0, keeps only
	// its newest maxLen entries.
	Append(ctx context.Context, key, value string, maxLen int) error
	// Range returns the newest n entries of the list, oldest first. n <= 0
	// returns the whole list.
	Range(ctx context.Context, key string, n int) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// ==========================
// Redis
// ==========================

type RedisStore struct {
	client  redis.Cmdable
	listTTL time.Duration
}

// NewRedisStore builds a store on client. A positive listTTL is refreshed on
// every Append.
func NewRedisStore(client redis.Cmdable, listTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, listTTL: listTTL}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Append(ctx context.Context, key, value string, maxLen int) error {
	if err := s.client.RPush(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("redis rpush %s: %w", key, err)
	}
	if maxLen > 0 {
		if err := s.client.LTrim(ctx, key, int64(-maxLen), -1).Err(); err != nil {
			return fmt.Errorf("redis ltrim %s: %w", key, err)
		}
	}
	if s.listTTL > 0 {
		if err := s.client.Expire(ctx, key, s.listTTL).Err(); err != nil {
			return fmt.Errorf("redis expire %s: %w", key, err)
		}
	}
	return nil
}

func (s *RedisStore) Range(ctx context.Context, key string, n int) ([]string, error) {
	var start int64
	if n > 0 {
		start = int64(-n)
	}
	vals, err := s.client.LRange(ctx, key, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange %s: %w", key, err)
	}
	return vals, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// ==========================
// Memory
// ==========================

type memoryValue struct {
	value   string
	expires time.Time
}

// MemoryStore is a process-local Store for single-instance deployments
// and tests.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]memoryValue
	lists  map[string][]string
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]memoryValue),
		lists:  make(map[string][]string),
		now:    time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	if !v.expires.IsZero() && !s.now().Before(v.expires) {
		delete(s.values, key)
		return "", ErrNotFound
	}
	return v.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := memoryValue{value: value}
	if ttl > 0 {
		v.expires = s.now().Add(ttl)
	}
	s.values[key] = v
	return nil
}

func (s *MemoryStore) Append(_ context.Context, key, value string, maxLen int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.lists[key], value)
	if maxLen > 0 && len(list) > maxLen {
		list = append([]string(nil), list[len(list)-maxLen:]...)
	}
	s.lists[key] = list
	return nil
}

func (s *MemoryStore) Range(_ context.Context, key string, n int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[key]
	if n > 0 && len(list) > n {
		list = list[len(list)-n:]
	}
	return append([]string{}, list...), nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	delete(s.lists, key)
	return nil
}
