package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Entry is what a key holds: a reservation while the first request runs,
// then the response that request produced
type Entry struct {
	Pending     bool   `json:"pending"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

type Store interface {
	// Reserve claims key for one in-flight request, false if someone holds it already
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Load returns nil when the key is unknown
	Load(ctx context.Context, key string) (*Entry, error)
	Save(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	body, err := json.Marshal(Entry{Pending: true})
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, body, ttl).Result()
}

func (s *RedisStore) Load(ctx context.Context, key string) (*Entry, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, body, ttl).Err()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// MemoryStore keeps keys in process. Used when Redis is unreachable, so
// replays only work against the instance that served the first request.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: gocache.New(DefaultTTL, 10*time.Minute)}
}

func (s *MemoryStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := s.cache.Add(key, Entry{Pending: true}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Load(ctx context.Context, key string) (*Entry, error) {
	value, found := s.cache.Get(key)
	if !found {
		return nil, nil
	}
	entry := value.(Entry)
	return &entry, nil
}

func (s *MemoryStore) Save(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	s.cache.Set(key, entry, ttl)
	return nil
}

func (s *MemoryStore) Release(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}
