package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Store persists conversation state between turns.
type Store interface {
	Load(ctx context.Context, conversationID string) (State, bool, error)
	Save(ctx context.Context, state State) error
	Delete(ctx context.Context, conversationID string) error
	Close() error
}

// NewStore returns a Redis-backed store when redisURL is set, otherwise an
// in-process TTL cache.
func NewStore(ctx context.Context, redisURL string, ttl time.Duration) (Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return NewCacheStore(ttl), nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisStore(&goRedisClient{client: client}, WithTTL(ttl)), nil
}

// CacheStore keeps state in memory with sliding expiry.
type CacheStore struct {
	cache *gocache.Cache
}

func NewCacheStore(ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CacheStore{cache: gocache.New(ttl, ttl/3)}
}

// OnEvicted registers a callback for expired or deleted conversations.
func (s *CacheStore) OnEvicted(fn func(conversationID string)) {
	s.cache.OnEvicted(func(key string, _ interface{}) {
		fn(key)
	})
}

func (s *CacheStore) Load(_ context.Context, conversationID string) (State, bool, error) {
	v, ok := s.cache.Get(conversationID)
	if !ok {
		return State{}, false, nil
	}
	st, ok := v.(State)
	if !ok {
		return State{}, false, fmt.Errorf("unexpected cache value %T", v)
	}
	return st.Clone(), true, nil
}

func (s *CacheStore) Save(_ context.Context, state State) error {
	if state.ConversationID == "" {
		return errors.New("conversation id is required")
	}
	state.UpdatedAt = time.Now().UTC()
	s.cache.Set(state.ConversationID, state.Clone(), gocache.DefaultExpiration)
	return nil
}

func (s *CacheStore) Delete(_ context.Context, conversationID string) error {
	s.cache.Delete(conversationID)
	return nil
}

func (s *CacheStore) Close() error {
	s.cache.Flush()
	return nil
}

// RedisClient is the subset of Redis the store needs.
type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Close() error
}

// ErrRedisNil is returned by RedisClient.Get for a missing key.
var ErrRedisNil = errors.New("redis: key not found")

type RedisStoreOption func(*RedisStore)

func WithPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

func WithTTL(ttl time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// RedisStore keeps state as JSON under a key prefix so several replicas can
// serve one conversation.
type RedisStore struct {
	client RedisClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client RedisClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "flightdesk:conversation:",
		ttl:    30 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Load(ctx context.Context, conversationID string) (State, bool, error) {
	raw, err := s.client.Get(ctx, s.key(conversationID))
	if errors.Is(err, ErrRedisNil) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("redis get: %w", err)
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return State{}, false, fmt.Errorf("unmarshal state: %w", err)
	}
	if st.Slots == nil {
		st.Slots = Slots{}
	}
	return st, true, nil
}

func (s *RedisStore) Save(ctx context.Context, state State) error {
	if state.ConversationID == "" {
		return errors.New("conversation id is required")
	}
	state.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := s.client.Set(ctx, s.key(state.ConversationID), string(data), s.ttl); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, s.key(conversationID)); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

type goRedisClient struct {
	client *redis.Client
}

func (c *goRedisClient) Get(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrRedisNil
	}
	return v, err
}

func (c *goRedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *goRedisClient) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

func (c *goRedisClient) Close() error {
	return c.client.Close()
}
