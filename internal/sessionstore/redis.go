package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saltmarshlabs/crossgate/internal/pkg/metrics"
)

const (
	sessionKeyPrefix = "crossgate:session:"
	accountKeyPrefix = "crossgate:account_sessions:"
)

// RedisStore backs sessions with redis so multiple board replicas share
// one session space. Sessions are JSON values under a per-session key;
// a per-account set indexes session IDs for DestroyByAccount.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Close releases the redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Get returns the live session for the ID, or ErrSessionNotFound.
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	start := time.Now()

	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		metrics.RecordStoreOperation("redis", "get", time.Since(start), ErrSessionNotFound)
		return nil, ErrSessionNotFound
	}
	if err != nil {
		metrics.RecordStoreOperation("redis", "get", time.Since(start), err)
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		metrics.RecordStoreOperation("redis", "get", time.Since(start), err)
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	// Redis TTL already bounds the lifetime; the explicit check covers
	// clock drift between writer and reader.
	if sess.Expired(time.Now()) {
		r.client.Del(ctx, sessionKeyPrefix+id)
		metrics.RecordStoreOperation("redis", "get", time.Since(start), ErrSessionNotFound)
		return nil, ErrSessionNotFound
	}

	metrics.RecordStoreOperation("redis", "get", time.Since(start), nil)
	return &sess, nil
}

// Put stores the session with the given TTL and indexes it by account.
func (r *RedisStore) Put(ctx context.Context, sess *Session, ttl time.Duration) error {
	start := time.Now()

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	stored := *sess
	stored.ExpiresAt = time.Now().Add(ttl)

	data, err := json.Marshal(&stored)
	if err != nil {
		metrics.RecordStoreOperation("redis", "put", time.Since(start), err)
		return fmt.Errorf("failed to encode session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+stored.ID, data, ttl)
	pipe.SAdd(ctx, accountKeyPrefix+stored.AccountID, stored.ID)
	pipe.Expire(ctx, accountKeyPrefix+stored.AccountID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.RecordStoreOperation("redis", "put", time.Since(start), err)
		return fmt.Errorf("failed to store session: %w", err)
	}

	metrics.RecordStoreOperation("redis", "put", time.Since(start), nil)
	return nil
}

// Destroy removes the session and its account index entry.
func (r *RedisStore) Destroy(ctx context.Context, id string) error {
	start := time.Now()

	// Look the session up first so the account index can be cleaned.
	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		metrics.RecordStoreOperation("redis", "destroy", time.Since(start), nil)
		return nil
	}
	if err != nil {
		metrics.RecordStoreOperation("redis", "destroy", time.Since(start), err)
		return fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+id)
	if json.Unmarshal(data, &sess) == nil && sess.AccountID != "" {
		pipe.SRem(ctx, accountKeyPrefix+sess.AccountID, id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.RecordStoreOperation("redis", "destroy", time.Since(start), err)
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	metrics.RecordStoreOperation("redis", "destroy", time.Since(start), nil)
	return nil
}

// DestroyByAccount removes every session indexed under the account.
func (r *RedisStore) DestroyByAccount(ctx context.Context, accountID string) (int, error) {
	start := time.Now()

	ids, err := r.client.SMembers(ctx, accountKeyPrefix+accountID).Result()
	if err != nil {
		metrics.RecordStoreOperation("redis", "destroy_by_account", time.Since(start), err)
		return 0, fmt.Errorf("failed to list account sessions: %w", err)
	}

	if len(ids) == 0 {
		metrics.RecordStoreOperation("redis", "destroy_by_account", time.Since(start), nil)
		return 0, nil
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKeyPrefix+id)
	}
	keys = append(keys, accountKeyPrefix+accountID)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		metrics.RecordStoreOperation("redis", "destroy_by_account", time.Since(start), err)
		return 0, fmt.Errorf("failed to destroy account sessions: %w", err)
	}

	metrics.RecordStoreOperation("redis", "destroy_by_account", time.Since(start), nil)
	return len(ids), nil
}
