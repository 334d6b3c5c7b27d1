package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"pdfchat/internal/model"
)

const sessionsKeySuffix = "sessions"

// RedisSessionsCache shares the sessions snapshot between server replicas.
// The key expiry plays the role of the TTL. Redis failures degrade to a
// direct store read.
type RedisSessionsCache struct {
	client *redisv9.Client
	key    string
	load   SessionsLoader
	ttl    time.Duration
}

// NewRedisSessionsCache stores the snapshot under keyPrefix+"sessions".
func NewRedisSessionsCache(client *redisv9.Client, keyPrefix string, load SessionsLoader, ttl time.Duration) *RedisSessionsCache {
	if ttl <= 0 {
		ttl = DefaultSessionsTTL
	}
	return &RedisSessionsCache{client: client, key: keyPrefix + sessionsKeySuffix, load: load, ttl: ttl}
}

func (c *RedisSessionsCache) Sessions(ctx context.Context) ([]model.Session, error) {
	sessions, hit, err := c.get(ctx)
	if err != nil {
		slog.WarnContext(ctx, "sessions cache read failed", "error", err)
	}
	if hit {
		return sessions, nil
	}

	sessions, err = c.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.set(ctx, sessions); err != nil {
		slog.WarnContext(ctx, "sessions cache write failed", "error", err)
	}
	return sessions, nil
}

func (c *RedisSessionsCache) get(ctx context.Context) ([]model.Session, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get sessions failed: %w", err)
	}
	sessions, err := decodeSessions(raw)
	if err != nil {
		return nil, false, err
	}
	return sessions, true, nil
}

func (c *RedisSessionsCache) set(ctx context.Context, sessions []model.Session) error {
	payload, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("marshal sessions cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set sessions failed: %w", err)
	}
	return nil
}

func decodeSessions(raw []byte) ([]model.Session, error) {
	sessions := make([]model.Session, 0)
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return nil, fmt.Errorf("unmarshal cached sessions failed: %w", err)
	}
	return sessions, nil
}
