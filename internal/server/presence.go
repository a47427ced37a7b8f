package server

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// PresenceTracker records heartbeats. A player is online while their last
// heartbeat is younger than the tracker's TTL.
type PresenceTracker interface {
	Touch(ctx context.Context, roomID, playerID string) error
	Online(ctx context.Context, roomID string, playerIDs []string) (map[string]bool, error)
}

type MemoryPresence struct {
	mu    sync.Mutex
	ttl   time.Duration
	seen  map[string]time.Time
	clock func() time.Time
}

func NewMemoryPresence(ttl time.Duration) *MemoryPresence {
	return &MemoryPresence{
		ttl:   ttl,
		seen:  make(map[string]time.Time),
		clock: time.Now,
	}
}

func (m *MemoryPresence) Touch(_ context.Context, roomID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[presenceKey(roomID, playerID)] = m.clock()
	return nil
}

func (m *MemoryPresence) Online(_ context.Context, roomID string, playerIDs []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock()
	out := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		at, ok := m.seen[presenceKey(roomID, id)]
		out[id] = ok && now.Sub(at) < m.ttl
	}
	return out, nil
}

// RedisPresence stores one expiring key per seated player.
type RedisPresence struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPresence(rdb *redis.Client, ttl time.Duration) *RedisPresence {
	return &RedisPresence{rdb: rdb, ttl: ttl}
}

func (r *RedisPresence) Touch(ctx context.Context, roomID, playerID string) error {
	return r.rdb.Set(ctx, presenceKey(roomID, playerID), "1", r.ttl).Err()
}

func (r *RedisPresence) Online(ctx context.Context, roomID string, playerIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(playerIDs))
	if len(playerIDs) == 0 {
		return out, nil
	}
	keys := make([]string, len(playerIDs))
	for i, id := range playerIDs {
		keys[i] = presenceKey(roomID, id)
	}
	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, id := range playerIDs {
		out[id] = values[i] != nil
	}
	return out, nil
}

// NewRedisClient connects and pings the configured Redis instance.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func presenceKey(roomID, playerID string) string {
	return "presence:" + roomID + ":" + playerID
}
