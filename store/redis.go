package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// counterKey is the single key holding the JSON snapshot.
	counterKey = "kats:counters"

	// counterTTL keeps stale snapshots from surviving past a couple of
	// sessions if the engine never runs again.
	counterTTL = 48 * time.Hour
)

// RedisStore persists the counter snapshot as one JSON value.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, key: counterKey}
}

func (r *RedisStore) Load(ctx context.Context) (Snapshot, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{PerStock: map[string]int{}}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load counters: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode counters: %w", err)
	}
	if snap.PerStock == nil {
		snap.PerStock = map[string]int{}
	}
	return snap, nil
}

func (r *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode counters: %w", err)
	}
	if err := r.client.Set(ctx, r.key, raw, counterTTL).Err(); err != nil {
		return fmt.Errorf("save counters: %w", err)
	}
	return nil
}
