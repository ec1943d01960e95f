// FilePath: internal/repository/rediscache/rediscache.snapshot.go
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/itsatony/misting-hub/internal/config"
	"github.com/itsatony/misting-hub/internal/errors"
	"github.com/itsatony/misting-hub/internal/models"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

const snapshotKey = "misting:snapshot:latest"

// SnapshotCache mirrors the latest snapshot into Redis so co-located
// consumers can read current state without querying the hub. Best effort;
// the aggregator's in-memory snapshot stays authoritative.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(cfg config.RedisConfig) (*SnapshotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error connecting to Redis: %w", err)
	}

	ttl := cfg.SnapshotTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	nuts.L.Infof("[RedisCache] Connected to %s:%d/%d", cfg.Host, cfg.Port, cfg.DB)
	return &SnapshotCache{client: client, ttl: ttl}, nil
}

// Store writes the snapshot JSON under a single key with TTL.
func (c *SnapshotCache) Store(ctx context.Context, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return errors.NewInternalError("failed to marshal snapshot", err)
	}
	if err := c.client.Set(ctx, snapshotKey, data, c.ttl).Err(); err != nil {
		return errors.NewUnavailableError("failed to store snapshot in redis", err)
	}
	return nil
}

// Load reads back the mirrored snapshot, returning nil when the key is
// absent or expired.
func (c *SnapshotCache) Load(ctx context.Context) (*models.Snapshot, error) {
	data, err := c.client.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewUnavailableError("failed to load snapshot from redis", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal snapshot", err)
	}
	return &snap, nil
}

// Close releases the Redis connection.
func (c *SnapshotCache) Close() error {
	return c.client.Close()
}
