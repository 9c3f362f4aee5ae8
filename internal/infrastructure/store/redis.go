package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pricecache-service/internal/application"
	"pricecache-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const snapshotKey = "pricecache:snapshot"

// Redis keeps the snapshot under a single key so several instances can
// share one cache. A zero TTL keeps the snapshot until the next write.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

var _ application.SnapshotStore = (*Redis)(nil)

func NewRedis(client *redis.Client, ttl time.Duration, log *zap.Logger) *Redis {
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{client: client, ttl: ttl, log: log}
}

func (r *Redis) Write(ctx context.Context, snap domain.PriceSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, snapshotKey, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

func (r *Redis) Read(ctx context.Context) domain.PriceSnapshot {
	data, err := r.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PriceSnapshot{}
	}
	if err != nil {
		r.log.Warn("snapshot fetch failed", zap.Error(err))
		return domain.PriceSnapshot{}
	}
	var snap domain.PriceSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		r.log.Warn("snapshot corrupt in redis", zap.Error(err))
		return domain.PriceSnapshot{}
	}
	return snap
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
