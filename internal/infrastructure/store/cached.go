package store

import (
	"context"
	"sync/atomic"

	"pricecache-service/internal/application"
	"pricecache-service/internal/domain"
)

// Cached keeps the latest written snapshot in memory so request handlers
// skip the store round-trip. Reads fall through to the wrapped store until
// the first successful write; a failed write leaves the previous snapshot
// authoritative.
type Cached struct {
	inner application.SnapshotStore
	cur   atomic.Pointer[domain.PriceSnapshot]
}

var _ application.SnapshotStore = (*Cached)(nil)

func NewCached(inner application.SnapshotStore) *Cached {
	return &Cached{inner: inner}
}

func (c *Cached) Write(ctx context.Context, snap domain.PriceSnapshot) error {
	if err := c.inner.Write(ctx, snap); err != nil {
		return err
	}
	c.cur.Store(&snap)
	return nil
}

func (c *Cached) Read(ctx context.Context) domain.PriceSnapshot {
	if snap := c.cur.Load(); snap != nil {
		return *snap
	}
	return c.inner.Read(ctx)
}
