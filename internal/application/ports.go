package application

import (
	"context"
	"time"

	"pricecache-service/internal/domain"
)

// SpotClient fetches USD spot prices for a set of upstream asset ids.
type SpotClient interface {
	Latest(ctx context.Context, ids []string) (domain.SpotPrices, error)
}

// RateClient fetches the exchange-rate sheet for a base currency.
type RateClient interface {
	Rates(ctx context.Context, base string) (domain.RateSheet, error)
}

// SnapshotStore persists the merged price snapshot. Write fully replaces
// the previous snapshot. Read absorbs every failure (missing, unreadable,
// corrupt) into an empty snapshot.
type SnapshotStore interface {
	Write(ctx context.Context, snap domain.PriceSnapshot) error
	Read(ctx context.Context) domain.PriceSnapshot
}

// HistorySink records refreshed prices for later inspection.
type HistorySink interface {
	Append(ctx context.Context, points []domain.PricePoint) error
}

// NoopHistory drops every point; used when no history backend is configured.
type NoopHistory struct{}

func (NoopHistory) Append(context.Context, []domain.PricePoint) error { return nil }

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
