package application

import (
	"context"
	"errors"
	"time"

	"pricecache-service/internal/domain"
)

var (
	ErrUpstream = errors.New("upstream error")
	ErrStore    = errors.New("store error")
)

type fakeSpot struct {
	prices domain.SpotPrices
	err    error
	calls  int
	gotIDs []string
}

func (f *fakeSpot) Latest(_ context.Context, ids []string) (domain.SpotPrices, error) {
	f.calls++
	f.gotIDs = ids
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}

// cancelSpot cancels the cycle's context while its fetch is in flight.
type cancelSpot struct {
	cancel context.CancelFunc
}

func (c *cancelSpot) Latest(ctx context.Context, _ []string) (domain.SpotPrices, error) {
	c.cancel()
	return nil, ctx.Err()
}

type fakeRates struct {
	sheet domain.RateSheet
	err   error
	calls int
}

func (f *fakeRates) Rates(_ context.Context, _ string) (domain.RateSheet, error) {
	f.calls++
	if f.err != nil {
		return domain.RateSheet{}, f.err
	}
	return f.sheet, nil
}

type fakeStore struct {
	written  []domain.PriceSnapshot
	snap     domain.PriceSnapshot
	writeErr error
}

func (f *fakeStore) Write(_ context.Context, snap domain.PriceSnapshot) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, snap)
	f.snap = snap
	return nil
}

func (f *fakeStore) Read(_ context.Context) domain.PriceSnapshot {
	return f.snap
}

type fakeHistory struct {
	appended [][]domain.PricePoint
	err      error
}

func (f *fakeHistory) Append(_ context.Context, points []domain.PricePoint) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, points)
	return nil
}

type fakeClock struct {
	t time.Time
}

func (f fakeClock) Now() time.Time { return f.t }
