package provider

import (
	"context"

	"pricecache-service/internal/application"
	"pricecache-service/internal/domain"
)

// FakeSpot and FakeRates serve fixed data without network I/O; wired in
// when UPSTREAM_MODE=fake.
var _ application.SpotClient = (*FakeSpot)(nil)
var _ application.RateClient = (*FakeRates)(nil)

type FakeSpot struct {
	prices domain.SpotPrices
}

func NewFakeSpot(prices domain.SpotPrices) *FakeSpot { return &FakeSpot{prices: prices} }

func (f *FakeSpot) Latest(_ context.Context, ids []string) (domain.SpotPrices, error) {
	out := make(domain.SpotPrices, len(ids))
	for _, id := range ids {
		if v, ok := f.prices[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

type FakeRates struct {
	sheet domain.RateSheet
}

func NewFakeRates(sheet domain.RateSheet) *FakeRates { return &FakeRates{sheet: sheet} }

func (f *FakeRates) Rates(context.Context, string) (domain.RateSheet, error) {
	return f.sheet, nil
}
