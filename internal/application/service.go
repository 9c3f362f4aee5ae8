package application

import (
	"context"
	"sort"
	"time"

	"pricecache-service/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RefreshConfig carries the tracked-symbol tables into the service as
// plain data, keeping it free of env lookups.
type RefreshConfig struct {
	// SpotAssets maps upstream asset ids to output symbols.
	SpotAssets map[string]string
	// FiatSymbols lists base currencies priced via the rate API.
	FiatSymbols []string
	// RateQuote is the quote currency looked up in each rate sheet.
	RateQuote string
	// Fallback replaces the merged prices wholesale when a cycle yields
	// nothing at all.
	Fallback map[string]float64
}

type PriceService struct {
	cfg     RefreshConfig
	spot    SpotClient
	rates   RateClient
	store   SnapshotStore
	history HistorySink
	clock   Clock
	log     *zap.Logger
}

type Option func(*PriceService)

func WithClock(c Clock) Option         { return func(s *PriceService) { s.clock = c } }
func WithHistory(h HistorySink) Option { return func(s *PriceService) { s.history = h } }
func WithLogger(l *zap.Logger) Option  { return func(s *PriceService) { s.log = l } }

func NewPriceService(cfg RefreshConfig, spot SpotClient, rates RateClient, store SnapshotStore, opts ...Option) *PriceService {
	s := &PriceService{
		cfg:   cfg,
		spot:  spot,
		rates: rates,
		store: store,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.history == nil {
		s.history = NoopHistory{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// RefreshOnce runs one merge cycle. Both upstreams are consulted
// independently and each successful response contributes its symbols; a
// cycle that yields nothing at all is replaced wholesale by the fallback
// table. The snapshot is stamped and written to the store. Upstream
// failures are absorbed; a canceled context or a store write failure
// surfaces as an error, leaving the previously written snapshot
// authoritative.
func (s *PriceService) RefreshOnce(ctx context.Context) (domain.PriceSnapshot, error) {
	prices := make(map[string]float64, len(s.cfg.SpotAssets)+len(s.cfg.FiatSymbols))

	spot, err := s.spot.Latest(ctx, s.spotIDs())
	if err != nil {
		s.log.Warn("spot upstream unavailable", zap.Error(err))
	} else {
		for id, symbol := range s.cfg.SpotAssets {
			if usd, ok := spot[id]; ok {
				prices[symbol] = usd
			}
		}
	}

	for _, base := range s.cfg.FiatSymbols {
		sheet, err := s.rates.Rates(ctx, base)
		if err != nil {
			s.log.Warn("rate upstream unavailable", zap.String("base", base), zap.Error(err))
			continue
		}
		raw, ok := sheet.Rates[s.cfg.RateQuote]
		if !ok {
			s.log.Warn("rate sheet missing quote currency",
				zap.String("base", base), zap.String("quote", s.cfg.RateQuote))
			continue
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			s.log.Warn("rate is not a valid decimal",
				zap.String("base", base), zap.String("rate", raw), zap.Error(err))
			continue
		}
		prices[base] = rate.InexactFloat64()
	}

	// A canceled context fails both upstreams the same way an outage
	// does. An abandoned cycle writes nothing; the prior snapshot stays
	// authoritative.
	if err := ctx.Err(); err != nil {
		return domain.PriceSnapshot{}, err
	}

	source := "upstream"
	if len(prices) == 0 {
		// Full substitution only: a partially successful cycle is never
		// backfilled with fallback values.
		prices = make(map[string]float64, len(s.cfg.Fallback))
		for symbol, price := range s.cfg.Fallback {
			prices[symbol] = price
		}
		source = "fallback"
		s.log.Warn("all upstreams failed, serving fallback prices")
	}

	now := s.clock.Now().UTC()
	snap := domain.PriceSnapshot{
		Prices:     prices,
		LastUpdate: now.Format(time.RFC3339),
	}
	if err := s.store.Write(ctx, snap); err != nil {
		s.log.Error("snapshot write failed", zap.Error(err))
		return snap, err
	}
	if err := s.history.Append(ctx, historyPoints(prices, now, source)); err != nil {
		s.log.Warn("history append failed", zap.Error(err))
	}
	return snap, nil
}

// CurrentPrices returns the cached symbol to price mapping. An empty map
// stands in for any unreadable cache.
func (s *PriceService) CurrentPrices(ctx context.Context) map[string]float64 {
	snap := s.store.Read(ctx)
	if snap.Prices == nil {
		return map[string]float64{}
	}
	return snap.Prices
}

func (s *PriceService) spotIDs() []string {
	ids := make([]string, 0, len(s.cfg.SpotAssets))
	for id := range s.cfg.SpotAssets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func historyPoints(prices map[string]float64, at time.Time, source string) []domain.PricePoint {
	symbols := make([]string, 0, len(prices))
	for symbol := range prices {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	points := make([]domain.PricePoint, 0, len(symbols))
	for _, symbol := range symbols {
		points = append(points, domain.PricePoint{
			Symbol:     symbol,
			Price:      prices[symbol],
			RecordedAt: at,
			Source:     source,
		})
	}
	return points
}
