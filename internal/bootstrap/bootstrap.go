package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pricecache-service/internal/application"
	"pricecache-service/internal/config"
	"pricecache-service/internal/domain"
	"pricecache-service/internal/infrastructure/httpx"
	"pricecache-service/internal/infrastructure/logx"
	"pricecache-service/internal/infrastructure/pg"
	"pricecache-service/internal/infrastructure/provider"
	"pricecache-service/internal/infrastructure/store"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// Cache bundles a snapshot backend with its optional readiness probe.
type Cache struct {
	Store application.SnapshotStore
	Ping  func(ctx context.Context) error
}

// History bundles a sink with its optional readiness probe and the reader
// used by the /history routes (nil for the noop backend).
type History struct {
	Sink   application.HistorySink
	Reader *pg.HistoryRepo
	Ping   func(ctx context.Context) error
}

// BuildCache selects the snapshot backend from CACHE_BACKEND and wraps it
// with the in-memory snapshot holder.
func BuildCache(cfg config.Config) (Cache, func(), error) {
	log := logx.L()

	switch cfg.CacheBackend {
	case "", "file":
		fs := store.NewFile(cfg.CacheFile, log)
		return Cache{Store: store.NewCached(fs)}, func() {}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := pingRedis(client); err != nil {
			_ = client.Close()
			return Cache{}, func() {}, fmt.Errorf("redis unreachable: %w", err)
		}
		rs := store.NewRedis(client, cfg.CacheTTL, log)
		cleanup := func() {
			log.Info("closing redis")
			_ = client.Close()
		}
		return Cache{Store: store.NewCached(rs), Ping: rs.Ping}, cleanup, nil

	default:
		return Cache{}, func() {}, fmt.Errorf("unsupported CACHE_BACKEND=%q", cfg.CacheBackend)
	}
}

// pingRedis waits for redis to accept connections before first use.
func pingRedis(client *redis.Client) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 2 * time.Second
	exp.MaxElapsedTime = 15 * time.Second

	return backoff.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(ctx).Err()
	}, exp)
}

// BuildHistory selects the history backend from HISTORY_BACKEND.
func BuildHistory(ctx context.Context, cfg config.Config) (History, func(), error) {
	log := logx.L()

	switch cfg.HistoryBackend {
	case "", "none":
		return History{Sink: application.NoopHistory{}}, func() {}, nil

	case "pg":
		if cfg.DatabaseURL == "" {
			return History{}, func() {}, fmt.Errorf("DATABASE_URL is required for HISTORY_BACKEND=pg")
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return History{}, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return History{}, func() {}, err
		}
		repo := pg.NewHistoryRepo(db)
		cleanup := func() {
			log.Info("closing pg")
			db.Close()
		}
		return History{Sink: repo, Reader: repo, Ping: db.Ping}, cleanup, nil

	default:
		return History{}, func() {}, fmt.Errorf("unsupported HISTORY_BACKEND=%q", cfg.HistoryBackend)
	}
}

// BuildClients returns the two upstream adapters. UPSTREAM_MODE=fake swaps
// in fixed data for offline development.
func BuildClients(cfg config.Config) (application.SpotClient, application.RateClient) {
	if cfg.UpstreamMode == "fake" {
		return provider.NewFakeSpot(domain.SpotPrices{
				"bitcoin":                 69763.00,
				"monero":                  354.77,
				"binancecoin":             634.98,
				"dogecoin":                0.1028,
				"ripple":                  1.47,
				"polygon-ecosystem-token": 0.1109,
				"solana":                  87.35,
			}),
			provider.NewFakeRates(domain.RateSheet{
				Currency: "EUR",
				Rates:    map[string]string{"USD": "1.1865"},
			})
	}

	// One underlying http.Client; the timeout bounds every upstream call.
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}

	spotFetch := &httpx.Client{HTTP: httpClient, Log: logx.L()}
	if cfg.SpotAPIKey != "" {
		spotFetch.Header = http.Header{"x-cg-demo-api-key": []string{cfg.SpotAPIKey}}
	}
	rateFetch := &httpx.Client{HTTP: httpClient, Log: logx.L()}

	return &provider.CoinGecko{BaseURL: cfg.SpotAPIBase, Fetch: spotFetch},
		&provider.Coinbase{BaseURL: cfg.RateAPIBase, Fetch: rateFetch}
}

// BuildService assembles the aggregator from explicit configuration.
func BuildService(cfg config.Config, spot application.SpotClient, rates application.RateClient, st application.SnapshotStore, hist application.HistorySink) *application.PriceService {
	return application.NewPriceService(
		application.RefreshConfig{
			SpotAssets:  cfg.SpotAssets,
			FiatSymbols: cfg.FiatSymbols,
			RateQuote:   cfg.RateQuote,
			Fallback:    cfg.Fallback,
		},
		spot, rates, st,
		application.WithHistory(hist),
		application.WithLogger(logx.L()),
	)
}
