package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// HTTP
	Port string
	// Refresh
	RefreshInterval time.Duration
	UpstreamTimeout time.Duration
	UpstreamMode    string
	// Upstreams
	SpotAPIBase string
	SpotAPIKey  string
	RateAPIBase string
	// Cache
	CacheBackend string
	CacheFile    string
	CacheTTL     time.Duration
	// Redis (cache backend)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// History
	HistoryBackend string
	DatabaseURL    string
	// Tracked symbols
	SpotAssets  map[string]string
	FiatSymbols []string
	RateQuote   string
	Fallback    map[string]float64
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func durMS(key string, defMS int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, ""), defMS)) * time.Millisecond
}

// Load reads environment variables and applies defaults. The symbol tables
// and fallback prices are fixed configuration, not env-driven.
func Load() Config {
	return Config{
		Env:             getEnv("ENV", "local"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Port:            getEnv("PORT", DefaultHTTPPort),
		RefreshInterval: durMS("REFRESH_INTERVAL_MS", 300000),
		UpstreamTimeout: durMS("UPSTREAM_TIMEOUT_MS", 10000),
		UpstreamMode:    getEnv("UPSTREAM_MODE", "live"),
		SpotAPIBase:     getEnv("SPOT_API_BASE", "https://api.coingecko.com"),
		SpotAPIKey:      getEnv("COINGECKO_API_KEY", ""),
		RateAPIBase:     getEnv("RATE_API_BASE", "https://api.coinbase.com"),
		CacheBackend:    getEnv("CACHE_BACKEND", "file"),
		CacheFile:       getEnv("CACHE_FILE", filepath.Join(os.TempDir(), "pricecache.json")),
		CacheTTL:        durMS("CACHE_TTL_MS", 0),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         atoiDef(getEnv("REDIS_DB", "0"), 0),
		HistoryBackend:  getEnv("HISTORY_BACKEND", "none"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SpotAssets:      spotAssets(),
		FiatSymbols:     []string{"EUR"},
		RateQuote:       "USD",
		Fallback:        fallbackPrices(),
	}
}

// spotAssets maps spot API asset ids to the symbols used in the snapshot.
// Both tables return a fresh map per call so callers can never corrupt a
// shared copy.
func spotAssets() map[string]string {
	return map[string]string{
		"bitcoin":                 "BTC",
		"monero":                  "XMR",
		"binancecoin":             "BNB",
		"dogecoin":                "DOGE",
		"ripple":                  "XRP",
		"polygon-ecosystem-token": "POL",
		"solana":                  "SOL",
	}
}

// fallbackPrices is served wholesale when a refresh cycle yields nothing.
func fallbackPrices() map[string]float64 {
	return map[string]float64{
		"XMR":  354.77,
		"BNB":  634.98,
		"BTC":  69763.00,
		"DOGE": 0.1028,
		"XRP":  1.47,
		"POL":  0.1109,
		"SOL":  87.35,
		"EUR":  1.1865,
	}
}
