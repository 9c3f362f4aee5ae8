package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pricecache-service/internal/application"
	httpserver "pricecache-service/internal/infrastructure/http"
	"pricecache-service/internal/infrastructure/httpx"
	"pricecache-service/internal/infrastructure/provider"
	"pricecache-service/internal/infrastructure/store"

	"github.com/stretchr/testify/require"
)

const (
	spotBody = `{"bitcoin":{"usd":70000.5},"solana":{"usd":87.0},"dogecoin":{"usd":0.1}}`
	rateBody = `{"data":{"currency":"EUR","rates":{"USD":"1.0899","GBP":"0.8432"}}}`
)

func refreshConfig() application.RefreshConfig {
	return application.RefreshConfig{
		SpotAssets: map[string]string{
			"bitcoin":                 "BTC",
			"monero":                  "XMR",
			"binancecoin":             "BNB",
			"dogecoin":                "DOGE",
			"ripple":                  "XRP",
			"polygon-ecosystem-token": "POL",
			"solana":                  "SOL",
		},
		FiatSymbols: []string{"EUR"},
		RateQuote:   "USD",
		Fallback: map[string]float64{
			"XMR":  354.77,
			"BNB":  634.98,
			"BTC":  69763.00,
			"DOGE": 0.1028,
			"XRP":  1.47,
			"POL":  0.1109,
			"SOL":  87.35,
			"EUR":  1.1865,
		},
	}
}

func buildService(t *testing.T, spotURL, rateURL, cachePath string) *application.PriceService {
	t.Helper()
	fetch := &httpx.Client{HTTP: &http.Client{Timeout: 2 * time.Second}}
	return application.NewPriceService(
		refreshConfig(),
		&provider.CoinGecko{BaseURL: spotURL, Fetch: fetch},
		&provider.Coinbase{BaseURL: rateURL, Fetch: fetch},
		store.NewCached(store.NewFile(cachePath, nil)),
	)
}

func serveText(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
}

func TestEndToEnd_RefreshAndServe(t *testing.T) {
	spotSrv := serveText(spotBody)
	defer spotSrv.Close()
	rateSrv := serveText(rateBody)
	defer rateSrv.Close()

	cachePath := filepath.Join(t.TempDir(), "pricecache.json")
	svc := buildService(t, spotSrv.URL, rateSrv.URL, cachePath)

	_, err := svc.RefreshOnce(context.Background())
	require.NoError(t, err)

	h := httpserver.NewRouter(httpserver.NewServer(svc))
	for _, path := range []string{"/", "/prices"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t,
			`{"BTC":70000.5,"SOL":87.0,"DOGE":0.1,"EUR":1.0899}`,
			rec.Body.String())
	}

	// The cache document on disk carries both prices and the update stamp.
	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	require.Contains(t, string(data), `"prices"`)
	require.Contains(t, string(data), `"last_update"`)
}

func TestEndToEnd_AllUpstreamsDown_FallbackServed(t *testing.T) {
	spotSrv := serveText("")
	rateSrv := serveText("")
	spotSrv.Close()
	rateSrv.Close()

	cachePath := filepath.Join(t.TempDir(), "pricecache.json")
	svc := buildService(t, spotSrv.URL, rateSrv.URL, cachePath)

	_, err := svc.RefreshOnce(context.Background())
	require.NoError(t, err)

	h := httpserver.NewRouter(httpserver.NewServer(svc))
	req := httptest.NewRequest(http.MethodGet, "/prices", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{
		"XMR": 354.77,
		"BNB": 634.98,
		"BTC": 69763.00,
		"DOGE": 0.1028,
		"XRP": 1.47,
		"POL": 0.1109,
		"SOL": 87.35,
		"EUR": 1.1865
	}`, rec.Body.String())
}

func TestEndToEnd_PartialUpstream_NoBackfill(t *testing.T) {
	spotSrv := serveText(`{"bitcoin":{"usd":70000.5}}`)
	defer spotSrv.Close()
	rateSrv := serveText("")
	rateSrv.Close()

	cachePath := filepath.Join(t.TempDir(), "pricecache.json")
	svc := buildService(t, spotSrv.URL, rateSrv.URL, cachePath)

	_, err := svc.RefreshOnce(context.Background())
	require.NoError(t, err)

	h := httpserver.NewRouter(httpserver.NewServer(svc))
	req := httptest.NewRequest(http.MethodGet, "/prices", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.JSONEq(t, `{"BTC":70000.5}`, rec.Body.String())
}

func TestEndToEnd_CanceledRefreshLeavesCacheAlone(t *testing.T) {
	started := make(chan struct{})
	spotSrv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer spotSrv.Close()
	rateSrv := serveText(rateBody)
	rateSrv.Close()

	cachePath := filepath.Join(t.TempDir(), "pricecache.json")
	seeded := `{"prices":{"BTC":100000.0,"EUR":1.25},"last_update":"x"}`
	require.NoError(t, os.WriteFile(cachePath, []byte(seeded), 0o644))

	svc := buildService(t, spotSrv.URL, rateSrv.URL, cachePath)

	// Shutdown arrives while the spot fetch is still blocked upstream.
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.RefreshOnce(ctx)
		done <- err
	}()
	<-started
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	// The abandoned cycle must not replace live prices with the fallback
	// table or touch the file at all.
	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	require.JSONEq(t, seeded, string(data))

	h := httpserver.NewRouter(httpserver.NewServer(svc))
	req := httptest.NewRequest(http.MethodGet, "/prices", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.JSONEq(t, `{"BTC":100000.0,"EUR":1.25}`, rec.Body.String())
}

func TestEndToEnd_CacheSurvivesRestart(t *testing.T) {
	spotSrv := serveText(spotBody)
	rateSrv := serveText(rateBody)

	cachePath := filepath.Join(t.TempDir(), "pricecache.json")
	first := buildService(t, spotSrv.URL, rateSrv.URL, cachePath)
	_, err := first.RefreshOnce(context.Background())
	require.NoError(t, err)

	// Upstreams gone, new process over the same cache file: reads still
	// serve the previously written snapshot without any refresh.
	spotSrv.Close()
	rateSrv.Close()
	second := buildService(t, spotSrv.URL, rateSrv.URL, cachePath)

	h := httpserver.NewRouter(httpserver.NewServer(second))
	req := httptest.NewRequest(http.MethodGet, "/prices", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.JSONEq(t,
		`{"BTC":70000.5,"SOL":87.0,"DOGE":0.1,"EUR":1.0899}`,
		rec.Body.String())
}
