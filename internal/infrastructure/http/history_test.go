package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pricecache-service/internal/domain"

	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	points []domain.PricePoint
	err    error
}

func (f *fakeHistory) RecentBySymbol(_ context.Context, symbol string, limit int) ([]domain.PricePoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.PricePoint
	for _, p := range f.points {
		if p.Symbol == symbol && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestHistoryRoute_NotMountedWithoutBackend(t *testing.T) {
	h := setup(nil)
	req := httptest.NewRequest(http.MethodGet, "/history/BTC", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryRoute_ServesPoints(t *testing.T) {
	srv := NewServer(fakeSource(nil))
	srv.SetHistory(&fakeHistory{points: []domain.PricePoint{
		{Symbol: "BTC", Price: 69763.00, RecordedAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), Source: "upstream"},
	}})
	h := NewRouter(srv)

	req := httptest.NewRequest(http.MethodGet, "/history/BTC", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t,
		`[{"symbol":"BTC","price":69763.00,"recorded_at":"2025-01-01T12:00:00Z","source":"upstream"}]`,
		rec.Body.String())
}

func TestHistoryRoute_RejectsBadLimit(t *testing.T) {
	srv := NewServer(fakeSource(nil))
	srv.SetHistory(&fakeHistory{})
	h := NewRouter(srv)

	req := httptest.NewRequest(http.MethodGet, "/history/BTC?limit=0", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryRoute_BackendFailure(t *testing.T) {
	srv := NewServer(fakeSource(nil))
	srv.SetHistory(&fakeHistory{err: errors.New("pg down")})
	h := NewRouter(srv)

	req := httptest.NewRequest(http.MethodGet, "/history/BTC", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"code":500,"message":"history unavailable"}`, rec.Body.String())
}
