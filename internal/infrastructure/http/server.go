package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"pricecache-service/internal/domain"
)

// PriceSource is the read side exposed to handlers: the cached symbol to
// price mapping, empty when nothing has been cached yet.
type PriceSource interface {
	CurrentPrices(ctx context.Context) map[string]float64
}

// HistoryReader serves recorded price points when a history backend is
// configured.
type HistoryReader interface {
	RecentBySymbol(ctx context.Context, symbol string, limit int) ([]domain.PricePoint, error)
}

type Server struct {
	prices  PriceSource
	history HistoryReader
	pings   []func(ctx context.Context) error
}

func NewServer(prices PriceSource) *Server { return &Server{prices: prices} }

// SetReadyCheck adds checks run by /readyz. Nil entries are skipped;
// every installed check must pass for the service to report ready.
func (s *Server) SetReadyCheck(checks ...func(ctx context.Context) error) {
	for _, c := range checks {
		if c != nil {
			s.pings = append(s.pings, c)
		}
	}
}

// SetHistory mounts the /history routes on the next NewRouter call.
func (s *Server) SetHistory(h HistoryReader) { s.history = h }

// GetPrices serves the cached prices map. Both / and /prices are wired to
// it; responses never block on upstreams.
func (s *Server) GetPrices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.prices.CurrentPrices(r.Context()))
}

func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request, symbol string) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	points, err := s.history.RecentBySymbol(r.Context(), symbol, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	out := make([]historyEntry, 0, len(points))
	for _, p := range points {
		out = append(out, historyEntry{
			Symbol:     p.Symbol,
			Price:      p.Price,
			RecordedAt: p.RecordedAt.Format(time.RFC3339),
			Source:     p.Source,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type historyEntry struct {
	Symbol     string  `json:"symbol"`
	Price      float64 `json:"price"`
	RecordedAt string  `json:"recorded_at"`
	Source     string  `json:"source"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"code": status, "message": msg})
}
