package worker

import (
	"context"
	"time"

	"pricecache-service/internal/application"
	"pricecache-service/internal/config"
	"pricecache-service/internal/domain"

	"go.uber.org/zap"
)

var _ application.Worker = (*Refresher)(nil)

// RefreshService is the slice of the price service the worker drives.
type RefreshService interface {
	RefreshOnce(ctx context.Context) (domain.PriceSnapshot, error)
}

// Refresher runs merge cycles on a fixed cadence. The first cycle runs
// immediately; each following cycle is scheduled a full interval after the
// previous one finishes, so cycles never overlap.
type Refresher struct {
	Service  RefreshService
	Interval time.Duration
	Log      *zap.Logger
}

func (w *Refresher) Start(ctx context.Context) {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	if w.Interval <= 0 {
		w.Interval = config.DefaultRefreshInterval
	}

	log.Info("refresher_started", zap.Duration("interval", w.Interval))
	w.refresh(ctx, log)

	t := time.NewTimer(w.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("refresher_stopped")
			return
		case <-t.C:
			w.refresh(ctx, log)
			t.Reset(w.Interval)
		}
	}
}

func (w *Refresher) refresh(ctx context.Context, log *zap.Logger) {
	if ctx.Err() != nil {
		return
	}
	snap, err := w.Service.RefreshOnce(ctx)
	if err != nil {
		log.Warn("refresh_failed", zap.Error(err))
		return
	}
	log.Info("refresh_done",
		zap.Int("symbols", len(snap.Prices)),
		zap.String("last_update", snap.LastUpdate))
}
