package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pricecache-service/internal/bootstrap"
	"pricecache-service/internal/config"
	httpserver "pricecache-service/internal/infrastructure/http"
	"pricecache-service/internal/infrastructure/logx"
	"pricecache-service/internal/infrastructure/worker"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	cmd := &cli.Command{
		Name:  "pricecached",
		Usage: "cache upstream crypto and fiat prices and serve them over HTTP",
		// Bare invocation behaves like "serve".
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "refresh prices on a schedule and serve them",
				Action: serve,
			},
			{
				Name:   "refresh",
				Usage:  "run a single refresh cycle and exit",
				Action: refreshOnce,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logx.L().Fatal("command failed", zap.Error(err))
	}
}

func serve(ctx context.Context, _ *cli.Command) error {
	logger := logx.L()
	cfg := config.Load()
	addr := ":" + cfg.Port

	cache, closeCache, err := bootstrap.BuildCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	history, closeHistory, err := bootstrap.BuildHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	spot, rates := bootstrap.BuildClients(cfg)
	svc := bootstrap.BuildService(cfg, spot, rates, cache.Store, history.Sink)

	srv := httpserver.NewServer(svc)
	srv.SetReadyCheck(cache.Ping, history.Ping)
	if history.Reader != nil {
		srv.SetHistory(history.Reader)
	}
	mux := httpserver.NewRouter(srv)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ref := &worker.Refresher{Service: svc, Interval: cfg.RefreshInterval, Log: logger}
	go ref.Start(runCtx)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("server started", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	shutdownCtx, shCancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer shCancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("server stopped")
	return nil
}

func refreshOnce(ctx context.Context, _ *cli.Command) error {
	logger := logx.L()
	cfg := config.Load()

	cache, closeCache, err := bootstrap.BuildCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	history, closeHistory, err := bootstrap.BuildHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	spot, rates := bootstrap.BuildClients(cfg)
	svc := bootstrap.BuildService(cfg, spot, rates, cache.Store, history.Sink)

	snap, err := svc.RefreshOnce(ctx)
	if err != nil {
		return err
	}
	logger.Info("refresh_done",
		zap.Int("symbols", len(snap.Prices)),
		zap.String("last_update", snap.LastUpdate))
	return nil
}
