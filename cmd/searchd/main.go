package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kitaplik/reading-assistant/internal/bootstrap"
	"github.com/kitaplik/reading-assistant/internal/config"
	"github.com/kitaplik/reading-assistant/internal/core/cachekeys"
	natsq "github.com/kitaplik/reading-assistant/internal/infrastructure/queue/nats"
	"github.com/kitaplik/reading-assistant/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("searchd", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", app.Metrics.Handler())
	metricsServer := &http.Server{
		Addr:         ":" + cfg.MetricsPort,
		Handler:      metricsMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", "port", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server error: %v", err)
		}
	}()

	logger.Info("invalidation subscriber starting", "subject", cfg.NATSSubject)
	err = app.Bus.SubscribeContentChanged(ctx, func(handlerCtx context.Context, event natsq.ContentChangedEvent) {
		purgeCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()
		app.Cache.DeletePattern(purgeCtx, cachekeys.UserPattern(event.UserID))
		logger.Info("cache purged", "user_id", event.UserID, "item_id", event.ItemID)
	})
	if err != nil {
		log.Fatalf("subscribe error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics shutdown error", "error", err)
	}
}
