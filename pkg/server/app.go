package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"EdgeFinder/internal/infra"
	"EdgeFinder/pkg/cache"
	xhttp "EdgeFinder/pkg/http"
	pkgkafka "EdgeFinder/pkg/kafka"
	applogger "EdgeFinder/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	httpServer *xhttp.Server
	scheduler  *infra.Scheduler
	producer   *pkgkafka.Producer
	cache      cache.Service
	logger     *applogger.Logger
}

// New creates a new App. Scheduler, producer and cache may be nil.
func New(
	httpServer *xhttp.Server,
	scheduler *infra.Scheduler,
	producer *pkgkafka.Producer,
	cacheSvc cache.Service,
	logger *applogger.Logger,
) *App {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &App{
		httpServer: httpServer,
		scheduler:  scheduler,
		producer:   producer,
		cache:      cacheSvc,
		logger:     logger,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts every component and shuts down when ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	if a.scheduler != nil {
		if err := a.scheduler.Start(); err != nil {
			a.logger.Error("scheduler start error", applogger.Error(err))
			return err
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops intake first, then flushes logs before closing the producer.
func (a *App) shutdown() error {
	a.logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")

	a.logger.RemoveCollector()
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	return nil
}
