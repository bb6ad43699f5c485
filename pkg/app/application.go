package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"lockrent/internal/rentals/handler"
	"lockrent/pkg/config"
	"lockrent/pkg/contracts"
	"lockrent/pkg/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Worker is a background loop that runs until its context is cancelled,
// such as a Kafka consumer.
type Worker interface {
	Start(ctx context.Context) error
	Close() error
	Topic() string
}

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.CacheIdempotencyStore
	rateLimiter      *middleware.UserRateLimiter
	healthHandler    http.Handler
	appHandler       http.Handler
	metricsHandler   http.Handler
	workers          []Worker
	closers          []io.Closer
	wg               sync.WaitGroup
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

func (a *Application) SetApp(appHandler contracts.Handler) {
	a.setHealthHandler()
	a.setAppHandler(appHandler)
	a.setAppServer()
}

// SetMetrics exposes registry on /metrics. Call before SetApp.
func (a *Application) SetMetrics(registry *prometheus.Registry) {
	a.metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// AddWorker registers a background worker started by Run.
func (a *Application) AddWorker(w Worker) {
	a.workers = append(a.workers, w)
}

// AddCloser registers a resource released during shutdown, after the
// server and workers have stopped.
func (a *Application) AddCloser(c io.Closer) {
	a.closers = append(a.closers, c)
}

func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler() {
	healthRouter := httprouter.New()
	healthHandler := handler.NewHealthHandler(a.cfg.Client, a.cfg.Log)
	healthHandler.RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(a.cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(a.cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
}

func (a *Application) setAppHandler(appHandler contracts.Handler) {
	appRouter := httprouter.New()
	appHandler.RegisterRoutes(appRouter)

	userKey := middleware.HeaderExtractor(a.cfg.UserIDHeader)
	a.idempotencyStore = middleware.NewCacheIdempotencyStore(a.cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewUserRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		userKey,
		a.cfg.Log,
	)

	var appHTTPHandler http.Handler = appRouter
	appHTTPHandler = middleware.Idempotency(a.idempotencyStore, middleware.DefaultIdempotencyHeader, userKey)(appHTTPHandler)
	appHTTPHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(appHTTPHandler)
	appHTTPHandler = middleware.RateLimit(a.rateLimiter)(appHTTPHandler)
	appHTTPHandler = middleware.ContentTypeValidation(a.cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(appHTTPHandler)
	appHTTPHandler = middleware.RequestLogging(a.cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.Recovery(a.cfg.Log)(appHTTPHandler)
	a.appHandler = appHTTPHandler
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	if a.metricsHandler != nil {
		mux.Handle("/metrics", a.metricsHandler)
	}
	mux.Handle("/", a.appHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port, "metrics", a.metricsHandler != nil)
}

func (a *Application) Run() {
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	a.startWorkers(workerCtx)

	serverErrors := make(chan error, 1)
	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.cfg.Log.Error("HTTP server failed", "error", err)
		}
	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
	}

	stopWorkers()
	a.gracefulShutdown()
}

func (a *Application) startWorkers(ctx context.Context) {
	for _, w := range a.workers {
		a.wg.Add(1)
		go func(w Worker) {
			defer a.wg.Done()
			a.cfg.Log.Info("Starting worker", "topic", w.Topic())
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.cfg.Log.Error("Worker stopped", "topic", w.Topic(), "error", err)
			}
		}(w)
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server", "error", err)
		}
	}

	a.wg.Wait()
	for _, w := range a.workers {
		if err := w.Close(); err != nil {
			a.cfg.Log.Error("Failed to close worker", "topic", w.Topic(), "error", err)
		}
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.cfg.Log.Error("Failed to close resource", "error", err)
		}
	}

	a.cfg.GracefulShutdown()
	a.cfg.Log.Info("Server stopped gracefully")
}
