// Package app wires configuration, logging, metrics, the breadth service
// and the HTTP router into a runnable server.
package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"breadthpulse/internal/config"
	apierrors "breadthpulse/internal/errors"
	"breadthpulse/internal/infrastructure"
	custommw "breadthpulse/internal/middleware"
	"breadthpulse/internal/services"
	handlers "breadthpulse/internal/transport/http"
)

const (
	AppName = "BreadthPulse - A-Share Market Breadth Dashboard"
	Version = "1.0.0"
)

// BuildTime is set at compile time via -ldflags
var BuildTime = ""

// Application is the main application container
type Application struct {
	Config         *config.Config
	Logger         *slog.Logger
	Router         *chi.Mux
	Server         *http.Server
	BreadthService *services.BreadthService
	Metrics        *infrastructure.Metrics
	FrontendFS     fs.FS
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.String("data_file", cfg.GetDataFile()))

	if !config.FileExists(cfg.GetDataFile()) {
		logger.Warn("data file not found at startup",
			slog.String("path", cfg.GetDataFile()),
			slog.String("action", "endpoints return 503 until the file appears"))
	}

	metrics, err := infrastructure.InitializeMetrics("breadthpulse", Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	app := &Application{
		Config:         cfg,
		Logger:         logger,
		BreadthService: services.NewBreadthService(cfg.GetDataFile(), logger, metrics),
		Metrics:        metrics,
		FrontendFS:     frontendFS,
	}

	app.setupRouter()

	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StripSlashes)

	r.Group(func(r chi.Router) {
		r.Use(custommw.RequestMetrics(a.Metrics))
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(custommw.CORS(custommw.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(custommw.Compress(5))

		a.setupAPIRoutes(r)
		a.setupFrontendRoutes(r)
	})

	// Prometheus endpoint stays outside the middleware group
	if a.Metrics != nil && a.Metrics.Handler != nil {
		r.Handle("/metrics", a.Metrics.Handler)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommw.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.Logger, Version, BuildTime, a.dataFileCheck)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/version", healthHandler.Version)

		errorHandler := apierrors.NewErrorHandler(a.Logger, false)
		breadthHandler := handlers.NewBreadthHandler(a.BreadthService, a.Logger, errorHandler)
		r.Mount("/breadth", breadthHandler.Routes())
	})
}

// dataFileCheck reports whether the sentiment CSV is present on disk
func (a *Application) dataFileCheck() error {
	path := a.Config.GetDataFile()
	if !config.FileExists(path) {
		return fmt.Errorf("data file not found: %s", path)
	}
	return nil
}

// setupFrontendRoutes serves the embedded dashboard page
func (a *Application) setupFrontendRoutes(r chi.Router) {
	if a.FrontendFS == nil {
		return
	}

	fileServer := http.FileServer(http.FS(a.FrontendFS))
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		req.URL.Path = "/"
		fileServer.ServeHTTP(w, req)
	})
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		fileServer.ServeHTTP(w, req)
	})
}

// Start runs the HTTP server until the context is cancelled or a
// termination signal arrives, then shuts down gracefully.
func (a *Application) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.Logger.Info("http server listening",
			slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.Info("context cancelled, shutting down")
	}

	return a.Stop()
}

// Run starts the server and blocks until shutdown completes
func (a *Application) Run() error {
	return a.Start(context.Background())
}

// Stop gracefully shuts down the server and flushes metrics
func (a *Application) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(ctx); err != nil {
		a.Logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
		return err
	}

	if a.Metrics != nil {
		if err := a.Metrics.Shutdown(ctx); err != nil {
			a.Logger.Warn("metrics shutdown failed", slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogFile()
	a.Logger.Info("server stopped")
	return nil
}
