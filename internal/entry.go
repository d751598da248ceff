// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/starford/cardsmith/internal/analysis"
	"github.com/starford/cardsmith/internal/api"
	"github.com/starford/cardsmith/internal/cardservice"
	"github.com/starford/cardsmith/internal/export"
	"github.com/starford/cardsmith/internal/index"
	"github.com/starford/cardsmith/internal/mcpserver"
	"github.com/starford/cardsmith/internal/sse"
	"github.com/starford/cardsmith/internal/storage"
)

// core holds the components shared by the HTTP and MCP entry points.
type core struct {
	cfg    *Config
	logger *slog.Logger
	store  *storage.FS
	db     *index.DB
}

func (c *core) Close() {
	if err := c.db.Close(); err != nil {
		c.logger.Error("close index", slog.String("error", err.Error()))
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger builds the JSON logger. With a log file configured, records are
// also written to a size-rotated file.
func newLogger(cfg *Config, out io.Writer) *slog.Logger {
	if cfg.App.LogFile != "" {
		out = io.MultiWriter(out, &lumberjack.Logger{
			Filename:   cfg.App.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

func openCore(app *application) (*core, error) {
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(cfg, app.logOutput)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure library directory exists.
	if err := os.MkdirAll(cfg.Storage.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	// Initialize SQLite index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	db.SetLogger(logger)

	// Run initial sync.
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &core{cfg: cfg, logger: logger, store: store, db: db}, nil
}

func newExporter(cfg ExportConfig, logger *slog.Logger) *export.Exporter {
	settings := export.Settings{
		Width:      cfg.Width,
		Height:     cfg.Height,
		PixelRatio: cfg.PixelRatio,
		Background: cfg.Background,
	}
	if cfg.FontPath != "" {
		data, err := os.ReadFile(cfg.FontPath)
		if err != nil {
			logger.Warn("export font unreadable, using built-in face",
				slog.String("path", cfg.FontPath), slog.String("error", err.Error()))
		} else {
			settings.FontData = data
		}
	}
	return export.NewExporter(nil, settings)
}

func newNameExtractor(cfg AnalysisConfig, logger *slog.Logger) analysis.NameExtractor {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		logger.Info("Name extraction disabled", slog.String("api_key_env", cfg.APIKeyEnv))
	}
	return analysis.New(analysis.Options{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		APIKey:  key,
		Timeout: cfg.Timeout,
	}, logger)
}

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := openCore(app)
	if err != nil {
		return err
	}
	defer c.Close()

	cfg, logger := c.cfg, c.logger

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build card service and API router.
	svc := cardservice.NewService(c.store, c.db,
		cardservice.WithPublisher(broker),
		cardservice.WithLogger(logger),
	)
	handler := api.NewHandler(svc, newExporter(cfg.Export, logger), newNameExtractor(cfg.Analysis, logger))
	apiRouter := api.NewRouter(handler, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := c.db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		if err := index.Watch(gCtx, c.db, c.store, cfg.Storage.Path, logger, broker.PublishCardEvent); err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the card library to an MCP client over stdin/stdout.
// Logs must not go to stdout in this mode; see WithLogOutput.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := openCore(app)
	if err != nil {
		return err
	}
	defer c.Close()

	svc := cardservice.NewService(c.store, c.db, cardservice.WithLogger(c.logger))
	c.logger.Info("MCP server starting on stdio")
	if err := mcpserver.New(svc).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
