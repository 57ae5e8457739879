package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seedcounter/internal/config"
	"seedcounter/internal/logger"
	"seedcounter/internal/render"
	"seedcounter/internal/repository/sqlite"
	"seedcounter/internal/route"
	"seedcounter/internal/service"
	"seedcounter/internal/service/ai"
	"seedcounter/internal/service/counting"
	"seedcounter/internal/service/storage"
	"seedcounter/internal/service/websocket"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	config  *config.Config
	logger  *logger.Logger
	db      *sqlite.DB
	store   *storage.ResultStore
	hub     *websocket.HubService
	manager *service.Manager
}

// NewApp loads configuration and builds every service. Detection models are
// loaded once per worker here, so a missing model fails startup.
func NewApp() (*App, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	style, err := render.DefaultStyle().WithColors(cfg.SeedlingColor, cfg.EmptyCellColor)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("invalid box color: %w", err)
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		log.Close()
		return nil, err
	}

	store, err := storage.NewResultStore(cfg, log, sqlite.NewResultRepository(db), sqlite.NewDetectionRepository(db))
	if err != nil {
		db.Close()
		log.Close()
		return nil, err
	}

	detectors := make([]service.Detectors, 0, cfg.ProcessingWorkers)
	for i := 0; i < cfg.ProcessingWorkers; i++ {
		models, err := ai.LoadModels(cfg, log) // each worker gets its own networks
		if err != nil {
			for _, d := range detectors {
				d.Close()
			}
			db.Close()
			log.Close()
			return nil, fmt.Errorf("failed to load detection models: %w", err)
		}
		detectors = append(detectors, models)
	}

	engine := counting.NewEngine(cfg.IoUThreshold, render.NewRenderer(style), log)
	hub := websocket.NewHubService(log)

	return &App{
		config:  cfg,
		logger:  log,
		db:      db,
		store:   store,
		hub:     hub,
		manager: service.NewManager(detectors, engine, store, hub, log),
	}, nil
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts everything down.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background services
	go a.hub.Run(ctx)
	go a.store.RunJanitor(ctx, a.config.UploadMaxAge)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           route.SetupRoutes(a.manager, a.store, a.hub, a.config, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.Info("Seedling counter listening on http://localhost:%d", a.config.Port)
	a.logger.Info("Detector backend: %s, workers: %d", a.config.DetectorBackend, a.config.ProcessingWorkers)
	a.logger.Info("Results: %s, database: %s", a.config.ResultsDirectory, a.config.DatabasePath)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	case <-ctx.Done():
		a.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Error during server shutdown: %v", err)
		}
	}

	a.Close()
	return runErr
}

// Close stops the workers and releases the database and log files.
func (a *App) Close() {
	a.manager.Stop()
	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database: %v", err)
	}
	a.logger.Close()
}
