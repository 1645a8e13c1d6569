package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/woorden/internal/adapter/cache"
	"github.com/eslsoft/woorden/internal/adapter/httpapi"
	adapterrepo "github.com/eslsoft/woorden/internal/adapter/repository"
	"github.com/eslsoft/woorden/internal/catalog"
	"github.com/eslsoft/woorden/internal/infrastructure/config"
	"github.com/eslsoft/woorden/internal/usecase"
)

// Server represents the application server
type Server struct {
	config     *config.Config
	httpServer *http.Server
	scheduler  *gocron.Scheduler
	logger     *logrus.Logger
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logrus.Logger, pool *pgxpool.Pool) (*Server, error) {
	words, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load word catalog: %w", err)
	}
	logger.Infof("Loaded %d words from %s", len(words), cfg.Catalog.Path)

	remote := adapterrepo.NewProgressRepository(pool)
	local := cache.NewFileCache(cfg.Cache.Path, logger)

	progressUC := usecase.NewProgressUsecase(remote, local, words, logger)
	syncUC := usecase.NewSyncUsecase(remote, local, words, logger)

	router := httpapi.NewRouter(httpapi.NewHandler(syncUC, progressUC, logger))
	handler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-User-ID"},
	}).Handler(RequestLogger(router))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler: handler,
	}

	scheduler := gocron.NewScheduler(time.UTC)
	interval := cfg.Sync.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if _, err := scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := progressUC.FlushPending(ctx); err != nil {
			logger.WithError(err).Warn("background progress flush incomplete")
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule background flush: %w", err)
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		scheduler:  scheduler,
		logger:     logger,
	}, nil
}

// StartHTTP starts the HTTP server and the background flush schedule
func (s *Server) StartHTTP() error {
	s.scheduler.StartAsync()

	s.logger.Infof("HTTP server starting on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	s.scheduler.Stop()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Errorf("Failed to shutdown HTTP server: %v", err)
	}

	s.logger.Info("Server shutdown complete")
	return nil
}
