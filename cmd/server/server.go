package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/axellelanca/shortlinkctl/cmd"
	"github.com/axellelanca/shortlinkctl/internal/api"
	"github.com/axellelanca/shortlinkctl/internal/models"
	"github.com/axellelanca/shortlinkctl/internal/repository"
	"github.com/axellelanca/shortlinkctl/internal/services"
	"github.com/axellelanca/shortlinkctl/internal/workers"
)

const shutdownTimeout = 5 * time.Second

// RunStubServerCmd starts a local implementation of the shortener API backed
// by SQLite, so the client commands can be used without the real service.
var RunStubServerCmd = &cobra.Command{
	Use:   "run-stub-server",
	Short: "Run a local URL shortener API for development",
	Long: `Opens (and migrates) the SQLite database, starts the click workers and
serves the REST API and the short code redirects on server.port until
interrupted. Point the client at it with --api-url http://localhost:<port>.`,
	Args: cobra.NoArgs,
	RunE: runStubServer,
}

func init() {
	cmd.RootCmd.AddCommand(RunStubServerCmd)
}

func runStubServer(c *cobra.Command, _ []string) error {
	cfg := cmd.Cfg
	logger := cmd.Logger

	db, err := repository.OpenDatabase(cfg.Database.Name)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	defer sqlDB.Close()

	linkRepo := repository.NewLinkRepository(db)
	clickRepo := repository.NewClickRepository(db)
	logger.Info("repositories initialised", zap.String("database", cfg.Database.Name))

	linkService := services.NewLinkService(linkRepo, clickRepo, cfg.Server.BaseURL, logger)
	analyticsService := services.NewAnalyticsService(linkRepo, clickRepo)

	clickEvents := make(chan models.ClickEvent, cfg.Analytics.BufferSize)
	workersDone := workers.StartClickWorkers(cfg.Analytics.WorkerCount, clickEvents, clickRepo, logger)
	logger.Info("click workers started",
		zap.Int("buffer", cfg.Analytics.BufferSize),
		zap.Int("workers", cfg.Analytics.WorkerCount))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger))
	api.SetupRoutes(router, api.Handlers{
		Links:     linkService,
		Analytics: analyticsService,
		Clicks:    clickEvents,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	g, ctx := errgroup.WithContext(c.Context())
	g.Go(func() error {
		logger.Info("stub server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down stub server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	// Handlers are gone, so nothing sends on clickEvents anymore.
	close(clickEvents)
	workersDone.Wait()
	logger.Info("stub server stopped")
	return err
}
