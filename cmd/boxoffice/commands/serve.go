package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cinemetric/boxoffice/internal/api"
	"github.com/cinemetric/boxoffice/internal/api/handlers"
	"github.com/cinemetric/boxoffice/internal/catalog"
	"github.com/cinemetric/boxoffice/internal/pipeline"
	"github.com/cinemetric/boxoffice/internal/scheduler"
	"github.com/cinemetric/boxoffice/internal/scheduler/jobs"
	"github.com/cinemetric/boxoffice/pkg/config"
	"github.com/cinemetric/boxoffice/pkg/httputil"
	"github.com/cinemetric/boxoffice/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Runs the dataset pipeline once, then serves the results over HTTP.

This command:
- Resolves and downloads the dataset from data.gouv.fr
- Normalizes and aggregates it into ranking and decade views
- Starts the HTTP API server
- Optionally schedules periodic dataset refreshes

Endpoints:
  GET  /health                         - Health check
  GET  /api/movies                     - All-time ranking
  GET  /api/movies/decades             - Decade summaries
  GET  /api/movies/decades/{start}     - One decade ranking
  GET  /api/insights/years             - Releases per year
  GET  /api/insights/decades           - Movie counts per decade
  GET  /api/insights/nationalities     - Admission share by nationality
  GET  /api/insights/words             - Title word frequencies
  GET  /api/status                     - Pipeline status
  POST /api/refresh                    - Trigger a dataset refresh

Example:
  go run ./cmd/boxoffice serve
  go run ./cmd/boxoffice serve --port 8080`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Boxoffice API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if servePort != "" {
		cfg.Port = servePort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port":    cfg.Port,
		"env":     cfg.Env,
		"dataset": cfg.Dataset.Slug,
	}).Info("Initializing API server")

	// 3. Create HTTP client and catalog client
	httpClient := httputil.New(cfg, log)
	catalogClient := catalog.NewClient(httpClient, cfg, log)

	// 4. Create pipeline and snapshot store
	pipe := pipeline.New(catalogClient, log)
	store := pipeline.NewStore()

	// 5. Initial dataset load. The server has nothing to serve without it,
	// so a failed first run is fatal.
	snap, err := pipe.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("initial dataset load: %w", err)
	}
	store.Swap(snap)

	log.WithFields(map[string]interface{}{
		"rows":   len(snap.Rows),
		"movies": len(snap.AllTime),
	}).Info("Initial dataset loaded")

	// 6. Create handlers and router
	moviesHandler := handlers.NewMoviesHandler(store, log)
	insightsHandler := handlers.NewInsightsHandler(store, log)
	pipelineHandler := handlers.NewPipelineHandler(pipe, store, log)
	router := api.NewRouter(moviesHandler, insightsHandler, pipelineHandler, log)

	// 7. Create server
	server := api.New(cfg, log, router)

	// 8. Start refresh scheduler if enabled
	var sched *scheduler.Scheduler
	if cfg.Refresh.Enabled {
		sched = scheduler.New(log)
		refreshJob := jobs.NewRefreshJob(pipe, store, cfg, log)
		if err := sched.AddJob(refreshJob); err != nil {
			return fmt.Errorf("register refresh job: %w", err)
		}
		sched.Start()
		log.WithField("schedule", cfg.Refresh.Schedule).Info("Refresh scheduler started")
	}

	// 9. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
