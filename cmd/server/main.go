package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/planche-electronique/cepo/internal/api"
	"github.com/planche-electronique/cepo/internal/common"
	"github.com/planche-electronique/cepo/internal/config"
	"github.com/planche-electronique/cepo/internal/db"
	"github.com/planche-electronique/cepo/internal/db/repositories"
	"github.com/planche-electronique/cepo/internal/jobs"
	"github.com/planche-electronique/cepo/internal/logging"
	"github.com/planche-electronique/cepo/internal/metrics"
	"github.com/planche-electronique/cepo/internal/providers"
	"github.com/planche-electronique/cepo/internal/routes"
	"github.com/planche-electronique/cepo/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "cepo",
		Short:         "Gliding club flight log server synchronised with the OGN flightbook",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("no configuration at %s, run `cepo example-config` to write one", configPath)
			}
			return runServer(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath(), "configuration file")

	example := &cobra.Command{
		Use:   "example-config",
		Short: "Write the example configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteExample(configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Example configuration written to %s\n", configPath)
			return nil
		},
	}
	root.AddCommand(example)
	return root
}

func runServer(parent context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logging.Init(cfg.AppEnv, cfg.LogLevel); err != nil {
		return err
	}
	defer logging.Close()

	logging.Info("Cepo starting up",
		"environment", cfg.AppEnv,
		"config", configPath,
		"airfields", cfg.AirfieldCodes(),
		"timestamp", time.Now().Format(time.RFC3339),
	)

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	store, err := db.NewDayStore(cfg.DataDir, metricsReg)
	if err != nil {
		logging.Fatal("Data root unavailable", "path", cfg.DataDir, "error", err.Error())
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var archiveRepo *repositories.FlightArchiveRepo
	var archiver services.Archiver
	if cfg.Archive.Enabled {
		gdb, err := db.OpenArchive(cfg.Archive.Driver, cfg.Archive.DSN)
		if err != nil {
			return err
		}
		archiveRepo = repositories.NewFlightArchiveRepo(gdb)
		if err := archiveRepo.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate flight archive: %w", err)
		}
		archiver = archiveRepo
	}

	feed := providers.NewOGNProvider(providers.OGNProviderConfig{
		BaseURL:           cfg.Feed.BaseURL,
		Timeout:           cfg.Feed.Timeout,
		RequestsPerSecond: cfg.Feed.RequestsPerSecond,
		Registrations:     cfg.Registrations(),
		Cache:             common.NewLogbookCache(cfg.Feed.CacheTTL, 2*cfg.Feed.CacheTTL),
		Metrics:           metricsReg,
	})

	service, err := services.NewFlightLogService(services.FlightLogServiceConfig{
		Airfields: cfg.AirfieldCodes(),
		Store:     store,
		Feed:      feed,
		Archive:   archiver,
		Journal:   common.NewUpdatesJournal(0, nil, metricsReg),
		Metrics:   metricsReg,
	})
	if err != nil {
		return err
	}

	deps := &api.Dependencies{
		Config:  cfg,
		Service: service,
		Store:   store,
		Archive: archiveRepo,
		Usage:   common.NewUsageControl(cfg.MaxRequestsPerClient, metricsReg),
		Metrics: metricsReg,
		UpSince: time.Now(),
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           routes.RegisterRoutes(deps, prometheus.DefaultGatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range jobs.InitializeJobs(cfg, service, metricsReg) {
		g.Go(func() error {
			job.RunScheduled(gctx, cfg.SyncInterval)
			return nil
		})
	}
	g.Go(func() error {
		logging.Info("Server starting", "port", cfg.Port, "data_dir", cfg.DataDir)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := service.Flush(flushCtx); err != nil {
		logging.Error("Could not flush flight logs", "error", err.Error())
	}
	logging.Info("Server stopped")
	return runErr
}
