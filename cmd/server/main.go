package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var flagConfig string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shareit-server",
		Short:         "ShareIt core REST service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default: $CONFIG_PATH or configs/config.yaml)")
	root.AddCommand(newMigrateCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	var steps int

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, closer, err := loadConfigAndLogger("migrate")
			if err != nil {
				return err
			}
			defer closeQuietly(closer)

			// Open migrates on connect.
			db, err := database.Open(cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()
			logger.Info().Str("driver", db.Driver()).Msg("schema is up to date")
			return nil
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive")
			}
			cfg, logger, closer, err := loadConfigAndLogger("migrate")
			if err != nil {
				return err
			}
			defer closeQuietly(closer)

			db, err := database.Open(cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.MigrateDown(migrationTable(cfg), steps); err != nil {
				return err
			}
			logger.Info().Int("steps", steps).Msg("migrations rolled back")
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	migrateCmd.AddCommand(up, down)
	return migrateCmd
}

func run(ctx context.Context) error {
	cfg, logger, closer, err := loadConfigAndLogger("server")
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("init database")
		return err
	}
	defer db.Close()

	eventBus := events.NewEventBus(logging.Component(logger, "events"))
	events.RegisterObservers(eventBus, logger)

	serviceLogger := logging.Component(logger, "service")
	services := api.Services{
		Users: service.NewUserService(db, eventBus, serviceLogger),
		Items: service.NewItemService(service.ItemServiceDeps{
			Items:    db,
			Users:    db,
			Bookings: db,
			Comments: db,
			Requests: db,
			EventBus: eventBus,
		}, serviceLogger),
		Bookings: service.NewBookingService(db, db, db, eventBus, nil, serviceLogger),
		Requests: service.NewRequestService(db, db, db, nil, serviceLogger),
		Store:    db,
	}
	httpServer := api.NewHTTPServer(cfg.Server, services, logging.Component(logger, "http"))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go metrics.Serve(ctx, cfg.Monitoring.PrometheusPort, logger)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()
	logger.Info().Int("port", cfg.Server.Port).Str("driver", db.Driver()).Msg("ShareIt server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("ShareIt server stopped")
	return nil
}

func loadConfigAndLogger(component string) (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := flagConfig
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logging.Component(baseLogger, component), closer, nil
}

func migrationTable(cfg *config.Config) string {
	if cfg.Database.Driver == config.DriverPostgres {
		return cfg.Database.Postgres.MigrationTable
	}
	return ""
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
