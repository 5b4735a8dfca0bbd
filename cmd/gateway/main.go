package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/config"
	"shareit/internal/gateway"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/ratelimit"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var flagConfig string

func main() {
	root := &cobra.Command{
		Use:           "shareit-gateway",
		Short:         "Validating front door for the ShareIt service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}
	root.Flags().StringVar(&flagConfig, "config", "", "config file path (default: $CONFIG_PATH or configs/config.yaml)")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	client := gateway.NewClient(cfg.Gateway.ServerURL, cfg.Server.UserHeader, cfg.Gateway.Timeout)
	server := gateway.NewServer(
		cfg.Gateway,
		cfg.Server.UserHeader,
		client,
		initLimiter(cfg, redisClient, logger),
		gateway.NewValidator(nil),
		logging.Component(logger, "http"),
	)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go metrics.Serve(ctx, cfg.Monitoring.GatewayPrometheusPort, logger)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	logger.Info().Int("port", cfg.Gateway.Port).Str("upstream", cfg.Gateway.ServerURL).Msg("ShareIt gateway started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("gateway stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("gateway shutdown")
	}

	logger.Info().Msg("ShareIt gateway stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
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
	return cfg, logging.Component(baseLogger, "gateway"), closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if !cfg.Gateway.RateLimit.Enabled || cfg.Redis.Address == "" {
		return nil
	}

	client := ratelimit.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := ratelimit.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, rate limiting in memory only")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

// initLimiter prefers the shared Redis window and falls back to per-process buckets.
func initLimiter(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) ratelimit.Limiter {
	if !cfg.Gateway.RateLimit.Enabled {
		return nil
	}

	budget := ratelimit.Budget{Requests: cfg.Gateway.RateLimit.Requests, Window: cfg.Gateway.RateLimit.Window}
	memory := ratelimit.NewMemoryStore(budget)
	if redisClient == nil {
		return memory
	}
	return ratelimit.NewFailover(ratelimit.NewRedisStore(redisClient, budget), memory, logging.Component(logger, "ratelimit"))
}
