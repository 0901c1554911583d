package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/aurum/internal/api"
	handler "github.com/newthinker/aurum/internal/api/handler/api"
	"github.com/newthinker/aurum/internal/api/job"
	"github.com/newthinker/aurum/internal/logger"
	"github.com/newthinker/aurum/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the aurum API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Initialize logger
	log := logger.Must(logger.New(debug))
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	sources, err := buildSources(cfg, log)
	if err != nil {
		return err
	}
	reports, err := buildReports(cfg)
	if err != nil {
		return err
	}

	ttl := time.Duration(cfg.Server.JobTTLHours) * time.Hour
	jobs := job.NewStore(cfg.Server.MaxJobs, ttl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	jobs.StartJanitor(ctx, time.Minute)

	deps := api.Dependencies{}
	opts := []handler.Option{handler.WithLogger(log)}
	if reports != nil {
		opts = append(opts, handler.WithReports(reports))
		deps.Reports = handler.NewReportsHandler(reports, log)
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.NewRegistry()
		opts = append(opts, handler.WithMetrics(deps.Metrics))
	}

	deps.Backtests = handler.NewBacktestHandler(jobs, sources, buildStrategies(log), handler.Defaults{
		Symbol:   cfg.Backtest.Symbol,
		Source:   cfg.Backtest.Source,
		Strategy: cfg.Backtest.Strategy,
		Config:   cfg.Backtest.RunConfig(),
	}, opts...)

	log.Info("starting aurum server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Strings("sources", sources.Names()),
		zap.Bool("archive", reports != nil),
		zap.Bool("metrics", cfg.Metrics.Enabled),
	)

	server, err := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		MetricsPath: cfg.Metrics.Path,
	}, deps, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down aurum server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
