package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/newthinker/aurum/internal/collector"
	"github.com/newthinker/aurum/internal/collector/alphavantage"
	"github.com/newthinker/aurum/internal/collector/csvfile"
	"github.com/newthinker/aurum/internal/collector/yahoo"
	"github.com/newthinker/aurum/internal/config"
	"github.com/newthinker/aurum/internal/storage/archive"
	"github.com/newthinker/aurum/internal/strategy"
	"github.com/newthinker/aurum/internal/strategy/rsi_macd"
)

// loadConfig reads --config when given, falling back to the defaults.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile == "" {
		log.Debug("no config file specified, using defaults")
		return config.Defaults(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// buildSources registers every enabled price collector.
func buildSources(cfg *config.Config, log *zap.Logger) (*collector.Registry, error) {
	registry := collector.NewRegistry()

	plugins := []collector.Collector{alphavantage.New(), yahoo.New()}
	for _, c := range plugins {
		cc, ok := cfg.Collectors[c.Name()]
		if !ok || !cc.Enabled {
			log.Debug("collector disabled", zap.String("collector", c.Name()))
			continue
		}
		if err := c.Init(cc.ToCollector()); err != nil {
			return nil, fmt.Errorf("initializing %s: %w", c.Name(), err)
		}
		registry.Register(c)
	}

	if cfg.Backtest.CSVPath != "" {
		registry.Register(csvfile.New(cfg.Backtest.CSVPath))
	}

	log.Debug("price sources ready", zap.Strings("sources", registry.Names()))
	return registry, nil
}

// buildStrategies registers the available strategies.
func buildStrategies(log *zap.Logger) *strategy.Engine {
	engine := strategy.NewEngine(log)
	engine.Register(rsi_macd.New())
	return engine
}

// buildReports opens the report archive, or returns nil when it is disabled.
func buildReports(cfg *config.Config) (*archive.Reports, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	store, err := archive.New(archive.Config{
		Type: cfg.Archive.Type,
		Path: cfg.Archive.Path,
		S3: archive.S3Config{
			Bucket:    cfg.Archive.S3.Bucket,
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
			Prefix:    cfg.Archive.S3.Prefix,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	return archive.NewReports(store), nil
}
