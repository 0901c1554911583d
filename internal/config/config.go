package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newthinker/aurum/internal/backtest"
	"github.com/newthinker/aurum/internal/collector"
	"github.com/newthinker/aurum/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig               `mapstructure:"server"`
	Backtest   BacktestConfig             `mapstructure:"backtest"`
	Collectors map[string]CollectorConfig `mapstructure:"collectors"`
	Archive    ArchiveConfig              `mapstructure:"archive"`
	Metrics    MetricsConfig              `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	JobTTLHours int    `mapstructure:"job_ttl_hours"`
	MaxJobs     int    `mapstructure:"max_jobs"`
}

// BacktestConfig holds the defaults of a run
type BacktestConfig struct {
	InitialBalance float64 `mapstructure:"initial_balance"`
	RiskAmount     float64 `mapstructure:"risk_amount"`
	Symbol         string  `mapstructure:"symbol"`
	Source         string  `mapstructure:"source"` // collector name: alphavantage, yahoo or csv
	CSVPath        string  `mapstructure:"csv_path"`
	Strategy       string  `mapstructure:"strategy"`
	Workers        int     `mapstructure:"workers"` // sweep concurrency, 0 = NumCPU
}

// RunConfig returns the simulator parameters
func (b BacktestConfig) RunConfig() backtest.Config {
	return backtest.Config{
		InitialBalance: b.InitialBalance,
		RiskAmount:     b.RiskAmount,
	}
}

type CollectorConfig struct {
	Enabled           bool           `mapstructure:"enabled"`
	APIKey            string         `mapstructure:"api_key"`
	BaseURL           string         `mapstructure:"base_url"`
	RequestsPerMinute int            `mapstructure:"requests_per_minute"`
	Timeout           time.Duration  `mapstructure:"timeout"`
	Extra             map[string]any `mapstructure:"extra"`
}

// ToCollector converts to the collector plugin configuration
func (c CollectorConfig) ToCollector() collector.Config {
	return collector.Config{
		Enabled:           c.Enabled,
		APIKey:            c.APIKey,
		BaseURL:           c.BaseURL,
		RequestsPerMinute: c.RequestsPerMinute,
		Timeout:           c.Timeout,
		Extra:             c.Extra,
	}
}

// ArchiveConfig controls where completed reports are written
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file. Keys missing from the file keep
// their Defaults value.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.job_ttl_hours", d.Server.JobTTLHours)
	v.SetDefault("server.max_jobs", d.Server.MaxJobs)

	v.SetDefault("backtest.initial_balance", d.Backtest.InitialBalance)
	v.SetDefault("backtest.risk_amount", d.Backtest.RiskAmount)
	v.SetDefault("backtest.symbol", d.Backtest.Symbol)
	v.SetDefault("backtest.source", d.Backtest.Source)
	v.SetDefault("backtest.csv_path", d.Backtest.CSVPath)
	v.SetDefault("backtest.strategy", d.Backtest.Strategy)
	v.SetDefault("backtest.workers", d.Backtest.Workers)

	for name, c := range d.Collectors {
		prefix := "collectors." + name + "."
		v.SetDefault(prefix+"enabled", c.Enabled)
		v.SetDefault(prefix+"api_key", c.APIKey)
		v.SetDefault(prefix+"base_url", c.BaseURL)
		v.SetDefault(prefix+"requests_per_minute", c.RequestsPerMinute)
		v.SetDefault(prefix+"timeout", c.Timeout)
	}

	v.SetDefault("archive.enabled", d.Archive.Enabled)
	v.SetDefault("archive.type", d.Archive.Type)
	v.SetDefault("archive.path", d.Archive.Path)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			JobTTLHours: 1,
			MaxJobs:     100,
		},
		Backtest: BacktestConfig{
			InitialBalance: backtest.DefaultInitialBalance,
			RiskAmount:     backtest.DefaultRiskAmount,
			Symbol:         "XAUUSD",
			Source:         "alphavantage",
			Strategy:       "rsi_macd",
		},
		Collectors: map[string]CollectorConfig{
			"alphavantage": {
				Enabled:           true,
				APIKey:            os.Getenv("ALPHA_VANTAGE_API_KEY"),
				RequestsPerMinute: 5,
				Timeout:           15 * time.Second,
			},
			"yahoo": {
				Enabled: true,
				Timeout: 10 * time.Second,
			},
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "data/archive",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.JobTTLHours < 0 || c.Server.MaxJobs < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("job_ttl_hours and max_jobs cannot be negative"))
	}

	// Backtest validation
	if err := c.Backtest.RunConfig().Validate(); err != nil {
		return err
	}
	if c.Backtest.Workers < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("workers cannot be negative, got %d", c.Backtest.Workers))
	}
	if c.Backtest.Source == "csv" && c.Backtest.CSVPath == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("csv_path required when source is csv"))
	}

	// Archive validation - only checked when enabled
	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive path required when type is localfs"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("s3 bucket required when archive type is s3"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown archive type %q", c.Archive.Type))
		}
	}

	return nil
}
