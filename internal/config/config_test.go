package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/aurum/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestLoad_FromFile(t *testing.T) {
	cfgPath := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9090

backtest:
  initial_balance: 25000
  risk_amount: 250
  source: csv
  csv_path: "data/xauusd.csv"

collectors:
  alphavantage:
    enabled: true
    api_key: "demo"
    requests_per_minute: 75
    timeout: 30s
    extra:
      outputsize: full

archive:
  enabled: true
  type: localfs
  path: "/tmp/aurum/archive"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Backtest.InitialBalance != 25000 || cfg.Backtest.RiskAmount != 250 {
		t.Errorf("unexpected backtest amounts: %+v", cfg.Backtest)
	}
	if cfg.Backtest.Source != "csv" || cfg.Backtest.CSVPath != "data/xauusd.csv" {
		t.Errorf("unexpected source: %+v", cfg.Backtest)
	}

	av := cfg.Collectors["alphavantage"]
	if av.APIKey != "demo" || av.RequestsPerMinute != 75 {
		t.Errorf("unexpected alphavantage config: %+v", av)
	}
	if av.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", av.Timeout)
	}
	if got := av.ToCollector().ExtraString("outputsize", "compact"); got != "full" {
		t.Errorf("expected outputsize full, got %s", got)
	}

	if cfg.Archive.Type != "localfs" || !cfg.Archive.Enabled {
		t.Errorf("unexpected archive config: %+v", cfg.Archive)
	}
}

func TestLoad_KeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 8081\n"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected default host, got %s", cfg.Server.Host)
	}
	if cfg.Backtest.Symbol != "XAUUSD" {
		t.Errorf("expected default symbol XAUUSD, got %s", cfg.Backtest.Symbol)
	}
	if cfg.Backtest.InitialBalance != 10000 || cfg.Backtest.RiskAmount != 100 {
		t.Errorf("expected default amounts, got %+v", cfg.Backtest)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("expected default metrics path, got %s", cfg.Metrics.Path)
	}
	if _, ok := cfg.Collectors["yahoo"]; !ok {
		t.Error("expected default yahoo collector")
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("AURUM_TEST_AV_KEY", "secret-key")

	cfg, err := Load(writeConfig(t, `
collectors:
  alphavantage:
    api_key: "${AURUM_TEST_AV_KEY}"
`))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if got := cfg.Collectors["alphavantage"].APIKey; got != "secret-key" {
		t.Errorf("expected expanded api key, got %q", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Backtest.Source != "alphavantage" {
		t.Errorf("expected default source alphavantage, got %s", cfg.Backtest.Source)
	}
	if cfg.Collectors["alphavantage"].RequestsPerMinute != 5 {
		t.Errorf("expected 5 requests per minute, got %d", cfg.Collectors["alphavantage"].RequestsPerMinute)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestBacktestConfig_RunConfig(t *testing.T) {
	rc := BacktestConfig{InitialBalance: 5000, RiskAmount: 50}.RunConfig()
	if rc.InitialBalance != 5000 || rc.RiskAmount != 50 {
		t.Errorf("unexpected run config: %+v", rc)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return *Defaults()
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid config", func(c *Config) {}, nil},
		{"invalid port - zero", func(c *Config) { c.Server.Port = 0 }, core.ErrConfigInvalid},
		{"invalid port - too high", func(c *Config) { c.Server.Port = 70000 }, core.ErrConfigInvalid},
		{"negative max jobs", func(c *Config) { c.Server.MaxJobs = -1 }, core.ErrConfigInvalid},
		{"zero balance", func(c *Config) { c.Backtest.InitialBalance = 0 }, core.ErrConfigInvalid},
		{"negative risk", func(c *Config) { c.Backtest.RiskAmount = -10 }, core.ErrConfigInvalid},
		{"negative workers", func(c *Config) { c.Backtest.Workers = -2 }, core.ErrConfigInvalid},
		{"csv without path", func(c *Config) { c.Backtest.Source = "csv" }, core.ErrConfigMissing},
		{"s3 without bucket", func(c *Config) {
			c.Archive.Enabled = true
			c.Archive.Type = "s3"
		}, core.ErrConfigMissing},
		{"localfs without path", func(c *Config) {
			c.Archive.Enabled = true
			c.Archive.Path = ""
		}, core.ErrConfigMissing},
		{"unknown archive type", func(c *Config) {
			c.Archive.Enabled = true
			c.Archive.Type = "ftp"
		}, core.ErrConfigInvalid},
		{"disabled archive not checked", func(c *Config) { c.Archive.Type = "ftp" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
