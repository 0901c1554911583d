package collector

import (
	"context"
	"time"

	"github.com/newthinker/aurum/internal/core"
)

// Config holds collector configuration
type Config struct {
	Enabled           bool
	APIKey            string
	BaseURL           string        // Overrides the provider endpoint; empty uses the default
	RequestsPerMinute int           // 0 disables client-side rate limiting
	Timeout           time.Duration // HTTP timeout; 0 uses the collector default
	Path              string        // Local file for file-backed collectors
	Extra             map[string]any
}

// HistoryProvider supplies the daily close series of a symbol, oldest first
type HistoryProvider interface {
	FetchHistory(ctx context.Context, symbol string) ([]core.PriceBar, error)
}

// Collector defines the interface for price history sources
type Collector interface {
	HistoryProvider

	// Metadata
	Name() string

	// Lifecycle
	Init(cfg Config) error
}

// ExtraString reads a string option from cfg.Extra
func (c Config) ExtraString(key, fallback string) string {
	if v, ok := c.Extra[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
