package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/newthinker/aurum/internal/core"
)

// mockCollector for testing
type mockCollector struct {
	name string
}

func (m *mockCollector) Name() string          { return m.name }
func (m *mockCollector) Init(cfg Config) error { return nil }
func (m *mockCollector) FetchHistory(ctx context.Context, symbol string) ([]core.PriceBar, error) {
	return nil, nil
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	mock := &mockCollector{name: "mock"}
	r.Register(mock)

	c, ok := r.Get("mock")
	if !ok {
		t.Fatal("expected to find registered collector")
	}

	if c.Name() != "mock" {
		t.Errorf("expected name 'mock', got '%s'", c.Name())
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockCollector{name: "yahoo"})
	r.Register(&mockCollector{name: "alphavantage"})
	r.Register(&mockCollector{name: "csv"})

	names := r.Names()
	want := []string{"alphavantage", "csv", "yahoo"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockCollector{name: "csv"})

	if _, err := r.Resolve("csv"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := r.Resolve("bloomberg")
	if !errors.Is(err, core.ErrCollectorNotFound) {
		t.Errorf("expected ErrCollectorNotFound, got %v", err)
	}
}

func TestConfig_ExtraString(t *testing.T) {
	cfg := Config{Extra: map[string]any{"outputsize": "full", "count": 3}}

	if got := cfg.ExtraString("outputsize", "compact"); got != "full" {
		t.Errorf("expected full, got %s", got)
	}
	if got := cfg.ExtraString("count", "x"); got != "x" {
		t.Errorf("non-string value should fall back, got %s", got)
	}
	if got := (Config{}).ExtraString("range", "10y"); got != "10y" {
		t.Errorf("missing key should fall back, got %s", got)
	}
}
