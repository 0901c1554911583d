package backtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/aurum/internal/core"
	"github.com/newthinker/aurum/internal/strategy/rsi_macd"
)

func TestSweep_MatchesSequentialRuns(t *testing.T) {
	bars := barsOf(randomWalk(11, 400))
	configs := []Config{
		{InitialBalance: 10000, RiskAmount: 50},
		{InitialBalance: 10000, RiskAmount: 100},
		{InitialBalance: 10000, RiskAmount: 200},
		{InitialBalance: 50000, RiskAmount: 500},
		{InitialBalance: 1000, RiskAmount: 10},
	}

	results, err := Sweep(context.Background(), bars, configs, rsi_macd.New(), 3)
	require.NoError(t, err)
	require.Len(t, results, len(configs))

	for i, cfg := range configs {
		want, err := Simulate(bars, cfg, rsi_macd.New())
		require.NoError(t, err)
		assert.Equal(t, cfg, results[i].Config)
		assert.Equal(t, want, results[i].Result, "config %d", i)
	}
}

func TestSweep_InvalidConfigFails(t *testing.T) {
	bars := barsOf(vShape)
	configs := []Config{
		DefaultConfig(),
		{InitialBalance: 10000, RiskAmount: 0},
	}

	_, err := Sweep(context.Background(), bars, configs, rsi_macd.New(), 2)
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))
}

func TestSweep_InsufficientData(t *testing.T) {
	_, err := Sweep(context.Background(), barsOf(constant(2000, 5)), []Config{DefaultConfig()}, rsi_macd.New(), 0)
	assert.True(t, errors.Is(err, core.ErrInsufficientData))
}

func TestSweep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sweep(ctx, barsOf(vShape), []Config{DefaultConfig()}, rsi_macd.New(), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweep_Empty(t *testing.T) {
	results, err := Sweep(context.Background(), barsOf(vShape), nil, rsi_macd.New(), 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}
