package backtest

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/newthinker/aurum/internal/core"
	"github.com/newthinker/aurum/internal/strategy"
)

// SweepResult pairs a configuration with its run result
type SweepResult struct {
	Config Config  `json:"config"`
	Result *Result `json:"result"`
}

// Sweep simulates one series under each configuration, running up to
// workers simulations at once. Results keep the order of configs. The first
// failing configuration cancels the rest and its error is returned.
func Sweep(ctx context.Context, bars []core.PriceBar, configs []Config, strat strategy.Strategy, workers int) ([]SweepResult, error) {
	if err := validateBars(bars); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]SweepResult, len(configs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, cfg := range configs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Simulate(bars, cfg, strat)
			if err != nil {
				return err
			}
			results[i] = SweepResult{Config: cfg, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
