package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/newthinker/aurum/internal/backtest"
	"github.com/newthinker/aurum/internal/collector"
	"github.com/newthinker/aurum/internal/config"
	"github.com/newthinker/aurum/internal/core"
	"github.com/newthinker/aurum/internal/logger"
	"github.com/newthinker/aurum/internal/strategy"
)

// sourceFlags select the price series and strategy of a run.
type sourceFlags struct {
	csv      string
	source   string
	symbol   string
	strategy string
	timeout  time.Duration
}

func (f *sourceFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.csv, "csv", "", "read closes from a local date,close file instead of a collector")
	fs.StringVar(&f.source, "source", "", "price source: alphavantage or yahoo (default from config)")
	fs.StringVar(&f.symbol, "symbol", "", "symbol to simulate (default from config)")
	fs.StringVar(&f.strategy, "strategy", "", "strategy name (default from config)")
	fs.DurationVar(&f.timeout, "timeout", 2*time.Minute, "timeout for fetching history")
}

// apply overrides the config with the flags that were set.
func (f *sourceFlags) apply(cfg *config.Config) {
	if f.csv != "" {
		cfg.Backtest.CSVPath = f.csv
		cfg.Backtest.Source = "csv"
	} else if f.source != "" {
		cfg.Backtest.Source = f.source
	}
	if f.symbol != "" {
		cfg.Backtest.Symbol = f.symbol
	}
	if f.strategy != "" {
		cfg.Backtest.Strategy = f.strategy
	}
}

// session is everything a one-shot command needs to run.
type session struct {
	log      *zap.Logger
	cfg      *config.Config
	source   collector.Collector
	strategy strategy.Strategy
}

// prepare loads the config, applies overrides and resolves the price
// source and strategy.
func prepare(flags *sourceFlags, override func(*config.Config)) (*session, error) {
	log, err := logger.NewCLI(debug)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return nil, err
	}
	flags.apply(cfg)
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	sources, err := buildSources(cfg, log)
	if err != nil {
		return nil, err
	}
	src, err := sources.Resolve(cfg.Backtest.Source)
	if err != nil {
		return nil, err
	}

	strat, ok := buildStrategies(log).Get(cfg.Backtest.Strategy)
	if !ok {
		return nil, core.WrapError(core.ErrStrategyNotFound,
			fmt.Errorf("unknown strategy %q", cfg.Backtest.Strategy))
	}

	return &session{log: log, cfg: cfg, source: src, strategy: strat}, nil
}

// runContext returns a context cancelled on interrupt or after timeout.
func runContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

// printSummary writes the human readable report of one run.
func printSummary(out io.Writer, strategyName, symbol, source string, res *backtest.Result, recent int) error {
	fmt.Fprintln(out, "=== aurum backtest ===")
	fmt.Fprintf(out, "Strategy: %s\n", strategyName)
	fmt.Fprintf(out, "Symbol:   %s (%s)\n", symbol, source)
	fmt.Fprintln(out)

	tw := newTable(out)
	fmt.Fprintf(tw, "Initial balance\t%.2f\n", res.InitialBalance)
	fmt.Fprintf(tw, "Final balance\t%.2f\n", res.FinalBalance)
	fmt.Fprintf(tw, "Net profit\t%.2f\n", res.NetProfit)
	fmt.Fprintf(tw, "Trades\t%d (%d won, %d lost)\n", res.TotalTrades, res.WinningTrades, res.LosingTrades)
	fmt.Fprintf(tw, "Win rate\t%.2f%%\n", res.WinRate)
	fmt.Fprintf(tw, "Profit factor\t%.2f\n", res.ProfitFactor)
	fmt.Fprintf(tw, "Max drawdown\t%.2f%%\n", res.MaxDrawdown)
	if err := tw.Flush(); err != nil {
		return err
	}

	trades := res.Trades
	if len(trades) == 0 {
		return nil
	}
	if recent > 0 && len(trades) > recent {
		trades = trades[len(trades)-recent:]
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Last %d trades:\n", len(trades))
	tw = newTable(out)
	fmt.Fprintln(tw, "TYPE\tENTRY DATE\tENTRY\tEXIT DATE\tEXIT\tPNL\tBALANCE")
	for _, t := range trades {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%.2f\t%.2f\t%.2f\n",
			t.Type, t.EntryDate, t.EntryPrice, t.ExitDate, t.ExitPrice, t.PnL, t.Balance)
	}
	return tw.Flush()
}

// commandContext returns the command's context, which is nil when the
// command is run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
