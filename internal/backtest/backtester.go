package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/aurum/internal/core"
	"github.com/newthinker/aurum/internal/indicator"
	"github.com/newthinker/aurum/internal/strategy"
)

// HistoryProvider supplies a daily close series, oldest first
type HistoryProvider interface {
	FetchHistory(ctx context.Context, symbol string) ([]core.PriceBar, error)
}

// Recorder receives run metrics
type Recorder interface {
	RecordBacktest(status string, duration float64)
	RecordRun(bars, trades int)
}

// Backtester runs a strategy over historical data
type Backtester struct {
	provider HistoryProvider
	strategy strategy.Strategy
	logger   *zap.Logger
	recorder Recorder
}

// Option configures a Backtester
type Option func(*Backtester)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(b *Backtester) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(rec Recorder) Option {
	return func(b *Backtester) {
		b.recorder = rec
	}
}

// New creates a Backtester. The provider may be nil when only Simulate is used.
func New(provider HistoryProvider, strat strategy.Strategy, opts ...Option) *Backtester {
	b := &Backtester{
		provider: provider,
		strategy: strat,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run fetches the history of symbol and simulates it
func (b *Backtester) Run(ctx context.Context, symbol string, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		b.record("error", 0)
		return nil, err
	}
	if b.provider == nil {
		return nil, core.WrapError(core.ErrConfigMissing, errors.New("no history provider configured"))
	}

	start := time.Now()
	bars, err := FetchHistory(ctx, b.provider, symbol)
	if err != nil {
		b.record("error", time.Since(start).Seconds())
		return nil, err
	}

	b.logger.Info("history loaded",
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)),
		zap.Stringer("from", bars[0].Date),
		zap.Stringer("to", bars[len(bars)-1].Date),
	)

	return b.simulate(bars, cfg, start)
}

// Simulate runs the strategy over bars already in memory
func (b *Backtester) Simulate(bars []core.PriceBar, cfg Config) (*Result, error) {
	return b.simulate(bars, cfg, time.Now())
}

func (b *Backtester) simulate(bars []core.PriceBar, cfg Config, start time.Time) (*Result, error) {
	b.logger.Info("backtest started",
		zap.String("strategy", b.strategy.Name()),
		zap.Int("bars", len(bars)),
		zap.Float64("initial_balance", cfg.InitialBalance),
		zap.Float64("risk_amount", cfg.RiskAmount),
	)

	result, err := simulate(bars, cfg, b.strategy, b.logger)
	duration := time.Since(start).Seconds()
	if err != nil {
		b.logger.Warn("backtest failed", zap.Error(err))
		b.record("error", duration)
		return nil, err
	}

	b.logger.Info("backtest completed",
		zap.Float64("final_balance", result.FinalBalance),
		zap.Int("trades", result.TotalTrades),
		zap.Float64("win_rate", result.WinRate),
		zap.Float64("max_drawdown", result.MaxDrawdown),
		zap.Float64("duration_s", duration),
	)
	b.record("success", duration)
	if b.recorder != nil {
		b.recorder.RecordRun(len(bars), result.TotalTrades)
	}
	return result, nil
}

func (b *Backtester) record(status string, duration float64) {
	if b.recorder != nil {
		b.recorder.RecordBacktest(status, duration)
	}
}

// FetchHistory loads the history of symbol. Provider failures come back as
// collector errors and an empty series as ErrNoData.
func FetchHistory(ctx context.Context, provider HistoryProvider, symbol string) ([]core.PriceBar, error) {
	bars, err := provider.FetchHistory(ctx, symbol)
	if err != nil {
		return nil, fetchError(ctx, err)
	}
	if len(bars) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no history for %s", symbol))
	}
	return bars, nil
}

// fetchError classifies a provider failure. Cancellation and deadline
// errors become timeouts; coded errors pass through.
func fetchError(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return core.WrapError(core.ErrCollectorTimeout, err)
	}
	var coded *core.Error
	if errors.As(err, &coded) {
		return err
	}
	return core.WrapError(core.ErrCollectorFailed, err)
}

// Simulate replays bars through strat and returns the run statistics. It is
// deterministic: the same inputs always give the same Result.
func Simulate(bars []core.PriceBar, cfg Config, strat strategy.Strategy) (*Result, error) {
	return simulate(bars, cfg, strat, zap.NewNop())
}

func simulate(bars []core.PriceBar, cfg Config, strat strategy.Strategy, logger *zap.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateBars(bars); err != nil {
		return nil, err
	}

	stream := indicator.NewStream()
	book := NewBook(cfg)
	tracker := NewTracker(cfg.InitialBalance)

	for i, bar := range bars {
		snap := stream.Push(bar.Close)
		if i < MinBars {
			continue
		}

		tracker.Observe(book.Balance())

		closed, opened := book.Apply(bar, strat.Evaluate(snap))
		if closed != nil {
			logger.Debug("position closed",
				zap.String("type", string(closed.Type)),
				zap.Stringer("date", closed.ExitDate),
				zap.Float64("price", closed.ExitPrice),
				zap.Float64("pnl", closed.PnL),
				zap.Float64("balance", closed.Balance),
			)
		}
		if opened != nil {
			logger.Debug("position opened",
				zap.String("type", string(opened.Type)),
				zap.Stringer("date", opened.EntryDate),
				zap.Float64("price", opened.EntryPrice),
				zap.Float64("units", opened.Units),
				zap.Float64("stop_loss", opened.StopLoss),
			)
		}
	}

	if pos, ok := book.Open(); ok {
		logger.Info("open position not closed by end of data",
			zap.String("state", string(book.State())),
			zap.Stringer("entry_date", pos.EntryDate),
			zap.Float64("entry_price", pos.EntryPrice),
			zap.Float64("unrealized_pnl", pos.Profit(bars[len(bars)-1].Close)),
		)
	}

	logger.Debug("replay finished",
		zap.Int("bars", len(bars)),
		zap.Float64("peak_balance", tracker.Peak()),
		zap.Float64("max_drawdown", tracker.MaxDrawdown()),
		zap.Float64("balance", book.Balance()),
	)

	return tracker.Result(book.Balance(), book.Trades()), nil
}

func validateBars(bars []core.PriceBar) error {
	if len(bars) < MinBars {
		return core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("got %d bars, need at least %d", len(bars), MinBars))
	}
	for i, bar := range bars {
		if !bar.IsValid() {
			return core.WrapError(core.ErrInvalidData,
				fmt.Errorf("bar %d (%s): close %v", i, bar.Date, bar.Close))
		}
	}
	return nil
}
