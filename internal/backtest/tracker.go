package backtest

// Tracker follows the balance bar by bar and keeps the running peak and the
// maximum drawdown. It is fed the balance at the start of each bar, before
// that bar's exit is applied.
type Tracker struct {
	initial     float64
	peak        float64
	maxDrawdown float64
}

// NewTracker creates a tracker whose peak starts at the initial balance
func NewTracker(initialBalance float64) *Tracker {
	return &Tracker{
		initial: initialBalance,
		peak:    initialBalance,
	}
}

// Observe records a balance and returns its drawdown from the peak, in percent.
func (t *Tracker) Observe(balance float64) float64 {
	if balance > t.peak {
		t.peak = balance
	}
	drawdown := (t.peak - balance) / t.peak * 100
	if drawdown > t.maxDrawdown {
		t.maxDrawdown = drawdown
	}
	return drawdown
}

// Peak returns the highest balance observed
func (t *Tracker) Peak() float64 {
	return t.peak
}

// MaxDrawdown returns the largest drawdown observed, in percent
func (t *Tracker) MaxDrawdown() float64 {
	return t.maxDrawdown
}

// Result assembles the run result from the final balance and the full trade
// log. Only the most recent MaxTradeLog trades are returned; the statistics
// cover all of them.
func (t *Tracker) Result(finalBalance float64, trades []Trade) *Result {
	stats := CalculateStats(trades)

	return &Result{
		InitialBalance: t.initial,
		FinalBalance:   finalBalance,
		NetProfit:      finalBalance - t.initial,
		ProfitFactor:   stats.ProfitFactor,
		TotalTrades:    stats.TotalTrades,
		WinningTrades:  stats.WinningTrades,
		LosingTrades:   stats.LosingTrades,
		WinRate:        stats.WinRate,
		MaxDrawdown:    t.maxDrawdown,
		Trades:         recentTrades(trades, MaxTradeLog),
	}
}

// recentTrades copies the last n trades. It never returns nil so the trade
// log always encodes as a list.
func recentTrades(trades []Trade, n int) []Trade {
	start := max(0, len(trades)-n)
	out := make([]Trade, len(trades)-start)
	copy(out, trades[start:])
	return out
}
