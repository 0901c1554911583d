package backtest

import "math"

// Stats holds aggregate trade statistics
type Stats struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64 // Percentage of profitable trades
	GrossProfit   float64 // Sum of positive pnl
	GrossLoss     float64 // Sum of |pnl| over negative pnl
	ProfitFactor  float64 // GrossProfit / GrossLoss, 0 when there is no loss
}

// CalculateStats computes performance statistics from trades.
// Break-even trades count as losing but add nothing to GrossLoss.
func CalculateStats(trades []Trade) Stats {
	if len(trades) == 0 {
		return Stats{}
	}

	var winning int
	var grossProfit, grossLoss float64

	for _, t := range trades {
		if t.IsWin() {
			winning++
			grossProfit += t.PnL
		}
		if t.PnL < 0 {
			grossLoss += math.Abs(t.PnL)
		}
	}

	var profitFactor float64
	if grossLoss > 0 {
		profitFactor = grossProfit / grossLoss
	}

	return Stats{
		TotalTrades:   len(trades),
		WinningTrades: winning,
		LosingTrades:  len(trades) - winning,
		WinRate:       float64(winning) / float64(len(trades)) * 100,
		GrossProfit:   grossProfit,
		GrossLoss:     grossLoss,
		ProfitFactor:  profitFactor,
	}
}
