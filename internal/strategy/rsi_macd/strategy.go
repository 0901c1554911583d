package rsi_macd

import (
	"fmt"

	"github.com/newthinker/aurum/internal/core"
	"github.com/newthinker/aurum/internal/indicator"
)

// Name is the registry name of the strategy.
const Name = "rsi_macd"

// Fixed thresholds.
const (
	Oversold   = 30.0
	Overbought = 70.0
	MinBars    = 30
)

// Strategy buys oversold dips whose momentum has turned up and sells
// overbought rallies whose momentum has turned down:
//
//	BUY  iff RSI < 30 and MACD histogram > 0
//	SELL iff RSI > 70 and MACD histogram < 0
//	HOLD otherwise
//
// Undefined readings never satisfy a comparison, so they resolve to HOLD.
type Strategy struct{}

// New creates the RSI/MACD strategy
func New() *Strategy {
	return &Strategy{}
}

func (s *Strategy) Name() string {
	return Name
}

func (s *Strategy) Description() string {
	return fmt.Sprintf("RSI(%d) %.0f/%.0f with MACD(%d,%d,%d) histogram confirmation",
		indicator.RSIPeriod, Oversold, Overbought,
		indicator.MACDFast, indicator.MACDSlow, indicator.MACDSignal)
}

func (s *Strategy) Evaluate(snap indicator.Snapshot) core.Action {
	if snap.Bars < MinBars {
		return core.ActionHold
	}

	switch {
	case snap.RSI.Below(Oversold) && snap.Histogram.Above(0):
		return core.ActionBuy
	case snap.RSI.Above(Overbought) && snap.Histogram.Below(0):
		return core.ActionSell
	default:
		return core.ActionHold
	}
}
