package core

import "math"

// Action represents a trading signal action
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// IsEntry reports whether the action can open a position.
func (a Action) IsEntry() bool {
	return a == ActionBuy || a == ActionSell
}

// PriceBar is one daily close of the simulated instrument.
type PriceBar struct {
	Date  Date    `json:"date"`
	Close float64 `json:"close"`
}

// IsValid checks that the close is a positive finite number
func (b PriceBar) IsValid() bool {
	return b.Close > 0 && !math.IsInf(b.Close, 0) && !math.IsNaN(b.Close)
}

