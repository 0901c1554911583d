package backtest

import (
	"math"

	"github.com/newthinker/aurum/internal/core"
)

// Stop-loss multipliers: a fixed 2% stop distance from the entry price.
const (
	longStopFactor  = 0.98
	shortStopFactor = 1.02
)

// Book is the position state machine of a single run. It holds at most one
// open position and the realized balance, and records every closed position
// as a Trade.
type Book struct {
	riskAmount float64
	balance    float64
	open       *Position
	trades     []Trade
}

// NewBook creates a flat book holding the initial balance
func NewBook(cfg Config) *Book {
	return &Book{
		riskAmount: cfg.RiskAmount,
		balance:    cfg.InitialBalance,
	}
}

// State returns FLAT, LONG or SHORT
func (b *Book) State() State {
	if b.open == nil {
		return StateFlat
	}
	if b.open.Type == SideShort {
		return StateShort
	}
	return StateLong
}

// Balance returns the realized balance
func (b *Book) Balance() float64 {
	return b.balance
}

// Open returns the open position, if any
func (b *Book) Open() (Position, bool) {
	if b.open == nil {
		return Position{}, false
	}
	return *b.open, true
}

// Trades returns the full trade log, oldest first
func (b *Book) Trades() []Trade {
	return b.trades
}

// Apply runs one bar through the state machine. An open position is closed
// first when the action opposes it; then, if the book is flat, a BUY or SELL
// opens a new position at the bar's close. Either return value may be nil.
func (b *Book) Apply(bar core.PriceBar, action core.Action) (closed *Trade, opened *Position) {
	price := bar.Close

	if b.open != nil && opposes(b.open.Type, action) {
		pnl := b.open.Profit(price)
		b.balance += pnl
		trade := Trade{
			Position:  *b.open,
			ExitDate:  bar.Date,
			ExitPrice: price,
			PnL:       pnl,
			Balance:   b.balance,
		}
		b.trades = append(b.trades, trade)
		b.open = nil
		closed = &trade
	}

	if b.open == nil && action.IsEntry() {
		pos := b.entry(bar, action)
		b.open = &pos
		opened = &pos
	}

	return closed, opened
}

// entry sizes a new position so that hitting the stop loses riskAmount.
func (b *Book) entry(bar core.PriceBar, action core.Action) Position {
	price := bar.Close
	side, stop := SideLong, price*longStopFactor
	if action == core.ActionSell {
		side, stop = SideShort, price*shortStopFactor
	}

	return Position{
		Type:       side,
		EntryDate:  bar.Date,
		EntryPrice: price,
		Units:      b.riskAmount / math.Abs(price-stop),
		StopLoss:   stop,
	}
}

func opposes(side Side, action core.Action) bool {
	return (side == SideLong && action == core.ActionSell) ||
		(side == SideShort && action == core.ActionBuy)
}
