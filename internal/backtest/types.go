package backtest

import (
	"fmt"
	"math"

	"github.com/newthinker/aurum/internal/core"
)

const (
	// MinBars is the shortest series a run accepts; it is also the index of
	// the first evaluated bar.
	MinBars = 30

	// MaxTradeLog caps the trades returned in a Result.
	MaxTradeLog = 100

	// Defaults applied when a value is not supplied.
	DefaultInitialBalance = 10000.0
	DefaultRiskAmount     = 100.0
)

// Side is the direction of an open position
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// State is the position state machine state
type State string

const (
	StateFlat  State = "FLAT"
	StateLong  State = "LONG"
	StateShort State = "SHORT"
)

// Config holds the parameters of one run
type Config struct {
	InitialBalance float64 `json:"initialBalance" mapstructure:"initial_balance"`
	RiskAmount     float64 `json:"riskAmount" mapstructure:"risk_amount"`
}

// DefaultConfig returns the default run configuration
func DefaultConfig() Config {
	return Config{
		InitialBalance: DefaultInitialBalance,
		RiskAmount:     DefaultRiskAmount,
	}
}

// Validate checks that both amounts are positive and finite.
func (c Config) Validate() error {
	if !validAmount(c.InitialBalance) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initialBalance must be positive, got %v", c.InitialBalance))
	}
	if !validAmount(c.RiskAmount) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("riskAmount must be positive, got %v", c.RiskAmount))
	}
	return nil
}

func validAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// Position is an open trade
type Position struct {
	Type       Side      `json:"type"`
	EntryDate  core.Date `json:"entryDate"`
	EntryPrice float64   `json:"entryPrice"`
	Units      float64   `json:"units"`
	StopLoss   float64   `json:"stopLoss"`
}

// Profit returns the profit or loss of closing the position at price
func (p Position) Profit(price float64) float64 {
	if p.Type == SideShort {
		return (p.EntryPrice - price) * p.Units
	}
	return (price - p.EntryPrice) * p.Units
}

// Trade is a closed position
type Trade struct {
	Position
	ExitDate  core.Date `json:"exitDate"`
	ExitPrice float64   `json:"exitPrice"`
	PnL       float64   `json:"pnl"`
	Balance   float64   `json:"balance"` // Account balance after this trade
}

// IsWin returns true if the trade was profitable
func (t Trade) IsWin() bool {
	return t.PnL > 0
}

// Result holds the complete backtest output
type Result struct {
	InitialBalance float64 `json:"initialBalance"`
	FinalBalance   float64 `json:"finalBalance"`
	NetProfit      float64 `json:"netProfit"`
	ProfitFactor   float64 `json:"profitFactor"`
	TotalTrades    int     `json:"totalTrades"`
	WinningTrades  int     `json:"winningTrades"`
	LosingTrades   int     `json:"losingTrades"`
	WinRate        float64 `json:"winRate"`     // Percentage of profitable trades
	MaxDrawdown    float64 `json:"maxDrawdown"` // Largest peak-to-trough decline, percent
	Trades         []Trade `json:"trades"`      // Most recent MaxTradeLog trades
}
