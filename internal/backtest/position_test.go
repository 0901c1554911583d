package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/aurum/internal/core"
)

func bar(day int, price float64) core.PriceBar {
	return core.PriceBar{Date: core.NewDate(2024, 1, 1).AddDays(day), Close: price}
}

func TestBook_StartsFlat(t *testing.T) {
	book := NewBook(DefaultConfig())

	assert.Equal(t, StateFlat, book.State())
	assert.Equal(t, 10000.0, book.Balance())
	_, ok := book.Open()
	assert.False(t, ok)
	assert.Empty(t, book.Trades())
}

func TestBook_HoldDoesNothing(t *testing.T) {
	book := NewBook(DefaultConfig())

	closed, opened := book.Apply(bar(0, 2000), core.ActionHold)

	assert.Nil(t, closed)
	assert.Nil(t, opened)
	assert.Equal(t, StateFlat, book.State())
}

func TestBook_OpenLong(t *testing.T) {
	book := NewBook(DefaultConfig())

	closed, opened := book.Apply(bar(0, 2000), core.ActionBuy)

	assert.Nil(t, closed)
	require.NotNil(t, opened)
	assert.Equal(t, SideLong, opened.Type)
	assert.Equal(t, 2000.0, opened.EntryPrice)
	assert.InDelta(t, 1960, opened.StopLoss, 1e-9)
	assert.InDelta(t, 2.5, opened.Units, 1e-9)
	assert.Equal(t, StateLong, book.State())
	assert.Equal(t, 10000.0, book.Balance())
}

func TestBook_OpenShort(t *testing.T) {
	book := NewBook(DefaultConfig())

	_, opened := book.Apply(bar(0, 2000), core.ActionSell)

	require.NotNil(t, opened)
	assert.Equal(t, SideShort, opened.Type)
	assert.InDelta(t, 2040, opened.StopLoss, 1e-9)
	assert.InDelta(t, 2.5, opened.Units, 1e-9)
	assert.Equal(t, StateShort, book.State())
}

func TestBook_SameDirectionIgnored(t *testing.T) {
	book := NewBook(DefaultConfig())
	book.Apply(bar(0, 2000), core.ActionBuy)

	closed, opened := book.Apply(bar(1, 2100), core.ActionBuy)

	assert.Nil(t, closed)
	assert.Nil(t, opened)
	pos, ok := book.Open()
	require.True(t, ok)
	assert.Equal(t, 2000.0, pos.EntryPrice)
}

func TestBook_ExitThenReverse(t *testing.T) {
	book := NewBook(DefaultConfig())
	book.Apply(bar(0, 2000), core.ActionBuy)

	closed, opened := book.Apply(bar(5, 2040), core.ActionSell)

	require.NotNil(t, closed)
	assert.Equal(t, SideLong, closed.Type)
	assert.Equal(t, 2040.0, closed.ExitPrice)
	assert.Equal(t, "2024-01-06", closed.ExitDate.String())
	assert.InDelta(t, 100, closed.PnL, 1e-9)
	assert.InDelta(t, 10100, closed.Balance, 1e-9)

	// the same SELL opens a short on the now-flat book
	require.NotNil(t, opened)
	assert.Equal(t, SideShort, opened.Type)
	assert.Equal(t, 2040.0, opened.EntryPrice)
	assert.Equal(t, StateShort, book.State())

	closed, _ = book.Apply(bar(6, 2060.4), core.ActionBuy)
	require.NotNil(t, closed)
	assert.InDelta(t, -50, closed.PnL, 1e-6)
	assert.InDelta(t, 10050, book.Balance(), 1e-6)
	assert.Len(t, book.Trades(), 2)
}

func TestBook_LossAtStopEqualsRisk(t *testing.T) {
	cfg := Config{InitialBalance: 5000, RiskAmount: 250}
	book := NewBook(cfg)

	_, opened := book.Apply(bar(0, 1850), core.ActionBuy)
	require.NotNil(t, opened)

	closed, _ := book.Apply(bar(1, opened.StopLoss), core.ActionSell)
	require.NotNil(t, closed)
	assert.InDelta(t, -250, closed.PnL, 1e-6)
	assert.InDelta(t, 4750, book.Balance(), 1e-6)
}
