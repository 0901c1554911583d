// internal/storage/archive/reports_test.go
package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/aurum/internal/backtest"
	"github.com/newthinker/aurum/internal/core"
)

func TestReportPath(t *testing.T) {
	created := time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "backtests/2024/03/05/abc.json", ReportPath("abc", created))

	// Partitioned by the UTC day
	east := time.FixedZone("UTC+8", 8*3600)
	local := time.Date(2024, 3, 6, 2, 0, 0, 0, east)
	assert.Equal(t, "backtests/2024/03/05/abc.json", ReportPath("abc", local))
}

func sampleReport(id string, created time.Time) Report {
	return Report{
		ID:        id,
		CreatedAt: created,
		Symbol:    "XAUUSD",
		Source:    "alphavantage",
		Strategy:  "rsi_macd",
		Config:    backtest.DefaultConfig(),
		Result: &backtest.Result{
			InitialBalance: 10000,
			FinalBalance:   10100,
			NetProfit:      100,
			TotalTrades:    1,
			WinningTrades:  1,
			WinRate:        100,
			Trades:         []backtest.Trade{},
		},
	}
}

func TestReports_SaveLoad(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	reports := NewReports(store)
	ctx := context.Background()

	created := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	p, err := reports.Save(ctx, sampleReport("run-1", created))
	require.NoError(t, err)
	assert.Equal(t, "backtests/2024/03/05/run-1.json", p)

	got, err := reports.Load(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, "XAUUSD", got.Symbol)
	assert.Equal(t, backtest.DefaultConfig(), got.Config)
	require.NotNil(t, got.Result)
	assert.Equal(t, 10100.0, got.Result.FinalBalance)
	assert.Equal(t, 1, got.Result.TotalTrades)
}

func TestReports_List(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	reports := NewReports(store)
	ctx := context.Background()

	day1 := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	for _, r := range []Report{
		sampleReport("b", day1),
		sampleReport("a", day1),
		sampleReport("c", day2),
	} {
		_, err := reports.Save(ctx, r)
		require.NoError(t, err)
	}

	paths, err := reports.List(ctx, day1)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"backtests/2024/03/05/a.json",
		"backtests/2024/03/05/b.json",
	}, paths)

	all, err := reports.List(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := reports.List(ctx, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReports_Errors(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	reports := NewReports(store)
	ctx := context.Background()

	_, err = reports.Save(ctx, sampleReport("", time.Now()))
	assert.True(t, errors.Is(err, core.ErrArchiveFailed))

	_, err = reports.Load(ctx, "backtests/2024/01/01/missing.json")
	assert.True(t, errors.Is(err, core.ErrReportNotFound))
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Write(ctx, "other/secret.json", []byte("{}")))
	for _, p := range []string{"other/secret.json", "backtests/../other/secret.json", "backtests/2024/01/01/run.txt"} {
		_, err = reports.Load(ctx, p)
		assert.True(t, errors.Is(err, core.ErrReportNotFound), p)
	}

	require.NoError(t, store.Write(ctx, "backtests/broken.json", []byte("{not json")))
	_, err = reports.Load(ctx, "backtests/broken.json")
	assert.True(t, errors.Is(err, core.ErrArchiveFailed))
}
