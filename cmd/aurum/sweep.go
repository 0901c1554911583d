package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/aurum/internal/backtest"
	"github.com/newthinker/aurum/internal/core"
)

var (
	sweepFlags           sourceFlags
	sweepRiskAmounts     []float64
	sweepInitialBalances []float64
	sweepWorkers         int
	sweepJSON            bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the strategy under several balance and risk settings",
	Long: `Fetch the series once, then simulate every combination of
--initial-balances and --risk-amounts in parallel.`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	sweepFlags.register(sweepCmd.Flags())
	sweepCmd.Flags().Float64SliceVar(&sweepRiskAmounts, "risk-amounts", []float64{50, 100, 200}, "risk amounts to try")
	sweepCmd.Flags().Float64SliceVar(&sweepInitialBalances, "initial-balances", []float64{backtest.DefaultInitialBalance}, "initial balances to try")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "parallel simulations (default from config, 0 = all CPUs)")
	sweepCmd.Flags().BoolVar(&sweepJSON, "json", false, "print the results as JSON")

	rootCmd.AddCommand(sweepCmd)
}

// sweepConfigs returns every balance and risk combination, balances outermost.
func sweepConfigs(balances, risks []float64) []backtest.Config {
	configs := make([]backtest.Config, 0, len(balances)*len(risks))
	for _, b := range balances {
		for _, r := range risks {
			configs = append(configs, backtest.Config{InitialBalance: b, RiskAmount: r})
		}
	}
	return configs
}

func runSweep(cmd *cobra.Command, args []string) error {
	s, err := prepare(&sweepFlags, nil)
	if err != nil {
		return err
	}
	defer s.log.Sync()

	configs := sweepConfigs(sweepInitialBalances, sweepRiskAmounts)
	if len(configs) == 0 {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("no balance and risk combinations given"))
	}
	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	workers := s.cfg.Backtest.Workers
	if cmd.Flags().Changed("workers") {
		workers = sweepWorkers
	}

	ctx, cancel := runContext(commandContext(cmd), sweepFlags.timeout)
	defer cancel()

	bars, err := backtest.FetchHistory(ctx, s.source, s.cfg.Backtest.Symbol)
	if err != nil {
		return err
	}
	s.log.Info("history loaded", zap.String("symbol", s.cfg.Backtest.Symbol), zap.Int("bars", len(bars)))

	results, err := backtest.Sweep(ctx, bars, configs, s.strategy, workers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if sweepJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return printSweep(out, results)
}

// printSweep writes one row per configuration.
func printSweep(out io.Writer, results []backtest.SweepResult) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "BALANCE\tRISK\tFINAL\tNET\tTRADES\tWIN RATE\tPROFIT FACTOR\tMAX DD")
	for _, r := range results {
		res := r.Result
		fmt.Fprintf(tw, "%.2f\t%.2f\t%.2f\t%.2f\t%d\t%.2f%%\t%.2f\t%.2f%%\n",
			r.Config.InitialBalance, r.Config.RiskAmount,
			res.FinalBalance, res.NetProfit, res.TotalTrades,
			res.WinRate, res.ProfitFactor, res.MaxDrawdown)
	}
	return tw.Flush()
}
