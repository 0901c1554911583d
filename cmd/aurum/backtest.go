package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/aurum/internal/backtest"
	"github.com/newthinker/aurum/internal/config"
	"github.com/newthinker/aurum/internal/storage/archive"
)

var (
	backtestFlags          sourceFlags
	backtestInitialBalance float64
	backtestRiskAmount     float64
	backtestJSON           bool
	backtestRecent         int
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the strategy over historical closes",
	Long: `Fetch the daily closes of a symbol (or read them from --csv), replay
them through the strategy and print the performance statistics.`,
	Args: cobra.NoArgs,
	RunE: runBacktest,
}

func init() {
	backtestFlags.register(backtestCmd.Flags())
	backtestCmd.Flags().Float64Var(&backtestInitialBalance, "initial-balance", backtest.DefaultInitialBalance, "starting account balance")
	backtestCmd.Flags().Float64Var(&backtestRiskAmount, "risk-amount", backtest.DefaultRiskAmount, "amount risked per trade")
	backtestCmd.Flags().BoolVar(&backtestJSON, "json", false, "print the result as JSON")
	backtestCmd.Flags().IntVar(&backtestRecent, "trades", 10, "number of recent trades to list")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	s, err := prepare(&backtestFlags, func(cfg *config.Config) {
		if cmd.Flags().Changed("initial-balance") {
			cfg.Backtest.InitialBalance = backtestInitialBalance
		}
		if cmd.Flags().Changed("risk-amount") {
			cfg.Backtest.RiskAmount = backtestRiskAmount
		}
	})
	if err != nil {
		return err
	}
	defer s.log.Sync()

	ctx, cancel := runContext(commandContext(cmd), backtestFlags.timeout)
	defer cancel()

	runCfg := s.cfg.Backtest.RunConfig()
	bt := backtest.New(s.source, s.strategy, backtest.WithLogger(s.log))
	result, err := bt.Run(ctx, s.cfg.Backtest.Symbol, runCfg)
	if err != nil {
		return err
	}

	if err := archiveRun(ctx, s, runCfg, result); err != nil {
		s.log.Warn("archiving report failed", zap.Error(err))
	}

	out := cmd.OutOrStdout()
	if backtestJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printSummary(out, s.strategy.Name(), s.cfg.Backtest.Symbol, s.cfg.Backtest.Source, result, backtestRecent)
}

// archiveRun saves the result when the archive is enabled.
func archiveRun(ctx context.Context, s *session, runCfg backtest.Config, result *backtest.Result) error {
	reports, err := buildReports(s.cfg)
	if err != nil || reports == nil {
		return err
	}

	path, err := reports.Save(ctx, archive.Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Symbol:    s.cfg.Backtest.Symbol,
		Source:    s.cfg.Backtest.Source,
		Strategy:  s.strategy.Name(),
		Config:    runCfg,
		Result:    result,
	})
	if err != nil {
		return err
	}
	s.log.Info("report archived", zap.String("path", path))
	return nil
}
