package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/emirkutlugun77/amm-pool-sim/internal/config"
	"github.com/emirkutlugun77/amm-pool-sim/internal/engine"
	"github.com/emirkutlugun77/amm-pool-sim/internal/model"
	"github.com/emirkutlugun77/amm-pool-sim/internal/storage"
)

func main() {
	root := &cobra.Command{
		Use:          "ammsim",
		Short:        "Constant-product AMM simulator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("state", "./data/state.json", "state snapshot path")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Reset the state file to a fresh registry",
		RunE:  runInit,
	}
	root.AddCommand(initCmd)

	createCoinCmd := &cobra.Command{
		Use:   "create-coin",
		Short: "Register a new coin",
		RunE:  runCreateCoin,
	}
	createCoinCmd.Flags().String("name", "", "display name")
	createCoinCmd.Flags().String("symbol", "", "ticker symbol (max 6 chars)")
	createCoinCmd.Flags().String("color", "#26a69a", "display color")
	createCoinCmd.Flags().Float64("supply", 0, "total supply")
	root.AddCommand(createCoinCmd)

	deleteCoinCmd := &cobra.Command{
		Use:   "delete-coin",
		Short: "Delete an unreferenced coin",
		RunE:  runDeleteCoin,
	}
	deleteCoinCmd.Flags().String("symbol", "", "ticker symbol")
	deleteCoinCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	root.AddCommand(deleteCoinCmd)

	createPoolCmd := &cobra.Command{
		Use:   "create-pool",
		Short: "Create a pool over two registered coins",
		RunE:  runCreatePool,
	}
	createPoolCmd.Flags().String("coin-a", "", "side A symbol")
	createPoolCmd.Flags().String("coin-b", "", "side B symbol")
	createPoolCmd.Flags().Float64("reserve-a", 0, "side A seed reserve")
	createPoolCmd.Flags().Float64("reserve-b", 0, "side B seed reserve")
	root.AddCommand(createPoolCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Preview a swap without executing it",
		RunE:  runQuote,
	}
	quoteCmd.Flags().String("pool", "", "pool id")
	quoteCmd.Flags().Float64("amount-in", 0, "input amount")
	quoteCmd.Flags().Float64("amount-out", 0, "target output amount (inverse quote)")
	quoteCmd.Flags().String("side", "A", "input side (A or B)")
	root.AddCommand(quoteCmd)

	swapCmd := &cobra.Command{
		Use:   "swap",
		Short: "Execute a swap against a pool",
		RunE:  runSwap,
	}
	swapCmd.Flags().String("pool", "", "pool id")
	swapCmd.Flags().Float64("amount-in", 0, "input amount")
	swapCmd.Flags().String("side", "A", "input side (A or B)")
	root.AddCommand(swapCmd)

	undoCmd := &cobra.Command{
		Use:   "undo",
		Short: "Roll back the most recent swap",
		RunE:  runUndo,
	}
	undoCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	root.AddCommand(undoCmd)

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a JSONL order stream through the engine",
		RunE:  runReplay,
	}
	replayCmd.Flags().String("in", "", "input orders JSONL")
	replayCmd.Flags().String("window", "5m", "candle bucket width mirrored with --pg-dsn")
	replayCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	replayCmd.Flags().Int("save-every", 100, "orders between persisted snapshots")
	replayCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	replayCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	root.AddCommand(replayCmd)

	candlesCmd := &cobra.Command{
		Use:   "candles",
		Short: "Aggregate a pool's price history into OHLC candles",
		RunE:  runCandles,
	}
	candlesCmd.Flags().String("pool", "", "pool id")
	candlesCmd.Flags().String("window", "5m", "bucket width (1m, 5m, 15m, 1h, 4h, 1d)")
	candlesCmd.Flags().String("out", "", "output JSONL path (stdout when empty)")
	candlesCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	root.AddCommand(candlesCmd)

	metricsCmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show derived market metrics for a coin",
		RunE:  runMetrics,
	}
	metricsCmd.Flags().String("symbol", "", "coin symbol")
	root.AddCommand(metricsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// loadEngine opens the state snapshot and wraps it in an engine. A missing
// state file starts from the default registry.
func loadEngine(ctx context.Context, cfg config.Config, logger *zap.Logger) (*engine.Engine, *storage.FileSnapshotStore, error) {
	store := storage.NewFileSnapshotStore(cfg.StatePath)
	snap, ok, err := store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		snap = model.NewSnapshot()
	}
	return engine.NewEngine(snap, logger), store, nil
}

func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
