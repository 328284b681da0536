package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emirkutlugun77/amm-pool-sim/internal/candle"
	"github.com/emirkutlugun77/amm-pool-sim/internal/storage"
	"github.com/emirkutlugun77/amm-pool-sim/internal/storage/postgres"
)

func runCandles(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	poolFlag, _ := cmd.Flags().GetString("pool")
	poolID, err := uuid.Parse(poolFlag)
	if err != nil {
		return fmt.Errorf("invalid pool id %q: %w", poolFlag, err)
	}
	width, err := candle.ParseWidth(cfg.Window)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	eng, _, err := loadEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	pool, ok := eng.Snapshot().FindPool(poolID)
	if !ok {
		return fmt.Errorf("pool %s not found", poolID)
	}

	candles, err := candle.Aggregate(pool.PriceHistory, width)
	if err != nil {
		return err
	}

	logger.Info("candles aggregated",
		zap.String("pool", poolID.String()),
		zap.String("window", cfg.Window),
		zap.Int("points", len(pool.PriceHistory)),
		zap.Int("candles", len(candles)),
	)

	if cfg.PGDSN != "" {
		db, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer db.Close()
		if err := db.UpsertCandles(ctx, poolID, width.Milliseconds(), candles); err != nil {
			return fmt.Errorf("upsert candles: %w", err)
		}
	}

	outFlag, _ := cmd.Flags().GetString("out")
	if outFlag != "" {
		sink := storage.NewJsonlCandleSink(outFlag)
		return sink.PutCandleBatch(candles)
	}
	return printJSON(candles)
}
