package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emirkutlugun77/amm-pool-sim/internal/candle"
	"github.com/emirkutlugun77/amm-pool-sim/internal/replay"
	"github.com/emirkutlugun77/amm-pool-sim/internal/storage/postgres"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	width, err := candle.ParseWidth(cfg.Window)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	eng, snapshots, err := loadEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var db *postgres.Store
	if cfg.PGDSN != "" {
		db, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer db.Close()
	}

	var state replay.StateStore
	if cfg.CheckpointEnabled {
		if db != nil {
			state = &replay.DBStateStore{Store: db, Name: cfg.In}
		} else {
			state = &replay.FileStateStore{Path: cfg.Checkpoint}
		}
	}

	runner := replay.NewRunner(replay.RunConfig{
		StateStore: state,
		SaveEvery:  cfg.SaveEvery,
		Window:     width,
	}, eng, snapshots, db, logger)

	logger.Info("replay start",
		zap.String("in", cfg.In),
		zap.String("state", cfg.StatePath),
		zap.String("window", cfg.Window),
		zap.Int("save_every", cfg.SaveEvery),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
	)

	return runner.Run(ctx, cfg.In)
}
