package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emirkutlugun77/amm-pool-sim/internal/config"
	"github.com/emirkutlugun77/amm-pool-sim/internal/model"
	"github.com/emirkutlugun77/amm-pool-sim/internal/storage/postgres"
)

func printJSON(value interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func runInit(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	eng, store, err := loadEngine(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	eng.Reset()
	if err := store.Save(cmd.Context(), eng.Snapshot()); err != nil {
		return err
	}

	logger.Info("state initialized", zap.String("state", cfg.StatePath))
	return nil
}

func runCreateCoin(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	name, _ := cmd.Flags().GetString("name")
	symbol, _ := cmd.Flags().GetString("symbol")
	color, _ := cmd.Flags().GetString("color")
	supply, _ := cmd.Flags().GetFloat64("supply")

	eng, store, err := loadEngine(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	coin, err := eng.CreateCoin(name, symbol, color, supply)
	if err != nil {
		return err
	}
	if err := store.Save(cmd.Context(), eng.Snapshot()); err != nil {
		return err
	}
	return printJSON(coin)
}

func runDeleteCoin(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	symbol, _ := cmd.Flags().GetString("symbol")

	eng, store, err := loadEngine(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	coin, ok := eng.Snapshot().FindCoinBySymbol(symbol)
	if !ok {
		return fmt.Errorf("coin %q not found", symbol)
	}
	pruned, err := eng.DeleteCoin(coin.ID)
	if err != nil {
		return err
	}
	if err := store.Save(cmd.Context(), eng.Snapshot()); err != nil {
		return err
	}

	ids := make([]uuid.UUID, len(pruned))
	for i, tx := range pruned {
		ids[i] = tx.ID
	}
	return mirrorDeleteTxs(cmd.Context(), cfg, ids)
}

func runCreatePool(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	symbolA, _ := cmd.Flags().GetString("coin-a")
	symbolB, _ := cmd.Flags().GetString("coin-b")
	reserveA, _ := cmd.Flags().GetFloat64("reserve-a")
	reserveB, _ := cmd.Flags().GetFloat64("reserve-b")

	eng, store, err := loadEngine(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	snap := eng.Snapshot()
	coinA, ok := snap.FindCoinBySymbol(symbolA)
	if !ok {
		return fmt.Errorf("coin %q not found", symbolA)
	}
	coinB, ok := snap.FindCoinBySymbol(symbolB)
	if !ok {
		return fmt.Errorf("coin %q not found", symbolB)
	}

	pool, err := eng.CreatePool(coinA.ID, coinB.ID, reserveA, reserveB)
	if err != nil {
		return err
	}
	if err := store.Save(cmd.Context(), eng.Snapshot()); err != nil {
		return err
	}
	return printJSON(pool)
}

func runSwap(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	poolID, side, err := poolArgs(cmd)
	if err != nil {
		return err
	}
	amountIn, _ := cmd.Flags().GetFloat64("amount-in")

	eng, store, err := loadEngine(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	_, tx, err := eng.ExecuteSwap(poolID, amountIn, side)
	if err != nil {
		return err
	}
	if err := store.Save(cmd.Context(), eng.Snapshot()); err != nil {
		return err
	}
	return printJSON(tx)
}

func runUndo(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	eng, store, err := loadEngine(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	tx, err := eng.UndoLast()
	if err != nil {
		return err
	}
	if err := store.Save(cmd.Context(), eng.Snapshot()); err != nil {
		return err
	}
	if err := mirrorDeleteTxs(cmd.Context(), cfg, []uuid.UUID{tx.ID}); err != nil {
		return err
	}
	return printJSON(tx)
}

// mirrorDeleteTxs drops ledger rows from the Postgres mirror when a DSN is
// configured, so undone or pruned transactions do not linger there.
func mirrorDeleteTxs(ctx context.Context, cfg config.Config, ids []uuid.UUID) error {
	if cfg.PGDSN == "" || len(ids) == 0 {
		return nil
	}
	db, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()
	return db.DeleteTransactions(ctx, ids)
}

func poolArgs(cmd *cobra.Command) (uuid.UUID, model.Side, error) {
	poolFlag, _ := cmd.Flags().GetString("pool")
	poolID, err := uuid.Parse(poolFlag)
	if err != nil {
		return uuid.UUID{}, "", fmt.Errorf("invalid pool id %q: %w", poolFlag, err)
	}

	sideFlag, _ := cmd.Flags().GetString("side")
	side := model.Side(sideFlag)
	if side != model.SideA && side != model.SideB {
		return uuid.UUID{}, "", fmt.Errorf("invalid side %q: must be A or B", sideFlag)
	}
	return poolID, side, nil
}
