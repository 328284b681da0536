// Package replay drives the engine from a JSONL stream of swap orders, so
// recorded sessions can be re-applied deterministically. Progress is
// checkpointed by order count; re-running with the same checkpoint skips
// everything already applied.
package replay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emirkutlugun77/amm-pool-sim/internal/candle"
	"github.com/emirkutlugun77/amm-pool-sim/internal/engine"
	"github.com/emirkutlugun77/amm-pool-sim/internal/model"
	"github.com/emirkutlugun77/amm-pool-sim/internal/storage"
	"github.com/emirkutlugun77/amm-pool-sim/internal/storage/postgres"
)

// RunConfig holds runtime settings for a replay. Window is the candle
// bucket width mirrored to Postgres alongside the entities; zero disables
// candle upserts.
type RunConfig struct {
	StateStore StateStore
	SaveEvery  int
	Window     time.Duration
}

// Runner feeds an order stream through the engine and persists the results.
type Runner struct {
	cfg       RunConfig
	engine    *engine.Engine
	snapshots storage.SnapshotStore
	db        *postgres.Store
	logger    *zap.Logger
}

// NewRunner builds a Runner. The db store is optional; snapshots are not.
func NewRunner(cfg RunConfig, eng *engine.Engine, snapshots storage.SnapshotStore, db *postgres.Store, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SaveEvery <= 0 {
		cfg.SaveEvery = 100
	}
	return &Runner{cfg: cfg, engine: eng, snapshots: snapshots, db: db, logger: logger}
}

// Run replays the orders in the JSONL file at inputPath.
func (r *Runner) Run(ctx context.Context, inputPath string) error {
	if r.engine == nil {
		return fmt.Errorf("engine is nil")
	}
	if r.snapshots == nil {
		return fmt.Errorf("snapshot store is nil")
	}

	var start uint64
	if r.cfg.StateStore != nil {
		applied, ok, err := r.cfg.StateStore.Load(ctx)
		if err != nil {
			return err
		}
		if ok {
			start = applied
			r.logger.Info("resume from checkpoint", zap.Uint64("applied_orders", applied))
		}
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var total, applied, skipped, failed uint64
	processed := start

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++
		if total <= start {
			skipped++
			continue
		}

		var order Order
		if err := json.Unmarshal(line, &order); err != nil {
			failed++
			processed++
			r.logger.Warn("decode order", zap.Uint64("line", total), zap.Error(err))
			continue
		}

		if _, _, err := r.engine.ExecuteSwap(order.PoolID, order.AmountIn, order.Side); err != nil {
			failed++
			processed++
			r.logger.Warn("apply order",
				zap.Uint64("line", total),
				zap.String("pool", order.PoolID.String()),
				zap.Error(err),
			)
			continue
		}
		applied++
		processed++

		if processed%uint64(r.cfg.SaveEvery) == 0 {
			if err := r.persist(ctx, processed); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	if err := r.persist(ctx, processed); err != nil {
		return err
	}

	r.logger.Info("replay complete",
		zap.Uint64("total", total),
		zap.Uint64("applied", applied),
		zap.Uint64("skipped", skipped),
		zap.Uint64("failed", failed),
	)
	return nil
}

func (r *Runner) persist(ctx context.Context, processed uint64) error {
	snap := r.engine.Snapshot()
	if err := r.snapshots.Save(ctx, snap); err != nil {
		return err
	}

	if r.db != nil {
		if err := r.db.UpsertCoins(ctx, snap.Coins); err != nil {
			return fmt.Errorf("upsert coins: %w", err)
		}
		if err := r.db.UpsertPools(ctx, snap.Pools); err != nil {
			return fmt.Errorf("upsert pools: %w", err)
		}
		if err := r.db.UpsertTransactions(ctx, snap.Transactions); err != nil {
			return fmt.Errorf("upsert transactions: %w", err)
		}
		if r.cfg.Window > 0 {
			batches, err := poolCandles(snap.Pools, r.cfg.Window)
			if err != nil {
				return err
			}
			for _, b := range batches {
				if err := r.db.UpsertCandles(ctx, b.poolID, b.widthMs, b.candles); err != nil {
					return fmt.Errorf("upsert candles: %w", err)
				}
			}
		}
	}

	if r.cfg.StateStore != nil {
		if err := r.cfg.StateStore.Save(ctx, processed); err != nil {
			return err
		}
	}
	return nil
}

type candleBatch struct {
	poolID  uuid.UUID
	widthMs int64
	candles []model.Candle
}

// poolCandles aggregates every pool's price history at the given bucket
// width. Pools with no swap history yet produce no batch.
func poolCandles(pools []model.Pool, width time.Duration) ([]candleBatch, error) {
	out := make([]candleBatch, 0, len(pools))
	for _, pool := range pools {
		candles, err := candle.Aggregate(pool.PriceHistory, width)
		if err != nil {
			return nil, fmt.Errorf("aggregate pool %s: %w", pool.ID, err)
		}
		if len(candles) == 0 {
			continue
		}
		out = append(out, candleBatch{
			poolID:  pool.ID,
			widthMs: width.Milliseconds(),
			candles: candles,
		})
	}
	return out, nil
}
