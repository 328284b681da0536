package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emirkutlugun77/amm-pool-sim/internal/model"
)

// Store provides Postgres persistence for simulator entities and candles.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertCoins inserts or updates coin registry entries.
func (s *Store) UpsertCoins(ctx context.Context, coins []model.Coin) error {
	if len(coins) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, coin := range coins {
		batch.Queue(`
			INSERT INTO coins (id, name, symbol, color, total_supply, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
			ON CONFLICT (id)
			DO UPDATE SET
				name = EXCLUDED.name,
				symbol = EXCLUDED.symbol,
				color = EXCLUDED.color,
				total_supply = EXCLUDED.total_supply,
				updated_at = now()
		`,
			coin.ID,
			coin.Name,
			coin.Symbol,
			coin.Color,
			coin.TotalSupply,
		)
	}
	return s.sendBatch(ctx, batch, len(coins))
}

// UpsertPools inserts or updates pool snapshots. Price history travels as a
// JSONB column since the pool owns it wholesale.
func (s *Store) UpsertPools(ctx context.Context, pools []model.Pool) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		history, err := json.Marshal(pool.PriceHistory)
		if err != nil {
			return fmt.Errorf("marshal price history: %w", err)
		}
		batch.Queue(`
			INSERT INTO pools (
				id, coin_a, coin_b, role_a, role_b, reserve_a, reserve_b,
				lp_token_supply, pool_created_at, price_history, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
			ON CONFLICT (id)
			DO UPDATE SET
				reserve_a = EXCLUDED.reserve_a,
				reserve_b = EXCLUDED.reserve_b,
				lp_token_supply = EXCLUDED.lp_token_supply,
				price_history = EXCLUDED.price_history,
				updated_at = now()
		`,
			pool.ID,
			pool.CoinA.ID,
			pool.CoinB.ID,
			string(pool.RoleA),
			string(pool.RoleB),
			pool.ReserveA,
			pool.ReserveB,
			pool.LPTokenSupply,
			pool.CreatedAt,
			history,
		)
	}
	return s.sendBatch(ctx, batch, len(pools))
}

// UpsertTransactions inserts ledger entries; replayed entries overwrite by id.
func (s *Store) UpsertTransactions(ctx context.Context, txs []model.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, tx := range txs {
		batch.Queue(`
			INSERT INTO transactions (
				id, pool_id, type, amount_in, amount_out, token_in, token_out, ts, price, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
			ON CONFLICT (id)
			DO UPDATE SET
				amount_in = EXCLUDED.amount_in,
				amount_out = EXCLUDED.amount_out,
				price = EXCLUDED.price
		`,
			tx.ID,
			tx.PoolID,
			string(tx.Type),
			tx.AmountIn,
			tx.AmountOut,
			tx.TokenIn,
			tx.TokenOut,
			tx.Timestamp,
			tx.Price,
		)
	}
	return s.sendBatch(ctx, batch, len(txs))
}

// DeleteTransactions removes ledger entries, used after an undo or after
// a coin deletion prunes its transactions.
func (s *Store) DeleteTransactions(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = ANY($1)`, ids)
	return err
}

// UpsertCandles inserts or updates aggregated candles for a pool/width pair.
func (s *Store) UpsertCandles(ctx context.Context, poolID uuid.UUID, widthMs int64, candles []model.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range candles {
		batch.Queue(`
			INSERT INTO candles (
				pool_id, width_ms, bucket_start, open, high, low, close, volume, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
			ON CONFLICT (pool_id, width_ms, bucket_start)
			DO UPDATE SET
				open = EXCLUDED.open,
				high = EXCLUDED.high,
				low = EXCLUDED.low,
				close = EXCLUDED.close,
				volume = EXCLUDED.volume,
				updated_at = now()
		`,
			poolID,
			widthMs,
			c.BucketStart,
			c.Open,
			c.High,
			c.Low,
			c.Close,
			c.Volume,
		)
	}
	return s.sendBatch(ctx, batch, len(candles))
}

// LoadReplayState returns the count of applied orders for a replay name.
func (s *Store) LoadReplayState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var applied uint64
	row := s.pool.QueryRow(ctx, `SELECT applied_orders FROM replay_state WHERE name=$1`, name)
	if err := row.Scan(&applied); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return applied, true, nil
}

// SaveReplayState upserts the applied-order count for a replay name.
func (s *Store) SaveReplayState(ctx context.Context, name string, applied uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO replay_state (name, applied_orders, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET applied_orders = EXCLUDED.applied_orders, updated_at = now()
	`, name, applied)
	return err
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch, n int) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
