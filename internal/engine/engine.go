// Package engine owns the simulator state: the coin registry, the pools,
// and the transaction ledger. Every mutation replaces whole immutable
// snapshots; callers observing the state mid-operation is not possible
// because execution is strictly single-threaded and call-driven.
package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emirkutlugun77/amm-pool-sim/internal/amm"
	"github.com/emirkutlugun77/amm-pool-sim/internal/model"
)

const maxSymbolLen = 6

// Engine applies state transitions over a snapshot of coins, pools, and
// transactions. It is not safe for concurrent use; an integrating layer
// must serialize calls.
type Engine struct {
	state  model.Snapshot
	logger *zap.Logger
	now    func() int64
}

// NewEngine wraps a deep copy of the initial snapshot, so later mutations
// of the caller's value cannot leak in. A nil logger disables logging.
func NewEngine(state model.Snapshot, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		state:  state.Clone(),
		logger: logger,
		now:    func() int64 { return time.Now().UnixMilli() },
	}
}

// Snapshot returns a deep copy of the current state for persistence or
// read-only consumers.
func (e *Engine) Snapshot() model.Snapshot {
	return e.state.Clone()
}

// Reset discards all state and reseeds the default stable coin.
func (e *Engine) Reset() {
	e.state = model.NewSnapshot()
	e.logger.Info("state reset")
}

// CreateCoin registers a new coin. Symbols are uppercased and must be
// unique and at most six characters.
func (e *Engine) CreateCoin(name, symbol, color string, totalSupply float64) (model.Coin, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || len(symbol) > maxSymbolLen {
		return model.Coin{}, ErrInvalidSymbol
	}
	if totalSupply <= 0 {
		return model.Coin{}, amm.ErrInvalidAmount
	}
	if _, ok := e.state.FindCoinBySymbol(symbol); ok {
		return model.Coin{}, ErrSymbolTaken
	}

	coin := model.Coin{
		ID:          uuid.New(),
		Name:        name,
		Symbol:      symbol,
		Color:       color,
		TotalSupply: totalSupply,
	}
	e.state.Coins = append(e.state.Coins, coin)
	e.logger.Info("coin created", zap.String("symbol", coin.Symbol), zap.Float64("total_supply", totalSupply))
	return coin, nil
}

// DeleteCoin removes an unreferenced coin and prunes transactions whose
// token legs match its symbol. The pruned transactions are returned so an
// external mirror can drop them too. Coins paired by an active pool cannot
// be deleted.
func (e *Engine) DeleteCoin(id uuid.UUID) ([]model.Transaction, error) {
	coin, ok := e.state.FindCoin(id)
	if !ok {
		return nil, ErrUnknownCoin
	}
	for _, pool := range e.state.Pools {
		if pool.References(id) {
			return nil, ErrCoinInUse
		}
	}

	coins := make([]model.Coin, 0, len(e.state.Coins)-1)
	for _, c := range e.state.Coins {
		if c.ID != id {
			coins = append(coins, c)
		}
	}
	var pruned []model.Transaction
	txs := make([]model.Transaction, 0, len(e.state.Transactions))
	for _, tx := range e.state.Transactions {
		if tx.TokenIn == coin.Symbol || tx.TokenOut == coin.Symbol {
			pruned = append(pruned, tx)
			continue
		}
		txs = append(txs, tx)
	}

	e.state.Coins = coins
	e.state.Transactions = txs
	e.logger.Info("coin deleted",
		zap.String("symbol", coin.Symbol),
		zap.Int("pruned_transactions", len(pruned)),
	)
	return pruned, nil
}

// CreatePool pairs two registered coins with the given seed reserves.
func (e *Engine) CreatePool(coinAID, coinBID uuid.UUID, reserveA, reserveB float64) (model.Pool, error) {
	coinA, ok := e.state.FindCoin(coinAID)
	if !ok {
		return model.Pool{}, ErrUnknownCoin
	}
	coinB, ok := e.state.FindCoin(coinBID)
	if !ok {
		return model.Pool{}, ErrUnknownCoin
	}

	pool, err := NewPool(coinA, coinB, reserveA, reserveB, e.now())
	if err != nil {
		return model.Pool{}, err
	}

	e.state.Pools = append(e.state.Pools, pool)
	e.logger.Info("pool created",
		zap.String("pair", coinA.Symbol+"/"+coinB.Symbol),
		zap.Float64("reserve_a", reserveA),
		zap.Float64("reserve_b", reserveB),
		zap.Float64("price", pool.Price()),
	)
	return pool, nil
}

// QuoteSwap previews a swap without touching state.
func (e *Engine) QuoteSwap(poolID uuid.UUID, amountIn float64, side model.Side) (amm.SwapQuote, error) {
	pool, ok := e.state.FindPool(poolID)
	if !ok {
		return amm.SwapQuote{}, ErrUnknownPool
	}
	reserveIn, reserveOut := pool.ReserveA, pool.ReserveB
	if side == model.SideB {
		reserveIn, reserveOut = pool.ReserveB, pool.ReserveA
	}
	return amm.Quote(amountIn, reserveIn, reserveOut)
}

// RequiredInput previews the input needed for a target output on the
// given input side.
func (e *Engine) RequiredInput(poolID uuid.UUID, amountOut float64, side model.Side) (float64, error) {
	pool, ok := e.state.FindPool(poolID)
	if !ok {
		return 0, ErrUnknownPool
	}
	reserveIn, reserveOut := pool.ReserveA, pool.ReserveB
	if side == model.SideB {
		reserveIn, reserveOut = pool.ReserveB, pool.ReserveA
	}
	return amm.RequiredInput(amountOut, reserveIn, reserveOut)
}

// ExecuteSwap commits a swap: the pool snapshot is replaced and one
// transaction is appended to the ledger, atomically from the caller's
// point of view.
func (e *Engine) ExecuteSwap(poolID uuid.UUID, amountIn float64, side model.Side) (model.Pool, model.Transaction, error) {
	pool, ok := e.state.FindPool(poolID)
	if !ok {
		return model.Pool{}, model.Transaction{}, ErrUnknownPool
	}

	now := e.now()
	updated, quote, err := ApplySwap(pool, amountIn, side, now)
	if err != nil {
		return model.Pool{}, model.Transaction{}, err
	}

	txType := model.TxSell
	tokenIn, tokenOut := pool.CoinA.Symbol, pool.CoinB.Symbol
	if side == model.SideB {
		txType = model.TxBuy
		tokenIn, tokenOut = pool.CoinB.Symbol, pool.CoinA.Symbol
	}

	tx := model.Transaction{
		ID:        uuid.New(),
		PoolID:    poolID,
		Type:      txType,
		AmountIn:  amountIn,
		AmountOut: quote.AmountOut,
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		Timestamp: now,
		Price:     updated.Price(),
	}

	e.replacePool(updated)
	e.state.Transactions = append(e.state.Transactions, tx)

	e.logger.Info("swap executed",
		zap.String("pool", poolID.String()),
		zap.String("type", string(txType)),
		zap.Float64("amount_in", amountIn),
		zap.Float64("amount_out", quote.AmountOut),
		zap.Float64("price", tx.Price),
		zap.Float64("price_impact", quote.PriceImpact),
	)
	return updated, tx, nil
}

// CanUndo reports whether the ledger has a transaction to roll back.
func (e *Engine) CanUndo() bool {
	return len(e.state.Transactions) > 0
}

// UndoLast rolls back exactly the most recent transaction: the ledger tail
// is popped, the pool's reserves are restored by the algebraic inverse of
// the recorded swap, and the price point that swap appended is dropped.
// Only a single step is supported; there is no redo.
func (e *Engine) UndoLast() (model.Transaction, error) {
	if len(e.state.Transactions) == 0 {
		return model.Transaction{}, ErrNothingToUndo
	}

	tx := e.state.Transactions[len(e.state.Transactions)-1]
	pool, ok := e.state.FindPool(tx.PoolID)
	if !ok {
		return model.Transaction{}, ErrPoolNotFound
	}

	restored := pool.Clone()
	restored.ReserveA, restored.ReserveB = invertSwap(pool, tx)
	if len(restored.PriceHistory) > 1 {
		restored.PriceHistory = restored.PriceHistory[:len(restored.PriceHistory)-1]
	}

	e.replacePool(restored)
	e.state.Transactions = e.state.Transactions[:len(e.state.Transactions)-1]

	e.logger.Info("transaction undone",
		zap.String("tx", tx.ID.String()),
		zap.String("pool", tx.PoolID.String()),
		zap.String("type", string(tx.Type)),
	)
	return tx, nil
}

func (e *Engine) replacePool(pool model.Pool) {
	for i := range e.state.Pools {
		if e.state.Pools[i].ID == pool.ID {
			e.state.Pools[i] = pool
			return
		}
	}
}
