package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/emirkutlugun77/amm-pool-sim/internal/engine"
	"github.com/emirkutlugun77/amm-pool-sim/internal/model"
	"github.com/emirkutlugun77/amm-pool-sim/internal/storage"
)

func writeOrders(t *testing.T, path string, orders []Order) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create orders file: %v", err)
	}
	defer file.Close()
	for _, order := range orders {
		line, err := json.Marshal(order)
		if err != nil {
			t.Fatalf("marshal order: %v", err)
		}
		if _, err := fmt.Fprintf(file, "%s\n", line); err != nil {
			t.Fatalf("write order: %v", err)
		}
	}
}

func setupEngine(t *testing.T) (*engine.Engine, model.Pool) {
	t.Helper()
	eng := engine.NewEngine(model.NewSnapshot(), nil)
	token, err := eng.CreateCoin("Token", "TKN", "#000000", 1e9)
	if err != nil {
		t.Fatalf("create coin: %v", err)
	}
	usdt, ok := eng.Snapshot().FindCoinBySymbol(model.StableSymbol)
	if !ok {
		t.Fatalf("stable coin missing")
	}
	pool, err := eng.CreatePool(token.ID, usdt.ID, 1_000_000, 100_000)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	return eng, pool
}

func TestRunnerAppliesOrders(t *testing.T) {
	eng, pool := setupEngine(t)
	dir := t.TempDir()
	ordersPath := filepath.Join(dir, "orders.jsonl")
	writeOrders(t, ordersPath, []Order{
		{PoolID: pool.ID, AmountIn: 10_000, Side: model.SideA},
		{PoolID: pool.ID, AmountIn: 500, Side: model.SideB},
	})

	snapshots := storage.NewFileSnapshotStore(filepath.Join(dir, "state.json"))
	checkpoint := &FileStateStore{Path: filepath.Join(dir, "checkpoint.json")}
	runner := NewRunner(RunConfig{StateStore: checkpoint}, eng, snapshots, nil, nil)

	if err := runner.Run(context.Background(), ordersPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	snap := eng.Snapshot()
	if len(snap.Transactions) != 2 {
		t.Fatalf("ledger = %d entries, want 2", len(snap.Transactions))
	}

	applied, ok, err := checkpoint.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("load checkpoint: ok=%v err=%v", ok, err)
	}
	if applied != 2 {
		t.Fatalf("checkpoint = %d, want 2", applied)
	}

	saved, ok, err := snapshots.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("load snapshot: ok=%v err=%v", ok, err)
	}
	if len(saved.Transactions) != 2 {
		t.Fatalf("persisted ledger = %d entries, want 2", len(saved.Transactions))
	}
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	eng, pool := setupEngine(t)
	dir := t.TempDir()
	ordersPath := filepath.Join(dir, "orders.jsonl")
	writeOrders(t, ordersPath, []Order{
		{PoolID: pool.ID, AmountIn: 10_000, Side: model.SideA},
		{PoolID: pool.ID, AmountIn: 500, Side: model.SideB},
	})

	snapshots := storage.NewFileSnapshotStore(filepath.Join(dir, "state.json"))
	checkpoint := &FileStateStore{Path: filepath.Join(dir, "checkpoint.json")}
	if err := checkpoint.Save(context.Background(), 2); err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}

	runner := NewRunner(RunConfig{StateStore: checkpoint}, eng, snapshots, nil, nil)
	if err := runner.Run(context.Background(), ordersPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := len(eng.Snapshot().Transactions); got != 0 {
		t.Fatalf("resumed run applied %d orders, want 0", got)
	}
}

func TestRunnerSkipsBadOrders(t *testing.T) {
	eng, pool := setupEngine(t)
	dir := t.TempDir()
	ordersPath := filepath.Join(dir, "orders.jsonl")

	file, err := os.Create(ordersPath)
	if err != nil {
		t.Fatalf("create orders file: %v", err)
	}
	good, _ := json.Marshal(Order{PoolID: pool.ID, AmountIn: 1_000, Side: model.SideA})
	unknown, _ := json.Marshal(Order{PoolID: uuid.New(), AmountIn: 1_000, Side: model.SideA})
	fmt.Fprintf(file, "not json\n%s\n%s\n", unknown, good)
	file.Close()

	snapshots := storage.NewFileSnapshotStore(filepath.Join(dir, "state.json"))
	runner := NewRunner(RunConfig{}, eng, snapshots, nil, nil)
	if err := runner.Run(context.Background(), ordersPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := len(eng.Snapshot().Transactions); got != 1 {
		t.Fatalf("applied %d orders, want 1 (bad lines skipped)", got)
	}
}

func TestPoolCandlesAggregatesPerPool(t *testing.T) {
	eng, pool := setupEngine(t)
	dir := t.TempDir()
	ordersPath := filepath.Join(dir, "orders.jsonl")
	writeOrders(t, ordersPath, []Order{
		{PoolID: pool.ID, AmountIn: 10_000, Side: model.SideA},
		{PoolID: pool.ID, AmountIn: 500, Side: model.SideB},
	})

	snapshots := storage.NewFileSnapshotStore(filepath.Join(dir, "state.json"))
	runner := NewRunner(RunConfig{Window: 5 * time.Minute}, eng, snapshots, nil, nil)
	if err := runner.Run(context.Background(), ordersPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	batches, err := poolCandles(eng.Snapshot().Pools, 5*time.Minute)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(batches))
	}
	b := batches[0]
	if b.poolID != pool.ID {
		t.Fatalf("pool id = %s, want %s", b.poolID, pool.ID)
	}
	if b.widthMs != 5*60*1000 {
		t.Fatalf("width = %d ms, want 300000", b.widthMs)
	}
	if len(b.candles) == 0 {
		t.Fatalf("no candles aggregated")
	}
	for _, c := range b.candles {
		if c.BucketStart%b.widthMs != 0 {
			t.Fatalf("bucket start %d not aligned to width", c.BucketStart)
		}
	}

	// A pool with no history contributes nothing.
	empty := model.Pool{ID: uuid.New()}
	batches, err = poolCandles([]model.Pool{empty}, 5*time.Minute)
	if err != nil {
		t.Fatalf("aggregate empty: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("empty pool produced %d batches", len(batches))
	}

	if _, err := poolCandles(eng.Snapshot().Pools, 0); err == nil {
		t.Fatalf("zero width accepted")
	}
}

func TestFileStateStoreRoundTrip(t *testing.T) {
	store := &FileStateStore{Path: filepath.Join(t.TempDir(), "cp", "checkpoint.json")}
	ctx := context.Background()

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("load missing: ok=%v err=%v", ok, err)
	}
	if err := store.Save(ctx, 42); err != nil {
		t.Fatalf("save: %v", err)
	}
	applied, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if applied != 42 {
		t.Fatalf("applied = %d, want 42", applied)
	}
}
