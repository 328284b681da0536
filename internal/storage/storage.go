package storage

import (
	"context"

	"github.com/emirkutlugun77/amm-pool-sim/internal/model"
)

// SnapshotStore loads and saves the full simulator state.
type SnapshotStore interface {
	Load(ctx context.Context) (model.Snapshot, bool, error)
	Save(ctx context.Context, snap model.Snapshot) error
}

// CandleSink receives aggregated candles for export.
type CandleSink interface {
	PutCandleBatch(candles []model.Candle) error
}
