package replay

import (
	"context"

	"github.com/emirkutlugun77/amm-pool-sim/internal/storage/postgres"
)

// DBStateStore keeps replay progress in the replay_state table.
type DBStateStore struct {
	Store *postgres.Store
	Name  string
}

func (s *DBStateStore) Load(ctx context.Context) (uint64, bool, error) {
	if s == nil || s.Store == nil {
		return 0, false, nil
	}
	return s.Store.LoadReplayState(ctx, s.Name)
}

func (s *DBStateStore) Save(ctx context.Context, applied uint64) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.SaveReplayState(ctx, s.Name, applied)
}
