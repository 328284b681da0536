package replay

import (
	"github.com/google/uuid"

	"github.com/emirkutlugun77/amm-pool-sim/internal/model"
)

// Order is one swap instruction in a JSONL replay stream.
type Order struct {
	PoolID   uuid.UUID  `json:"pool_id"`
	AmountIn float64    `json:"amount_in"`
	Side     model.Side `json:"side"`
}
