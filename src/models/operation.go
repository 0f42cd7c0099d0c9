package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OperationKind string

const (
	OperationBuy  OperationKind = "buy"
	OperationSell OperationKind = "sell"
)

// Operation is one executed trade in the append-only audit trail. Rows are
// inserted once and never updated or deleted.
type Operation struct {
	ID         int             `db:"id"`
	UserID     uint            `db:"user_id"`
	AssetID    int             `db:"asset_id"`
	Kind       OperationKind   `db:"kind"`
	Quantity   decimal.Decimal `db:"quantity"`
	Price      decimal.Decimal `db:"price"`
	ExecutedAt time.Time       `db:"executed_at"`
}
