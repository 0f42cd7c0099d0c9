package models

import (
	"github.com/shopspring/decimal"
)

// Holding is a user's open position in one asset. A holding row exists iff
// its quantity is strictly positive; selling down to exactly zero deletes it.
type Holding struct {
	ID       int             `db:"id"`
	UserID   uint            `db:"user_id"`
	AssetID  int             `db:"asset_id"`
	Quantity decimal.Decimal `db:"quantity"`
	AvgPrice decimal.Decimal `db:"avg_price"`
}
