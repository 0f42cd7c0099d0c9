package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is one row of the tradable catalog. LastPrice is nil until the first
// successful refresh, and stays nil when the upstream source has no quote for
// the ticker. A nil price is "unknown", never zero.
type Asset struct {
	ID             int              `db:"id"`
	Ticker         string           `db:"ticker"`
	Name           string           `db:"name"`
	LastPrice      *decimal.Decimal `db:"last_price"`
	PriceUpdatedAt *time.Time       `db:"price_updated_at"`
	CreatedAt      time.Time        `db:"created_at"`
}

// HasPrice reports whether the asset currently has a usable positive price.
func (a *Asset) HasPrice() bool {
	return a.LastPrice != nil && a.LastPrice.IsPositive()
}
