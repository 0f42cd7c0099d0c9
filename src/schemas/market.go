package schemas

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a single last-traded price reported by the upstream market data
// source. Price is always strictly positive; an unavailable quote is an
// error, not a zero.
type Quote struct {
	Ticker string          `json:"ticker"`
	Price  decimal.Decimal `json:"price"`
	Time   time.Time       `json:"time"`
}

// AssetInfo is the catalog view of one tradable asset.
type AssetInfo struct {
	Ticker         string           `json:"ticker"`
	Name           string           `json:"name"`
	LastPrice      *decimal.Decimal `json:"lastPrice"`
	PriceUpdatedAt *time.Time       `json:"priceUpdatedAt"`
}

// RefreshResult summarizes one price refresh run. Failed tickers are skipped
// individually and never abort the rest of the run.
type RefreshResult struct {
	Updated []string `json:"updated"`
	Failed  []string `json:"failed"`
}
