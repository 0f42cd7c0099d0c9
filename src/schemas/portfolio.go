package schemas

import (
	"github.com/shopspring/decimal"
)

// PortfolioHolding is one valued position inside a snapshot. LastPrice is nil
// when no price is known for the asset; the position is still listed and
// contributes zero to the total.
type PortfolioHolding struct {
	Ticker      string           `json:"ticker"`
	Name        string           `json:"name"`
	Quantity    decimal.Decimal  `json:"quantity"`
	AvgPrice    decimal.Decimal  `json:"avgPrice"`
	LastPrice   *decimal.Decimal `json:"lastPrice"`
	MarketValue decimal.Decimal  `json:"marketValue"`
}

// PortfolioSnapshot is a consistent point-in-time valuation of one account:
// TotalValue = Cash + sum of holding market values.
type PortfolioSnapshot struct {
	Cash       decimal.Decimal    `json:"cash"`
	Holdings   []PortfolioHolding `json:"holdings"`
	TotalValue decimal.Decimal    `json:"totalValue"`
}
