package schemas

import (
	"time"

	"github.com/shopspring/decimal"

	"tradesim/src/models"
)

// TradeRequest is the payload for submitting a buy or sell order.
type TradeRequest struct {
	Ticker   string               `json:"ticker"`
	Kind     models.OperationKind `json:"kind"`
	Quantity decimal.Decimal      `json:"quantity"`
}

// TradeReceipt describes one executed trade and the account state it left
// behind. Price is the reference price the trade executed at.
type TradeReceipt struct {
	ID              string               `json:"id"`
	Ticker          string               `json:"ticker"`
	Kind            models.OperationKind `json:"kind"`
	Quantity        decimal.Decimal      `json:"quantity"`
	Price           decimal.Decimal      `json:"price"`
	Total           decimal.Decimal      `json:"total"`
	Cash            decimal.Decimal      `json:"cash"`
	HoldingQuantity decimal.Decimal      `json:"holdingQuantity"`
	HoldingAvgPrice decimal.Decimal      `json:"holdingAvgPrice"`
	ExecutedAt      time.Time            `json:"executedAt"`
}

// OperationRecord is one row of a user's trade history.
type OperationRecord struct {
	ID         int                  `json:"id"`
	Ticker     string               `json:"ticker"`
	Kind       models.OperationKind `json:"kind"`
	Quantity   decimal.Decimal      `json:"quantity"`
	Price      decimal.Decimal      `json:"price"`
	ExecutedAt time.Time            `json:"executedAt"`
}
