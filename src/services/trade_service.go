package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"tradesim/src/models"
	"tradesim/src/repositories"
	"tradesim/src/schemas"
	"tradesim/src/utils"
)

type TradeServiceI interface {
	ExecuteTrade(ctx context.Context, userID uint, req schemas.TradeRequest) (*schemas.TradeReceipt, error)
	GetOperations(ctx context.Context, userID uint) ([]schemas.OperationRecord, error)
}

// TradeService applies buy and sell intents to a user's cash and holdings.
// All mutation goes through Ledger.ExecuteTrade, so each trade commits
// atomically and trades for one user never interleave.
type TradeService struct {
	ledger repositories.Ledger
}

func NewTradeService(ledger repositories.Ledger) *TradeService {
	return &TradeService{ledger: ledger}
}

func (s *TradeService) ExecuteTrade(ctx context.Context, userID uint, req schemas.TradeRequest) (*schemas.TradeReceipt, error) {
	if !req.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	if req.Kind != models.OperationBuy && req.Kind != models.OperationSell {
		return nil, ErrInvalidKind
	}

	var receipt schemas.TradeReceipt

	op, err := s.ledger.ExecuteTrade(ctx, userID, req.Ticker, func(view repositories.TradeView) (*repositories.TradeMutation, error) {
		if !view.Asset.HasPrice() {
			return nil, ErrPriceUnavailable
		}
		price := *view.Asset.LastPrice

		var mutation *repositories.TradeMutation
		var err error

		if req.Kind == models.OperationBuy {
			mutation, err = buildBuy(view, req.Quantity, price)
		} else {
			mutation, err = buildSell(view, req.Quantity, price)
		}
		if err != nil {
			return nil, err
		}

		receipt = schemas.TradeReceipt{
			ID:       uuid.NewString(),
			Ticker:   view.Asset.Ticker,
			Kind:     req.Kind,
			Quantity: req.Quantity,
			Price:    price,
			Total:    req.Quantity.Mul(price),
			Cash:     mutation.Cash,
		}
		if mutation.Holding != nil && !mutation.Holding.Quantity.IsZero() {
			receipt.HoldingQuantity = mutation.Holding.Quantity
			receipt.HoldingAvgPrice = mutation.Holding.AvgPrice
		}

		return mutation, nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrAssetNotFound) {
			return nil, ErrUnknownAsset
		}
		return nil, err
	}

	receipt.ExecutedAt = op.ExecutedAt

	utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"user":     userID,
		"ticker":   receipt.Ticker,
		"kind":     receipt.Kind,
		"quantity": receipt.Quantity,
		"price":    receipt.Price,
	}).Info("trade executed")

	return &receipt, nil
}

// buildBuy debits cost from cash and recomputes the weighted-average cost
// basis over the shares held after the purchase.
func buildBuy(view repositories.TradeView, quantity, price decimal.Decimal) (*repositories.TradeMutation, error) {
	cost := quantity.Mul(price)

	if view.User.Cash.LessThan(cost) {
		return nil, &InsufficientFundsError{Needed: cost, Available: view.User.Cash}
	}

	holding := models.Holding{
		UserID:   view.User.ID,
		AssetID:  view.Asset.ID,
		Quantity: quantity,
		AvgPrice: price,
	}
	if view.Holding != nil {
		previousValue := view.Holding.Quantity.Mul(view.Holding.AvgPrice)
		newQuantity := view.Holding.Quantity.Add(quantity)

		holding.ID = view.Holding.ID
		holding.Quantity = newQuantity
		holding.AvgPrice = previousValue.Add(cost).Div(newQuantity)
	}

	return &repositories.TradeMutation{
		Cash:    view.User.Cash.Sub(cost),
		Holding: &holding,
		Operation: models.Operation{
			UserID:     view.User.ID,
			AssetID:    view.Asset.ID,
			Kind:       models.OperationBuy,
			Quantity:   quantity,
			Price:      price,
			ExecutedAt: time.Now(),
		},
	}, nil
}

// buildSell credits the proceeds and reduces the position. The average cost
// basis of the remaining shares is deliberately left unchanged; selling down
// to exactly zero removes the holding row.
func buildSell(view repositories.TradeView, quantity, price decimal.Decimal) (*repositories.TradeMutation, error) {
	if view.Holding == nil {
		return nil, &InsufficientSharesError{Available: decimal.Zero}
	}
	if view.Holding.Quantity.LessThan(quantity) {
		return nil, &InsufficientSharesError{Available: view.Holding.Quantity}
	}

	remaining := view.Holding.Quantity.Sub(quantity)

	mutation := repositories.TradeMutation{
		Cash: view.User.Cash.Add(quantity.Mul(price)),
		Operation: models.Operation{
			UserID:     view.User.ID,
			AssetID:    view.Asset.ID,
			Kind:       models.OperationSell,
			Quantity:   quantity,
			Price:      price,
			ExecutedAt: time.Now(),
		},
	}
	if !remaining.IsZero() {
		mutation.Holding = &models.Holding{
			ID:       view.Holding.ID,
			UserID:   view.User.ID,
			AssetID:  view.Asset.ID,
			Quantity: remaining,
			AvgPrice: view.Holding.AvgPrice,
		}
	}

	return &mutation, nil
}

func (s *TradeService) GetOperations(ctx context.Context, userID uint) ([]schemas.OperationRecord, error) {
	entries, err := s.ledger.ListOperations(ctx, userID)
	if err != nil {
		return nil, err
	}

	records := make([]schemas.OperationRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, schemas.OperationRecord{
			ID:         entry.Operation.ID,
			Ticker:     entry.Ticker,
			Kind:       entry.Operation.Kind,
			Quantity:   entry.Operation.Quantity,
			Price:      entry.Operation.Price,
			ExecutedAt: entry.Operation.ExecutedAt,
		})
	}
	return records, nil
}
