package services

import (
	"context"

	"tradesim/src/repositories"
	"tradesim/src/schemas"
)

type PortfolioServiceI interface {
	GetPortfolio(ctx context.Context, userID uint) (*schemas.PortfolioSnapshot, error)
}

// PortfolioService aggregates a user's holdings against current prices. It is
// a pure read over one ledger snapshot.
type PortfolioService struct {
	ledger repositories.Ledger
}

func NewPortfolioService(ledger repositories.Ledger) *PortfolioService {
	return &PortfolioService{ledger: ledger}
}

func (s *PortfolioService) GetPortfolio(ctx context.Context, userID uint) (*schemas.PortfolioSnapshot, error) {
	account, err := s.ledger.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := schemas.PortfolioSnapshot{
		Cash:       account.User.Cash,
		Holdings:   make([]schemas.PortfolioHolding, 0, len(account.Holdings)),
		TotalValue: account.User.Cash,
	}

	for _, entry := range account.Holdings {
		holding := schemas.PortfolioHolding{
			Ticker:    entry.Asset.Ticker,
			Name:      entry.Asset.Name,
			Quantity:  entry.Holding.Quantity,
			AvgPrice:  entry.Holding.AvgPrice,
			LastPrice: entry.Asset.LastPrice,
		}

		// Assets with no known price stay listed and contribute zero.
		if entry.Asset.LastPrice != nil {
			holding.MarketValue = entry.Holding.Quantity.Mul(*entry.Asset.LastPrice)
		}

		snapshot.TotalValue = snapshot.TotalValue.Add(holding.MarketValue)
		snapshot.Holdings = append(snapshot.Holdings, holding)
	}

	return &snapshot, nil
}
