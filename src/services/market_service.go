package services

import (
	"context"
	"fmt"
	"time"

	"tradesim/src/clients/quotes"
	"tradesim/src/repositories"
	"tradesim/src/schemas"
	"tradesim/src/utils"
	redis_utils "tradesim/src/utils/redis"
)

const catalogCacheTTL = 30 * time.Second

type MarketServiceI interface {
	SeedAssets(ctx context.Context, tickers []string) error
	RefreshPrices(ctx context.Context, tickers []string) (*schemas.RefreshResult, error)
	RefreshAll(ctx context.Context) (*schemas.RefreshResult, error)
	ListAssets(ctx context.Context) ([]schemas.AssetInfo, error)
	GetAsset(ctx context.Context, ticker string) (*schemas.AssetInfo, error)
}

// MarketService owns the asset catalog and the price refresh path. Refresh
// failures are isolated per ticker and never surface as trade failures.
type MarketService struct {
	ledger       repositories.Ledger
	quotes       quotes.QuotesClientI
	quoteCache   *redis_utils.RedisHandler // optional, nil disables caching
	quoteTTL     time.Duration
	catalogCache *utils.Cache[[]schemas.AssetInfo]
}

func NewMarketService(
	ledger repositories.Ledger,
	quotesClient quotes.QuotesClientI,
	quoteCache *redis_utils.RedisHandler,
	quoteTTL time.Duration,
) *MarketService {
	return &MarketService{
		ledger:       ledger,
		quotes:       quotesClient,
		quoteCache:   quoteCache,
		quoteTTL:     quoteTTL,
		catalogCache: utils.NewCache[[]schemas.AssetInfo](),
	}
}

// SeedAssets inserts missing catalog rows. Existing assets are untouched, so
// seeding is idempotent across restarts.
func (s *MarketService) SeedAssets(ctx context.Context, tickers []string) error {
	for _, ticker := range tickers {
		if err := s.ledger.EnsureAsset(ctx, ticker, ticker); err != nil {
			return fmt.Errorf("failed to seed asset %s: %w", ticker, err)
		}
	}
	s.catalogCache.Clear()
	return nil
}

func (s *MarketService) fetchQuote(ticker string) (*schemas.Quote, error) {
	cacheKey := "quote:" + ticker

	if s.quoteCache != nil {
		var cached schemas.Quote
		if found, err := s.quoteCache.Get(cacheKey, &cached); err == nil && found {
			return &cached, nil
		}
	}

	quote, err := s.quotes.GetQuote(ticker)
	if err != nil {
		return nil, err
	}

	if s.quoteCache != nil {
		// Cache failures only cost an extra upstream call next time.
		_ = s.quoteCache.Set(cacheKey, quote, s.quoteTTL)
	}
	return quote, nil
}

// RefreshPrices fetches and commits a fresh price per ticker. A ticker whose
// quote is missing or broken is logged and skipped; its stored price stays
// untouched, it is never overwritten with zero.
func (s *MarketService) RefreshPrices(ctx context.Context, tickers []string) (*schemas.RefreshResult, error) {
	logger := utils.LoggerFromContext(ctx)
	result := schemas.RefreshResult{}

	for _, ticker := range tickers {
		quote, err := s.fetchQuote(ticker)
		if err != nil {
			logger.WithField("ticker", ticker).WithError(err).Warn("price refresh skipped")
			result.Failed = append(result.Failed, ticker)
			continue
		}

		if err := s.ledger.UpdateAssetPrice(ctx, ticker, quote.Price, quote.Time); err != nil {
			logger.WithField("ticker", ticker).WithError(err).Warn("price update failed")
			result.Failed = append(result.Failed, ticker)
			continue
		}

		result.Updated = append(result.Updated, ticker)
	}

	s.catalogCache.Clear()
	return &result, nil
}

// RefreshAll refreshes every asset currently in the catalog.
func (s *MarketService) RefreshAll(ctx context.Context) (*schemas.RefreshResult, error) {
	assets, err := s.ledger.ListAssets(ctx)
	if err != nil {
		return nil, err
	}

	tickers := make([]string, 0, len(assets))
	for _, asset := range assets {
		tickers = append(tickers, asset.Ticker)
	}
	return s.RefreshPrices(ctx, tickers)
}

func (s *MarketService) ListAssets(ctx context.Context) ([]schemas.AssetInfo, error) {
	if cached, ok := s.catalogCache.Get(time.Time{}); ok {
		return cached, nil
	}

	assets, err := s.ledger.ListAssets(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]schemas.AssetInfo, 0, len(assets))
	for _, asset := range assets {
		infos = append(infos, schemas.AssetInfo{
			Ticker:         asset.Ticker,
			Name:           asset.Name,
			LastPrice:      asset.LastPrice,
			PriceUpdatedAt: asset.PriceUpdatedAt,
		})
	}

	s.catalogCache.Set(infos, catalogCacheTTL)
	return infos, nil
}

func (s *MarketService) GetAsset(ctx context.Context, ticker string) (*schemas.AssetInfo, error) {
	asset, err := s.ledger.GetAssetByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return &schemas.AssetInfo{
		Ticker:         asset.Ticker,
		Name:           asset.Name,
		LastPrice:      asset.LastPrice,
		PriceUpdatedAt: asset.PriceUpdatedAt,
	}, nil
}
