package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradesim/src/clients/quotes"
	"tradesim/src/repositories"
	"tradesim/src/repositories/memory"
	"tradesim/src/schemas"
	"tradesim/src/services"
)

// mockQuotesClient serves fixed prices per ticker and records calls. Tickers
// absent from the map fail with ErrNoQuote.
type mockQuotesClient struct {
	prices map[string]string
	calls  []string
}

func (c *mockQuotesClient) GetQuote(ticker string) (*schemas.Quote, error) {
	c.calls = append(c.calls, ticker)
	price, ok := c.prices[ticker]
	if !ok {
		return nil, quotes.ErrNoQuote
	}
	return &schemas.Quote{Ticker: ticker, Price: dec(price), Time: time.Now()}, nil
}

func TestSeedAssets(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewMemoryLedger()
	service := services.NewMarketService(ledger, &mockQuotesClient{}, nil, 0)

	require.NoError(t, service.SeedAssets(ctx, []string{"AAPL", "MSFT"}))

	assets, err := ledger.ListAssets(ctx)
	require.NoError(t, err)
	assert.Len(t, assets, 2)

	t.Run("seeding is idempotent", func(t *testing.T) {
		require.NoError(t, service.SeedAssets(ctx, []string{"AAPL", "MSFT", "IBM"}))

		assets, err := ledger.ListAssets(ctx)
		require.NoError(t, err)
		assert.Len(t, assets, 3)
	})
}

func TestRefreshPrices(t *testing.T) {
	t.Run("updates every ticker the source covers", func(t *testing.T) {
		ctx := context.Background()
		ledger := memory.NewMemoryLedger()
		client := &mockQuotesClient{prices: map[string]string{"AAPL": "187.5", "MSFT": "410"}}
		service := services.NewMarketService(ledger, client, nil, 0)

		require.NoError(t, service.SeedAssets(ctx, []string{"AAPL", "MSFT"}))

		result, err := service.RefreshPrices(ctx, []string{"AAPL", "MSFT"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, result.Updated)
		assert.Len(t, result.Failed, 0)

		asset, err := ledger.GetAssetByTicker(ctx, "AAPL")
		require.NoError(t, err)
		require.NotNil(t, asset.LastPrice)
		assertDecimal(t, "187.5", *asset.LastPrice)
		assert.NotNil(t, asset.PriceUpdatedAt)
	})

	t.Run("a failing ticker is skipped without aborting the run", func(t *testing.T) {
		ctx := context.Background()
		ledger := memory.NewMemoryLedger()
		client := &mockQuotesClient{prices: map[string]string{"AAPL": "187.5"}}
		service := services.NewMarketService(ledger, client, nil, 0)

		require.NoError(t, service.SeedAssets(ctx, []string{"AAPL", "DELISTED", "MSFT"}))
		// MSFT had a price from an earlier run; the failing refresh must not
		// clobber it.
		require.NoError(t, ledger.UpdateAssetPrice(ctx, "MSFT", dec("400"), time.Now()))

		result, err := service.RefreshPrices(ctx, []string{"AAPL", "DELISTED", "MSFT"})
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL"}, result.Updated)
		assert.ElementsMatch(t, []string{"DELISTED", "MSFT"}, result.Failed)

		msft, err := ledger.GetAssetByTicker(ctx, "MSFT")
		require.NoError(t, err)
		require.NotNil(t, msft.LastPrice)
		assertDecimal(t, "400", *msft.LastPrice)

		delisted, err := ledger.GetAssetByTicker(ctx, "DELISTED")
		require.NoError(t, err)
		assert.Nil(t, delisted.LastPrice)
	})
}

func TestRefreshAll(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewMemoryLedger()
	client := &mockQuotesClient{prices: map[string]string{"AAPL": "187.5", "MSFT": "410"}}
	service := services.NewMarketService(ledger, client, nil, 0)

	require.NoError(t, service.SeedAssets(ctx, []string{"AAPL", "MSFT"}))

	result, err := service.RefreshAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, result.Updated)
	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, client.calls)
}

func TestListAssets(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewMemoryLedger()
	client := &mockQuotesClient{prices: map[string]string{"AAPL": "187.5"}}
	service := services.NewMarketService(ledger, client, nil, 0)

	require.NoError(t, service.SeedAssets(ctx, []string{"AAPL"}))
	_, err := service.RefreshAll(ctx)
	require.NoError(t, err)

	infos, err := service.ListAssets(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "AAPL", infos[0].Ticker)
	require.NotNil(t, infos[0].LastPrice)
	assertDecimal(t, "187.5", *infos[0].LastPrice)

	t.Run("catalog reads are served from cache", func(t *testing.T) {
		require.NoError(t, ledger.EnsureAsset(ctx, "MSFT", "MSFT"))

		cached, err := service.ListAssets(ctx)
		require.NoError(t, err)
		assert.Len(t, cached, 1)
	})

	t.Run("refresh invalidates the catalog cache", func(t *testing.T) {
		_, err := service.RefreshAll(ctx)
		require.NoError(t, err)

		fresh, err := service.ListAssets(ctx)
		require.NoError(t, err)
		assert.Len(t, fresh, 2)
	})
}

func TestGetAsset(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewMemoryLedger()
	service := services.NewMarketService(ledger, &mockQuotesClient{}, nil, 0)

	require.NoError(t, service.SeedAssets(ctx, []string{"AAPL"}))

	info, err := service.GetAsset(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", info.Ticker)
	assert.Nil(t, info.LastPrice)

	_, err = service.GetAsset(ctx, "NOPE")
	assert.ErrorIs(t, err, repositories.ErrAssetNotFound)
}
