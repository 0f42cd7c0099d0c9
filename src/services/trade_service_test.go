package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradesim/src/models"
	"tradesim/src/repositories/memory"
	"tradesim/src/schemas"
	"tradesim/src/services"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

// newTestLedger seeds one user with 10000 cash and a small catalog: AAPL at
// 100, MSFT at 200 and IBM with no known price.
func newTestLedger(t *testing.T) (*memory.MemoryLedger, uint) {
	t.Helper()
	ctx := context.Background()
	ledger := memory.NewMemoryLedger()

	user := &models.User{
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "irrelevant",
		Cash:         dec("10000"),
	}
	require.NoError(t, ledger.CreateUser(ctx, user))

	require.NoError(t, ledger.EnsureAsset(ctx, "AAPL", "Apple Inc."))
	require.NoError(t, ledger.EnsureAsset(ctx, "MSFT", "Microsoft Corp."))
	require.NoError(t, ledger.EnsureAsset(ctx, "IBM", "IBM Corp."))
	require.NoError(t, ledger.UpdateAssetPrice(ctx, "AAPL", dec("100"), time.Now()))
	require.NoError(t, ledger.UpdateAssetPrice(ctx, "MSFT", dec("200"), time.Now()))

	return ledger, user.ID
}

func buyRequest(ticker, quantity string) schemas.TradeRequest {
	return schemas.TradeRequest{Ticker: ticker, Kind: models.OperationBuy, Quantity: dec(quantity)}
}

func sellRequest(ticker, quantity string) schemas.TradeRequest {
	return schemas.TradeRequest{Ticker: ticker, Kind: models.OperationSell, Quantity: dec(quantity)}
}

func setPrice(t *testing.T, ledger *memory.MemoryLedger, ticker, price string) {
	t.Helper()
	require.NoError(t, ledger.UpdateAssetPrice(context.Background(), ticker, dec(price), time.Now()))
}

func TestExecuteTradeBuy(t *testing.T) {
	t.Run("first buy creates the holding at the reference price", func(t *testing.T) {
		ctx := context.Background()
		ledger, userID := newTestLedger(t)
		service := services.NewTradeService(ledger)

		receipt, err := service.ExecuteTrade(ctx, userID, buyRequest("AAPL", "10"))
		require.NoError(t, err)

		assertDecimal(t, "100", receipt.Price)
		assertDecimal(t, "1000", receipt.Total)
		assertDecimal(t, "9000", receipt.Cash)
		assertDecimal(t, "10", receipt.HoldingQuantity)
		assertDecimal(t, "100", receipt.HoldingAvgPrice)
		assert.NotEmpty(t, receipt.ID)

		user, err := ledger.GetUser(ctx, userID)
		require.NoError(t, err)
		assertDecimal(t, "9000", user.Cash)
	})

	t.Run("subsequent buys recompute the weighted-average cost basis", func(t *testing.T) {
		ctx := context.Background()
		ledger, userID := newTestLedger(t)
		service := services.NewTradeService(ledger)

		_, err := service.ExecuteTrade(ctx, userID, buyRequest("AAPL", "10"))
		require.NoError(t, err)

		setPrice(t, ledger, "AAPL", "200")

		receipt, err := service.ExecuteTrade(ctx, userID, buyRequest("AAPL", "10"))
		require.NoError(t, err)

		// (10*100 + 10*200) / 20 = 150
		assertDecimal(t, "20", receipt.HoldingQuantity)
		assertDecimal(t, "150", receipt.HoldingAvgPrice)
		assertDecimal(t, "7000", receipt.Cash)
	})

	t.Run("average cost equals total cost of held shares over quantity held", func(t *testing.T) {
		ctx := context.Background()
		ledger, userID := newTestLedger(t)
		service := services.NewTradeService(ledger)

		buys := []struct{ price, quantity string }{
			{"100", "3"},
			{"120", "5"},
			{"80", "2"},
			{"250", "10"},
		}

		totalCost := decimal.Zero
		totalQuantity := decimal.Zero
		var receipt *schemas.TradeReceipt

		for _, buy := range buys {
			setPrice(t, ledger, "AAPL", buy.price)

			var err error
			receipt, err = service.ExecuteTrade(ctx, userID, buyRequest("AAPL", buy.quantity))
			require.NoError(t, err)

			totalCost = totalCost.Add(dec(buy.price).Mul(dec(buy.quantity)))
			totalQuantity = totalQuantity.Add(dec(buy.quantity))
		}

		expectedAvg := totalCost.Div(totalQuantity)
		assert.True(t, expectedAvg.Equal(receipt.HoldingAvgPrice),
			"expected avg %s, got %s", expectedAvg, receipt.HoldingAvgPrice)
		assert.True(t, totalQuantity.Equal(receipt.HoldingQuantity))
	})

	t.Run("insufficient funds rejects the buy and mutates nothing", func(t *testing.T) {
		ctx := context.Background()
		ledger, userID := newTestLedger(t)
		service := services.NewTradeService(ledger)

		before, err := ledger.Snapshot(ctx, userID)
		require.NoError(t, err)

		_, err = service.ExecuteTrade(ctx, userID, buyRequest("MSFT", "100"))

		var fundsErr *services.InsufficientFundsError
		require.ErrorAs(t, err, &fundsErr)
		assertDecimal(t, "20000", fundsErr.Needed)
		assertDecimal(t, "10000", fundsErr.Available)

		after, err := ledger.Snapshot(ctx, userID)
		require.NoError(t, err)
		assert.True(t, before.User.Cash.Equal(after.User.Cash))
		assert.Len(t, after.Holdings, 0)

		operations, err := ledger.ListOperations(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, operations, 0)
	})
}

func TestExecuteTradeSell(t *testing.T) {
	t.Run("partial sell credits cash and leaves the average unchanged", func(t *testing.T) {
		ctx := context.Background()
		ledger, userID := newTestLedger(t)
		service := services.NewTradeService(ledger)

		_, err := service.ExecuteTrade(ctx, userID, buyRequest("AAPL", "10"))
		require.NoError(t, err)

		setPrice(t, ledger, "AAPL", "300")

		receipt, err := service.ExecuteTrade(ctx, userID, sellRequest("AAPL", "4"))
		require.NoError(t, err)

		assertDecimal(t, "6", receipt.HoldingQuantity)
		assertDecimal(t, "100", receipt.HoldingAvgPrice)
		// 10000 - 1000 + 4*300
		assertDecimal(t, "10200", receipt.Cash)
	})

	t.Run("selling the full position removes the holding", func(t *testing.T) {
		ctx := context.Background()
		ledger, userID := newTestLedger(t)
		service := services.NewTradeService(ledger)

		_, err := service.ExecuteTrade(ctx, userID, buyRequest("AAPL", "10"))
		require.NoError(t, err)

		_, err = service.ExecuteTrade(ctx, userID, sellRequest("AAPL", "10"))
		require.NoError(t, err)

		snapshot, err := ledger.Snapshot(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, snapshot.Holdings, 0)
		assertDecimal(t, "10000", snapshot.User.Cash)
	})

	t.Run("selling more than held rejects the sell and mutates nothing", func(t *testing.T) {
		ctx := context.Background()
		ledger, userID := newTestLedger(t)
		service := services.NewTradeService(ledger)

		_, err := service.ExecuteTrade(ctx, userID, buyRequest("AAPL", "5"))
		require.NoError(t, err)

		before, err := ledger.Snapshot(ctx, userID)
		require.NoError(t, err)

		_, err = service.ExecuteTrade(ctx, userID, sellRequest("AAPL", "6"))

		var sharesErr *services.InsufficientSharesError
		require.ErrorAs(t, err, &sharesErr)
		assertDecimal(t, "5", sharesErr.Available)

		after, err := ledger.Snapshot(ctx, userID)
		require.NoError(t, err)
		assert.True(t, before.User.Cash.Equal(after.User.Cash))
		require.Len(t, after.Holdings, 1)
		assert.True(t, before.Holdings[0].Holding.Quantity.Equal(after.Holdings[0].Holding.Quantity))
	})

	t.Run("selling an asset never held reports zero available", func(t *testing.T) {
		ctx := context.Background()
		ledger, userID := newTestLedger(t)
		service := services.NewTradeService(ledger)

		_, err := service.ExecuteTrade(ctx, userID, sellRequest("MSFT", "1"))

		var sharesErr *services.InsufficientSharesError
		require.ErrorAs(t, err, &sharesErr)
		assert.True(t, sharesErr.Available.IsZero())
	})
}

func TestExecuteTradeValidation(t *testing.T) {
	ctx := context.Background()
	ledger, userID := newTestLedger(t)
	service := services.NewTradeService(ledger)

	t.Run("zero quantity", func(t *testing.T) {
		_, err := service.ExecuteTrade(ctx, userID, buyRequest("AAPL", "0"))
		assert.ErrorIs(t, err, services.ErrInvalidQuantity)
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := service.ExecuteTrade(ctx, userID, buyRequest("AAPL", "-3"))
		assert.ErrorIs(t, err, services.ErrInvalidQuantity)
	})

	t.Run("unknown kind", func(t *testing.T) {
		req := schemas.TradeRequest{Ticker: "AAPL", Kind: "short", Quantity: dec("1")}
		_, err := service.ExecuteTrade(ctx, userID, req)
		assert.ErrorIs(t, err, services.ErrInvalidKind)
	})

	t.Run("unknown ticker", func(t *testing.T) {
		_, err := service.ExecuteTrade(ctx, userID, buyRequest("NOPE", "1"))
		assert.ErrorIs(t, err, services.ErrUnknownAsset)
	})

	t.Run("price unavailable never mutates the ledger", func(t *testing.T) {
		before, err := ledger.Snapshot(ctx, userID)
		require.NoError(t, err)

		_, err = service.ExecuteTrade(ctx, userID, buyRequest("IBM", "1"))
		assert.ErrorIs(t, err, services.ErrPriceUnavailable)

		after, err := ledger.Snapshot(ctx, userID)
		require.NoError(t, err)
		assert.True(t, before.User.Cash.Equal(after.User.Cash))
		assert.Len(t, after.Holdings, len(before.Holdings))

		operations, err := ledger.ListOperations(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, operations, 0)
	})
}

// TestExecuteTradeScenario walks the canonical worked example: 10000 cash,
// buy 10 @ 100, buy 10 @ 200, sell 5 @ 300.
func TestExecuteTradeScenario(t *testing.T) {
	ctx := context.Background()
	ledger, userID := newTestLedger(t)
	service := services.NewTradeService(ledger)

	receipt, err := service.ExecuteTrade(ctx, userID, buyRequest("AAPL", "10"))
	require.NoError(t, err)
	assertDecimal(t, "9000", receipt.Cash)
	assertDecimal(t, "10", receipt.HoldingQuantity)
	assertDecimal(t, "100", receipt.HoldingAvgPrice)

	setPrice(t, ledger, "AAPL", "200")
	receipt, err = service.ExecuteTrade(ctx, userID, buyRequest("AAPL", "10"))
	require.NoError(t, err)
	assertDecimal(t, "7000", receipt.Cash)
	assertDecimal(t, "20", receipt.HoldingQuantity)
	assertDecimal(t, "150", receipt.HoldingAvgPrice)

	setPrice(t, ledger, "AAPL", "300")
	receipt, err = service.ExecuteTrade(ctx, userID, sellRequest("AAPL", "5"))
	require.NoError(t, err)
	assertDecimal(t, "8500", receipt.Cash)
	assertDecimal(t, "15", receipt.HoldingQuantity)
	assertDecimal(t, "150", receipt.HoldingAvgPrice)

	operations, err := service.GetOperations(ctx, userID)
	require.NoError(t, err)
	require.Len(t, operations, 3)
	assert.Equal(t, models.OperationSell, operations[0].Kind)
	assert.Equal(t, models.OperationBuy, operations[1].Kind)
	assert.Equal(t, models.OperationBuy, operations[2].Kind)
}

// TestExecuteTradeConcurrent runs many trades per user from competing
// goroutines. Per-user serialization must make the outcome identical to a
// sequential run.
func TestExecuteTradeConcurrent(t *testing.T) {
	const userCount = 4
	const workersPerUser = 3
	const buysPerWorker = 5

	ctx := context.Background()
	ledger := memory.NewMemoryLedger()
	service := services.NewTradeService(ledger)

	require.NoError(t, ledger.EnsureAsset(ctx, "AAPL", "Apple Inc."))
	setPrice(t, ledger, "AAPL", "100")

	userIDs := make([]uint, 0, userCount)
	for i := 0; i < userCount; i++ {
		user := &models.User{
			Name:         "Trader",
			Email:        fmt.Sprintf("trader%d@example.com", i),
			PasswordHash: "irrelevant",
			Cash:         dec("10000"),
		}
		require.NoError(t, ledger.CreateUser(ctx, user))
		userIDs = append(userIDs, user.ID)
	}

	var wg sync.WaitGroup
	for _, userID := range userIDs {
		for worker := 0; worker < workersPerUser; worker++ {
			wg.Add(1)
			go func(userID uint) {
				defer wg.Done()
				for i := 0; i < buysPerWorker; i++ {
					_, err := service.ExecuteTrade(ctx, userID, buyRequest("AAPL", "1"))
					assert.NoError(t, err)
				}
			}(userID)
		}
	}
	wg.Wait()

	// Each user bought 15 shares at 100: cash 8500, quantity 15, avg 100.
	for _, userID := range userIDs {
		snapshot, err := ledger.Snapshot(ctx, userID)
		require.NoError(t, err)
		assertDecimal(t, "8500", snapshot.User.Cash)
		require.Len(t, snapshot.Holdings, 1)
		assertDecimal(t, "15", snapshot.Holdings[0].Holding.Quantity)
		assertDecimal(t, "100", snapshot.Holdings[0].Holding.AvgPrice)

		operations, err := ledger.ListOperations(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, operations, workersPerUser*buysPerWorker)
	}
}
