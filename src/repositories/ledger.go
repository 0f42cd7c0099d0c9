package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"tradesim/src/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrAssetNotFound = errors.New("asset not found")
	// ErrConflict is returned when a trade transaction kept colliding with
	// concurrent writes and the bounded retry gave up.
	ErrConflict = errors.New("conflicting concurrent update")
)

// TradeView is the consistent account state handed to a trade function. It is
// read under the user's exclusive trade scope, so no other trade for the same
// user can observe or mutate it concurrently.
type TradeView struct {
	User    models.User
	Asset   models.Asset
	Holding *models.Holding // nil when the user holds none of the asset
}

// TradeMutation describes the full effect of one trade. The ledger applies it
// atomically: cash update, holding upsert or removal, and the appended
// operation either all commit or none do.
type TradeMutation struct {
	Cash      decimal.Decimal
	Holding   *models.Holding // nil or zero quantity removes the holding row
	Operation models.Operation
}

// TradeFunc computes the mutation for a trade from a consistent view of the
// account. Returning an error aborts the trade and leaves the ledger
// untouched.
type TradeFunc func(view TradeView) (*TradeMutation, error)

// HoldingEntry pairs a holding with its asset row, as read in one snapshot.
type HoldingEntry struct {
	Holding models.Holding
	Asset   models.Asset
}

// AccountSnapshot is a single consistent read of a user's cash and holdings
// together with the asset prices in effect at that moment.
type AccountSnapshot struct {
	User     models.User
	Holdings []HoldingEntry
}

// OperationEntry is one audit-trail row joined with its asset ticker.
type OperationEntry struct {
	Operation models.Operation
	Ticker    string
}

// Ledger is the durable record of users, assets, holdings and operations.
// Implementations must serialize trades per user while letting different
// users trade in parallel.
type Ledger interface {
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	GetAssetByTicker(ctx context.Context, ticker string) (*models.Asset, error)
	ListAssets(ctx context.Context) ([]models.Asset, error)
	// EnsureAsset inserts a catalog row when the ticker is missing.
	EnsureAsset(ctx context.Context, ticker, name string) error
	// UpdateAssetPrice commits a refreshed price for one asset. Prices for
	// different assets are independent; no cross-asset transaction exists.
	UpdateAssetPrice(ctx context.Context, ticker string, price decimal.Decimal, at time.Time) error
	ListOperations(ctx context.Context, userID uint) ([]OperationEntry, error)
	Snapshot(ctx context.Context, userID uint) (*AccountSnapshot, error)
	// ExecuteTrade runs fn against a consistent view of the account and
	// atomically commits the mutation it returns. At most one trade per user
	// is in flight at a time. The returned operation carries the committed
	// ID and execution timestamp.
	ExecuteTrade(ctx context.Context, userID uint, ticker string, fn TradeFunc) (*models.Operation, error)
}

// UserStore is the narrow surface user management needs. Registration only;
// cash is mutated exclusively through Ledger.ExecuteTrade.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
