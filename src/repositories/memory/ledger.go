// Package memory provides an in-process Ledger implementation. It backs the
// service when no Postgres instance is configured and the accounting tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tradesim/src/models"
	"tradesim/src/repositories"
)

type MemoryLedger struct {
	mu          sync.RWMutex
	userLocks   map[uint]*sync.Mutex
	users       map[uint]models.User
	usersByMail map[string]uint
	assets      map[string]models.Asset // keyed by ticker
	assetIDs    map[int]string
	holdings    map[uint]map[int]models.Holding // userID -> assetID
	operations  []models.Operation

	nextUserID    uint
	nextAssetID   int
	nextHoldingID int
	nextOpID      int
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		userLocks:   map[uint]*sync.Mutex{},
		users:       map[uint]models.User{},
		usersByMail: map[string]uint{},
		assets:      map[string]models.Asset{},
		assetIDs:    map[int]string{},
		holdings:    map[uint]map[int]models.Holding{},
	}
}

// userLock returns the mutex serializing trades for one user. Locks for
// different users are independent.
func (l *MemoryLedger) userLock(userID uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.userLocks[userID] = lock
	}
	return lock
}

func (l *MemoryLedger) CreateUser(_ context.Context, user *models.User) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.usersByMail[user.Email]; exists {
		return repositories.ErrEmailTaken
	}

	l.nextUserID++
	user.ID = l.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	l.users[user.ID] = *user
	l.usersByMail[user.Email] = user.ID
	return nil
}

func (l *MemoryLedger) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	id, ok := l.usersByMail[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	user := l.users[id]
	return &user, nil
}

func (l *MemoryLedger) GetUser(_ context.Context, userID uint) (*models.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	user, ok := l.users[userID]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &user, nil
}

func (l *MemoryLedger) EnsureAsset(_ context.Context, ticker, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.assets[ticker]; exists {
		return nil
	}

	l.nextAssetID++
	asset := models.Asset{
		ID:        l.nextAssetID,
		Ticker:    ticker,
		Name:      name,
		CreatedAt: time.Now(),
	}
	l.assets[ticker] = asset
	l.assetIDs[asset.ID] = ticker
	return nil
}

func (l *MemoryLedger) GetAssetByTicker(_ context.Context, ticker string) (*models.Asset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.assetByTickerLocked(ticker)
}

func (l *MemoryLedger) assetByTickerLocked(ticker string) (*models.Asset, error) {
	asset, ok := l.assets[ticker]
	if !ok {
		return nil, repositories.ErrAssetNotFound
	}
	copied := asset
	if asset.LastPrice != nil {
		price := *asset.LastPrice
		copied.LastPrice = &price
	}
	return &copied, nil
}

func (l *MemoryLedger) ListAssets(_ context.Context) ([]models.Asset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	assets := make([]models.Asset, 0, len(l.assets))
	for ticker := range l.assets {
		asset, _ := l.assetByTickerLocked(ticker)
		assets = append(assets, *asset)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Ticker < assets[j].Ticker })
	return assets, nil
}

func (l *MemoryLedger) UpdateAssetPrice(_ context.Context, ticker string, price decimal.Decimal, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	asset, ok := l.assets[ticker]
	if !ok {
		return repositories.ErrAssetNotFound
	}
	asset.LastPrice = &price
	asset.PriceUpdatedAt = &at
	l.assets[ticker] = asset
	return nil
}

// ExecuteTrade holds the user's lock across view, decision and apply, which
// is the per-user at-most-one-in-flight guarantee. The ledger-wide mutex is
// only taken for the short map reads and writes.
func (l *MemoryLedger) ExecuteTrade(_ context.Context, userID uint, ticker string, fn repositories.TradeFunc) (*models.Operation, error) {
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	l.mu.RLock()
	view, err := l.buildViewLocked(userID, ticker)
	l.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	mutation, err := fn(*view)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	user := l.users[userID]
	user.Cash = mutation.Cash
	l.users[userID] = user

	userHoldings, ok := l.holdings[userID]
	if !ok {
		userHoldings = map[int]models.Holding{}
		l.holdings[userID] = userHoldings
	}

	assetID := view.Asset.ID
	if mutation.Holding == nil || mutation.Holding.Quantity.IsZero() {
		delete(userHoldings, assetID)
	} else {
		holding := *mutation.Holding
		if holding.ID == 0 {
			l.nextHoldingID++
			holding.ID = l.nextHoldingID
		}
		userHoldings[assetID] = holding
	}

	committed := mutation.Operation
	l.nextOpID++
	committed.ID = l.nextOpID
	l.operations = append(l.operations, committed)

	return &committed, nil
}

func (l *MemoryLedger) buildViewLocked(userID uint, ticker string) (*repositories.TradeView, error) {
	user, ok := l.users[userID]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}

	asset, err := l.assetByTickerLocked(ticker)
	if err != nil {
		return nil, err
	}

	view := repositories.TradeView{User: user, Asset: *asset}

	if userHoldings, ok := l.holdings[userID]; ok {
		if holding, ok := userHoldings[asset.ID]; ok {
			copied := holding
			view.Holding = &copied
		}
	}
	return &view, nil
}

func (l *MemoryLedger) Snapshot(_ context.Context, userID uint) (*repositories.AccountSnapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	user, ok := l.users[userID]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}

	snapshot := repositories.AccountSnapshot{User: user}

	for assetID, holding := range l.holdings[userID] {
		asset, _ := l.assetByTickerLocked(l.assetIDs[assetID])
		snapshot.Holdings = append(snapshot.Holdings, repositories.HoldingEntry{
			Holding: holding,
			Asset:   *asset,
		})
	}
	sort.Slice(snapshot.Holdings, func(i, j int) bool {
		return snapshot.Holdings[i].Asset.Ticker < snapshot.Holdings[j].Asset.Ticker
	})
	return &snapshot, nil
}

func (l *MemoryLedger) ListOperations(_ context.Context, userID uint) ([]repositories.OperationEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var entries []repositories.OperationEntry
	for i := len(l.operations) - 1; i >= 0; i-- {
		op := l.operations[i]
		if op.UserID != userID {
			continue
		}
		entries = append(entries, repositories.OperationEntry{
			Operation: op,
			Ticker:    l.assetIDs[op.AssetID],
		})
	}
	return entries, nil
}

var _ repositories.Ledger = (*MemoryLedger)(nil)
var _ repositories.UserStore = (*MemoryLedger)(nil)
