package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradesim/src/models"
)

// tradeTxAttempts bounds the transparent retry on serialization failures.
const tradeTxAttempts = 3

type PostgresLedger struct {
	db *pgxpool.Pool
}

func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure and deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// ExecuteTrade serializes trades per user by locking the user row for the
// duration of one transaction. Trades for different users only contend on
// different rows and proceed in parallel.
func (l *PostgresLedger) ExecuteTrade(ctx context.Context, userID uint, ticker string, fn TradeFunc) (*models.Operation, error) {
	var lastErr error

	for attempt := 0; attempt < tradeTxAttempts; attempt++ {
		op, err := l.executeTradeTx(ctx, userID, ticker, fn)
		if err == nil {
			return op, nil
		}
		if !isRetryableTxError(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, errors.Join(ErrConflict, lastErr)
}

func (l *PostgresLedger) executeTradeTx(ctx context.Context, userID uint, ticker string, fn TradeFunc) (op *models.Operation, err error) {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	view := TradeView{}

	user, err := l.getUserForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	view.User = *user

	asset, err := l.getAssetByTicker(ctx, tx, ticker)
	if err != nil {
		return nil, err
	}
	view.Asset = *asset

	holding, err := l.getHolding(ctx, tx, userID, asset.ID)
	if err != nil {
		return nil, err
	}
	view.Holding = holding

	mutation, err := fn(view)
	if err != nil {
		return nil, err
	}

	if err = l.updateUserCash(ctx, tx, userID, mutation.Cash); err != nil {
		return nil, err
	}

	if mutation.Holding == nil || mutation.Holding.Quantity.IsZero() {
		if err = l.deleteHolding(ctx, tx, userID, asset.ID); err != nil {
			return nil, err
		}
	} else {
		if err = l.upsertHolding(ctx, tx, mutation.Holding); err != nil {
			return nil, err
		}
	}

	committed := mutation.Operation
	if err = l.appendOperation(ctx, tx, &committed); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &committed, nil
}

// Snapshot reads the user's cash and all holdings with their asset prices in
// one repeatable-read transaction, so the valuation never observes a torn
// price generation.
func (l *PostgresLedger) Snapshot(ctx context.Context, userID uint) (snapshot *AccountSnapshot, err error) {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	user, err := l.getUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	holdings, err := l.listHoldingsWithAssets(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &AccountSnapshot{User: *user, Holdings: holdings}, nil
}
