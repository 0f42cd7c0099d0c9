package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"tradesim/src/models"
)

const assetColumns = `id, ticker, name, last_price, price_updated_at, created_at`

func scanAsset(row pgx.Row) (*models.Asset, error) {
	var a models.Asset
	var price decimal.NullDecimal
	var updatedAt *time.Time

	if err := row.Scan(&a.ID, &a.Ticker, &a.Name, &price, &updatedAt, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}

	if price.Valid {
		a.LastPrice = &price.Decimal
	}
	a.PriceUpdatedAt = updatedAt

	return &a, nil
}

func (l *PostgresLedger) GetAssetByTicker(ctx context.Context, ticker string) (*models.Asset, error) {
	row := l.db.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE ticker = $1`, ticker)
	return scanAsset(row)
}

func (l *PostgresLedger) getAssetByTicker(ctx context.Context, tx pgx.Tx, ticker string) (*models.Asset, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE ticker = $1`, ticker)
	return scanAsset(row)
}

func (l *PostgresLedger) ListAssets(ctx context.Context) ([]models.Asset, error) {
	rows, err := l.db.Query(ctx,
		`SELECT `+assetColumns+` FROM assets ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *asset)
	}
	return assets, rows.Err()
}

func (l *PostgresLedger) EnsureAsset(ctx context.Context, ticker, name string) error {
	_, err := l.db.Exec(ctx,
		`INSERT INTO assets (ticker, name) VALUES ($1, $2)
		ON CONFLICT (ticker) DO NOTHING`,
		ticker, name)
	return err
}

// UpdateAssetPrice commits a refreshed price. Each asset updates on its own;
// a failure for one ticker never blocks the others.
func (l *PostgresLedger) UpdateAssetPrice(ctx context.Context, ticker string, price decimal.Decimal, at time.Time) error {
	tag, err := l.db.Exec(ctx,
		`UPDATE assets SET last_price = $2, price_updated_at = $3 WHERE ticker = $1`,
		ticker, price, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}
