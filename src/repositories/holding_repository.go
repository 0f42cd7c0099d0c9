package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"tradesim/src/models"
)

func (l *PostgresLedger) getHolding(ctx context.Context, tx pgx.Tx, userID uint, assetID int) (*models.Holding, error) {
	row := tx.QueryRow(ctx,
		`SELECT id, user_id, asset_id, quantity, avg_price
		FROM holdings WHERE user_id = $1 AND asset_id = $2`,
		userID, assetID)

	var h models.Holding
	if err := row.Scan(&h.ID, &h.UserID, &h.AssetID, &h.Quantity, &h.AvgPrice); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

func (l *PostgresLedger) upsertHolding(ctx context.Context, tx pgx.Tx, h *models.Holding) error {
	return tx.QueryRow(ctx,
		`INSERT INTO holdings (user_id, asset_id, quantity, avg_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, asset_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			avg_price = EXCLUDED.avg_price
		RETURNING id`,
		h.UserID, h.AssetID, h.Quantity, h.AvgPrice,
	).Scan(&h.ID)
}

func (l *PostgresLedger) deleteHolding(ctx context.Context, tx pgx.Tx, userID uint, assetID int) error {
	_, err := tx.Exec(ctx,
		`DELETE FROM holdings WHERE user_id = $1 AND asset_id = $2`,
		userID, assetID)
	return err
}

func (l *PostgresLedger) listHoldingsWithAssets(ctx context.Context, tx pgx.Tx, userID uint) ([]HoldingEntry, error) {
	rows, err := tx.Query(ctx,
		`SELECT h.id, h.user_id, h.asset_id, h.quantity, h.avg_price,
			a.id, a.ticker, a.name, a.last_price, a.price_updated_at, a.created_at
		FROM holdings h
		JOIN assets a ON a.id = h.asset_id
		WHERE h.user_id = $1
		ORDER BY a.ticker`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HoldingEntry
	for rows.Next() {
		var e HoldingEntry
		var price decimal.NullDecimal
		var updatedAt *time.Time

		if err := rows.Scan(
			&e.Holding.ID, &e.Holding.UserID, &e.Holding.AssetID,
			&e.Holding.Quantity, &e.Holding.AvgPrice,
			&e.Asset.ID, &e.Asset.Ticker, &e.Asset.Name,
			&price, &updatedAt, &e.Asset.CreatedAt,
		); err != nil {
			return nil, err
		}

		if price.Valid {
			e.Asset.LastPrice = &price.Decimal
		}
		e.Asset.PriceUpdatedAt = updatedAt

		entries = append(entries, e)
	}
	return entries, rows.Err()
}
