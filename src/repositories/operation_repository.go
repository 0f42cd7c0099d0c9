package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"tradesim/src/models"
)

// appendOperation inserts one audit row. Operations are never updated or
// deleted afterwards.
func (l *PostgresLedger) appendOperation(ctx context.Context, tx pgx.Tx, op *models.Operation) error {
	return tx.QueryRow(ctx,
		`INSERT INTO operations (user_id, asset_id, kind, quantity, price, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		op.UserID, op.AssetID, op.Kind, op.Quantity, op.Price, op.ExecutedAt,
	).Scan(&op.ID)
}

func (l *PostgresLedger) ListOperations(ctx context.Context, userID uint) ([]OperationEntry, error) {
	rows, err := l.db.Query(ctx,
		`SELECT o.id, o.user_id, o.asset_id, o.kind, o.quantity, o.price, o.executed_at, a.ticker
		FROM operations o
		JOIN assets a ON a.id = o.asset_id
		WHERE o.user_id = $1
		ORDER BY o.executed_at DESC, o.id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []OperationEntry
	for rows.Next() {
		var e OperationEntry
		if err := rows.Scan(
			&e.Operation.ID, &e.Operation.UserID, &e.Operation.AssetID,
			&e.Operation.Kind, &e.Operation.Quantity, &e.Operation.Price,
			&e.Operation.ExecutedAt, &e.Ticker,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ Ledger = (*PostgresLedger)(nil)
