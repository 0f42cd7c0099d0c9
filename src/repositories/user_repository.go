package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"tradesim/src/models"
)

const userColumns = `id, name, email, password_hash, cash, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Cash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (l *PostgresLedger) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	row := l.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

func (l *PostgresLedger) getUser(ctx context.Context, tx pgx.Tx, userID uint) (*models.User, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// getUserForUpdate takes the per-user trade scope: the row lock is held until
// the surrounding transaction commits or rolls back.
func (l *PostgresLedger) getUserForUpdate(ctx context.Context, tx pgx.Tx, userID uint) (*models.User, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID)
	return scanUser(row)
}

func (l *PostgresLedger) updateUserCash(ctx context.Context, tx pgx.Tx, userID uint, cash decimal.Decimal) error {
	tag, err := tx.Exec(ctx,
		`UPDATE users SET cash = $2 WHERE id = $1`, userID, cash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
