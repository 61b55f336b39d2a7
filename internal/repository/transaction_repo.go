// internal/repository/transaction_repo.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"giftwallet-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WalletTransactionRepository is the read side of the ledger. Writes happen
// through the wallet repository inside the same tx as the balance change.
type WalletTransactionRepository struct {
	pool *pgxpool.Pool
}

func NewWalletTransactionRepository(pool *pgxpool.Pool) *WalletTransactionRepository {
	return &WalletTransactionRepository{pool: pool}
}

const transactionColumns = `id, wallet_id, user_id, type, amount, balance_before, balance_after, reference, description, created_at`

func (r *WalletTransactionRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.WalletTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var entries []*domain.WalletTransaction
	for rows.Next() {
		e, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return entries, nil
}

func (r *WalletTransactionRepository) GetByReference(ctx context.Context, reference string) (*domain.WalletTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE reference = $1`
	e, err := scanTransaction(r.pool.QueryRow(ctx, query, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return e, nil
}

func scanTransaction(row pgx.Row) (*domain.WalletTransaction, error) {
	var e domain.WalletTransaction
	var balanceAfter *int64
	err := row.Scan(
		&e.ID, &e.WalletID, &e.UserID, &e.Type, &e.Amount,
		&e.BalanceBefore, &balanceAfter, &e.Reference, &e.Description,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.BalanceAfter = balanceAfter
	return &e, nil
}
