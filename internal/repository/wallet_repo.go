// internal/repository/wallet_repo.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"giftwallet-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// WalletRepository owns every balance mutation in the system. No other
// component writes to wallets.available_balance or wallets.pending_balance.
// All mutating helpers are tx-scoped and append the matching ledger row in
// the same transaction.
type WalletRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewWalletRepository(pool *pgxpool.Pool, logger *zap.Logger) *WalletRepository {
	return &WalletRepository{pool: pool, logger: logger}
}

const walletColumns = `id, user_id, available_balance, pending_balance, total_received, total_withdrawn, created_at, updated_at`

// GetOrCreate returns the user's wallet, creating a zeroed one on first
// access. The unique constraint on user_id resolves concurrent creation
// races: the loser's insert is a no-op and both re-fetch the same row.
func (r *WalletRepository) GetOrCreate(ctx context.Context, userID string) (*domain.Wallet, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return r.GetByUserID(ctx, userID)
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	w, err := scanWallet(r.pool.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return w, nil
}

// ============================================================================
// TX-SCOPED BALANCE PRIMITIVES
// ============================================================================

// lockWalletTx ensures the wallet row exists and takes a row lock on it, so
// concurrent mutations of the same wallet serialize for the rest of the tx.
func (r *WalletRepository) lockWalletTx(ctx context.Context, tx pgx.Tx, userID string) (*domain.Wallet, error) {
	if _, err := tx.Exec(ctx, `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure wallet: %w", err)
	}

	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`
	w, err := scanWallet(tx.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return w, nil
}

// DecrementAvailableTx atomically reduces the available balance. The guard
// and the decrement are a single conditional update; a balance that would go
// negative leaves the row untouched and returns ErrInsufficientFunds.
func (r *WalletRepository) DecrementAvailableTx(ctx context.Context, tx pgx.Tx, userID string, amount int64) (*domain.Wallet, error) {
	query := `
		UPDATE wallets
		SET available_balance = available_balance - $2,
			updated_at = NOW()
		WHERE user_id = $1 AND available_balance >= $2
		RETURNING ` + walletColumns
	w, err := scanWallet(tx.QueryRow(ctx, query, userID, amount))
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check wallet: %w", err)
		}
		if !exists {
			return nil, domain.ErrWalletNotFound
		}
		return nil, domain.ErrInsufficientFunds
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decrement available balance: %w", err)
	}
	return w, nil
}

func (r *WalletRepository) IncrementAvailableTx(ctx context.Context, tx pgx.Tx, userID string, amount int64) (*domain.Wallet, error) {
	query := `
		UPDATE wallets
		SET available_balance = available_balance + $2,
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + walletColumns
	w, err := scanWallet(tx.QueryRow(ctx, query, userID, amount))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment available balance: %w", err)
	}
	return w, nil
}

func (r *WalletRepository) IncrementPendingTx(ctx context.Context, tx pgx.Tx, userID string, amount int64) (*domain.Wallet, error) {
	query := `
		UPDATE wallets
		SET pending_balance = pending_balance + $2,
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + walletColumns
	w, err := scanWallet(tx.QueryRow(ctx, query, userID, amount))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment pending balance: %w", err)
	}
	return w, nil
}

// DecrementPendingTx reverses an unsettled pending credit, e.g. when a charge
// is refunded before settlement. Conditional like DecrementAvailableTx.
func (r *WalletRepository) DecrementPendingTx(ctx context.Context, tx pgx.Tx, userID string, amount int64) (*domain.Wallet, error) {
	query := `
		UPDATE wallets
		SET pending_balance = pending_balance - $2,
			updated_at = NOW()
		WHERE user_id = $1 AND pending_balance >= $2
		RETURNING ` + walletColumns
	w, err := scanWallet(tx.QueryRow(ctx, query, userID, amount))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInsufficientFunds
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decrement pending balance: %w", err)
	}
	return w, nil
}

// MovePendingToAvailableTx settles a pending credit: pending goes down,
// available and total_received go up, all in one conditional update that
// refuses to drive pending negative.
func (r *WalletRepository) MovePendingToAvailableTx(ctx context.Context, tx pgx.Tx, userID string, amount int64) (*domain.Wallet, error) {
	query := `
		UPDATE wallets
		SET pending_balance = pending_balance - $2,
			available_balance = available_balance + $2,
			total_received = total_received + $2,
			updated_at = NOW()
		WHERE user_id = $1 AND pending_balance >= $2
		RETURNING ` + walletColumns
	w, err := scanWallet(tx.QueryRow(ctx, query, userID, amount))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInsufficientFunds
	}
	if err != nil {
		return nil, fmt.Errorf("failed to settle pending balance: %w", err)
	}
	return w, nil
}

func (r *WalletRepository) IncrementTotalWithdrawnTx(ctx context.Context, tx pgx.Tx, userID string, amount int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE wallets
		SET total_withdrawn = total_withdrawn + $2,
			updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to increment total withdrawn: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}

// ============================================================================
// LEDGER APPEND
// ============================================================================

// appendEntryTx inserts a ledger row and returns its id. balanceAfter may be
// nil when settlement has not happened yet; BackfillBalanceAfterTx fills it.
func (r *WalletRepository) appendEntryTx(ctx context.Context, tx pgx.Tx, e *domain.WalletTransaction) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO wallet_transactions (
			wallet_id, user_id, type, amount,
			balance_before, balance_after, reference, description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, e.WalletID, e.UserID, e.Type, e.Amount,
		e.BalanceBefore, e.BalanceAfter, e.Reference, e.Description,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", domain.ErrDuplicateReference
		}
		return "", fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return id, nil
}

func (r *WalletRepository) backfillBalanceAfterTx(ctx context.Context, tx pgx.Tx, entryID string, balanceAfter int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE wallet_transactions
		SET balance_after = $2
		WHERE id = $1 AND balance_after IS NULL
	`, entryID, balanceAfter)
	if err != nil {
		return fmt.Errorf("failed to backfill balance_after: %w", err)
	}
	return nil
}

// ============================================================================
// COMPOSITE MONEY MOVEMENTS
// ============================================================================

// CreditContributionTx credits a confirmed contribution: pending credit with
// its ledger row, then immediate settlement into available (the provider's
// confirmation is treated as final, there is no clearing delay). The pending
// row's balance_after is backfilled once the settled balance is known.
func (r *WalletRepository) CreditContributionTx(ctx context.Context, tx pgx.Tx, userID string, amount int64, reference, description string) error {
	w, err := r.lockWalletTx(ctx, tx, userID)
	if err != nil {
		return err
	}

	if _, err := r.IncrementPendingTx(ctx, tx, userID, amount); err != nil {
		return err
	}

	entryID, err := r.appendEntryTx(ctx, tx, &domain.WalletTransaction{
		WalletID:      w.ID,
		UserID:        userID,
		Type:          domain.TransactionTypeContribution,
		Amount:        amount,
		BalanceBefore: w.AvailableBalance,
		Reference:     reference,
		Description:   description,
	})
	if err != nil {
		return err
	}

	settled, err := r.MovePendingToAvailableTx(ctx, tx, userID, amount)
	if err != nil {
		return err
	}
	return r.backfillBalanceAfterTx(ctx, tx, entryID, settled.AvailableBalance)
}

// DebitForWithdrawalTx reserves the gross withdrawal amount at request time.
func (r *WalletRepository) DebitForWithdrawalTx(ctx context.Context, tx pgx.Tx, userID string, amount int64, reference, description string) error {
	w, err := r.DecrementAvailableTx(ctx, tx, userID, amount)
	if err != nil {
		return err
	}

	after := w.AvailableBalance
	_, err = r.appendEntryTx(ctx, tx, &domain.WalletTransaction{
		WalletID:      w.ID,
		UserID:        userID,
		Type:          domain.TransactionTypeWithdrawal,
		Amount:        -amount,
		BalanceBefore: after + amount,
		BalanceAfter:  &after,
		Reference:     reference,
		Description:   description,
	})
	return err
}

// RefundWithdrawalTx reverses an eager debit after a failed transfer. The
// full gross amount comes back; the fee is never charged on a failure.
func (r *WalletRepository) RefundWithdrawalTx(ctx context.Context, tx pgx.Tx, userID string, amount int64, reference, description string) error {
	w, err := r.IncrementAvailableTx(ctx, tx, userID, amount)
	if err != nil {
		return err
	}

	after := w.AvailableBalance
	_, err = r.appendEntryTx(ctx, tx, &domain.WalletTransaction{
		WalletID:      w.ID,
		UserID:        userID,
		Type:          domain.TransactionTypeRefund,
		Amount:        amount,
		BalanceBefore: after - amount,
		BalanceAfter:  &after,
		Reference:     reference,
		Description:   description,
	})
	return err
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(
		&w.ID, &w.UserID,
		&w.AvailableBalance, &w.PendingBalance,
		&w.TotalReceived, &w.TotalWithdrawn,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
