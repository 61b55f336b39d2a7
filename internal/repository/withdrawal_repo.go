// internal/repository/withdrawal_repo.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"giftwallet-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type WithdrawalRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewWithdrawalRepository(pool *pgxpool.Pool, logger *zap.Logger) *WithdrawalRepository {
	return &WithdrawalRepository{pool: pool, logger: logger}
}

const withdrawalColumns = `id, user_id, payout_method_id, amount, fee, net_amount, status, payment_reference, transfer_code, failure_reason, processed_at, created_at, updated_at`

// CreateTx inserts a pending withdrawal request. Runs in the same tx as the
// wallet debit so the reservation and the request commit or roll back together.
func (r *WithdrawalRepository) CreateTx(ctx context.Context, tx pgx.Tx, w *domain.WithdrawalRequest) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO withdrawal_requests (
			user_id, payout_method_id, amount, fee, net_amount,
			status, payment_reference
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, w.UserID, w.PayoutMethodID, w.Amount, w.Fee, w.NetAmount,
		domain.WithdrawalStatusPending, w.PaymentReference,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("failed to create withdrawal request: %w", err)
	}
	w.Status = domain.WithdrawalStatusPending
	return nil
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1`
	w, err := scanWithdrawal(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}
	return w, nil
}

func (r *WithdrawalRepository) GetByPaymentReference(ctx context.Context, reference string) (*domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE payment_reference = $1`
	w, err := scanWithdrawal(r.pool.QueryRow(ctx, query, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal by reference: %w", err)
	}
	return w, nil
}

func (r *WithdrawalRepository) GetByTransferCode(ctx context.Context, transferCode string) (*domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE transfer_code = $1`
	w, err := scanWithdrawal(r.pool.QueryRow(ctx, query, transferCode))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal by transfer code: %w", err)
	}
	return w, nil
}

// MarkProcessing records the provider transfer code and moves the request to
// processing. Guarded on pending so a concurrent sweep cannot double-initiate.
func (r *WithdrawalRepository) MarkProcessing(ctx context.Context, id, transferCode string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE withdrawal_requests
		SET status = $2,
			transfer_code = $3,
			updated_at = NOW()
		WHERE id = $1 AND status = $4
	`, id, domain.WithdrawalStatusProcessing, transferCode, domain.WithdrawalStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to mark withdrawal processing: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkCompletedTx finalizes a withdrawal. Only non-terminal requests match;
// a repeat delivery or an out-of-order event after failure changes nothing
// and returns changed=false with the current row.
func (r *WithdrawalRepository) MarkCompletedTx(ctx context.Context, tx pgx.Tx, id string) (bool, *domain.WithdrawalRequest, error) {
	query := `
		UPDATE withdrawal_requests
		SET status = $2,
			processed_at = NOW(),
			updated_at = NOW()
		WHERE id = $1 AND status IN ($3, $4)
		RETURNING ` + withdrawalColumns
	w, err := scanWithdrawal(tx.QueryRow(ctx, query, id,
		domain.WithdrawalStatusCompleted,
		domain.WithdrawalStatusPending, domain.WithdrawalStatusProcessing))
	if errors.Is(err, pgx.ErrNoRows) {
		current, gerr := r.getByIDTx(ctx, tx, id)
		if gerr != nil {
			return false, nil, gerr
		}
		return false, current, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("failed to mark withdrawal completed: %w", err)
	}
	return true, w, nil
}

// MarkFailedTx moves a non-terminal withdrawal to failed. The caller refunds
// the wallet in the same tx when changed=true.
func (r *WithdrawalRepository) MarkFailedTx(ctx context.Context, tx pgx.Tx, id, reason string) (bool, *domain.WithdrawalRequest, error) {
	query := `
		UPDATE withdrawal_requests
		SET status = $2,
			failure_reason = $3,
			processed_at = NOW(),
			updated_at = NOW()
		WHERE id = $1 AND status IN ($4, $5)
		RETURNING ` + withdrawalColumns
	w, err := scanWithdrawal(tx.QueryRow(ctx, query, id,
		domain.WithdrawalStatusFailed, reason,
		domain.WithdrawalStatusPending, domain.WithdrawalStatusProcessing))
	if errors.Is(err, pgx.ErrNoRows) {
		current, gerr := r.getByIDTx(ctx, tx, id)
		if gerr != nil {
			return false, nil, gerr
		}
		return false, current, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("failed to mark withdrawal failed: %w", err)
	}
	return true, w, nil
}

func (r *WithdrawalRepository) FindByStatus(ctx context.Context, status domain.WithdrawalStatus, limit int) ([]*domain.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	return r.queryWithdrawals(ctx, query, status, limit)
}

// FindPendingOlderThan returns pending requests that never reached the
// provider, e.g. after a crash between the debit and transfer initiation.
func (r *WithdrawalRepository) FindPendingOlderThan(ctx context.Context, age time.Duration, limit int) ([]*domain.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3
	`
	return r.queryWithdrawals(ctx, query, domain.WithdrawalStatusPending, time.Now().Add(-age), limit)
}

func (r *WithdrawalRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryWithdrawals(ctx, query, userID, limit, offset)
}

func (r *WithdrawalRepository) getByIDTx(ctx context.Context, tx pgx.Tx, id string) (*domain.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1`
	w, err := scanWithdrawal(tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}
	return w, nil
}

func (r *WithdrawalRepository) queryWithdrawals(ctx context.Context, query string, args ...any) ([]*domain.WithdrawalRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query withdrawals: %w", err)
	}
	defer rows.Close()

	var withdrawals []*domain.WithdrawalRequest
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating withdrawals: %w", err)
	}
	return withdrawals, nil
}

func scanWithdrawal(row pgx.Row) (*domain.WithdrawalRequest, error) {
	var w domain.WithdrawalRequest
	err := row.Scan(
		&w.ID, &w.UserID, &w.PayoutMethodID,
		&w.Amount, &w.Fee, &w.NetAmount,
		&w.Status, &w.PaymentReference,
		&w.TransferCode, &w.FailureReason, &w.ProcessedAt,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
