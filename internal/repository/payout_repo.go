// internal/repository/payout_repo.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"giftwallet-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PayoutMethodRepository struct {
	pool *pgxpool.Pool
}

func NewPayoutMethodRepository(pool *pgxpool.Pool) *PayoutMethodRepository {
	return &PayoutMethodRepository{pool: pool}
}

const payoutColumns = `id, user_id, bank_name, bank_code, account_number, account_name, recipient_code, is_primary, created_at, updated_at`

func (r *PayoutMethodRepository) Create(ctx context.Context, m *domain.PayoutMethod) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// First saved destination becomes primary automatically.
	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM payout_methods WHERE user_id = $1`, m.UserID).Scan(&count); err != nil {
		return fmt.Errorf("failed to count payout methods: %w", err)
	}
	m.IsPrimary = m.IsPrimary || count == 0

	if m.IsPrimary {
		if _, err := tx.Exec(ctx, `
			UPDATE payout_methods SET is_primary = FALSE, updated_at = NOW()
			WHERE user_id = $1 AND is_primary
		`, m.UserID); err != nil {
			return fmt.Errorf("failed to unset primary payout method: %w", err)
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO payout_methods (
			user_id, bank_name, bank_code, account_number, account_name,
			recipient_code, is_primary
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, m.UserID, m.BankName, m.BankCode, m.AccountNumber, m.AccountName,
		m.RecipientCode, m.IsPrimary,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payout method: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *PayoutMethodRepository) GetByID(ctx context.Context, id string) (*domain.PayoutMethod, error) {
	query := `SELECT ` + payoutColumns + ` FROM payout_methods WHERE id = $1`
	m, err := scanPayoutMethod(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPayoutMethodNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payout method: %w", err)
	}
	return m, nil
}

func (r *PayoutMethodRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.PayoutMethod, error) {
	query := `
		SELECT ` + payoutColumns + `
		FROM payout_methods
		WHERE user_id = $1
		ORDER BY is_primary DESC, created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payout methods: %w", err)
	}
	defer rows.Close()

	var methods []*domain.PayoutMethod
	for rows.Next() {
		m, err := scanPayoutMethod(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payout methods: %w", err)
	}
	return methods, nil
}

// SetPrimary promotes one method and demotes the rest in a single tx so the
// one-primary-per-user invariant holds at every commit point.
func (r *PayoutMethodRepository) SetPrimary(ctx context.Context, userID, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Demote first: the partial unique index on (user_id) WHERE is_primary
	// is checked per statement, so promoting before demoting would trip it.
	if _, err := tx.Exec(ctx, `
		UPDATE payout_methods SET is_primary = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND id <> $2 AND is_primary
	`, userID, id); err != nil {
		return fmt.Errorf("failed to unset previous primary: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE payout_methods SET is_primary = TRUE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to set primary payout method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPayoutMethodNotFound
	}

	return tx.Commit(ctx)
}

// UpdateRecipientCode stores the provider's transfer-recipient handle once
// it has been created.
func (r *PayoutMethodRepository) UpdateRecipientCode(ctx context.Context, id, recipientCode string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payout_methods
		SET recipient_code = $2, updated_at = NOW()
		WHERE id = $1
	`, id, recipientCode)
	if err != nil {
		return fmt.Errorf("failed to update recipient code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPayoutMethodNotFound
	}
	return nil
}

// Delete removes a destination from future use. Historical withdrawal rows
// keep their payout_method_id; there is no foreign key on that column.
func (r *PayoutMethodRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM payout_methods WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete payout method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPayoutMethodNotFound
	}
	return nil
}

func scanPayoutMethod(row pgx.Row) (*domain.PayoutMethod, error) {
	var m domain.PayoutMethod
	err := row.Scan(
		&m.ID, &m.UserID, &m.BankName, &m.BankCode,
		&m.AccountNumber, &m.AccountName, &m.RecipientCode, &m.IsPrimary,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
