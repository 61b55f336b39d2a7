// internal/repository/contribution_repo.go
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

type ContributionRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewContributionRepository(pool *pgxpool.Pool, logger *zap.Logger) *ContributionRepository {
	return &ContributionRepository{pool: pool, logger: logger}
}

const contributionColumns = `id, wishlist_id, wishlist_item_id, contributor_name, contributor_email, message, amount, status, payment_reference, provider_reference, paid_at, created_at, updated_at`

func (r *ContributionRepository) Create(ctx context.Context, c *domain.Contribution) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO contributions (
			wishlist_id, wishlist_item_id, contributor_name, contributor_email,
			message, amount, status, payment_reference
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, c.WishlistID, c.WishlistItemID, c.ContributorName, c.ContributorEmail,
		c.Message, c.Amount, domain.ContributionStatusPending, c.PaymentReference,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("failed to create contribution: %w", err)
	}
	c.Status = domain.ContributionStatusPending

	r.logger.Info("contribution created",
		zap.String("contribution_id", c.ID),
		zap.String("reference", c.PaymentReference),
		zap.Int64("amount", c.Amount))
	return nil
}

func (r *ContributionRepository) GetByID(ctx context.Context, id string) (*domain.Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contributions WHERE id = $1`
	c, err := scanContribution(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrContributionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contribution: %w", err)
	}
	return c, nil
}

func (r *ContributionRepository) GetByPaymentReference(ctx context.Context, reference string) (*domain.Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contributions WHERE payment_reference = $1`
	c, err := scanContribution(r.pool.QueryRow(ctx, query, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrContributionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contribution by reference: %w", err)
	}
	return c, nil
}

// MarkCompletedTx flips a pending contribution to completed. The status guard
// makes the transition idempotent: a second delivery of the same charge event
// matches zero rows and reports changed=false.
func (r *ContributionRepository) MarkCompletedTx(ctx context.Context, tx pgx.Tx, id, providerReference string, paidAt time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE contributions
		SET status = $2,
			provider_reference = $3,
			paid_at = $4,
			updated_at = NOW()
		WHERE id = $1 AND status = $5
	`, id, domain.ContributionStatusCompleted, providerReference, paidAt, domain.ContributionStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to mark contribution completed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ContributionRepository) ListByWishlist(ctx context.Context, wishlistID string, limit, offset int) ([]*domain.Contribution, error) {
	query := `
		SELECT ` + contributionColumns + `
		FROM contributions
		WHERE wishlist_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, wishlistID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var contributions []*domain.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, err
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contributions: %w", err)
	}
	return contributions, nil
}

func scanContribution(row pgx.Row) (*domain.Contribution, error) {
	var c domain.Contribution
	err := row.Scan(
		&c.ID, &c.WishlistID, &c.WishlistItemID,
		&c.ContributorName, &c.ContributorEmail, &c.Message,
		&c.Amount, &c.Status, &c.PaymentReference,
		&c.ProviderReference, &c.PaidAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
