// internal/repository/wishlist_repo.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"giftwallet-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WishlistRepository struct {
	pool *pgxpool.Pool
}

func NewWishlistRepository(pool *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

func (r *WishlistRepository) GetByID(ctx context.Context, id string) (*domain.Wishlist, error) {
	var w domain.Wishlist
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, total_contributed, contributors_count, created_at, updated_at
		FROM wishlists WHERE id = $1
	`, id).Scan(
		&w.ID, &w.UserID, &w.Title,
		&w.TotalContributed, &w.ContributorsCount,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWishlistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	return &w, nil
}

func (r *WishlistRepository) GetItemByID(ctx context.Context, id string) (*domain.WishlistItem, error) {
	var item domain.WishlistItem
	err := r.pool.QueryRow(ctx, `
		SELECT id, wishlist_id, name, price, total_contributed, is_funded, funded_at, created_at, updated_at
		FROM wishlist_items WHERE id = $1
	`, id).Scan(
		&item.ID, &item.WishlistID, &item.Name, &item.Price,
		&item.TotalContributed, &item.IsFunded, &item.FundedAt,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWishlistItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist item: %w", err)
	}
	return &item, nil
}

// ApplyContributionTx adds a completed contribution to the item's running
// total and recomputes is_funded. funded_at is stamped only the first time
// the item crosses its price; later contributions never overwrite it.
func (r *WishlistRepository) ApplyContributionTx(ctx context.Context, tx pgx.Tx, itemID string, amount int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE wishlist_items
		SET total_contributed = total_contributed + $2,
			is_funded = (total_contributed + $2) >= price,
			funded_at = CASE
				WHEN funded_at IS NULL AND (total_contributed + $2) >= price THEN NOW()
				ELSE funded_at
			END,
			updated_at = NOW()
		WHERE id = $1
	`, itemID, amount)
	if err != nil {
		return fmt.Errorf("failed to apply contribution to item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWishlistItemNotFound
	}
	return nil
}

// RefreshAggregatesTx re-derives the wishlist-level counters from completed
// contribution rows instead of trusting incremental updates, so any earlier
// drift is corrected on the next completion.
func (r *WishlistRepository) RefreshAggregatesTx(ctx context.Context, tx pgx.Tx, wishlistID string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE wishlists
		SET total_contributed = COALESCE((
				SELECT SUM(amount) FROM contributions
				WHERE wishlist_id = $1 AND status = 'completed'
			), 0),
			contributors_count = COALESCE((
				SELECT COUNT(DISTINCT contributor_email) FROM contributions
				WHERE wishlist_id = $1 AND status = 'completed'
			), 0),
			updated_at = NOW()
		WHERE id = $1
	`, wishlistID)
	if err != nil {
		return fmt.Errorf("failed to refresh wishlist aggregates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWishlistNotFound
	}
	return nil
}
