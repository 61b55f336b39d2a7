// internal/usecase/contribution/interface.go
package contribution

import (
	"context"
	"time"

	"giftwallet-service/internal/domain"

	"github.com/jackc/pgx/v5"
)

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type ContributionStore interface {
	Create(ctx context.Context, c *domain.Contribution) error
	GetByID(ctx context.Context, id string) (*domain.Contribution, error)
	GetByPaymentReference(ctx context.Context, reference string) (*domain.Contribution, error)
	MarkCompletedTx(ctx context.Context, tx pgx.Tx, id, providerReference string, paidAt time.Time) (bool, error)
}

type WishlistStore interface {
	GetByID(ctx context.Context, id string) (*domain.Wishlist, error)
	GetItemByID(ctx context.Context, id string) (*domain.WishlistItem, error)
	ApplyContributionTx(ctx context.Context, tx pgx.Tx, itemID string, amount int64) error
	RefreshAggregatesTx(ctx context.Context, tx pgx.Tx, wishlistID string) error
}

type WalletStore interface {
	CreditContributionTx(ctx context.Context, tx pgx.Tx, userID string, amount int64, reference, description string) error
}

// Notifier delivers the owner notification after a contribution settles.
// Delivery is best-effort and never affects the financial transaction.
type Notifier interface {
	ContributionReceived(ctx context.Context, ownerID string, c *domain.Contribution, item *domain.WishlistItem)
}
