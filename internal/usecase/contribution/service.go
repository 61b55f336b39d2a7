// internal/usecase/contribution/service.go
package contribution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"giftwallet-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Service turns provider-confirmed charges into completed contributions and
// wallet credits, exactly once per payment reference.
type Service struct {
	txr           TxRunner
	contributions ContributionStore
	wishlists     WishlistStore
	wallets       WalletStore
	notifier      Notifier
	logger        *zap.Logger
}

func New(
	txr TxRunner,
	contributions ContributionStore,
	wishlists WishlistStore,
	wallets WalletStore,
	notifier Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		txr:           txr,
		contributions: contributions,
		wishlists:     wishlists,
		wallets:       wallets,
		notifier:      notifier,
		logger:        logger,
	}
}

type CreateInput struct {
	WishlistItemID   string
	ContributorName  string
	ContributorEmail string
	Message          string
	Amount           int64
}

// Create records a pending pledge toward an item. The provider confirms the
// charge asynchronously; until then nothing touches the wallet.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Contribution, error) {
	if input.Amount <= 0 || input.ContributorEmail == "" {
		return nil, domain.ErrInvalidRequest
	}

	item, err := s.wishlists.GetItemByID(ctx, input.WishlistItemID)
	if err != nil {
		return nil, err
	}

	c := &domain.Contribution{
		WishlistID:       item.WishlistID,
		WishlistItemID:   item.ID,
		ContributorName:  input.ContributorName,
		ContributorEmail: input.ContributorEmail,
		Message:          input.Message,
		Amount:           input.Amount,
		PaymentReference: "CTB-" + uuid.NewString(),
	}
	if err := s.contributions.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// HandleSuccessfulPayment completes a contribution after the provider
// confirmed the charge. Steps inside one transaction: flip the contribution
// to completed, roll the amount into the item (stamping funded_at first time
// only), re-derive the wishlist aggregates, and credit the owner's wallet.
// The status guard makes a duplicate delivery a no-op before any money moves.
func (s *Service) HandleSuccessfulPayment(ctx context.Context, contributionID, providerReference string) error {
	c, err := s.contributions.GetByID(ctx, contributionID)
	if err != nil {
		return err
	}
	if c.Status == domain.ContributionStatusCompleted {
		s.logger.Debug("contribution already completed, skipping",
			zap.String("contribution_id", c.ID),
			zap.String("reference", c.PaymentReference))
		return nil
	}

	item, err := s.wishlists.GetItemByID(ctx, c.WishlistItemID)
	if err != nil {
		return fmt.Errorf("contribution %s references missing item: %w", c.ID, err)
	}
	wishlist, err := s.wishlists.GetByID(ctx, c.WishlistID)
	if err != nil {
		return fmt.Errorf("contribution %s references missing wishlist: %w", c.ID, err)
	}

	err = s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		changed, err := s.contributions.MarkCompletedTx(ctx, tx, c.ID, providerReference, time.Now())
		if err != nil {
			return err
		}
		if !changed {
			// Raced with another delivery of the same event.
			return nil
		}
		if err := s.wishlists.ApplyContributionTx(ctx, tx, item.ID, c.Amount); err != nil {
			return err
		}
		if err := s.wishlists.RefreshAggregatesTx(ctx, tx, wishlist.ID); err != nil {
			return err
		}
		return s.wallets.CreditContributionTx(ctx, tx, wishlist.UserID, c.Amount,
			c.PaymentReference, fmt.Sprintf("Contribution to %s", item.Name))
	})
	if err != nil {
		return err
	}

	s.logger.Info("contribution completed",
		zap.String("contribution_id", c.ID),
		zap.String("reference", c.PaymentReference),
		zap.Int64("amount", c.Amount),
		zap.String("owner_id", wishlist.UserID))

	// Best effort; a failed notification never unwinds settled money.
	if updated, err := s.wishlists.GetItemByID(ctx, item.ID); err == nil {
		item = updated
	}
	s.notifier.ContributionReceived(ctx, wishlist.UserID, c, item)
	return nil
}

// HandleSuccessfulPaymentByReference resolves the contribution from the
// provider's charge reference. Unknown references are logged and dropped:
// we only act on charges we initiated.
func (s *Service) HandleSuccessfulPaymentByReference(ctx context.Context, reference, providerReference string) error {
	c, err := s.contributions.GetByPaymentReference(ctx, reference)
	if err != nil {
		if errors.Is(err, domain.ErrContributionNotFound) {
			s.logger.Warn("charge event for unknown contribution",
				zap.String("reference", reference))
			return nil
		}
		return err
	}
	return s.HandleSuccessfulPayment(ctx, c.ID, providerReference)
}
