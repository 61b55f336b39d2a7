// internal/usecase/contribution/notifier.go
package contribution

import (
	"context"

	"giftwallet-service/internal/domain"

	"go.uber.org/zap"
)

// LogNotifier is the default Notifier. Real delivery (email, push) lives in
// the notification service; this records that the event was emitted.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) ContributionReceived(ctx context.Context, ownerID string, c *domain.Contribution, item *domain.WishlistItem) {
	n.logger.Info("contribution notification",
		zap.String("owner_id", ownerID),
		zap.String("contribution_id", c.ID),
		zap.String("item", item.Name),
		zap.Int64("amount", c.Amount),
		zap.Bool("item_funded", item.IsFunded))
}
