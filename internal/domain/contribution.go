// internal/domain/contribution.go
package domain

import (
	"time"
)

type ContributionStatus string

const (
	ContributionStatusPending   ContributionStatus = "pending"
	ContributionStatusCompleted ContributionStatus = "completed"
	ContributionStatusFailed    ContributionStatus = "failed"
	ContributionStatusRefunded  ContributionStatus = "refunded"
)

// Contribution is a pledge toward a wishlist item. PaymentReference is our
// internal reference, unique per contribution; ProviderReference correlates
// to the processor's charge.
type Contribution struct {
	ID                string             `json:"id"`
	WishlistID        string             `json:"wishlist_id"`
	WishlistItemID    string             `json:"wishlist_item_id"`
	ContributorName   string             `json:"contributor_name"`
	ContributorEmail  string             `json:"contributor_email"`
	Message           string             `json:"message,omitempty"`
	Amount            int64              `json:"amount"`
	Status            ContributionStatus `json:"status"`
	PaymentReference  string             `json:"payment_reference"`
	ProviderReference *string            `json:"provider_reference,omitempty"`
	PaidAt            *time.Time         `json:"paid_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}
