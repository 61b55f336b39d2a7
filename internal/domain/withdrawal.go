// internal/domain/withdrawal.go
package domain

import (
	"time"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "pending"
	WithdrawalStatusProcessing WithdrawalStatus = "processing"
	WithdrawalStatusCompleted  WithdrawalStatus = "completed"
	WithdrawalStatusFailed     WithdrawalStatus = "failed"
)

// WithdrawalRequest tracks a payout from request to terminal state. The gross
// amount is debited from the wallet when the request is created; every request
// ends either completed (debit stands) or failed (debit refunded in full).
type WithdrawalRequest struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	PayoutMethodID   string           `json:"payout_method_id"`
	Amount           int64            `json:"amount"`
	Fee              int64            `json:"fee"`
	NetAmount        int64            `json:"net_amount"`
	Status           WithdrawalStatus `json:"status"`
	PaymentReference string           `json:"payment_reference"`
	TransferCode     *string          `json:"transfer_code,omitempty"`
	FailureReason    *string          `json:"failure_reason,omitempty"`
	ProcessedAt      *time.Time       `json:"processed_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Terminal reports whether no further transition is allowed.
func (s WithdrawalStatus) Terminal() bool {
	return s == WithdrawalStatusCompleted || s == WithdrawalStatusFailed
}
