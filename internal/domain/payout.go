// internal/domain/payout.go
package domain

import (
	"time"
)

// PayoutMethod is a saved bank destination. At most one primary per user;
// the repository swaps the flag atomically. RecipientCode is the provider's
// transfer-recipient handle, created lazily on first transfer.
type PayoutMethod struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	BankName      string    `json:"bank_name"`
	BankCode      string    `json:"bank_code"`
	AccountNumber string    `json:"account_number"`
	AccountName   string    `json:"account_name"`
	RecipientCode *string   `json:"recipient_code,omitempty"`
	IsPrimary     bool      `json:"is_primary"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
