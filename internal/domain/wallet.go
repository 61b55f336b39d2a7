// internal/domain/wallet.go
package domain

import (
	"time"
)

// Wallet holds a user's balances in naira major units. One row per user,
// created lazily on first access. Balance fields are only ever changed through
// the wallet repository's atomic operations.
type Wallet struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	AvailableBalance int64     `json:"available_balance"`
	PendingBalance   int64     `json:"pending_balance"`
	TotalReceived    int64     `json:"total_received"`
	TotalWithdrawn   int64     `json:"total_withdrawn"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type TransactionType string

const (
	TransactionTypeContribution TransactionType = "contribution"
	TransactionTypeWithdrawal   TransactionType = "withdrawal"
	TransactionTypeRefund       TransactionType = "refund"
	TransactionTypeFee          TransactionType = "fee"
)

// WalletTransaction is an append-only ledger entry. Amount is signed:
// positive for credits, negative for debits. BalanceAfter may be backfilled
// once async settlement confirms; no other field is ever updated.
type WalletTransaction struct {
	ID            string          `json:"id"`
	WalletID      string          `json:"wallet_id"`
	UserID        string          `json:"user_id"`
	Type          TransactionType `json:"type"`
	Amount        int64           `json:"amount"`
	BalanceBefore int64           `json:"balance_before"`
	BalanceAfter  *int64          `json:"balance_after,omitempty"`
	Reference     string          `json:"reference"`
	Description   string          `json:"description"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
