// internal/usecase/withdrawal/interface.go
package withdrawal

import (
	"context"
	"time"

	"giftwallet-service/internal/domain"
	"giftwallet-service/internal/paystack"

	"github.com/jackc/pgx/v5"
)

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// WithdrawalStore persists withdrawal requests. Transitions are conditional
// on the current status so repeated or out-of-order calls are no-ops.
type WithdrawalStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, w *domain.WithdrawalRequest) error
	GetByID(ctx context.Context, id string) (*domain.WithdrawalRequest, error)
	GetByPaymentReference(ctx context.Context, reference string) (*domain.WithdrawalRequest, error)
	GetByTransferCode(ctx context.Context, transferCode string) (*domain.WithdrawalRequest, error)
	MarkProcessing(ctx context.Context, id, transferCode string) (bool, error)
	MarkCompletedTx(ctx context.Context, tx pgx.Tx, id string) (bool, *domain.WithdrawalRequest, error)
	MarkFailedTx(ctx context.Context, tx pgx.Tx, id, reason string) (bool, *domain.WithdrawalRequest, error)
	FindByStatus(ctx context.Context, status domain.WithdrawalStatus, limit int) ([]*domain.WithdrawalRequest, error)
	FindPendingOlderThan(ctx context.Context, age time.Duration, limit int) ([]*domain.WithdrawalRequest, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.WithdrawalRequest, error)
}

// WalletStore is the only path to balance mutations.
type WalletStore interface {
	DebitForWithdrawalTx(ctx context.Context, tx pgx.Tx, userID string, amount int64, reference, description string) error
	RefundWithdrawalTx(ctx context.Context, tx pgx.Tx, userID string, amount int64, reference, description string) error
	IncrementTotalWithdrawnTx(ctx context.Context, tx pgx.Tx, userID string, amount int64) error
}

type PayoutMethodStore interface {
	GetByID(ctx context.Context, id string) (*domain.PayoutMethod, error)
	UpdateRecipientCode(ctx context.Context, id, recipientCode string) error
}

// Gateway is the payment provider surface this usecase needs.
type Gateway interface {
	CreateTransferRecipient(ctx context.Context, accountNumber, accountName, bankCode string) (string, error)
	InitiateTransfer(ctx context.Context, recipientCode string, amount int64, reference, reason string) (*paystack.Transfer, error)
	VerifyTransfer(ctx context.Context, transferCode string) (*paystack.Transfer, error)
}
