// internal/usecase/withdrawal/service.go
package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"giftwallet-service/internal/config"
	"giftwallet-service/internal/domain"
	"giftwallet-service/internal/paystack"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const cancelledReason = "cancelled by user"

// Service drives a withdrawal from request to terminal state. The gross
// amount is debited when the request is created; every request ends either
// completed (debit stands, total_withdrawn bumped) or failed (debit refunded
// in full). Complete and Fail are callable any number of times from any
// trigger (webhook, poll sweep, user cancel) and act at most once.
type Service struct {
	txr         TxRunner
	withdrawals WithdrawalStore
	wallets     WalletStore
	payouts     PayoutMethodStore
	gateway     Gateway
	fees        config.FeeSchedule
	limits      config.WithdrawalLimits
	logger      *zap.Logger
}

func New(
	txr TxRunner,
	withdrawals WithdrawalStore,
	wallets WalletStore,
	payouts PayoutMethodStore,
	gateway Gateway,
	fees config.FeeSchedule,
	limits config.WithdrawalLimits,
	logger *zap.Logger,
) *Service {
	return &Service{
		txr:         txr,
		withdrawals: withdrawals,
		wallets:     wallets,
		payouts:     payouts,
		gateway:     gateway,
		fees:        fees,
		limits:      limits,
		logger:      logger,
	}
}

type CreateInput struct {
	UserID         string
	PayoutMethodID string
	Amount         int64
	Verified       bool
}

// Create validates the amount against the tier limits, reserves the gross
// amount from the available balance and records the pending request, all in
// one transaction. Reserving eagerly means no cross-request locking is needed
// while the multi-second external transfer is in flight.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.WithdrawalRequest, error) {
	if input.Amount < s.limits.Min {
		return nil, domain.ErrAmountBelowMinimum
	}
	if input.Amount > s.limits.Max(input.Verified) {
		return nil, domain.ErrAmountAboveLimit
	}

	method, err := s.payouts.GetByID(ctx, input.PayoutMethodID)
	if err != nil {
		return nil, err
	}
	if method.UserID != input.UserID {
		return nil, domain.ErrForbidden
	}

	fee := s.fees.Calculate(input.Amount)
	w := &domain.WithdrawalRequest{
		UserID:           input.UserID,
		PayoutMethodID:   method.ID,
		Amount:           input.Amount,
		Fee:              fee,
		NetAmount:        input.Amount - fee,
		PaymentReference: "WDR-" + uuid.NewString(),
	}

	err = s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		if err := s.wallets.DebitForWithdrawalTx(ctx, tx, w.UserID, w.Amount, w.PaymentReference,
			fmt.Sprintf("Withdrawal to %s (%s)", method.BankName, method.AccountNumber)); err != nil {
			return err
		}
		return s.withdrawals.CreateTx(ctx, tx, w)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal request created",
		zap.String("withdrawal_id", w.ID),
		zap.String("user_id", w.UserID),
		zap.Int64("amount", w.Amount),
		zap.Int64("fee", w.Fee),
		zap.Int64("net_amount", w.NetAmount))
	return w, nil
}

// Process initiates the provider transfer for a pending request. A definitive
// gateway rejection fails the request (refunding the debit) right away; an
// ambiguous transport error leaves it pending for the reconciliation sweep,
// since blindly retrying an initiate call risks a double transfer.
func (s *Service) Process(ctx context.Context, id string) error {
	w, err := s.withdrawals.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if w.Status != domain.WithdrawalStatusPending {
		s.logger.Debug("withdrawal not pending, skipping process",
			zap.String("withdrawal_id", id),
			zap.String("status", string(w.Status)))
		return nil
	}

	method, err := s.payouts.GetByID(ctx, w.PayoutMethodID)
	if err != nil {
		if errors.Is(err, domain.ErrPayoutMethodNotFound) {
			return s.Fail(ctx, id, "payout method no longer exists")
		}
		return err
	}

	recipientCode, err := s.ensureRecipient(ctx, method)
	if err != nil {
		if errors.Is(err, domain.ErrGatewayUnavailable) {
			return err
		}
		return s.Fail(ctx, id, gatewayReason(err))
	}

	transfer, err := s.gateway.InitiateTransfer(ctx, recipientCode, w.NetAmount, w.PaymentReference, "Wishlist withdrawal")
	if err != nil {
		if errors.Is(err, domain.ErrGatewayUnavailable) {
			return err
		}
		return s.Fail(ctx, id, gatewayReason(err))
	}

	switch transfer.Status {
	case paystack.TransferStatusFailed, paystack.TransferStatusReversed:
		return s.Fail(ctx, id, transfer.Message)
	default:
		changed, err := s.withdrawals.MarkProcessing(ctx, id, transfer.TransferCode)
		if err != nil {
			return err
		}
		if !changed {
			s.logger.Warn("withdrawal left pending state during transfer initiation",
				zap.String("withdrawal_id", id),
				zap.String("transfer_code", transfer.TransferCode))
		}
		return nil
	}
}

// Complete finalizes a successful transfer. Funds were debited at request
// time, so this only flips the status and bumps the lifetime total; repeat
// deliveries change nothing.
func (s *Service) Complete(ctx context.Context, id string) error {
	return s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		changed, w, err := s.withdrawals.MarkCompletedTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if !changed {
			s.logger.Debug("withdrawal already terminal, complete is a no-op",
				zap.String("withdrawal_id", id),
				zap.String("status", string(w.Status)))
			return nil
		}
		if err := s.wallets.IncrementTotalWithdrawnTx(ctx, tx, w.UserID, w.Amount); err != nil {
			return err
		}
		s.logger.Info("withdrawal completed",
			zap.String("withdrawal_id", id),
			zap.Int64("amount", w.Amount))
		return nil
	})
}

// Fail moves a non-terminal request to failed and refunds the full gross
// amount; the fee is never charged on a failed transfer. The status guard
// and the refund share a transaction, so the refund happens exactly once.
func (s *Service) Fail(ctx context.Context, id, reason string) error {
	return s.txr.WithinTx(ctx, func(tx pgx.Tx) error {
		changed, w, err := s.withdrawals.MarkFailedTx(ctx, tx, id, reason)
		if err != nil {
			return err
		}
		if !changed {
			s.logger.Debug("withdrawal already terminal, fail is a no-op",
				zap.String("withdrawal_id", id),
				zap.String("status", string(w.Status)))
			return nil
		}
		if err := s.wallets.RefundWithdrawalTx(ctx, tx, w.UserID, w.Amount,
			w.PaymentReference+"-refund", "Withdrawal refund: "+reason); err != nil {
			return err
		}
		s.logger.Info("withdrawal failed, balance refunded",
			zap.String("withdrawal_id", id),
			zap.Int64("amount", w.Amount),
			zap.String("reason", reason))
		return nil
	})
}

// Cancel is a user-driven failure. Once a transfer code exists the money may
// already be moving at the provider, so cancellation is refused and the
// reconciliation sweep decides the outcome.
func (s *Service) Cancel(ctx context.Context, userID, id string) error {
	w, err := s.withdrawals.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if w.UserID != userID {
		return domain.ErrForbidden
	}
	if w.Status.Terminal() {
		return nil
	}
	if w.TransferCode != nil {
		return domain.ErrTransferAlreadyInitiated
	}
	return s.Fail(ctx, id, cancelledReason)
}

// ResolveTransferEvent applies a provider-reported transfer outcome. Both the
// webhook handler and the poll sweep land here, so ordering quirks are
// handled in one place: a success report for an already-failed withdrawal is
// a no-op, and unknown references are not an error; the provider is not our
// source of truth for existence.
func (s *Service) ResolveTransferEvent(ctx context.Context, reference, transferCode, status, message string) error {
	w, err := s.findByCorrelation(ctx, reference, transferCode)
	if err != nil {
		if errors.Is(err, domain.ErrWithdrawalNotFound) {
			s.logger.Warn("transfer event for unknown withdrawal",
				zap.String("reference", reference),
				zap.String("transfer_code", transferCode),
				zap.String("status", status))
			return nil
		}
		return err
	}

	switch status {
	case paystack.TransferStatusSuccess:
		return s.Complete(ctx, w.ID)
	case paystack.TransferStatusFailed:
		if message == "" {
			message = "transfer failed"
		}
		return s.Fail(ctx, w.ID, message)
	case paystack.TransferStatusReversed:
		return s.Fail(ctx, w.ID, "reversed")
	default:
		// Still in flight at the provider; nothing to do yet.
		return nil
	}
}

// ReconcileProcessing re-polls the provider for every in-flight transfer and
// applies the reported state. One item's failure never aborts the sweep.
func (s *Service) ReconcileProcessing(ctx context.Context, limit int) error {
	withdrawals, err := s.withdrawals.FindByStatus(ctx, domain.WithdrawalStatusProcessing, limit)
	if err != nil {
		return fmt.Errorf("failed to load processing withdrawals: %w", err)
	}

	for _, w := range withdrawals {
		if w.TransferCode == nil {
			continue
		}
		transfer, err := s.gateway.VerifyTransfer(ctx, *w.TransferCode)
		if err != nil {
			s.logger.Error("failed to verify transfer",
				zap.Error(err),
				zap.String("withdrawal_id", w.ID),
				zap.String("transfer_code", *w.TransferCode))
			continue
		}
		if err := s.ResolveTransferEvent(ctx, w.PaymentReference, *w.TransferCode, transfer.Status, transfer.Message); err != nil {
			s.logger.Error("failed to reconcile withdrawal",
				zap.Error(err),
				zap.String("withdrawal_id", w.ID))
		}
	}
	return nil
}

// ReprocessStuckPending picks up requests that were debited but never reached
// the provider (crash or timeout between debit and initiation) and runs the
// normal Process path for each.
func (s *Service) ReprocessStuckPending(ctx context.Context, minAge time.Duration, limit int) error {
	withdrawals, err := s.withdrawals.FindPendingOlderThan(ctx, minAge, limit)
	if err != nil {
		return fmt.Errorf("failed to load stuck pending withdrawals: %w", err)
	}

	for _, w := range withdrawals {
		if err := s.Process(ctx, w.ID); err != nil {
			s.logger.Error("failed to reprocess pending withdrawal",
				zap.Error(err),
				zap.String("withdrawal_id", w.ID))
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*domain.WithdrawalRequest, error) {
	w, err := s.withdrawals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return w, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.WithdrawalRequest, error) {
	return s.withdrawals.ListByUserID(ctx, userID, limit, offset)
}

// findByCorrelation locates a withdrawal from whatever identifiers the
// provider sent. The payment reference is ours and preferred; older transfer
// events may carry only the transfer code.
func (s *Service) findByCorrelation(ctx context.Context, reference, transferCode string) (*domain.WithdrawalRequest, error) {
	if reference != "" {
		w, err := s.withdrawals.GetByPaymentReference(ctx, reference)
		if err == nil {
			return w, nil
		}
		if !errors.Is(err, domain.ErrWithdrawalNotFound) {
			return nil, err
		}
	}
	if transferCode != "" {
		return s.withdrawals.GetByTransferCode(ctx, transferCode)
	}
	return nil, domain.ErrWithdrawalNotFound
}

func (s *Service) ensureRecipient(ctx context.Context, method *domain.PayoutMethod) (string, error) {
	if method.RecipientCode != nil && *method.RecipientCode != "" {
		return *method.RecipientCode, nil
	}

	code, err := s.gateway.CreateTransferRecipient(ctx, method.AccountNumber, method.AccountName, method.BankCode)
	if err != nil {
		return "", err
	}
	if err := s.payouts.UpdateRecipientCode(ctx, method.ID, code); err != nil {
		// The recipient exists at the provider; losing the cached code only
		// costs a duplicate create next time.
		s.logger.Warn("failed to store recipient code", zap.Error(err),
			zap.String("payout_method_id", method.ID))
	}
	return code, nil
}

func gatewayReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
