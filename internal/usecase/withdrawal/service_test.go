package withdrawal

import (
	"context"
	"strconv"
	"testing"
	"time"

	"giftwallet-service/internal/config"
	"giftwallet-service/internal/domain"
	"giftwallet-service/internal/paystack"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ============================================================================
// FAKES
// ============================================================================

type fakeTxRunner struct{}

func (fakeTxRunner) WithinTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeWithdrawalStore struct {
	byID map[string]*domain.WithdrawalRequest
	seq  int
}

func newFakeWithdrawalStore() *fakeWithdrawalStore {
	return &fakeWithdrawalStore{byID: make(map[string]*domain.WithdrawalRequest)}
}

func (s *fakeWithdrawalStore) CreateTx(_ context.Context, _ pgx.Tx, w *domain.WithdrawalRequest) error {
	s.seq++
	w.ID = "wd-" + strconv.Itoa(s.seq)
	w.Status = domain.WithdrawalStatusPending
	w.CreatedAt = time.Now()
	s.byID[w.ID] = w
	return nil
}

func (s *fakeWithdrawalStore) GetByID(_ context.Context, id string) (*domain.WithdrawalRequest, error) {
	w, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrWithdrawalNotFound
	}
	cp := *w
	return &cp, nil
}

func (s *fakeWithdrawalStore) GetByPaymentReference(_ context.Context, reference string) (*domain.WithdrawalRequest, error) {
	for _, w := range s.byID {
		if w.PaymentReference == reference {
			cp := *w
			return &cp, nil
		}
	}
	return nil, domain.ErrWithdrawalNotFound
}

func (s *fakeWithdrawalStore) GetByTransferCode(_ context.Context, transferCode string) (*domain.WithdrawalRequest, error) {
	for _, w := range s.byID {
		if w.TransferCode != nil && *w.TransferCode == transferCode {
			cp := *w
			return &cp, nil
		}
	}
	return nil, domain.ErrWithdrawalNotFound
}

func (s *fakeWithdrawalStore) MarkProcessing(_ context.Context, id, transferCode string) (bool, error) {
	w, ok := s.byID[id]
	if !ok {
		return false, domain.ErrWithdrawalNotFound
	}
	if w.Status != domain.WithdrawalStatusPending {
		return false, nil
	}
	w.Status = domain.WithdrawalStatusProcessing
	w.TransferCode = &transferCode
	return true, nil
}

func (s *fakeWithdrawalStore) MarkCompletedTx(_ context.Context, _ pgx.Tx, id string) (bool, *domain.WithdrawalRequest, error) {
	w, ok := s.byID[id]
	if !ok {
		return false, nil, domain.ErrWithdrawalNotFound
	}
	if w.Status.Terminal() {
		cp := *w
		return false, &cp, nil
	}
	w.Status = domain.WithdrawalStatusCompleted
	now := time.Now()
	w.ProcessedAt = &now
	cp := *w
	return true, &cp, nil
}

func (s *fakeWithdrawalStore) MarkFailedTx(_ context.Context, _ pgx.Tx, id, reason string) (bool, *domain.WithdrawalRequest, error) {
	w, ok := s.byID[id]
	if !ok {
		return false, nil, domain.ErrWithdrawalNotFound
	}
	if w.Status.Terminal() {
		cp := *w
		return false, &cp, nil
	}
	w.Status = domain.WithdrawalStatusFailed
	w.FailureReason = &reason
	now := time.Now()
	w.ProcessedAt = &now
	cp := *w
	return true, &cp, nil
}

func (s *fakeWithdrawalStore) FindByStatus(_ context.Context, status domain.WithdrawalStatus, limit int) ([]*domain.WithdrawalRequest, error) {
	var out []*domain.WithdrawalRequest
	for _, w := range s.byID {
		if w.Status == status && len(out) < limit {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeWithdrawalStore) FindPendingOlderThan(_ context.Context, age time.Duration, limit int) ([]*domain.WithdrawalRequest, error) {
	cutoff := time.Now().Add(-age)
	var out []*domain.WithdrawalRequest
	for _, w := range s.byID {
		if w.Status == domain.WithdrawalStatusPending && w.CreatedAt.Before(cutoff) && len(out) < limit {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeWithdrawalStore) ListByUserID(_ context.Context, userID string, limit, _ int) ([]*domain.WithdrawalRequest, error) {
	var out []*domain.WithdrawalRequest
	for _, w := range s.byID {
		if w.UserID == userID && len(out) < limit {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeWalletStore struct {
	balance        int64
	totalWithdrawn int64
	refunds        int
}

func (s *fakeWalletStore) DebitForWithdrawalTx(_ context.Context, _ pgx.Tx, _ string, amount int64, _, _ string) error {
	if s.balance < amount {
		return domain.ErrInsufficientFunds
	}
	s.balance -= amount
	return nil
}

func (s *fakeWalletStore) RefundWithdrawalTx(_ context.Context, _ pgx.Tx, _ string, amount int64, _, _ string) error {
	s.balance += amount
	s.refunds++
	return nil
}

func (s *fakeWalletStore) IncrementTotalWithdrawnTx(_ context.Context, _ pgx.Tx, _ string, amount int64) error {
	s.totalWithdrawn += amount
	return nil
}

type fakePayoutStore struct {
	methods map[string]*domain.PayoutMethod
}

func (s *fakePayoutStore) GetByID(_ context.Context, id string) (*domain.PayoutMethod, error) {
	m, ok := s.methods[id]
	if !ok {
		return nil, domain.ErrPayoutMethodNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *fakePayoutStore) UpdateRecipientCode(_ context.Context, id, code string) error {
	m, ok := s.methods[id]
	if !ok {
		return domain.ErrPayoutMethodNotFound
	}
	m.RecipientCode = &code
	return nil
}

type fakeGateway struct {
	initiateErr     error
	initiateStatus  string
	verifyStatus    string
	verifyErr       error
	initiateCalls   int
	recipientCalls  int
	lastNetAmount   int64
	lastReference   string
}

func (g *fakeGateway) CreateTransferRecipient(_ context.Context, _, _, _ string) (string, error) {
	g.recipientCalls++
	return "RCP_test", nil
}

func (g *fakeGateway) InitiateTransfer(_ context.Context, _ string, amount int64, reference, _ string) (*paystack.Transfer, error) {
	g.initiateCalls++
	g.lastNetAmount = amount
	g.lastReference = reference
	if g.initiateErr != nil {
		return nil, g.initiateErr
	}
	status := g.initiateStatus
	if status == "" {
		status = paystack.TransferStatusPending
	}
	return &paystack.Transfer{
		TransferCode: "TRF_test",
		Reference:    reference,
		Status:       status,
	}, nil
}

func (g *fakeGateway) VerifyTransfer(_ context.Context, transferCode string) (*paystack.Transfer, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return &paystack.Transfer{
		TransferCode: transferCode,
		Status:       g.verifyStatus,
	}, nil
}

type fixture struct {
	svc         *Service
	withdrawals *fakeWithdrawalStore
	wallet      *fakeWalletStore
	gateway     *fakeGateway
	payouts     *fakePayoutStore
}

func newFixture(balance int64) *fixture {
	withdrawals := newFakeWithdrawalStore()
	wallet := &fakeWalletStore{balance: balance}
	gateway := &fakeGateway{}
	payouts := &fakePayoutStore{methods: map[string]*domain.PayoutMethod{
		"pm-1": {
			ID:            "pm-1",
			UserID:        "user-1",
			BankName:      "Test Bank",
			BankCode:      "058",
			AccountNumber: "0123456789",
			AccountName:   "ADA OBI",
		},
	}}

	svc := New(
		fakeTxRunner{}, withdrawals, wallet, payouts, gateway,
		config.FeeSchedule{Base: 10, Percent: 0.005, Cap: 50},
		config.WithdrawalLimits{Min: 1000, MaxStandard: 50000, MaxVerified: 500000},
		zap.NewNop(),
	)
	return &fixture{svc: svc, withdrawals: withdrawals, wallet: wallet, gateway: gateway, payouts: payouts}
}

func (f *fixture) create(t *testing.T, amount int64) *domain.WithdrawalRequest {
	t.Helper()
	w, err := f.svc.Create(context.Background(), CreateInput{
		UserID:         "user-1",
		PayoutMethodID: "pm-1",
		Amount:         amount,
	})
	require.NoError(t, err)
	return w
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateComputesFeeAndDebitsGross(t *testing.T) {
	f := newFixture(20000)

	w := f.create(t, 10000)

	// base 10 + 0.5% of 10000 = 60, capped at 50
	assert.Equal(t, int64(50), w.Fee)
	assert.Equal(t, int64(9950), w.NetAmount)
	assert.Equal(t, domain.WithdrawalStatusPending, w.Status)
	assert.Equal(t, int64(10000), f.wallet.balance)
}

func TestCreateInsufficientFunds(t *testing.T) {
	f := newFixture(500)

	_, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "user-1", PayoutMethodID: "pm-1", Amount: 5000,
	})

	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Empty(t, f.withdrawals.byID)
	assert.Equal(t, int64(500), f.wallet.balance)
}

func TestCreateLimits(t *testing.T) {
	f := newFixture(1000000)

	_, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "user-1", PayoutMethodID: "pm-1", Amount: 999,
	})
	assert.ErrorIs(t, err, domain.ErrAmountBelowMinimum)

	_, err = f.svc.Create(context.Background(), CreateInput{
		UserID: "user-1", PayoutMethodID: "pm-1", Amount: 60000,
	})
	assert.ErrorIs(t, err, domain.ErrAmountAboveLimit)

	_, err = f.svc.Create(context.Background(), CreateInput{
		UserID: "user-1", PayoutMethodID: "pm-1", Amount: 60000, Verified: true,
	})
	assert.NoError(t, err)
}

func TestCreateRejectsForeignPayoutMethod(t *testing.T) {
	f := newFixture(20000)
	f.payouts.methods["pm-2"] = &domain.PayoutMethod{ID: "pm-2", UserID: "someone-else"}

	_, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "user-1", PayoutMethodID: "pm-2", Amount: 5000,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestProcessInitiatesTransfer(t *testing.T) {
	f := newFixture(20000)
	w := f.create(t, 10000)

	require.NoError(t, f.svc.Process(context.Background(), w.ID))

	got := f.withdrawals.byID[w.ID]
	assert.Equal(t, domain.WithdrawalStatusProcessing, got.Status)
	require.NotNil(t, got.TransferCode)
	assert.Equal(t, "TRF_test", *got.TransferCode)
	assert.Equal(t, int64(9950), f.gateway.lastNetAmount)
	assert.Equal(t, w.PaymentReference, f.gateway.lastReference)

	// recipient was created lazily and cached on the method
	require.NotNil(t, f.payouts.methods["pm-1"].RecipientCode)
	assert.Equal(t, "RCP_test", *f.payouts.methods["pm-1"].RecipientCode)
}

func TestProcessReusesStoredRecipient(t *testing.T) {
	f := newFixture(40000)
	code := "RCP_existing"
	f.payouts.methods["pm-1"].RecipientCode = &code

	w := f.create(t, 10000)
	require.NoError(t, f.svc.Process(context.Background(), w.ID))

	assert.Zero(t, f.gateway.recipientCalls)
}

func TestProcessGatewayUnavailableLeavesPending(t *testing.T) {
	f := newFixture(20000)
	w := f.create(t, 10000)
	f.gateway.initiateErr = domain.ErrGatewayUnavailable

	err := f.svc.Process(context.Background(), w.ID)

	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	got := f.withdrawals.byID[w.ID]
	assert.Equal(t, domain.WithdrawalStatusPending, got.Status)
	assert.Zero(t, f.wallet.refunds)
	assert.Equal(t, int64(10000), f.wallet.balance)
}

func TestProcessGatewayRejectionFailsAndRefunds(t *testing.T) {
	f := newFixture(20000)
	w := f.create(t, 10000)
	f.gateway.initiateErr = domain.ErrGateway

	require.NoError(t, f.svc.Process(context.Background(), w.ID))

	got := f.withdrawals.byID[w.ID]
	assert.Equal(t, domain.WithdrawalStatusFailed, got.Status)
	// full gross refund, no fee charged on failure
	assert.Equal(t, int64(20000), f.wallet.balance)
	assert.Equal(t, 1, f.wallet.refunds)
	assert.Zero(t, f.wallet.totalWithdrawn)
}

func TestProcessSkipsNonPending(t *testing.T) {
	f := newFixture(20000)
	w := f.create(t, 10000)
	require.NoError(t, f.svc.Process(context.Background(), w.ID))

	calls := f.gateway.initiateCalls
	require.NoError(t, f.svc.Process(context.Background(), w.ID))
	assert.Equal(t, calls, f.gateway.initiateCalls)
}

func TestCompleteIsIdempotent(t *testing.T) {
	f := newFixture(20000)
	w := f.create(t, 10000)
	require.NoError(t, f.svc.Process(context.Background(), w.ID))

	require.NoError(t, f.svc.Complete(context.Background(), w.ID))
	require.NoError(t, f.svc.Complete(context.Background(), w.ID))

	assert.Equal(t, domain.WithdrawalStatusCompleted, f.withdrawals.byID[w.ID].Status)
	assert.Equal(t, int64(10000), f.wallet.totalWithdrawn)
	assert.Equal(t, int64(10000), f.wallet.balance)
	assert.Zero(t, f.wallet.refunds)
}

func TestFailedThenSuccessEventIsNoOp(t *testing.T) {
	f := newFixture(20000)
	w := f.create(t, 10000)
	require.NoError(t, f.svc.Process(context.Background(), w.ID))

	require.NoError(t, f.svc.Fail(context.Background(), w.ID, "provider reported failure"))
	// late success delivery for the same transfer must not resurrect it
	require.NoError(t, f.svc.ResolveTransferEvent(context.Background(),
		w.PaymentReference, "TRF_test", paystack.TransferStatusSuccess, ""))

	got := f.withdrawals.byID[w.ID]
	assert.Equal(t, domain.WithdrawalStatusFailed, got.Status)
	assert.Equal(t, 1, f.wallet.refunds)
	assert.Equal(t, int64(20000), f.wallet.balance)
	assert.Zero(t, f.wallet.totalWithdrawn)
}

func TestCancelPendingRefunds(t *testing.T) {
	f := newFixture(20000)
	w := f.create(t, 10000)

	require.NoError(t, f.svc.Cancel(context.Background(), "user-1", w.ID))

	got := f.withdrawals.byID[w.ID]
	assert.Equal(t, domain.WithdrawalStatusFailed, got.Status)
	require.NotNil(t, got.FailureReason)
	assert.Equal(t, cancelledReason, *got.FailureReason)
	assert.Equal(t, int64(20000), f.wallet.balance)
}

func TestCancelRefusedOnceTransferInitiated(t *testing.T) {
	f := newFixture(20000)
	w := f.create(t, 10000)
	require.NoError(t, f.svc.Process(context.Background(), w.ID))

	err := f.svc.Cancel(context.Background(), "user-1", w.ID)
	assert.ErrorIs(t, err, domain.ErrTransferAlreadyInitiated)
	assert.Equal(t, domain.WithdrawalStatusProcessing, f.withdrawals.byID[w.ID].Status)
}

func TestCancelByWrongUserForbidden(t *testing.T) {
	f := newFixture(20000)
	w := f.create(t, 10000)

	err := f.svc.Cancel(context.Background(), "intruder", w.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestResolveTransferEventUnknownReference(t *testing.T) {
	f := newFixture(20000)

	err := f.svc.ResolveTransferEvent(context.Background(),
		"WDR-unknown", "TRF_unknown", paystack.TransferStatusSuccess, "")
	assert.NoError(t, err)
}

func TestResolveTransferEventByTransferCodeOnly(t *testing.T) {
	f := newFixture(20000)
	w := f.create(t, 10000)
	require.NoError(t, f.svc.Process(context.Background(), w.ID))

	require.NoError(t, f.svc.ResolveTransferEvent(context.Background(),
		"", "TRF_test", paystack.TransferStatusSuccess, ""))

	assert.Equal(t, domain.WithdrawalStatusCompleted, f.withdrawals.byID[w.ID].Status)
}

func TestReconcileProcessingCompletesOnSuccess(t *testing.T) {
	f := newFixture(20000)
	w := f.create(t, 10000)
	require.NoError(t, f.svc.Process(context.Background(), w.ID))
	f.gateway.verifyStatus = paystack.TransferStatusSuccess

	require.NoError(t, f.svc.ReconcileProcessing(context.Background(), 100))

	assert.Equal(t, domain.WithdrawalStatusCompleted, f.withdrawals.byID[w.ID].Status)
	assert.Equal(t, int64(10000), f.wallet.totalWithdrawn)
}

func TestReconcileProcessingFailsAndRefundsOnReversal(t *testing.T) {
	f := newFixture(20000)
	w := f.create(t, 10000)
	require.NoError(t, f.svc.Process(context.Background(), w.ID))
	f.gateway.verifyStatus = paystack.TransferStatusReversed

	require.NoError(t, f.svc.ReconcileProcessing(context.Background(), 100))

	assert.Equal(t, domain.WithdrawalStatusFailed, f.withdrawals.byID[w.ID].Status)
	assert.Equal(t, int64(20000), f.wallet.balance)
}

func TestReprocessStuckPending(t *testing.T) {
	f := newFixture(20000)
	w := f.create(t, 10000)
	f.withdrawals.byID[w.ID].CreatedAt = time.Now().Add(-10 * time.Minute)

	require.NoError(t, f.svc.ReprocessStuckPending(context.Background(), 2*time.Minute, 100))

	assert.Equal(t, domain.WithdrawalStatusProcessing, f.withdrawals.byID[w.ID].Status)
	assert.Equal(t, 1, f.gateway.initiateCalls)
}

func TestReprocessSkipsFreshPending(t *testing.T) {
	f := newFixture(20000)
	w := f.create(t, 10000)

	require.NoError(t, f.svc.ReprocessStuckPending(context.Background(), 2*time.Minute, 100))

	assert.Equal(t, domain.WithdrawalStatusPending, f.withdrawals.byID[w.ID].Status)
	assert.Zero(t, f.gateway.initiateCalls)
}
