package contribution

import (
	"context"
	"strconv"
	"testing"
	"time"

	"giftwallet-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithinTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeContributionStore struct {
	byID map[string]*domain.Contribution
	seq  int
}

func newFakeContributionStore() *fakeContributionStore {
	return &fakeContributionStore{byID: make(map[string]*domain.Contribution)}
}

func (s *fakeContributionStore) Create(_ context.Context, c *domain.Contribution) error {
	for _, existing := range s.byID {
		if existing.PaymentReference == c.PaymentReference {
			return domain.ErrDuplicateReference
		}
	}
	s.seq++
	c.ID = "ctb-" + strconv.Itoa(s.seq)
	c.Status = domain.ContributionStatusPending
	s.byID[c.ID] = c
	return nil
}

func (s *fakeContributionStore) GetByID(_ context.Context, id string) (*domain.Contribution, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrContributionNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *fakeContributionStore) GetByPaymentReference(_ context.Context, reference string) (*domain.Contribution, error) {
	for _, c := range s.byID {
		if c.PaymentReference == reference {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrContributionNotFound
}

func (s *fakeContributionStore) MarkCompletedTx(_ context.Context, _ pgx.Tx, id, providerReference string, paidAt time.Time) (bool, error) {
	c, ok := s.byID[id]
	if !ok {
		return false, domain.ErrContributionNotFound
	}
	if c.Status != domain.ContributionStatusPending {
		return false, nil
	}
	c.Status = domain.ContributionStatusCompleted
	c.ProviderReference = &providerReference
	c.PaidAt = &paidAt
	return true, nil
}

type fakeWishlistStore struct {
	wishlist *domain.Wishlist
	item     *domain.WishlistItem
	refreshed int
}

func (s *fakeWishlistStore) GetByID(_ context.Context, id string) (*domain.Wishlist, error) {
	if s.wishlist == nil || s.wishlist.ID != id {
		return nil, domain.ErrWishlistNotFound
	}
	cp := *s.wishlist
	return &cp, nil
}

func (s *fakeWishlistStore) GetItemByID(_ context.Context, id string) (*domain.WishlistItem, error) {
	if s.item == nil || s.item.ID != id {
		return nil, domain.ErrWishlistItemNotFound
	}
	cp := *s.item
	return &cp, nil
}

func (s *fakeWishlistStore) ApplyContributionTx(_ context.Context, _ pgx.Tx, itemID string, amount int64) error {
	if s.item == nil || s.item.ID != itemID {
		return domain.ErrWishlistItemNotFound
	}
	s.item.TotalContributed += amount
	if s.item.TotalContributed >= s.item.Price {
		s.item.IsFunded = true
		if s.item.FundedAt == nil {
			now := time.Now()
			s.item.FundedAt = &now
		}
	}
	return nil
}

func (s *fakeWishlistStore) RefreshAggregatesTx(_ context.Context, _ pgx.Tx, wishlistID string) error {
	if s.wishlist == nil || s.wishlist.ID != wishlistID {
		return domain.ErrWishlistNotFound
	}
	s.refreshed++
	return nil
}

type fakeWalletStore struct {
	credited   int64
	creditRefs []string
}

func (s *fakeWalletStore) CreditContributionTx(_ context.Context, _ pgx.Tx, _ string, amount int64, reference, _ string) error {
	for _, r := range s.creditRefs {
		if r == reference {
			return domain.ErrDuplicateReference
		}
	}
	s.credited += amount
	s.creditRefs = append(s.creditRefs, reference)
	return nil
}

type recordingNotifier struct {
	calls int
}

func (n *recordingNotifier) ContributionReceived(_ context.Context, _ string, _ *domain.Contribution, _ *domain.WishlistItem) {
	n.calls++
}

type fixture struct {
	svc           *Service
	contributions *fakeContributionStore
	wishlists     *fakeWishlistStore
	wallet        *fakeWalletStore
	notifier      *recordingNotifier
}

func newFixture() *fixture {
	contributions := newFakeContributionStore()
	wishlists := &fakeWishlistStore{
		wishlist: &domain.Wishlist{ID: "wl-1", UserID: "owner-1", Title: "Birthday"},
		item:     &domain.WishlistItem{ID: "item-1", WishlistID: "wl-1", Name: "Camera", Price: 30000},
	}
	wallet := &fakeWalletStore{}
	notifier := &recordingNotifier{}

	svc := New(fakeTxRunner{}, contributions, wishlists, wallet, notifier, zap.NewNop())
	return &fixture{svc: svc, contributions: contributions, wishlists: wishlists, wallet: wallet, notifier: notifier}
}

func (f *fixture) contribute(t *testing.T, amount int64) *domain.Contribution {
	t.Helper()
	c, err := f.svc.Create(context.Background(), CreateInput{
		WishlistItemID:   "item-1",
		ContributorName:  "Ada",
		ContributorEmail: "ada@example.com",
		Amount:           amount,
	})
	require.NoError(t, err)
	return c
}

func TestCreateContribution(t *testing.T) {
	f := newFixture()

	c := f.contribute(t, 5000)

	assert.Equal(t, domain.ContributionStatusPending, c.Status)
	assert.Equal(t, "wl-1", c.WishlistID)
	assert.NotEmpty(t, c.PaymentReference)
	// nothing moves until the provider confirms
	assert.Zero(t, f.wallet.credited)
}

func TestCreateContributionValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), CreateInput{
		WishlistItemID: "item-1", ContributorEmail: "ada@example.com", Amount: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = f.svc.Create(context.Background(), CreateInput{
		WishlistItemID: "missing", ContributorEmail: "ada@example.com", Amount: 100,
	})
	assert.ErrorIs(t, err, domain.ErrWishlistItemNotFound)
}

func TestHandleSuccessfulPaymentCreditsOwnerOnce(t *testing.T) {
	f := newFixture()
	c := f.contribute(t, 5000)

	require.NoError(t, f.svc.HandleSuccessfulPayment(context.Background(), c.ID, "ps-ref-1"))
	// duplicate webhook delivery
	require.NoError(t, f.svc.HandleSuccessfulPayment(context.Background(), c.ID, "ps-ref-1"))

	assert.Equal(t, int64(5000), f.wallet.credited)
	assert.Equal(t, int64(5000), f.wishlists.item.TotalContributed)
	assert.Equal(t, 1, f.wishlists.refreshed)
	assert.Equal(t, 1, f.notifier.calls)

	got, err := f.contributions.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContributionStatusCompleted, got.Status)
	require.NotNil(t, got.ProviderReference)
	assert.Equal(t, "ps-ref-1", *got.ProviderReference)
}

func TestItemFundedAtStampedOnce(t *testing.T) {
	f := newFixture()

	first := f.contribute(t, 30000)
	require.NoError(t, f.svc.HandleSuccessfulPayment(context.Background(), first.ID, "ps-1"))

	require.True(t, f.wishlists.item.IsFunded)
	require.NotNil(t, f.wishlists.item.FundedAt)
	stamped := *f.wishlists.item.FundedAt

	// an over-contribution after funding must not move the stamp
	second := f.contribute(t, 1000)
	require.NoError(t, f.svc.HandleSuccessfulPayment(context.Background(), second.ID, "ps-2"))

	assert.True(t, f.wishlists.item.IsFunded)
	assert.Equal(t, stamped, *f.wishlists.item.FundedAt)
	assert.Equal(t, int64(31000), f.wallet.credited)
}

func TestHandleSuccessfulPaymentByReference(t *testing.T) {
	f := newFixture()
	c := f.contribute(t, 5000)

	require.NoError(t, f.svc.HandleSuccessfulPaymentByReference(context.Background(), c.PaymentReference, "ps-1"))
	assert.Equal(t, int64(5000), f.wallet.credited)
}

func TestUnknownReferenceIsDropped(t *testing.T) {
	f := newFixture()

	err := f.svc.HandleSuccessfulPaymentByReference(context.Background(), "CTB-unknown", "ps-1")
	assert.NoError(t, err)
	assert.Zero(t, f.wallet.credited)
}
