// internal/usecase/payout/service.go
package payout

import (
	"context"
	"strings"

	"giftwallet-service/internal/domain"
	"giftwallet-service/internal/paystack"

	"go.uber.org/zap"
)

type PayoutMethodStore interface {
	Create(ctx context.Context, m *domain.PayoutMethod) error
	GetByID(ctx context.Context, id string) (*domain.PayoutMethod, error)
	ListByUserID(ctx context.Context, userID string) ([]*domain.PayoutMethod, error)
	SetPrimary(ctx context.Context, userID, id string) error
	Delete(ctx context.Context, userID, id string) error
}

type Gateway interface {
	ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*paystack.ResolvedAccount, error)
	ListBanks(ctx context.Context, search string) ([]paystack.Bank, error)
}

type BankCache interface {
	Get(ctx context.Context) ([]paystack.Bank, bool)
	Set(ctx context.Context, banks []paystack.Bank)
}

// Service manages saved bank destinations. The account is resolved with the
// provider at save time so a typo'd account number is rejected before any
// withdrawal can target it.
type Service struct {
	payouts PayoutMethodStore
	gateway Gateway
	banks   BankCache
	logger  *zap.Logger
}

func New(payouts PayoutMethodStore, gateway Gateway, banks BankCache, logger *zap.Logger) *Service {
	return &Service{payouts: payouts, gateway: gateway, banks: banks, logger: logger}
}

type CreateInput struct {
	UserID        string
	BankName      string
	BankCode      string
	AccountNumber string
	MakePrimary   bool
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.PayoutMethod, error) {
	if input.UserID == "" || input.BankCode == "" || input.AccountNumber == "" {
		return nil, domain.ErrInvalidRequest
	}

	resolved, err := s.gateway.ResolveAccount(ctx, input.AccountNumber, input.BankCode)
	if err != nil {
		return nil, err
	}

	m := &domain.PayoutMethod{
		UserID:        input.UserID,
		BankName:      input.BankName,
		BankCode:      input.BankCode,
		AccountNumber: input.AccountNumber,
		AccountName:   resolved.AccountName,
		IsPrimary:     input.MakePrimary,
	}
	if err := s.payouts.Create(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("payout method saved",
		zap.String("payout_method_id", m.ID),
		zap.String("user_id", m.UserID),
		zap.String("bank_code", m.BankCode))
	return m, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*domain.PayoutMethod, error) {
	return s.payouts.ListByUserID(ctx, userID)
}

func (s *Service) SetPrimary(ctx context.Context, userID, id string) error {
	return s.payouts.SetPrimary(ctx, userID, id)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.payouts.Delete(ctx, userID, id)
}

func (s *Service) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*paystack.ResolvedAccount, error) {
	return s.gateway.ResolveAccount(ctx, accountNumber, bankCode)
}

// ListBanks serves the bank list from cache when possible and filters
// locally, so a search does not bypass the cache.
func (s *Service) ListBanks(ctx context.Context, search string) ([]paystack.Bank, error) {
	banks, ok := s.banks.Get(ctx)
	if !ok {
		fetched, err := s.gateway.ListBanks(ctx, "")
		if err != nil {
			return nil, err
		}
		s.banks.Set(ctx, fetched)
		banks = fetched
	}

	if search == "" {
		return banks, nil
	}
	needle := strings.ToLower(search)
	var filtered []paystack.Bank
	for _, b := range banks {
		if strings.Contains(strings.ToLower(b.Name), needle) {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}
