// internal/usecase/wallet/service.go
package wallet

import (
	"context"

	"giftwallet-service/internal/domain"
)

type WalletStore interface {
	GetOrCreate(ctx context.Context, userID string) (*domain.Wallet, error)
}

type TransactionStore interface {
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.WalletTransaction, error)
}

// Service is the read surface over the wallet and its ledger.
type Service struct {
	wallets WalletStore
	entries TransactionStore
}

func New(wallets WalletStore, entries TransactionStore) *Service {
	return &Service{wallets: wallets, entries: entries}
}

// GetWallet returns the user's wallet, creating an empty one on first access.
func (s *Service) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	return s.wallets.GetOrCreate(ctx, userID)
}

type Summary struct {
	Wallet       *domain.Wallet              `json:"wallet"`
	Transactions []*domain.WalletTransaction `json:"transactions"`
}

// GetSummary returns the wallet with its most recent ledger entries.
func (s *Service) GetSummary(ctx context.Context, userID string, limit int) (*Summary, error) {
	w, err := s.wallets.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.ListByUserID(ctx, userID, limit, 0)
	if err != nil {
		return nil, err
	}
	return &Summary{Wallet: w, Transactions: entries}, nil
}

func (s *Service) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*domain.WalletTransaction, error) {
	return s.entries.ListByUserID(ctx, userID, limit, offset)
}
