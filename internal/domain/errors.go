// internal/domain/errors.go
package domain

import "errors"

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
)

// Wallet
var (
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Contributions
var (
	ErrContributionNotFound = errors.New("contribution not found")
	ErrWishlistNotFound     = errors.New("wishlist not found")
	ErrWishlistItemNotFound = errors.New("wishlist item not found")
)

// Withdrawals
var (
	ErrWithdrawalNotFound       = errors.New("withdrawal request not found")
	ErrPayoutMethodNotFound     = errors.New("payout method not found")
	ErrAmountBelowMinimum       = errors.New("amount below minimum withdrawal")
	ErrAmountAboveLimit         = errors.New("amount above withdrawal limit")
	ErrTransferAlreadyInitiated = errors.New("transfer already initiated")
	ErrDuplicateReference       = errors.New("duplicate payment reference")
)

// Provider gateway. ErrGateway is a definitive rejection from the provider;
// ErrGatewayUnavailable is an ambiguous transport failure (timeout, refused
// connection) where the call may or may not have gone through.
var (
	ErrInvalidAccount     = errors.New("could not resolve account number")
	ErrGateway            = errors.New("payment gateway error")
	ErrGatewayUnavailable = errors.New("payment gateway unreachable")
)
