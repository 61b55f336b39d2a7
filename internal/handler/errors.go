// internal/handler/errors.go
package handler

import (
	"errors"
	"net/http"

	"giftwallet-service/internal/domain"
	"giftwallet-service/pkg/response"
)

// writeDomainError maps domain errors onto HTTP statuses. Anything
// unrecognized is a 500 with a generic message; the caller logs the detail.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrAmountBelowMinimum),
		errors.Is(err, domain.ErrAmountAboveLimit):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidAccount):
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		response.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrTransferAlreadyInitiated),
		errors.Is(err, domain.ErrDuplicateReference):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrWithdrawalNotFound),
		errors.Is(err, domain.ErrContributionNotFound),
		errors.Is(err, domain.ErrWishlistNotFound),
		errors.Is(err, domain.ErrWishlistItemNotFound),
		errors.Is(err, domain.ErrPayoutMethodNotFound),
		errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrGateway),
		errors.Is(err, domain.ErrGatewayUnavailable):
		response.Error(w, http.StatusBadGateway, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
