// internal/handler/wallet_handler.go
package handler

import (
	"net/http"
	"strconv"

	"giftwallet-service/internal/usecase/wallet"
	"giftwallet-service/pkg/response"

	"github.com/go-chi/chi/v5"
)

func WalletSummaryHandler(walletUC *wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if userID == "" {
			response.Error(w, http.StatusBadRequest, "missing user ID")
			return
		}

		summary, err := walletUC.GetSummary(r.Context(), userID, 20)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, summary)
	}
}

func WalletTransactionsHandler(walletUC *wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if userID == "" {
			response.Error(w, http.StatusBadRequest, "missing user ID")
			return
		}

		limit, offset := pagination(r, 50)
		entries, err := walletUC.ListTransactions(r.Context(), userID, limit, offset)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, entries)
	}
}

func pagination(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
