// internal/handler/withdrawal_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"giftwallet-service/internal/domain"
	"giftwallet-service/internal/usecase/withdrawal"
	"giftwallet-service/pkg/response"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func CreateWithdrawalHandler(withdrawalUC *withdrawal.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type requestBody struct {
			UserID         string `json:"user_id"`
			PayoutMethodID string `json:"payout_method_id"`
			Amount         int64  `json:"amount"`
			Verified       bool   `json:"verified"`
		}

		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if body.UserID == "" || body.PayoutMethodID == "" {
			response.Error(w, http.StatusBadRequest, "user_id and payout_method_id are required")
			return
		}

		ctx := r.Context()
		req, err := withdrawalUC.Create(ctx, withdrawal.CreateInput{
			UserID:         body.UserID,
			PayoutMethodID: body.PayoutMethodID,
			Amount:         body.Amount,
			Verified:       body.Verified,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		// Initiate the transfer right away. If the gateway is unreachable the
		// request stays pending and the reconciliation sweep retries it; the
		// client still gets its request back.
		if err := withdrawalUC.Process(ctx, req.ID); err != nil {
			if !errors.Is(err, domain.ErrGatewayUnavailable) {
				logger.Error("failed to process withdrawal", zap.Error(err),
					zap.String("withdrawal_id", req.ID))
			}
		}

		current, err := withdrawalUC.Get(ctx, body.UserID, req.ID)
		if err != nil {
			current = req
		}
		response.JSON(w, http.StatusCreated, current)
	}
}

func GetWithdrawalHandler(withdrawalUC *withdrawal.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		id := chi.URLParam(r, "id")
		if userID == "" || id == "" {
			response.Error(w, http.StatusBadRequest, "missing user_id or withdrawal id")
			return
		}

		req, err := withdrawalUC.Get(r.Context(), userID, id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, req)
	}
}

func CancelWithdrawalHandler(withdrawalUC *withdrawal.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type requestBody struct {
			UserID string `json:"user_id"`
		}

		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
			response.Error(w, http.StatusBadRequest, "user_id is required")
			return
		}

		id := chi.URLParam(r, "id")
		if err := withdrawalUC.Cancel(r.Context(), body.UserID, id); err != nil {
			writeDomainError(w, err)
			return
		}
		response.Message(w, http.StatusOK, "withdrawal cancelled")
	}
}

func ListWithdrawalsHandler(withdrawalUC *withdrawal.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if userID == "" {
			response.Error(w, http.StatusBadRequest, "missing user ID")
			return
		}

		limit, offset := pagination(r, 50)
		withdrawals, err := withdrawalUC.ListByUser(r.Context(), userID, limit, offset)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, withdrawals)
	}
}
