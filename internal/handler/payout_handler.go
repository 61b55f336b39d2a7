// internal/handler/payout_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"giftwallet-service/internal/usecase/payout"
	"giftwallet-service/pkg/response"

	"github.com/go-chi/chi/v5"
)

func CreatePayoutMethodHandler(payoutUC *payout.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type requestBody struct {
			UserID        string `json:"user_id"`
			BankName      string `json:"bank_name"`
			BankCode      string `json:"bank_code"`
			AccountNumber string `json:"account_number"`
			MakePrimary   bool   `json:"make_primary"`
		}

		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		method, err := payoutUC.Create(r.Context(), payout.CreateInput{
			UserID:        body.UserID,
			BankName:      body.BankName,
			BankCode:      body.BankCode,
			AccountNumber: body.AccountNumber,
			MakePrimary:   body.MakePrimary,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		response.JSON(w, http.StatusCreated, method)
	}
}

func ListPayoutMethodsHandler(payoutUC *payout.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if userID == "" {
			response.Error(w, http.StatusBadRequest, "missing user ID")
			return
		}

		methods, err := payoutUC.List(r.Context(), userID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, methods)
	}
}

func SetPrimaryPayoutMethodHandler(payoutUC *payout.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type requestBody struct {
			UserID string `json:"user_id"`
		}

		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
			response.Error(w, http.StatusBadRequest, "user_id is required")
			return
		}

		if err := payoutUC.SetPrimary(r.Context(), body.UserID, chi.URLParam(r, "id")); err != nil {
			writeDomainError(w, err)
			return
		}
		response.Message(w, http.StatusOK, "primary payout method updated")
	}
}

func DeletePayoutMethodHandler(payoutUC *payout.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			response.Error(w, http.StatusBadRequest, "missing user_id")
			return
		}

		if err := payoutUC.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
			writeDomainError(w, err)
			return
		}
		response.Message(w, http.StatusOK, "payout method removed")
	}
}

func ListBanksHandler(payoutUC *payout.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		banks, err := payoutUC.ListBanks(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, banks)
	}
}

func ResolveAccountHandler(payoutUC *payout.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type requestBody struct {
			AccountNumber string `json:"account_number"`
			BankCode      string `json:"bank_code"`
		}

		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.AccountNumber == "" || body.BankCode == "" {
			response.Error(w, http.StatusBadRequest, "account_number and bank_code are required")
			return
		}

		resolved, err := payoutUC.ResolveAccount(r.Context(), body.AccountNumber, body.BankCode)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, resolved)
	}
}
