package router

import (
	"net/http"

	"giftwallet-service/internal/handler"
	"giftwallet-service/internal/usecase/contribution"
	"giftwallet-service/internal/usecase/payout"
	"giftwallet-service/internal/usecase/wallet"
	"giftwallet-service/internal/usecase/withdrawal"
	"giftwallet-service/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Deps struct {
	Wallet        *wallet.Service
	Withdrawal    *withdrawal.Service
	Payout        *payout.Service
	Contribution  *contribution.Service
	WebhookSecret string
	Logger        *zap.Logger
}

func New(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.Message(w, http.StatusOK, "ok")
	})

	r.Post("/webhooks/paystack", handler.PaystackWebhookHandler(
		d.WebhookSecret, d.Contribution, d.Withdrawal, d.Logger))

	r.Route("/api", func(r chi.Router) {
		r.Route("/wallet/{userID}", func(r chi.Router) {
			r.Get("/", handler.WalletSummaryHandler(d.Wallet))
			r.Get("/transactions", handler.WalletTransactionsHandler(d.Wallet))
		})

		r.Route("/withdrawals", func(r chi.Router) {
			r.Post("/", handler.CreateWithdrawalHandler(d.Withdrawal, d.Logger))
			r.Get("/{id}", handler.GetWithdrawalHandler(d.Withdrawal))
			r.Post("/{id}/cancel", handler.CancelWithdrawalHandler(d.Withdrawal))
		})
		r.Get("/users/{userID}/withdrawals", handler.ListWithdrawalsHandler(d.Withdrawal))

		r.Route("/payout-methods", func(r chi.Router) {
			r.Post("/", handler.CreatePayoutMethodHandler(d.Payout))
			r.Post("/{id}/primary", handler.SetPrimaryPayoutMethodHandler(d.Payout))
			r.Delete("/{id}", handler.DeletePayoutMethodHandler(d.Payout))
		})
		r.Get("/users/{userID}/payout-methods", handler.ListPayoutMethodsHandler(d.Payout))

		r.Get("/banks", handler.ListBanksHandler(d.Payout))
		r.Post("/banks/resolve", handler.ResolveAccountHandler(d.Payout))

		r.Post("/contributions", handler.CreateContributionHandler(d.Contribution))
	})

	return r
}
