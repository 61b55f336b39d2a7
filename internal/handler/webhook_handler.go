// internal/handler/webhook_handler.go
package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"giftwallet-service/pkg/response"

	"go.uber.org/zap"
)

// ContributionProcessor completes a contribution identified by our payment
// reference.
type ContributionProcessor interface {
	HandleSuccessfulPaymentByReference(ctx context.Context, paymentReference, providerReference string) error
}

// TransferResolver applies a provider-reported transfer outcome to the
// matching withdrawal.
type TransferResolver interface {
	ResolveTransferEvent(ctx context.Context, reference, transferCode, status, message string) error
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference    string `json:"reference"`
		Status       string `json:"status"`
		Message      string `json:"message"`
		TransferCode string `json:"transfer_code"`
		Amount       int64  `json:"amount"`
	} `json:"data"`
}

// PaystackWebhookHandler verifies and dispatches provider webhooks. The
// signature is HMAC-SHA512 of the raw body under the secret key; anything
// that fails verification is rejected before parsing. Parseable events always
// get a 200; returning an error would only make the provider redeliver an
// event we have already decided about.
func PaystackWebhookHandler(
	secret string,
	contributions ContributionProcessor,
	transfers TransferResolver,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "failed to read body")
			return
		}

		if !validSignature(secret, body, r.Header.Get("x-paystack-signature")) {
			logger.Warn("webhook signature verification failed",
				zap.String("remote_addr", r.RemoteAddr))
			response.Error(w, http.StatusUnauthorized, "invalid signature")
			return
		}

		var event webhookEvent
		if err := json.Unmarshal(body, &event); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid payload")
			return
		}

		ctx := r.Context()
		switch event.Event {
		case "charge.success":
			err = contributions.HandleSuccessfulPaymentByReference(ctx, event.Data.Reference, event.Data.Reference)
		case "transfer.success":
			err = transfers.ResolveTransferEvent(ctx, event.Data.Reference, event.Data.TransferCode, "success", "")
		case "transfer.failed":
			err = transfers.ResolveTransferEvent(ctx, event.Data.Reference, event.Data.TransferCode, "failed", event.Data.Message)
		case "transfer.reversed":
			err = transfers.ResolveTransferEvent(ctx, event.Data.Reference, event.Data.TransferCode, "reversed", event.Data.Message)
		default:
			logger.Debug("ignoring webhook event", zap.String("event", event.Event))
		}
		if err != nil {
			// Still acknowledge: a persistent local bug must not turn into a
			// provider retry storm. The reconciliation sweep picks up whatever
			// this delivery failed to settle.
			logger.Error("webhook processing failed",
				zap.Error(err),
				zap.String("event", event.Event),
				zap.String("reference", event.Data.Reference))
		}

		response.Message(w, http.StatusOK, "ok")
	}
}

func validSignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
