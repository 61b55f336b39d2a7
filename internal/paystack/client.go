// internal/paystack/client.go
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"giftwallet-service/internal/domain"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.paystack.co"

// Client talks to the Paystack transfer API. Amounts cross this boundary in
// naira major units and are converted to kobo on the wire. Calls carry a
// bounded timeout; initiate-transfer is never retried here because an
// ambiguous timeout could double-pay; the reconciliation sweep resolves it
// by polling instead.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(secretKey, baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		secretKey:  secretKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// ResolveAccount verifies an account number with the bank and returns the
// registered account name. Paystack answers 422 for numbers that do not
// resolve; that maps to ErrInvalidAccount, everything else is a gateway error.
func (c *Client) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*ResolvedAccount, error) {
	path := "/bank/resolve?" + url.Values{
		"account_number": {accountNumber},
		"bank_code":      {bankCode},
	}.Encode()

	var result struct {
		apiEnvelope
		Data ResolvedAccount `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

func (c *Client) CreateTransferRecipient(ctx context.Context, accountNumber, accountName, bankCode string) (string, error) {
	payload := map[string]any{
		"type":           "nuban",
		"name":           accountName,
		"account_number": accountNumber,
		"bank_code":      bankCode,
		"currency":       "NGN",
	}

	var result struct {
		apiEnvelope
		Data recipientData `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/transferrecipient", payload, &result); err != nil {
		return "", err
	}

	c.logger.Info("transfer recipient created",
		zap.String("recipient_code", result.Data.RecipientCode))
	return result.Data.RecipientCode, nil
}

// InitiateTransfer starts a payout of amount (naira) to a recipient.
func (c *Client) InitiateTransfer(ctx context.Context, recipientCode string, amount int64, reference, reason string) (*Transfer, error) {
	payload := map[string]any{
		"source":    "balance",
		"amount":    amount * 100, // kobo
		"recipient": recipientCode,
		"reference": reference,
		"reason":    reason,
	}

	var result struct {
		apiEnvelope
		Data Transfer `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/transfer", payload, &result); err != nil {
		return nil, err
	}

	c.logger.Info("transfer initiated",
		zap.String("transfer_code", result.Data.TransferCode),
		zap.String("reference", reference),
		zap.Int64("amount", amount))
	return &result.Data, nil
}

// VerifyTransfer fetches the current status of a transfer by its code.
func (c *Client) VerifyTransfer(ctx context.Context, transferCode string) (*Transfer, error) {
	var result struct {
		apiEnvelope
		Data Transfer `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/transfer/"+url.PathEscape(transferCode), nil, &result); err != nil {
		return nil, err
	}
	if result.Data.Message == "" {
		result.Data.Message = result.Message
	}
	return &result.Data, nil
}

// ListBanks returns the supported banks, optionally filtered by name.
func (c *Client) ListBanks(ctx context.Context, search string) ([]Bank, error) {
	var result struct {
		apiEnvelope
		Data []Bank `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/bank?country=nigeria", nil, &result); err != nil {
		return nil, err
	}
	if search == "" {
		return result.Data, nil
	}

	needle := strings.ToLower(search)
	var banks []Bank
	for _, b := range result.Data {
		if strings.Contains(strings.ToLower(b.Name), needle) {
			banks = append(banks, b)
		}
	}
	return banks, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failure: the request may or may not have reached the
		// provider. Callers must not treat this as a definitive rejection.
		return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", domain.ErrGateway, err)
	}

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return domain.ErrInvalidAccount
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := providerMessage(raw)
		c.logger.Warn("paystack call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		if msg != "" {
			return fmt.Errorf("%w: %s", domain.ErrGateway, msg)
		}
		return fmt.Errorf("%w: unexpected status %d", domain.ErrGateway, resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", domain.ErrGateway, err)
	}
	return nil
}

func providerMessage(raw []byte) string {
	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return env.Message
}
