// internal/paystack/types.go
package paystack

// apiEnvelope is Paystack's standard response wrapper.
type apiEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

type ResolvedAccount struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

type Bank struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type recipientData struct {
	RecipientCode string `json:"recipient_code"`
}

// TransferStatus values as reported by the provider. Anything we do not
// recognize is treated as still pending and left to the next sweep.
const (
	TransferStatusSuccess  = "success"
	TransferStatusFailed   = "failed"
	TransferStatusReversed = "reversed"
	TransferStatusPending  = "pending"
)

type Transfer struct {
	TransferCode string `json:"transfer_code"`
	Reference    string `json:"reference"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
}
