// gateway/gateway.go - Payment gateway boundary
package gateway

import "errors"

// ErrInvalidSignature means the webhook payload failed signature
// verification; nothing it claims may be trusted.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// CheckoutInput describes a hosted checkout page for one invoice. Amount is
// in major currency units; conversion to minor units happens inside the
// gateway implementation.
type CheckoutInput struct {
	Amount        float64
	Currency      string
	Name          string
	Description   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type Intent struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
}

// SessionStatus is what the success page polls after redirect.
type SessionStatus struct {
	PaymentStatus string            `json:"status"`
	Metadata      map[string]string `json:"metadata"`
	Amount        float64           `json:"amount"`
}

// ConfirmedPayment is a verified, successful payment event. Metadata carries
// whatever was attached at session/intent creation.
type ConfirmedPayment struct {
	TransactionID string
	Provider      string
	Amount        float64
	Metadata      map[string]string
	Raw           string
}

// PaymentGateway is the external payment collaborator. ParseWebhook returns
// (nil, nil) for event types the workflow does not care about.
type PaymentGateway interface {
	CreateCheckoutSession(in CheckoutInput) (*CheckoutSession, error)
	CreatePaymentIntent(amount float64, currency string, metadata map[string]string) (*Intent, error)
	VerifySession(sessionID string) (*SessionStatus, error)
	ParseWebhook(payload []byte, signature string) (*ConfirmedPayment, error)
}
