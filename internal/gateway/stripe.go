// gateway/stripe.go - Stripe implementation of the payment gateway
package gateway

import (
	"encoding/json"
	"fmt"
	"math"

	stripe "github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/webhook"
)

// Stripe talks to the Stripe API using the account-level secret key.
type Stripe struct {
	webhookSecret string
}

var _ PaymentGateway = (*Stripe)(nil)

func NewStripe(secretKey, webhookSecret string) *Stripe {
	stripe.Key = secretKey
	return &Stripe{webhookSecret: webhookSecret}
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (g *Stripe) CreateCheckoutSession(in CheckoutInput) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(in.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(in.Name),
						Description: stripe.String(in.Description),
					},
					UnitAmount: stripe.Int64(minorUnits(in.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{SessionID: s.ID, URL: s.URL}, nil
}

func (g *Stripe) CreatePaymentIntent(amount float64, currency string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minorUnits(amount)),
		Currency: stripe.String(currency),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &Intent{IntentID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *Stripe) VerifySession(sessionID string) (*SessionStatus, error) {
	s, err := session.Get(sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	return &SessionStatus{
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
		Amount:        float64(s.AmountTotal) / 100,
	}, nil
}

// ParseWebhook verifies the Stripe signature and extracts a confirmed
// payment from checkout.session.completed events. Other event types, and
// sessions that are not actually paid, come back as (nil, nil).
func (g *Stripe) ParseWebhook(payload []byte, signature string) (*ConfirmedPayment, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	if event.Type != "checkout.session.completed" {
		return nil, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	if cs.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, nil
	}

	txn := cs.ID
	if cs.PaymentIntent != nil {
		txn = cs.PaymentIntent.ID
	}
	return &ConfirmedPayment{
		TransactionID: txn,
		Provider:      "stripe",
		Amount:        float64(cs.AmountTotal) / 100,
		Metadata:      cs.Metadata,
		Raw:           string(event.Data.Raw),
	}, nil
}
