// workflow/payment.go - Payment recording, checkout and gateway confirmation
package workflow

import (
	"errors"
	"fmt"
	"strconv"

	"officeflow/internal/gateway"
	"officeflow/internal/models"
	"officeflow/internal/store"
)

// ManualPaymentInput records money received outside the gateway (cash, bank
// transfer, UPI).
type ManualPaymentInput struct {
	ClientID  int64              `json:"client_id"`
	BillingID *int64             `json:"billing_id,omitempty"`
	Amount    float64            `json:"amount"`
	Mode      models.PaymentMode `json:"mode"`
	Reference string             `json:"reference,omitempty"`
}

// CreateManualPayment records a completed manual payment, settles it against
// the invoice if one is named, and posts the CREDIT to the client ledger.
func (s *Service) CreateManualPayment(hrID int64, in ManualPaymentInput) (*models.Payment, error) {
	if in.Amount <= 0 || in.Mode == "" || in.Mode == models.ModeOnline {
		return nil, ErrInvalidInput
	}
	if _, err := s.store.GetClient(in.ClientID); err != nil {
		return nil, err
	}

	p := &models.Payment{
		ClientID:  in.ClientID,
		BillingID: in.BillingID,
		Amount:    round2(in.Amount),
		Mode:      in.Mode,
		Reference: in.Reference,
		Date:      s.now(),
		Status:    models.PaymentCompleted,
		CreatedBy: &hrID,
	}
	if err := s.store.CreatePayment(p); err != nil {
		return nil, err
	}

	if in.BillingID != nil {
		if _, err := s.store.ApplyBillingPayment(*in.BillingID, p.Amount); err != nil {
			return nil, err
		}
	}

	ref := &models.LedgerRef{Kind: models.RefPayment, ID: p.ID}
	desc := fmt.Sprintf("Payment received - %s (%s)", in.Mode, in.Reference)
	if _, err := s.postCredit(in.ClientID, desc, p.Amount, ref); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateCheckoutSession opens a hosted gateway checkout for an invoice's
// outstanding amount. No payment row is written yet; the confirmation
// creates it, keyed by the billing id carried in the session metadata.
func (s *Service) CreateCheckoutSession(billingID int64) (*gateway.CheckoutSession, error) {
	b, err := s.store.GetBilling(billingID)
	if err != nil {
		return nil, err
	}
	if b.IsPaid || b.OutstandingAmount <= 0 {
		return nil, ErrAlreadyPaid
	}
	client, err := s.store.GetClient(b.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrClientNotFound) {
			return nil, ErrClientMissing
		}
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(gateway.CheckoutInput{
		Amount:        b.OutstandingAmount,
		Currency:      s.currency,
		Name:          fmt.Sprintf("Invoice %s", b.InvoiceNumber),
		Description:   fmt.Sprintf("Payment for %s - %.2f hours", client.Name, b.Hours),
		CustomerEmail: client.Email,
		SuccessURL:    s.clientURL + "/pay/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     fmt.Sprintf("%s/pay/%d", s.clientURL, billingID),
		Metadata: map[string]string{
			"billing_id": strconv.FormatInt(billingID, 10),
		},
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// CreatePaymentIntent opens a raw card intent for an invoice, for clients
// embedding the payment element instead of the hosted page.
func (s *Service) CreatePaymentIntent(billingID int64) (*gateway.Intent, error) {
	b, err := s.store.GetBilling(billingID)
	if err != nil {
		return nil, err
	}
	if b.IsPaid || b.OutstandingAmount <= 0 {
		return nil, ErrAlreadyPaid
	}

	p := &models.Payment{
		ClientID:  b.ClientID,
		BillingID: &billingID,
		Amount:    b.OutstandingAmount,
		Mode:      models.ModeOnline,
		Date:      s.now(),
		Status:    models.PaymentPending,
	}
	if err := s.store.CreatePayment(p); err != nil {
		return nil, err
	}

	return s.gateway.CreatePaymentIntent(b.OutstandingAmount, s.currency, map[string]string{
		"payment_id": strconv.FormatInt(p.ID, 10),
		"billing_id": strconv.FormatInt(billingID, 10),
	})
}

// HandlePaymentConfirmation applies a verified gateway confirmation. The
// intent flow completes its pre-created pending payment; the checkout flow
// creates the payment record here from the billing named in the metadata.
// Either way the invoice is settled and the ledger CREDIT posted. Replays of
// the same transaction id are acknowledged without effect.
func (s *Service) HandlePaymentConfirmation(cp *gateway.ConfirmedPayment) error {
	if cp == nil {
		return nil
	}

	existing, err := s.store.PaymentByTransactionID(cp.TransactionID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	var p *models.Payment
	if raw, ok := cp.Metadata["payment_id"]; ok {
		paymentID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("confirmation with bad payment_id metadata: %w", err)
		}
		p, err = s.store.GetPayment(paymentID)
		if err != nil {
			return err
		}
		if p.Status == models.PaymentCompleted {
			return nil
		}
		if err := s.store.CompletePayment(paymentID, cp.TransactionID, cp.Provider, cp.Raw); err != nil {
			if errors.Is(err, store.ErrDuplicateTransaction) {
				return nil
			}
			return err
		}
	} else {
		billingID, err := strconv.ParseInt(cp.Metadata["billing_id"], 10, 64)
		if err != nil {
			return fmt.Errorf("confirmation without billing_id metadata: %w", err)
		}
		b, err := s.store.GetBilling(billingID)
		if err != nil {
			return err
		}
		p = &models.Payment{
			ClientID:      b.ClientID,
			BillingID:     &billingID,
			Amount:        round2(cp.Amount),
			Mode:          models.ModeOnline,
			Date:          s.now(),
			Status:        models.PaymentCompleted,
			TransactionID: cp.TransactionID,
			Provider:      cp.Provider,
			RawResponse:   cp.Raw,
		}
		if err := s.store.CreatePayment(p); err != nil {
			if errors.Is(err, store.ErrDuplicateTransaction) {
				return nil
			}
			return err
		}
	}

	if p.BillingID != nil {
		if _, err := s.store.ApplyBillingPayment(*p.BillingID, p.Amount); err != nil {
			return err
		}
	}

	ref := &models.LedgerRef{Kind: models.RefPayment, ID: p.ID}
	desc := fmt.Sprintf("Payment received - ONLINE (%s)", cp.TransactionID)
	if _, err := s.postCredit(p.ClientID, desc, p.Amount, ref); err != nil {
		return err
	}
	return nil
}

// HandleWebhook verifies and applies one raw gateway webhook delivery.
func (s *Service) HandleWebhook(payload []byte, signature string) error {
	cp, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	return s.HandlePaymentConfirmation(cp)
}

// VerifyCheckoutSession lets the success page confirm a session's state
// directly with the gateway. A paid session is applied immediately rather
// than waiting on webhook delivery.
type SessionResult struct {
	Paid   bool    `json:"paid"`
	Amount float64 `json:"amount"`
}

func (s *Service) VerifyCheckoutSession(sessionID string) (*SessionResult, error) {
	status, err := s.gateway.VerifySession(sessionID)
	if err != nil {
		return nil, err
	}
	if status.PaymentStatus != "paid" {
		return &SessionResult{Paid: false, Amount: status.Amount}, nil
	}

	if err := s.HandlePaymentConfirmation(&gateway.ConfirmedPayment{
		TransactionID: sessionID,
		Provider:      "stripe",
		Amount:        status.Amount,
		Metadata:      status.Metadata,
	}); err != nil {
		return nil, err
	}
	return &SessionResult{Paid: true, Amount: status.Amount}, nil
}

func (s *Service) ListPayments() ([]models.Payment, error) {
	return s.store.ListPayments()
}
