// workflow/billing.go - Invoice creation from approved time logs
package workflow

import (
	"fmt"
	"time"

	"officeflow/internal/models"
	"officeflow/internal/store"
)

// BillingInput is an HR request to invoice a set of approved time logs.
// RateOverride, when non-nil, replaces the client's current hourly rate.
type BillingInput struct {
	ClientID     int64    `json:"client_id"`
	TimeLogIDs   []int64  `json:"time_log_ids"`
	RateOverride *float64 `json:"rate_per_hour,omitempty"`
}

// CreateBilling freezes hours, rate and amount into an invoice, restamps each
// log's billed amount with its prorated share, and posts the single DEBIT for
// the invoice to the client ledger.
func (s *Service) CreateBilling(hrID int64, in BillingInput) (*models.Billing, error) {
	if len(in.TimeLogIDs) == 0 {
		return nil, ErrInvalidInput
	}
	client, err := s.store.GetClient(in.ClientID)
	if err != nil {
		return nil, err
	}

	logs, err := s.store.GetApprovedLogsByIDs(in.TimeLogIDs)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, ErrNoApprovedLogs
	}
	if len(logs) != len(in.TimeLogIDs) {
		return nil, ErrLogCountMismatch
	}

	taskID := logs[0].TaskID
	totalHours := 0.0
	for _, bl := range logs {
		if bl.TaskID != taskID {
			return nil, ErrCrossTaskLogs
		}
		totalHours += bl.Log.EffectiveHours()
	}

	rate := client.HourlyRate
	if in.RateOverride != nil {
		if *in.RateOverride <= 0 {
			return nil, ErrInvalidInput
		}
		rate = *in.RateOverride
	}
	amount := round2(totalHours * rate)

	count, err := s.store.CountBillings()
	if err != nil {
		return nil, err
	}

	now := s.now()
	billing := &models.Billing{
		InvoiceNumber: fmt.Sprintf("INV-%d-%d", now.UnixMilli(), count+1),
		ClientID:      in.ClientID,
		TaskID:        taskID,
		TimeLogIDs:    in.TimeLogIDs,
		Hours:         round2(totalHours),
		RatePerHour:   rate,
		Amount:        amount,
		Date:          now,
		CreatedBy:     hrID,
	}
	if err := s.store.CreateBilling(billing); err != nil {
		return nil, err
	}
	billing.OutstandingAmount = amount

	// Restamp every log's billed amount so the per-log figures sum to the
	// invoiced amount under the rate actually invoiced.
	for _, bl := range logs {
		share := round2(bl.Log.EffectiveHours() * rate)
		if err := s.store.SetTimeLogBilledAmount(bl.Log.ID, share); err != nil {
			return nil, err
		}
	}

	ref := &models.LedgerRef{Kind: models.RefBilling, ID: billing.ID}
	desc := fmt.Sprintf("Invoice %s", billing.InvoiceNumber)
	if _, err := s.postDebit(in.ClientID, desc, amount, ref); err != nil {
		return nil, err
	}

	return billing, nil
}

func (s *Service) GetBilling(id int64) (*models.Billing, error) {
	return s.store.GetBilling(id)
}

func (s *Service) ListBillings(f store.BillingFilter) ([]models.Billing, error) {
	return s.store.ListBillings(f)
}

// OutstandingBillingsReport pairs the unpaid invoices with the total amount
// still owed across them.
type OutstandingBillingsReport struct {
	Billings         []models.Billing `json:"billings"`
	TotalOutstanding float64          `json:"total_outstanding"`
}

func (s *Service) OutstandingBillings(clientID *int64) (*OutstandingBillingsReport, error) {
	unpaid := false
	billings, err := s.store.ListBillings(store.BillingFilter{ClientID: clientID, IsPaid: &unpaid})
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, b := range billings {
		total += b.OutstandingAmount
	}
	return &OutstandingBillingsReport{Billings: billings, TotalOutstanding: round2(total)}, nil
}

// BillingInfo is the public, token-free view of an invoice a client sees on
// the payment page.
type BillingInfo struct {
	InvoiceNumber     string    `json:"invoice_number"`
	ClientName        string    `json:"client_name"`
	Hours             float64   `json:"hours"`
	RatePerHour       float64   `json:"rate_per_hour"`
	Amount            float64   `json:"amount"`
	PaidAmount        float64   `json:"paid_amount"`
	OutstandingAmount float64   `json:"outstanding_amount"`
	IsPaid            bool      `json:"is_paid"`
	Date              time.Time `json:"date"`
}

func (s *Service) PublicBillingInfo(id int64) (*BillingInfo, error) {
	b, err := s.store.GetBilling(id)
	if err != nil {
		return nil, err
	}
	client, err := s.store.GetClient(b.ClientID)
	if err != nil {
		return nil, err
	}
	return &BillingInfo{
		InvoiceNumber:     b.InvoiceNumber,
		ClientName:        client.Name,
		Hours:             b.Hours,
		RatePerHour:       b.RatePerHour,
		Amount:            b.Amount,
		PaidAmount:        b.PaidAmount,
		OutstandingAmount: b.OutstandingAmount,
		IsPaid:            b.IsPaid,
		Date:              b.Date,
	}, nil
}
