// models/finance.go - Billing, payment and ledger entities
package models

import "time"

// Billing is an invoice: a frozen, rate-locked aggregation of approved time
// logs for one client and task. RatePerHour never changes after creation even
// if the client's default rate does.
type Billing struct {
	ID                int64     `json:"id"`
	InvoiceNumber     string    `json:"invoice_number"`
	ClientID          int64     `json:"client_id"`
	TaskID            int64     `json:"task_id"`
	TimeLogIDs        []int64   `json:"time_log_ids,omitempty"`
	Hours             float64   `json:"hours"`
	RatePerHour       float64   `json:"rate_per_hour"`
	Amount            float64   `json:"amount"`
	PaidAmount        float64   `json:"paid_amount"`
	OutstandingAmount float64   `json:"outstanding_amount"`
	IsPaid            bool      `json:"is_paid"`
	Date              time.Time `json:"date"`
	CreatedBy         int64     `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
}

type PaymentMode string

const (
	ModeCash   PaymentMode = "CASH"
	ModeBank   PaymentMode = "BANK"
	ModeUPI    PaymentMode = "UPI"
	ModeOnline PaymentMode = "ONLINE"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Payment records money received from a client, optionally against one
// invoice. Manual modes are COMPLETED immediately; ONLINE payments stay
// PENDING until the gateway confirms them.
type Payment struct {
	ID            int64         `json:"id"`
	ClientID      int64         `json:"client_id"`
	BillingID     *int64        `json:"billing_id,omitempty"`
	Amount        float64       `json:"amount"`
	Mode          PaymentMode   `json:"mode"`
	Reference     string        `json:"reference,omitempty"`
	Date          time.Time     `json:"date"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	Provider      string        `json:"provider,omitempty"`
	RawResponse   string        `json:"raw_response,omitempty"`
	CreatedBy     *int64        `json:"created_by,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

type LedgerType string

const (
	LedgerDebit  LedgerType = "DEBIT"
	LedgerCredit LedgerType = "CREDIT"
)

// LedgerRefKind tags what a ledger entry points at.
type LedgerRefKind string

const (
	RefBilling LedgerRefKind = "Billing"
	RefPayment LedgerRefKind = "Payment"
)

// LedgerRef is the typed reference of a ledger entry to its causing record.
type LedgerRef struct {
	Kind LedgerRefKind `json:"kind"`
	ID   int64         `json:"id"`
}

// LedgerEntry is one immutable row of a client's running-balance statement.
// Balance is the previous entry's balance plus debit minus credit.
type LedgerEntry struct {
	ID          int64      `json:"id"`
	ClientID    int64      `json:"client_id"`
	Date        time.Time  `json:"date"`
	Description string     `json:"description"`
	Type        LedgerType `json:"type"`
	Debit       float64    `json:"debit"`
	Credit      float64    `json:"credit"`
	Balance     float64    `json:"balance"`
	Reference   *LedgerRef `json:"reference,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LedgerSummary is the aggregate view returned with a client statement.
type LedgerSummary struct {
	TotalDebit     float64 `json:"total_debit"`
	TotalCredit    float64 `json:"total_credit"`
	CurrentBalance float64 `json:"current_balance"`
}
