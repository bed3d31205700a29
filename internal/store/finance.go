// store/finance.go - Billing, payment and ledger persistence
package store

import (
	"database/sql"
	"time"

	"officeflow/internal/models"
)

// BillingFilter narrows ListBillings; nil fields mean no filter.
type BillingFilter struct {
	ClientID *int64
	IsPaid   *bool
}

func scanBilling(rows *sql.Rows) (models.Billing, error) {
	var b models.Billing
	err := rows.Scan(&b.ID, &b.InvoiceNumber, &b.ClientID, &b.TaskID, &b.Hours, &b.RatePerHour,
		&b.Amount, &b.PaidAmount, &b.OutstandingAmount, &b.IsPaid, &b.Date, &b.CreatedBy, &b.CreatedAt)
	return b, err
}

// CreateBilling inserts the invoice and its log references in one
// transaction.
func (db *DB) CreateBilling(b *models.Billing) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRow(qBillingInsert, b.InvoiceNumber, b.ClientID, b.TaskID, b.Hours,
		b.RatePerHour, b.Amount, b.Amount, b.Date, b.CreatedBy).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return err
	}
	b.OutstandingAmount = b.Amount

	for _, logID := range b.TimeLogIDs {
		if _, err := tx.Exec(`INSERT INTO billing_time_logs (billing_id, time_log_id) VALUES (?, ?)`,
			b.ID, logID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (db *DB) GetBilling(id int64) (*models.Billing, error) {
	rows, err := db.Query(`SELECT `+billingCols+` FROM billings WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	bs, err := collectRows(rows, scanBilling)
	if err != nil {
		return nil, err
	}
	if len(bs) == 0 {
		return nil, ErrBillingNotFound
	}
	b := bs[0]

	logRows, err := db.Query(`SELECT time_log_id FROM billing_time_logs WHERE billing_id = ? ORDER BY time_log_id`, id)
	if err != nil {
		return nil, err
	}
	b.TimeLogIDs, err = collectRows(logRows, func(rows *sql.Rows) (int64, error) {
		var v int64
		err := rows.Scan(&v)
		return v, err
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (db *DB) ListBillings(f BillingFilter) ([]models.Billing, error) {
	q := `SELECT ` + billingCols + ` FROM billings WHERE 1=1`
	var args []any
	if f.ClientID != nil {
		q += ` AND client_id = ?`
		args = append(args, *f.ClientID)
	}
	if f.IsPaid != nil {
		q += ` AND is_paid = ?`
		args = append(args, *f.IsPaid)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanBilling)
}

// ApplyBillingPayment accumulates a received amount into the invoice in a
// single statement, then returns the updated row.
func (db *DB) ApplyBillingPayment(id int64, amount float64) (*models.Billing, error) {
	res, err := db.Exec(qBillingApplyPayment, amount, amount, amount, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrBillingNotFound
	}
	return db.GetBilling(id)
}

func (db *DB) CountBillings() (int64, error) {
	var n int64
	err := db.QueryRow(`SELECT COUNT(*) FROM billings`).Scan(&n)
	return n, err
}

func scanPayment(rows *sql.Rows) (models.Payment, error) {
	var p models.Payment
	var billingID, createdBy sql.NullInt64
	var txn sql.NullString
	err := rows.Scan(&p.ID, &p.ClientID, &billingID, &p.Amount, &p.Mode, &p.Reference,
		&p.Date, &p.Status, &txn, &p.Provider, &p.RawResponse, &createdBy, &p.CreatedAt)
	p.BillingID = i64Ptr(billingID)
	p.CreatedBy = i64Ptr(createdBy)
	if txn.Valid {
		p.TransactionID = txn.String
	}
	return p, err
}

func (db *DB) CreatePayment(p *models.Payment) error {
	if p.Status == "" {
		p.Status = models.PaymentCompleted
	}
	err := db.QueryRow(qPaymentInsert, p.ClientID, nullI64(p.BillingID), p.Amount, p.Mode,
		p.Reference, p.Date, p.Status, nullStr(p.TransactionID), p.Provider, p.RawResponse,
		nullI64(p.CreatedBy)).Scan(&p.ID, &p.CreatedAt)
	if isUniqueViolation(err, "payments") {
		return ErrDuplicateTransaction
	}
	return err
}

func (db *DB) GetPayment(id int64) (*models.Payment, error) {
	rows, err := db.Query(`SELECT `+paymentCols+` FROM payments WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	ps, err := collectRows(rows, scanPayment)
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, ErrPaymentNotFound
	}
	return &ps[0], nil
}

// PaymentByTransactionID returns nil when no payment carries the gateway id.
func (db *DB) PaymentByTransactionID(txn string) (*models.Payment, error) {
	rows, err := db.Query(`SELECT `+paymentCols+` FROM payments WHERE transaction_id = ?`, txn)
	if err != nil {
		return nil, err
	}
	ps, err := collectRows(rows, scanPayment)
	if err != nil || len(ps) == 0 {
		return nil, err
	}
	return &ps[0], nil
}

func (db *DB) CompletePayment(id int64, txn, provider, raw string) error {
	res, err := db.Exec(qPaymentComplete, nullStr(txn), provider, raw, id)
	if err != nil {
		if isUniqueViolation(err, "payments") {
			return ErrDuplicateTransaction
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (db *DB) ListPayments() ([]models.Payment, error) {
	rows, err := db.Query(`SELECT ` + paymentCols + ` FROM payments ORDER BY pay_date DESC`)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanPayment)
}

func scanLedgerEntry(rows *sql.Rows) (models.LedgerEntry, error) {
	var e models.LedgerEntry
	var refKind sql.NullString
	var refID sql.NullInt64
	err := rows.Scan(&e.ID, &e.ClientID, &e.Date, &e.Description, &e.Type, &e.Debit,
		&e.Credit, &e.Balance, &refKind, &refID, &e.CreatedAt)
	if refKind.Valid && refID.Valid {
		e.Reference = &models.LedgerRef{Kind: models.LedgerRefKind(refKind.String), ID: refID.Int64}
	}
	return e, err
}

func (db *DB) AppendLedgerEntry(e *models.LedgerEntry) error {
	var refKind sql.NullString
	var refID sql.NullInt64
	if e.Reference != nil {
		refKind = sql.NullString{String: string(e.Reference.Kind), Valid: true}
		refID = sql.NullInt64{Int64: e.Reference.ID, Valid: true}
	}
	return db.QueryRow(qLedgerInsert, e.ClientID, e.Date, e.Description, e.Type,
		e.Debit, e.Credit, e.Balance, refKind, refID).Scan(&e.ID, &e.CreatedAt)
}

// LatestLedgerEntry returns the most recent committed entry for the client,
// nil when the ledger is empty. Insertion id breaks same-instant ties.
func (db *DB) LatestLedgerEntry(clientID int64) (*models.LedgerEntry, error) {
	rows, err := db.Query(`SELECT `+ledgerCols+` FROM ledger_entries
		WHERE client_id = ? ORDER BY entry_date DESC, id DESC LIMIT 1`, clientID)
	if err != nil {
		return nil, err
	}
	es, err := collectRows(rows, scanLedgerEntry)
	if err != nil || len(es) == 0 {
		return nil, err
	}
	return &es[0], nil
}

func (db *DB) ListLedgerEntries(clientID int64, from, to *time.Time) ([]models.LedgerEntry, error) {
	q := `SELECT ` + ledgerCols + ` FROM ledger_entries WHERE client_id = ?`
	args := []any{clientID}
	if from != nil {
		q += ` AND entry_date >= ?`
		args = append(args, *from)
	}
	if to != nil {
		q += ` AND entry_date <= ?`
		args = append(args, *to)
	}
	q += ` ORDER BY entry_date ASC, id ASC`
	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanLedgerEntry)
}
