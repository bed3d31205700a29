// store/sql.go - Centralized column lists and fixed statements
package store

const (
	userCols    = `id, name, email, role, is_active, created_at`
	clientCols  = `id, name, email, phone, address, gst_number, hourly_rate, is_active, created_at`
	taskCols    = `id, title, description, client_id, status, created_by, total_estimated_hours, total_logged_hours, created_at`
	subtaskCols = `id, title, description, task_id, assigned_to, estimated_hours, logged_hours, status, created_by, created_at`
	timeLogCols = `id, subtask_id, employee_id, start_time, end_time, duration, remark, log_date, status,
		approved_by, approved_at, edited_hours, rejection_reason, billed_amount, dismissed, created_at`
	queryCols   = `id, subtask_id, raised_by, message, qtype, priority, status, reply, replied_by, replied_at, closed_by, closed_at, created_at`
	billingCols = `id, invoice_number, client_id, task_id, hours, rate_per_hour, amount, paid_amount, outstanding_amount, is_paid, bill_date, created_by, created_at`
	paymentCols = `id, client_id, billing_id, amount, mode, reference, pay_date, status, transaction_id, provider, raw_response, created_by, created_at`
	ledgerCols  = `id, client_id, entry_date, description, entry_type, debit, credit, balance, reference_kind, reference_id, created_at`
)

const (
	qUserInsert = `INSERT INTO users (name, email, role, is_active)
		VALUES (?, ?, ?, ?) RETURNING id, created_at`

	qClientInsert = `INSERT INTO clients (name, email, phone, address, gst_number, hourly_rate, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id, created_at`

	qClientUpdate = `UPDATE clients SET name=?, email=?, phone=?, address=?, gst_number=?,
		hourly_rate=?, is_active=? WHERE id=?`

	qTaskInsert = `INSERT INTO tasks (title, description, client_id, status, created_by, total_estimated_hours, total_logged_hours)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id, created_at`

	qTaskUpdate = `UPDATE tasks SET title=?, description=?, client_id=? WHERE id=?`

	qSubtaskInsert = `INSERT INTO subtasks (title, description, task_id, assigned_to, estimated_hours, logged_hours, status, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id, created_at`

	qSubtaskUpdate = `UPDATE subtasks SET title=?, description=?, assigned_to=?, estimated_hours=?, status=? WHERE id=?`

	qTimeLogInsert = `INSERT INTO time_logs (subtask_id, employee_id, start_time, end_time, duration, remark, log_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id, created_at`

	qTimeLogFinish = `UPDATE time_logs SET end_time=?, duration=?, remark=? WHERE id=?`

	qQueryInsert = `INSERT INTO queries (subtask_id, raised_by, message, qtype, priority, status)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id, created_at`

	qBillingInsert = `INSERT INTO billings (invoice_number, client_id, task_id, hours, rate_per_hour, amount,
		paid_amount, outstanding_amount, is_paid, bill_date, created_by)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, 0, ?, ?) RETURNING id, created_at`

	qBillingApplyPayment = `UPDATE billings SET
		paid_amount = paid_amount + ?,
		outstanding_amount = amount - (paid_amount + ?),
		is_paid = CASE WHEN paid_amount + ? >= amount THEN 1 ELSE 0 END
		WHERE id = ?`

	qPaymentInsert = `INSERT INTO payments (client_id, billing_id, amount, mode, reference, pay_date, status,
		transaction_id, provider, raw_response, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id, created_at`

	qPaymentComplete = `UPDATE payments SET status='COMPLETED', transaction_id=?, provider=?, raw_response=? WHERE id=?`

	qLedgerInsert = `INSERT INTO ledger_entries (client_id, entry_date, description, entry_type, debit, credit, balance, reference_kind, reference_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id, created_at`
)
