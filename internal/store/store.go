// store/store.go - SQLite-backed durable store
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"officeflow/internal/models"

	_ "modernc.org/sqlite"
)

// Store is the persistence surface consumed by the workflow services and
// handlers.
type Store interface {
	// Users
	CreateUser(u *models.User) error
	GetUser(id int64) (*models.User, error)
	ListEmployees() ([]models.User, error)

	// Clients
	CreateClient(c *models.Client) error
	GetClient(id int64) (*models.Client, error)
	UpdateClient(c *models.Client) error
	DeleteClient(id int64) error
	ListClients() ([]models.Client, error)
	ListActiveClients() ([]models.Client, error)

	// Tasks
	CreateTask(t *models.Task) error
	GetTask(id int64) (*models.Task, error)
	UpdateTask(t *models.Task) error
	UpdateTaskDerived(id int64, status models.TaskStatus, totalLogged float64) error
	UpdateTaskEstimate(id int64, totalEstimated float64) error
	DeleteTask(id int64) error
	ListTasks(f TaskFilter) ([]models.Task, error)

	// Subtasks
	CreateSubtask(s *models.Subtask) error
	GetSubtask(id int64) (*models.Subtask, error)
	UpdateSubtask(s *models.Subtask) error
	SetSubtaskStatus(id int64, status models.SubtaskStatus) error
	SetSubtaskLoggedHours(id int64, hours float64) error
	SetSubtaskAssignee(id, userID int64) error
	DeleteSubtask(id int64) error
	ListSubtasks(f SubtaskFilter) ([]models.Subtask, error)
	ListSweepCandidates() ([]SweepCandidate, error)

	// Time logs
	CreateTimeLog(l *models.TimeLog) error
	GetTimeLog(id int64) (*models.TimeLog, error)
	ActiveTimer(employeeID int64) (*models.TimeLog, error)
	FinishTimeLog(id int64, end time.Time, duration int64, remark string) error
	SumStoppedMinutes(subtaskID int64) (int64, error)
	ListTimeLogs(f TimeLogFilter) ([]models.TimeLog, error)
	ListPendingLogs(day *time.Time) ([]PendingLogRow, error)
	MarkTimeLogApproved(id, reviewer int64, at time.Time, editedHours *float64, billedAmount float64) error
	MarkTimeLogRejected(id, reviewer int64, at time.Time, reason string) error
	MarkTimeLogDismissed(id int64) error
	SetTimeLogBilledAmount(id int64, amount float64) error
	GetTimeLogForApproval(id int64) (*ApprovalContext, error)
	GetApprovedLogsByIDs(ids []int64) ([]BillableLog, error)
	CountPendingLogs() (int64, error)

	// Queries
	CreateQuery(q *models.Query) error
	GetQuery(id int64) (*models.Query, error)
	OpenQueryForSubtask(subtaskID int64) (*models.Query, error)
	MarkQueryReplied(id int64, reply string, by int64, at time.Time) error
	MarkQueryClosed(id, by int64, at time.Time, autoReply string) error
	ListQueries(f QueryFilter) ([]models.Query, error)
	CountOpenQueries() (int64, error)

	// Billings
	CreateBilling(b *models.Billing) error
	GetBilling(id int64) (*models.Billing, error)
	ListBillings(f BillingFilter) ([]models.Billing, error)
	ApplyBillingPayment(id int64, amount float64) (*models.Billing, error)
	CountBillings() (int64, error)

	// Payments
	CreatePayment(p *models.Payment) error
	GetPayment(id int64) (*models.Payment, error)
	PaymentByTransactionID(txn string) (*models.Payment, error)
	CompletePayment(id int64, txn, provider, raw string) error
	ListPayments() ([]models.Payment, error)

	// Ledger
	AppendLedgerEntry(e *models.LedgerEntry) error
	LatestLedgerEntry(clientID int64) (*models.LedgerEntry, error)
	ListLedgerEntries(clientID int64, from, to *time.Time) ([]models.LedgerEntry, error)
}

// Compile-time check that DB implements Store
var _ Store = (*DB)(nil)

type DB struct {
	*sql.DB
}

// New creates/opens the database file and runs migrations.
func New(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{sqlDB}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// NewMemory opens an in-memory database for tests. The pool is pinned to a
// single connection so every statement sees the same database.
func NewMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := &DB{sqlDB}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL CHECK(role IN ('EMPLOYEE', 'HR')),
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		gst_number TEXT NOT NULL DEFAULT '',
		hourly_rate REAL NOT NULL DEFAULT 1000,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		client_id INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING'
			CHECK(status IN ('PENDING', 'IN_PROGRESS', 'ON_HOLD', 'COMPLETED')),
		created_by INTEGER NOT NULL,
		total_estimated_hours REAL NOT NULL DEFAULT 0,
		total_logged_hours REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS subtasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		assigned_to INTEGER NOT NULL,
		estimated_hours REAL NOT NULL DEFAULT 0,
		logged_hours REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'PENDING'
			CHECK(status IN ('PENDING', 'IN_PROGRESS', 'ON_HOLD', 'COMPLETED', 'OUTSTANDING')),
		created_by INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS time_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subtask_id INTEGER NOT NULL REFERENCES subtasks(id) ON DELETE CASCADE,
		employee_id INTEGER NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		duration INTEGER NOT NULL DEFAULT 0,
		remark TEXT NOT NULL DEFAULT '',
		log_date DATETIME NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING'
			CHECK(status IN ('PENDING', 'APPROVED', 'REJECTED')),
		approved_by INTEGER,
		approved_at DATETIME,
		edited_hours REAL,
		rejection_reason TEXT NOT NULL DEFAULT '',
		billed_amount REAL NOT NULL DEFAULT 0,
		dismissed INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS queries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subtask_id INTEGER NOT NULL REFERENCES subtasks(id) ON DELETE CASCADE,
		raised_by INTEGER NOT NULL,
		message TEXT NOT NULL,
		qtype TEXT NOT NULL CHECK(qtype IN ('CLARIFICATION', 'BLOCKER', 'APPROVAL_NEEDED')),
		priority TEXT NOT NULL CHECK(priority IN ('LOW', 'MEDIUM', 'HIGH')),
		status TEXT NOT NULL DEFAULT 'OPEN' CHECK(status IN ('OPEN', 'REPLIED', 'CLOSED')),
		reply TEXT NOT NULL DEFAULT '',
		replied_by INTEGER,
		replied_at DATETIME,
		closed_by INTEGER,
		closed_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS billings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_number TEXT NOT NULL UNIQUE,
		client_id INTEGER NOT NULL,
		task_id INTEGER NOT NULL,
		hours REAL NOT NULL,
		rate_per_hour REAL NOT NULL,
		amount REAL NOT NULL,
		paid_amount REAL NOT NULL DEFAULT 0,
		outstanding_amount REAL NOT NULL DEFAULT 0,
		is_paid INTEGER NOT NULL DEFAULT 0,
		bill_date DATETIME NOT NULL,
		created_by INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS billing_time_logs (
		billing_id INTEGER NOT NULL REFERENCES billings(id) ON DELETE CASCADE,
		time_log_id INTEGER NOT NULL,
		PRIMARY KEY (billing_id, time_log_id)
	);

	CREATE TABLE IF NOT EXISTS payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id INTEGER NOT NULL,
		billing_id INTEGER,
		amount REAL NOT NULL,
		mode TEXT NOT NULL CHECK(mode IN ('CASH', 'BANK', 'UPI', 'ONLINE')),
		reference TEXT NOT NULL DEFAULT '',
		pay_date DATETIME NOT NULL,
		status TEXT NOT NULL DEFAULT 'COMPLETED' CHECK(status IN ('PENDING', 'COMPLETED', 'FAILED')),
		transaction_id TEXT,
		provider TEXT NOT NULL DEFAULT '',
		raw_response TEXT NOT NULL DEFAULT '',
		created_by INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS ledger_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id INTEGER NOT NULL,
		entry_date DATETIME NOT NULL,
		description TEXT NOT NULL,
		entry_type TEXT NOT NULL CHECK(entry_type IN ('DEBIT', 'CREDIT')),
		debit REAL NOT NULL DEFAULT 0,
		credit REAL NOT NULL DEFAULT 0,
		balance REAL NOT NULL,
		reference_kind TEXT CHECK(reference_kind IN ('Billing', 'Payment')),
		reference_id INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_client ON tasks(client_id);
	CREATE INDEX IF NOT EXISTS idx_subtasks_task ON subtasks(task_id);
	CREATE INDEX IF NOT EXISTS idx_subtasks_assigned ON subtasks(assigned_to);
	CREATE INDEX IF NOT EXISTS idx_time_logs_subtask ON time_logs(subtask_id);
	CREATE INDEX IF NOT EXISTS idx_time_logs_employee_date ON time_logs(employee_id, log_date);
	CREATE INDEX IF NOT EXISTS idx_time_logs_status ON time_logs(status);
	CREATE INDEX IF NOT EXISTS idx_queries_subtask ON queries(subtask_id, status);
	CREATE INDEX IF NOT EXISTS idx_billings_client ON billings(client_id);
	CREATE INDEX IF NOT EXISTS idx_payments_client ON payments(client_id, pay_date);
	CREATE INDEX IF NOT EXISTS idx_ledger_client_date ON ledger_entries(client_id, entry_date);

	-- One running timer per employee, one open query per subtask. Enforced
	-- here so two near-simultaneous requests cannot both pass an
	-- application-level check.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_time_logs_one_active
		ON time_logs(employee_id) WHERE end_time IS NULL;
	CREATE UNIQUE INDEX IF NOT EXISTS idx_queries_one_open
		ON queries(subtask_id) WHERE status != 'CLOSED';
	CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_transaction
		ON payments(transaction_id) WHERE transaction_id IS NOT NULL;
	`
	_, err := db.Exec(schema)
	return err
}

// collectRows scans every row with scan and closes the rows.
func collectRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error, needle string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, needle)
}

// Nullable column helpers

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

func nullI64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func i64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullF64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func f64Ptr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// nullStr maps "" to NULL; used for transaction ids so the unique index only
// sees real gateway ids.
func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// dayRange returns [start of day, start of next day) for day filters.
func dayRange(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}
