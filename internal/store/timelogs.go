// store/timelogs.go - Time log persistence
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"officeflow/internal/models"
)

// TimeLogFilter narrows ListTimeLogs; zero values mean no filter.
type TimeLogFilter struct {
	EmployeeID *int64
	SubtaskID  *int64
	Status     models.TimeLogStatus
	Day        *time.Time
	Stopped    bool // only logs with a set end time
}

func scanTimeLog(rows *sql.Rows) (models.TimeLog, error) {
	var l models.TimeLog
	var end, approvedAt sql.NullTime
	var approvedBy sql.NullInt64
	var edited sql.NullFloat64
	err := rows.Scan(&l.ID, &l.SubtaskID, &l.EmployeeID, &l.StartTime, &end, &l.Duration,
		&l.Remark, &l.Date, &l.Status, &approvedBy, &approvedAt, &edited,
		&l.RejectionReason, &l.BilledAmount, &l.Dismissed, &l.CreatedAt)
	l.EndTime = timePtr(end)
	l.ApprovedBy = i64Ptr(approvedBy)
	l.ApprovedAt = timePtr(approvedAt)
	l.EditedHours = f64Ptr(edited)
	return l, err
}

func (db *DB) CreateTimeLog(l *models.TimeLog) error {
	if l.Status == "" {
		l.Status = models.LogPending
	}
	err := db.QueryRow(qTimeLogInsert, l.SubtaskID, l.EmployeeID, l.StartTime,
		nullTime(l.EndTime), l.Duration, l.Remark, l.Date, l.Status).Scan(&l.ID, &l.CreatedAt)
	if isUniqueViolation(err, "time_logs") {
		return ErrTimerRunning
	}
	return err
}

func (db *DB) GetTimeLog(id int64) (*models.TimeLog, error) {
	rows, err := db.Query(`SELECT `+timeLogCols+` FROM time_logs WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	logs, err := collectRows(rows, scanTimeLog)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, ErrTimeLogNotFound
	}
	return &logs[0], nil
}

// ActiveTimer returns the employee's single running log, or nil when none.
func (db *DB) ActiveTimer(employeeID int64) (*models.TimeLog, error) {
	rows, err := db.Query(`SELECT `+timeLogCols+` FROM time_logs
		WHERE employee_id = ? AND end_time IS NULL`, employeeID)
	if err != nil {
		return nil, err
	}
	logs, err := collectRows(rows, scanTimeLog)
	if err != nil || len(logs) == 0 {
		return nil, err
	}
	return &logs[0], nil
}

func (db *DB) FinishTimeLog(id int64, end time.Time, duration int64, remark string) error {
	res, err := db.Exec(qTimeLogFinish, end, duration, remark, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTimeLogNotFound
	}
	return nil
}

func (db *DB) SumStoppedMinutes(subtaskID int64) (int64, error) {
	var total int64
	err := db.QueryRow(`SELECT COALESCE(SUM(duration), 0) FROM time_logs
		WHERE subtask_id = ? AND end_time IS NOT NULL`, subtaskID).Scan(&total)
	return total, err
}

func (db *DB) ListTimeLogs(f TimeLogFilter) ([]models.TimeLog, error) {
	q := `SELECT ` + timeLogCols + ` FROM time_logs WHERE 1=1`
	var args []any
	if f.EmployeeID != nil {
		q += ` AND employee_id = ?`
		args = append(args, *f.EmployeeID)
	}
	if f.SubtaskID != nil {
		q += ` AND subtask_id = ?`
		args = append(args, *f.SubtaskID)
	}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Day != nil {
		start, end := dayRange(*f.Day)
		q += ` AND log_date >= ? AND log_date < ?`
		args = append(args, start, end)
	}
	if f.Stopped {
		q += ` AND end_time IS NOT NULL`
	}
	q += ` ORDER BY log_date DESC, start_time DESC`
	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanTimeLog)
}

// PendingLogRow is a pending log joined with the names HR's review screen
// shows alongside it.
type PendingLogRow struct {
	Log          models.TimeLog `json:"log"`
	EmployeeName string         `json:"employee_name"`
	EmployeeMail string         `json:"employee_email"`
	SubtaskTitle string         `json:"subtask_title"`
	TaskTitle    string         `json:"task_title"`
}

func (db *DB) ListPendingLogs(day *time.Time) ([]PendingLogRow, error) {
	q := `SELECT ` + prefixCols("l", timeLogCols) + `, u.name, u.email, s.title, t.title
		FROM time_logs l
		JOIN users u ON u.id = l.employee_id
		JOIN subtasks s ON s.id = l.subtask_id
		JOIN tasks t ON t.id = s.task_id
		WHERE l.status = 'PENDING' AND l.end_time IS NOT NULL`
	var args []any
	if day != nil {
		start, end := dayRange(*day)
		q += ` AND l.log_date >= ? AND l.log_date < ?`
		args = append(args, start, end)
	}
	q += ` ORDER BY l.employee_id, l.log_date DESC, l.start_time DESC`
	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, func(rows *sql.Rows) (PendingLogRow, error) {
		var r PendingLogRow
		var end, approvedAt sql.NullTime
		var approvedBy sql.NullInt64
		var edited sql.NullFloat64
		l := &r.Log
		err := rows.Scan(&l.ID, &l.SubtaskID, &l.EmployeeID, &l.StartTime, &end, &l.Duration,
			&l.Remark, &l.Date, &l.Status, &approvedBy, &approvedAt, &edited,
			&l.RejectionReason, &l.BilledAmount, &l.Dismissed, &l.CreatedAt,
			&r.EmployeeName, &r.EmployeeMail, &r.SubtaskTitle, &r.TaskTitle)
		l.EndTime = timePtr(end)
		l.ApprovedBy = i64Ptr(approvedBy)
		l.ApprovedAt = timePtr(approvedAt)
		l.EditedHours = f64Ptr(edited)
		return r, err
	})
}

func (db *DB) MarkTimeLogApproved(id, reviewer int64, at time.Time, editedHours *float64, billedAmount float64) error {
	res, err := db.Exec(`UPDATE time_logs SET status='APPROVED', approved_by=?, approved_at=?,
		edited_hours=?, billed_amount=? WHERE id=?`,
		reviewer, at, nullF64(editedHours), billedAmount, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTimeLogNotFound
	}
	return nil
}

func (db *DB) MarkTimeLogRejected(id, reviewer int64, at time.Time, reason string) error {
	res, err := db.Exec(`UPDATE time_logs SET status='REJECTED', approved_by=?, approved_at=?,
		rejection_reason=? WHERE id=?`, reviewer, at, reason, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTimeLogNotFound
	}
	return nil
}

func (db *DB) MarkTimeLogDismissed(id int64) error {
	res, err := db.Exec(`UPDATE time_logs SET dismissed=1 WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTimeLogNotFound
	}
	return nil
}

func (db *DB) SetTimeLogBilledAmount(id int64, amount float64) error {
	_, err := db.Exec(`UPDATE time_logs SET billed_amount=? WHERE id=?`, amount, id)
	return err
}

// ApprovalContext carries the subtask -> task -> client chain the approval
// calculation needs, resolved in one query.
type ApprovalContext struct {
	Log          models.TimeLog
	SubtaskTitle string
	TaskID       int64
	ClientID     int64
	HourlyRate   float64
}

func (db *DB) GetTimeLogForApproval(id int64) (*ApprovalContext, error) {
	rows, err := db.Query(`SELECT `+prefixCols("l", timeLogCols)+`, s.title, t.id, c.id, c.hourly_rate
		FROM time_logs l
		JOIN subtasks s ON s.id = l.subtask_id
		JOIN tasks t ON t.id = s.task_id
		JOIN clients c ON c.id = t.client_id
		WHERE l.id = ?`, id)
	if err != nil {
		return nil, err
	}
	ctxs, err := collectRows(rows, func(rows *sql.Rows) (ApprovalContext, error) {
		var a ApprovalContext
		var end, approvedAt sql.NullTime
		var approvedBy sql.NullInt64
		var edited sql.NullFloat64
		l := &a.Log
		err := rows.Scan(&l.ID, &l.SubtaskID, &l.EmployeeID, &l.StartTime, &end, &l.Duration,
			&l.Remark, &l.Date, &l.Status, &approvedBy, &approvedAt, &edited,
			&l.RejectionReason, &l.BilledAmount, &l.Dismissed, &l.CreatedAt,
			&a.SubtaskTitle, &a.TaskID, &a.ClientID, &a.HourlyRate)
		l.EndTime = timePtr(end)
		l.ApprovedBy = i64Ptr(approvedBy)
		l.ApprovedAt = timePtr(approvedAt)
		l.EditedHours = f64Ptr(edited)
		return a, err
	})
	if err != nil {
		return nil, err
	}
	if len(ctxs) == 0 {
		return nil, ErrTimeLogNotFound
	}
	return &ctxs[0], nil
}

// BillableLog pairs an approved log with the task its subtask belongs to,
// for the cross-task check at billing time.
type BillableLog struct {
	Log    models.TimeLog
	TaskID int64
}

// GetApprovedLogsByIDs returns only logs that exist AND are approved; callers
// compare the result count against the requested ids.
func (db *DB) GetApprovedLogsByIDs(ids []int64) ([]BillableLog, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := fmt.Sprintf(`SELECT %s, s.task_id
		FROM time_logs l
		JOIN subtasks s ON s.id = l.subtask_id
		WHERE l.id IN (%s) AND l.status = 'APPROVED'`, prefixCols("l", timeLogCols), placeholders)
	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, func(rows *sql.Rows) (BillableLog, error) {
		var b BillableLog
		var end, approvedAt sql.NullTime
		var approvedBy sql.NullInt64
		var edited sql.NullFloat64
		l := &b.Log
		err := rows.Scan(&l.ID, &l.SubtaskID, &l.EmployeeID, &l.StartTime, &end, &l.Duration,
			&l.Remark, &l.Date, &l.Status, &approvedBy, &approvedAt, &edited,
			&l.RejectionReason, &l.BilledAmount, &l.Dismissed, &l.CreatedAt, &b.TaskID)
		l.EndTime = timePtr(end)
		l.ApprovedBy = i64Ptr(approvedBy)
		l.ApprovedAt = timePtr(approvedAt)
		l.EditedHours = f64Ptr(edited)
		return b, err
	})
}

func (db *DB) CountPendingLogs() (int64, error) {
	var n int64
	err := db.QueryRow(`SELECT COUNT(*) FROM time_logs WHERE status='PENDING' AND end_time IS NOT NULL`).Scan(&n)
	return n, err
}

// prefixCols qualifies a comma-separated column list with a table alias.
func prefixCols(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
