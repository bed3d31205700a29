// models/models.go - People and work-tracking entities
package models

import "time"

// Role of an authenticated principal
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleHR       Role = "HR"
)

// Principal is the authenticated caller, supplied by the identity layer.
type Principal struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

func (p Principal) IsHR() bool { return p.Role == RoleHR }

// User is a directory entry for an employee or HR member.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Client is a billable customer. HourlyRate is the default billing rate;
// invoices freeze the rate in effect at creation time.
type Client struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	GSTNumber  string    `json:"gst_number"`
	HourlyRate float64   `json:"hourly_rate"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// TaskStatus is derived from the statuses of a task's subtasks.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskOnHold     TaskStatus = "ON_HOLD"
	TaskCompleted  TaskStatus = "COMPLETED"
)

// Task aggregates subtasks for one client. Status and TotalLoggedHours are
// recomputed from the subtasks, never edited directly.
type Task struct {
	ID                  int64      `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	ClientID            int64      `json:"client_id"`
	Status              TaskStatus `json:"status"`
	CreatedBy           int64      `json:"created_by"`
	TotalEstimatedHours float64    `json:"total_estimated_hours"`
	TotalLoggedHours    float64    `json:"total_logged_hours"`
	CreatedAt           time.Time  `json:"created_at"`
}

type SubtaskStatus string

const (
	SubtaskPending     SubtaskStatus = "PENDING"
	SubtaskInProgress  SubtaskStatus = "IN_PROGRESS"
	SubtaskOnHold      SubtaskStatus = "ON_HOLD"
	SubtaskCompleted   SubtaskStatus = "COMPLETED"
	SubtaskOutstanding SubtaskStatus = "OUTSTANDING"
)

// Subtask is the smallest unit of assignable, time-trackable work.
// LoggedHours is the sum of all stopped time-log durations, regardless of
// approval status.
type Subtask struct {
	ID             int64         `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	TaskID         int64         `json:"task_id"`
	AssignedTo     int64         `json:"assigned_to"`
	EstimatedHours float64       `json:"estimated_hours"`
	LoggedHours    float64       `json:"logged_hours"`
	Status         SubtaskStatus `json:"status"`
	CreatedBy      int64         `json:"created_by"`
	CreatedAt      time.Time     `json:"created_at"`
}

type TimeLogStatus string

const (
	LogPending  TimeLogStatus = "PENDING"
	LogApproved TimeLogStatus = "APPROVED"
	LogRejected TimeLogStatus = "REJECTED"
)

// TimeLog is one start/stop interval of work on a subtask. EndTime nil means
// the timer is still running; an employee may hold at most one running log.
type TimeLog struct {
	ID              int64         `json:"id"`
	SubtaskID       int64         `json:"subtask_id"`
	EmployeeID      int64         `json:"employee_id"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         *time.Time    `json:"end_time,omitempty"`
	Duration        int64         `json:"duration"` // minutes, set on stop
	Remark          string        `json:"remark,omitempty"`
	Date            time.Time     `json:"date"`
	Status          TimeLogStatus `json:"status"`
	ApprovedBy      *int64        `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time    `json:"approved_at,omitempty"`
	EditedHours     *float64      `json:"edited_hours,omitempty"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	BilledAmount    float64       `json:"billed_amount"`
	Dismissed       bool          `json:"dismissed_by_employee"`
	CreatedAt       time.Time     `json:"created_at"`
}

// EffectiveHours is what billing math uses: the HR override if present,
// otherwise the recorded duration.
func (l *TimeLog) EffectiveHours() float64 {
	if l.EditedHours != nil {
		return *l.EditedHours
	}
	return float64(l.Duration) / 60
}

type QueryStatus string

const (
	QueryOpen    QueryStatus = "OPEN"
	QueryReplied QueryStatus = "REPLIED"
	QueryClosed  QueryStatus = "CLOSED"
)

type QueryType string

const (
	QueryClarification  QueryType = "CLARIFICATION"
	QueryBlocker        QueryType = "BLOCKER"
	QueryApprovalNeeded QueryType = "APPROVAL_NEEDED"
)

type QueryPriority string

const (
	PriorityLow    QueryPriority = "LOW"
	PriorityMedium QueryPriority = "MEDIUM"
	PriorityHigh   QueryPriority = "HIGH"
)

// Query is an employee-raised clarification request that puts the subtask on
// hold until HR closes it. At most one non-closed query per subtask.
type Query struct {
	ID        int64         `json:"id"`
	SubtaskID int64         `json:"subtask_id"`
	RaisedBy  int64         `json:"raised_by"`
	Message   string        `json:"message"`
	Type      QueryType     `json:"type"`
	Priority  QueryPriority `json:"priority"`
	Status    QueryStatus   `json:"status"`
	Reply     string        `json:"reply,omitempty"`
	RepliedBy *int64        `json:"replied_by,omitempty"`
	RepliedAt *time.Time    `json:"replied_at,omitempty"`
	ClosedBy  *int64        `json:"closed_by,omitempty"`
	ClosedAt  *time.Time    `json:"closed_at,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
