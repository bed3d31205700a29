// workflow/errors.go - Domain errors surfaced by the workflow services
package workflow

import "errors"

var (
	ErrNotAssigned        = errors.New("subtask not assigned to this employee")
	ErrSubtaskOutstanding = errors.New("subtask is marked outstanding, HR intervention required")
	ErrQueryBlocking      = errors.New("subtask has an open query")
	ErrNotOwner           = errors.New("time log does not belong to caller")
	ErrTimerStopped       = errors.New("timer already stopped")
	ErrLogStillRunning    = errors.New("time log is still running")
	ErrLogNotRejected     = errors.New("time log is not rejected")
	ErrReasonRequired     = errors.New("rejection reason is required")
	ErrNoApprovedLogs     = errors.New("no approved time logs found")
	ErrLogCountMismatch   = errors.New("some time logs are not approved or don't exist")
	ErrCrossTaskLogs      = errors.New("all time logs must belong to the same task")
	ErrAlreadyPaid        = errors.New("invoice already paid")
	ErrClientMissing      = errors.New("invoice has no associated client")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidTransition  = errors.New("invalid status transition")
)
