// store/errors.go - Sentinel errors surfaced by the store
package store

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrClientNotFound  = errors.New("client not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubtaskNotFound = errors.New("subtask not found")
	ErrTimeLogNotFound = errors.New("time log not found")
	ErrQueryNotFound   = errors.New("query not found")
	ErrBillingNotFound = errors.New("billing not found")
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrTimerRunning means the employee already holds a running timer.
	// Backed by a partial unique index, so a check-then-act race still fails.
	ErrTimerRunning = errors.New("timer already running")

	// ErrOpenQueryExists means a non-closed query already exists for the
	// subtask. Also index-backed.
	ErrOpenQueryExists = errors.New("open query already exists")

	// ErrDuplicateTransaction means a payment with this gateway transaction
	// id was already recorded.
	ErrDuplicateTransaction = errors.New("duplicate gateway transaction")
)
