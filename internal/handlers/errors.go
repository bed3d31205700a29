// handlers/errors.go - Domain error to HTTP status mapping
package handlers

import (
	"errors"
	"log"
	"net/http"

	"officeflow/internal/gateway"
	"officeflow/internal/store"
	"officeflow/internal/workflow"
)

var errStatus = map[error]struct {
	status int
	code   string
}{
	store.ErrUserNotFound:         {http.StatusNotFound, "user_not_found"},
	store.ErrClientNotFound:       {http.StatusNotFound, "client_not_found"},
	store.ErrTaskNotFound:         {http.StatusNotFound, "task_not_found"},
	store.ErrSubtaskNotFound:      {http.StatusNotFound, "subtask_not_found"},
	store.ErrTimeLogNotFound:      {http.StatusNotFound, "time_log_not_found"},
	store.ErrQueryNotFound:        {http.StatusNotFound, "query_not_found"},
	store.ErrBillingNotFound:      {http.StatusNotFound, "billing_not_found"},
	store.ErrPaymentNotFound:      {http.StatusNotFound, "payment_not_found"},
	store.ErrTimerRunning:         {http.StatusConflict, "timer_running"},
	store.ErrOpenQueryExists:      {http.StatusConflict, "open_query_exists"},
	store.ErrDuplicateTransaction: {http.StatusConflict, "duplicate_transaction"},

	workflow.ErrNotAssigned:        {http.StatusForbidden, "not_assigned"},
	workflow.ErrNotOwner:           {http.StatusForbidden, "not_owner"},
	workflow.ErrSubtaskOutstanding: {http.StatusConflict, "subtask_outstanding"},
	workflow.ErrQueryBlocking:      {http.StatusConflict, "query_blocking"},
	workflow.ErrTimerStopped:       {http.StatusConflict, "timer_stopped"},
	workflow.ErrLogStillRunning:    {http.StatusConflict, "log_still_running"},
	workflow.ErrLogNotRejected:     {http.StatusConflict, "log_not_rejected"},
	workflow.ErrAlreadyPaid:        {http.StatusConflict, "already_paid"},
	workflow.ErrInvalidTransition:  {http.StatusConflict, "invalid_transition"},
	workflow.ErrReasonRequired:     {http.StatusBadRequest, "reason_required"},
	workflow.ErrNoApprovedLogs:     {http.StatusBadRequest, "no_approved_logs"},
	workflow.ErrLogCountMismatch:   {http.StatusBadRequest, "log_count_mismatch"},
	workflow.ErrCrossTaskLogs:      {http.StatusBadRequest, "cross_task_logs"},
	workflow.ErrClientMissing:      {http.StatusBadRequest, "client_missing"},
	workflow.ErrInvalidInput:       {http.StatusBadRequest, "invalid_input"},

	gateway.ErrInvalidSignature: {http.StatusBadRequest, "invalid_signature"},
}

// respondError translates a domain error into a JSON error response. Unknown
// errors become 500s with the detail kept out of the body.
func respondError(w http.ResponseWriter, err error) {
	for sentinel, m := range errStatus {
		if errors.Is(err, sentinel) {
			writeError(w, m.status, m.code, sentinel.Error())
			return
		}
	}
	log.Printf("internal error: %v", err)
	writeError(w, http.StatusInternalServerError, "internal", "internal server error")
}
