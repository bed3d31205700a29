// handlers/timelogs.go - Time tracking and approval endpoints
package handlers

import (
	"errors"
	"net/http"
	"time"

	"officeflow/internal/models"
	"officeflow/internal/store"
)

func (h *Handler) startWork(w http.ResponseWriter, r *http.Request) {
	subtaskID, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid subtask id")
		return
	}

	p := principal(r)
	log, err := h.Flow.StartWork(p.ID, subtaskID)
	if errors.Is(err, store.ErrTimerRunning) {
		// Tell the caller which timer is blocking them.
		active, lookupErr := h.Flow.ActiveTimer(p.ID)
		if lookupErr == nil && active != nil {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":        map[string]string{"code": "timer_running", "message": err.Error()},
				"active_timer": active,
			})
			return
		}
		respondError(w, err)
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

func (h *Handler) stopWork(w http.ResponseWriter, r *http.Request) {
	logID, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid time log id")
		return
	}

	var in struct {
		Remark string `json:"remark"`
	}
	if r.ContentLength > 0 {
		if err := decode(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json", err.Error())
			return
		}
	}

	log, err := h.Flow.StopWork(principal(r).ID, logID, in.Remark)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (h *Handler) activeTimer(w http.ResponseWriter, r *http.Request) {
	active, err := h.Flow.ActiveTimer(principal(r).ID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"active_timer": active})
}

// listTimeLogs scopes to the caller unless HR asks for someone else's logs.
func (h *Handler) listTimeLogs(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var f store.TimeLogFilter

	if p.IsHR() {
		if v, ok := queryInt64(r, "employee_id"); ok {
			f.EmployeeID = &v
		}
	} else {
		f.EmployeeID = &p.ID
	}
	if v, ok := queryInt64(r, "subtask_id"); ok {
		f.SubtaskID = &v
	}
	f.Status = models.TimeLogStatus(r.URL.Query().Get("status"))
	if d := r.URL.Query().Get("date"); d != "" {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		f.Day = &day
	} else if r.URL.Query().Get("today") == "true" {
		now := time.Now()
		f.Day = &now
	}

	logs, err := h.DB.ListTimeLogs(f)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *Handler) dismissLog(w http.ResponseWriter, r *http.Request) {
	logID, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid time log id")
		return
	}
	if err := h.Flow.DismissRejectedLog(principal(r).ID, logID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pendingLogs(w http.ResponseWriter, r *http.Request) {
	var day *time.Time
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		day = &parsed
	}

	groups, err := h.Flow.PendingLogGroups(day)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *Handler) approveLog(w http.ResponseWriter, r *http.Request) {
	logID, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid time log id")
		return
	}

	var in struct {
		EditedHours *float64 `json:"edited_hours,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := decode(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json", err.Error())
			return
		}
	}

	log, err := h.Flow.ApproveTimeLog(principal(r).ID, logID, in.EditedHours)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (h *Handler) rejectLog(w http.ResponseWriter, r *http.Request) {
	logID, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid time log id")
		return
	}

	var in struct {
		Reason string `json:"reason"`
	}
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}

	log, err := h.Flow.RejectTimeLog(principal(r).ID, logID, in.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}
