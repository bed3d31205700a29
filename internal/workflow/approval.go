// workflow/approval.go - HR review of submitted time logs
package workflow

import (
	"time"

	"officeflow/internal/models"
	"officeflow/internal/store"
)

// PendingLogs lists stopped, unreviewed time logs, optionally for one day,
// joined with the employee and work context HR needs to review them.
func (s *Service) PendingLogs(day *time.Time) ([]store.PendingLogRow, error) {
	return s.store.ListPendingLogs(day)
}

// PendingGroup is one employee's slice of the review backlog.
type PendingGroup struct {
	EmployeeID    int64                 `json:"employee_id"`
	EmployeeName  string                `json:"employee_name"`
	EmployeeEmail string                `json:"employee_email"`
	Logs          []store.PendingLogRow `json:"logs"`
	TotalHours    float64               `json:"total_hours"`
}

// PendingLogGroups buckets the review backlog per employee, with the total
// recorded hours HR would be approving.
func (s *Service) PendingLogGroups(day *time.Time) ([]PendingGroup, error) {
	rows, err := s.store.ListPendingLogs(day)
	if err != nil {
		return nil, err
	}

	groups := []PendingGroup{}
	for _, row := range rows {
		if len(groups) == 0 || groups[len(groups)-1].EmployeeID != row.Log.EmployeeID {
			groups = append(groups, PendingGroup{
				EmployeeID:    row.Log.EmployeeID,
				EmployeeName:  row.EmployeeName,
				EmployeeEmail: row.EmployeeMail,
			})
		}
		g := &groups[len(groups)-1]
		g.Logs = append(g.Logs, row)
		g.TotalHours += float64(row.Log.Duration) / 60
	}
	for i := range groups {
		groups[i].TotalHours = round2(groups[i].TotalHours)
	}
	return groups, nil
}

// ApproveTimeLog accepts a stopped pending log. editedHours, when non-nil,
// overrides the recorded duration for billing; a zero override is legitimate
// and bills nothing. The billed amount snapshots the client's rate at
// approval time.
func (s *Service) ApproveTimeLog(hrID, logID int64, editedHours *float64) (*models.TimeLog, error) {
	ctx, err := s.store.GetTimeLogForApproval(logID)
	if err != nil {
		return nil, err
	}
	if ctx.Log.Status != models.LogPending {
		return nil, ErrInvalidTransition
	}
	if ctx.Log.EndTime == nil {
		return nil, ErrLogStillRunning
	}
	if editedHours != nil && *editedHours < 0 {
		return nil, ErrInvalidInput
	}

	hours := float64(ctx.Log.Duration) / 60
	if editedHours != nil {
		hours = *editedHours
	}
	billed := round2(hours * ctx.HourlyRate)

	if err := s.store.MarkTimeLogApproved(logID, hrID, s.now(), editedHours, billed); err != nil {
		return nil, err
	}
	return s.store.GetTimeLog(logID)
}

// RejectTimeLog refuses a stopped pending log. A reason is mandatory; the
// employee sees it until they dismiss the log.
func (s *Service) RejectTimeLog(hrID, logID int64, reason string) (*models.TimeLog, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}
	log, err := s.store.GetTimeLog(logID)
	if err != nil {
		return nil, err
	}
	if log.Status != models.LogPending {
		return nil, ErrInvalidTransition
	}
	if log.EndTime == nil {
		return nil, ErrLogStillRunning
	}
	if err := s.store.MarkTimeLogRejected(logID, hrID, s.now(), reason); err != nil {
		return nil, err
	}
	return s.store.GetTimeLog(logID)
}
