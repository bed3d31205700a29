// workflow/timer.go - Start/stop time tracking
package workflow

import (
	"math"
	"time"

	"officeflow/internal/models"
	"officeflow/internal/store"
)

// StartWork begins a timer for the caller on a subtask. Guard order: the
// subtask must exist, be assigned to the caller, not be escalated, have no
// open query, and the caller must not already have a running timer.
func (s *Service) StartWork(employeeID, subtaskID int64) (*models.TimeLog, error) {
	sub, err := s.store.GetSubtask(subtaskID)
	if err != nil {
		return nil, err
	}
	if sub.AssignedTo != employeeID {
		return nil, ErrNotAssigned
	}
	if sub.Status == models.SubtaskOutstanding {
		return nil, ErrSubtaskOutstanding
	}

	open, err := s.store.OpenQueryForSubtask(subtaskID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrQueryBlocking
	}

	now := s.now()
	log := &models.TimeLog{
		SubtaskID:  subtaskID,
		EmployeeID: employeeID,
		StartTime:  now,
		Date:       now,
		Status:     models.LogPending,
	}
	if err := s.store.CreateTimeLog(log); err != nil {
		return nil, err
	}

	// Every successful start moves the subtask to IN_PROGRESS, including one
	// a reassigned query left on hold.
	if err := s.store.SetSubtaskStatus(subtaskID, models.SubtaskInProgress); err != nil {
		return nil, err
	}
	if err := s.recomputeTask(sub.TaskID); err != nil {
		return nil, err
	}
	return log, nil
}

// StopWork ends the caller's timer on a log, records the rounded duration in
// minutes and refreshes the subtask's logged hours.
func (s *Service) StopWork(employeeID, logID int64, remark string) (*models.TimeLog, error) {
	log, err := s.store.GetTimeLog(logID)
	if err != nil {
		return nil, err
	}
	if log.EmployeeID != employeeID {
		return nil, ErrNotOwner
	}
	if log.EndTime != nil {
		return nil, ErrTimerStopped
	}

	end := s.now()
	duration := roundedMinutes(log.StartTime, end)
	if err := s.store.FinishTimeLog(logID, end, duration, remark); err != nil {
		return nil, err
	}
	if err := s.refreshLoggedHours(log.SubtaskID); err != nil {
		return nil, err
	}
	return s.store.GetTimeLog(logID)
}

// forceStopTimer ends any running timer the employee holds on the subtask,
// used when a query puts the subtask on hold mid-work.
func (s *Service) forceStopTimer(employeeID, subtaskID int64, remark string) error {
	active, err := s.store.ActiveTimer(employeeID)
	if err != nil {
		return err
	}
	if active == nil || active.SubtaskID != subtaskID {
		return nil
	}
	end := s.now()
	if err := s.store.FinishTimeLog(active.ID, end, roundedMinutes(active.StartTime, end), remark); err != nil {
		return err
	}
	return s.refreshLoggedHours(subtaskID)
}

// refreshLoggedHours recomputes a subtask's logged hours from its stopped
// logs and cascades into the parent task's derived fields.
func (s *Service) refreshLoggedHours(subtaskID int64) error {
	minutes, err := s.store.SumStoppedMinutes(subtaskID)
	if err != nil {
		return err
	}
	if err := s.store.SetSubtaskLoggedHours(subtaskID, round2(float64(minutes)/60)); err != nil {
		return err
	}
	sub, err := s.store.GetSubtask(subtaskID)
	if err != nil {
		return err
	}
	return s.recomputeTask(sub.TaskID)
}

func roundedMinutes(start, end time.Time) int64 {
	return int64(math.Round(end.Sub(start).Minutes()))
}

// ActiveTimer returns the employee's running log, or nil.
func (s *Service) ActiveTimer(employeeID int64) (*models.TimeLog, error) {
	return s.store.ActiveTimer(employeeID)
}

// TodayLogs lists the employee's logs for the current day, running included.
func (s *Service) TodayLogs(employeeID int64) ([]models.TimeLog, error) {
	day := s.now()
	return s.store.ListTimeLogs(store.TimeLogFilter{EmployeeID: &employeeID, Day: &day})
}

// DismissRejectedLog hides a rejected log from the employee's view after they
// acknowledge the rejection.
func (s *Service) DismissRejectedLog(employeeID, logID int64) error {
	log, err := s.store.GetTimeLog(logID)
	if err != nil {
		return err
	}
	if log.EmployeeID != employeeID {
		return ErrNotOwner
	}
	if log.Status != models.LogRejected {
		return ErrLogNotRejected
	}
	return s.store.MarkTimeLogDismissed(logID)
}
