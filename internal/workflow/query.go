// workflow/query.go - Query lifecycle: raise, reply, close, reassign
package workflow

import (
	"errors"

	"officeflow/internal/models"
	"officeflow/internal/store"
)

const autoStopRemark = "Auto-stopped due to query raised"

// RaiseQuery opens a query on the caller's subtask, puts the subtask on hold
// and force-stops any timer the caller is running on it. If the subtask
// already has an open query, that query is returned alongside the error.
func (s *Service) RaiseQuery(employeeID int64, q *models.Query) (*models.Query, error) {
	if q.Message == "" || q.Type == "" || q.Priority == "" {
		return nil, ErrInvalidInput
	}

	sub, err := s.store.GetSubtask(q.SubtaskID)
	if err != nil {
		return nil, err
	}
	if sub.AssignedTo != employeeID {
		return nil, ErrNotAssigned
	}

	q.RaisedBy = employeeID
	q.Status = models.QueryOpen
	if err := s.store.CreateQuery(q); err != nil {
		if errors.Is(err, store.ErrOpenQueryExists) {
			existing, lookupErr := s.store.OpenQueryForSubtask(q.SubtaskID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return existing, store.ErrOpenQueryExists
		}
		return nil, err
	}

	if err := s.store.SetSubtaskStatus(q.SubtaskID, models.SubtaskOnHold); err != nil {
		return nil, err
	}
	if err := s.forceStopTimer(employeeID, q.SubtaskID, autoStopRemark); err != nil {
		return nil, err
	}
	if err := s.recomputeTask(sub.TaskID); err != nil {
		return nil, err
	}
	return q, nil
}

// ReplyToQuery records an HR answer. The query stays non-closed, so the
// subtask remains on hold until an explicit close.
func (s *Service) ReplyToQuery(hrID, queryID int64, reply string) (*models.Query, error) {
	if reply == "" {
		return nil, ErrInvalidInput
	}
	q, err := s.store.GetQuery(queryID)
	if err != nil {
		return nil, err
	}
	if !store.ValidQueryTransition("reply", q.Status) {
		return nil, ErrInvalidTransition
	}
	if err := s.store.MarkQueryReplied(queryID, reply, hrID, s.now()); err != nil {
		return nil, err
	}
	return s.store.GetQuery(queryID)
}

// CloseQuery resolves the query and releases the subtask: ON_HOLD reverts to
// PENDING, any other status is left alone. An optional reply may be recorded
// at close time.
func (s *Service) CloseQuery(hrID, queryID int64, reply string) (*models.Query, error) {
	q, err := s.store.GetQuery(queryID)
	if err != nil {
		return nil, err
	}
	if !store.ValidQueryTransition("close", q.Status) {
		return nil, ErrInvalidTransition
	}
	if err := s.store.MarkQueryClosed(queryID, hrID, s.now(), reply); err != nil {
		return nil, err
	}
	if err := s.releaseSubtaskHold(q.SubtaskID); err != nil {
		return nil, err
	}
	return s.store.GetQuery(queryID)
}

// ReassignQuery moves the subtask to another employee and closes the query
// without releasing the hold; the new assignee picks the work up from HR's
// status decision.
func (s *Service) ReassignQuery(hrID, queryID, newAssignee int64) (*models.Query, error) {
	q, err := s.store.GetQuery(queryID)
	if err != nil {
		return nil, err
	}
	if !store.ValidQueryTransition("reassign", q.Status) {
		return nil, ErrInvalidTransition
	}
	if _, err := s.store.GetUser(newAssignee); err != nil {
		return nil, err
	}
	if err := s.store.SetSubtaskAssignee(q.SubtaskID, newAssignee); err != nil {
		return nil, err
	}
	if err := s.store.MarkQueryClosed(queryID, hrID, s.now(), "Reassigned to another employee"); err != nil {
		return nil, err
	}
	return s.store.GetQuery(queryID)
}

func (s *Service) releaseSubtaskHold(subtaskID int64) error {
	sub, err := s.store.GetSubtask(subtaskID)
	if err != nil {
		return err
	}
	if sub.Status != models.SubtaskOnHold {
		return nil
	}
	if err := s.store.SetSubtaskStatus(subtaskID, models.SubtaskPending); err != nil {
		return err
	}
	return s.recomputeTask(sub.TaskID)
}
