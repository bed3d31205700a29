// workflow/tasks.go - Task and subtask management with derived task state
package workflow

import (
	"officeflow/internal/models"
	"officeflow/internal/store"
)

// recomputeTask refreshes the derived fields of a task from its subtasks:
// status precedence is COMPLETED (all), then ON_HOLD (any), then IN_PROGRESS
// (any), otherwise PENDING; total logged hours is the plain sum.
func (s *Service) recomputeTask(taskID int64) error {
	subtasks, err := s.store.ListSubtasks(store.SubtaskFilter{TaskID: &taskID})
	if err != nil {
		return err
	}

	status := models.TaskPending
	totalLogged := 0.0
	if len(subtasks) > 0 {
		allCompleted := true
		anyOnHold := false
		anyInProgress := false
		for _, st := range subtasks {
			totalLogged += st.LoggedHours
			if st.Status != models.SubtaskCompleted {
				allCompleted = false
			}
			switch st.Status {
			case models.SubtaskOnHold:
				anyOnHold = true
			case models.SubtaskInProgress:
				anyInProgress = true
			}
		}
		switch {
		case allCompleted:
			status = models.TaskCompleted
		case anyOnHold:
			status = models.TaskOnHold
		case anyInProgress:
			status = models.TaskInProgress
		}
	}

	return s.store.UpdateTaskDerived(taskID, status, round2(totalLogged))
}

// recomputeTaskEstimate refreshes total estimated hours after a subtask is
// created, re-estimated or deleted.
func (s *Service) recomputeTaskEstimate(taskID int64) error {
	subtasks, err := s.store.ListSubtasks(store.SubtaskFilter{TaskID: &taskID})
	if err != nil {
		return err
	}
	total := 0.0
	for _, st := range subtasks {
		total += st.EstimatedHours
	}
	return s.store.UpdateTaskEstimate(taskID, round2(total))
}

func (s *Service) CreateSubtask(sub *models.Subtask) error {
	if sub.Title == "" || sub.TaskID == 0 || sub.AssignedTo == 0 {
		return ErrInvalidInput
	}
	if _, err := s.store.GetTask(sub.TaskID); err != nil {
		return err
	}
	if _, err := s.store.GetUser(sub.AssignedTo); err != nil {
		return err
	}
	sub.Status = models.SubtaskPending
	if err := s.store.CreateSubtask(sub); err != nil {
		return err
	}
	if err := s.recomputeTaskEstimate(sub.TaskID); err != nil {
		return err
	}
	return s.recomputeTask(sub.TaskID)
}

// UpdateSubtask applies an HR edit. This is also the only way a subtask
// leaves OUTSTANDING: setting any other status here clears the escalation.
func (s *Service) UpdateSubtask(sub *models.Subtask) error {
	current, err := s.store.GetSubtask(sub.ID)
	if err != nil {
		return err
	}
	if err := s.store.UpdateSubtask(sub); err != nil {
		return err
	}
	if sub.EstimatedHours != current.EstimatedHours {
		if err := s.recomputeTaskEstimate(current.TaskID); err != nil {
			return err
		}
	}
	return s.recomputeTask(current.TaskID)
}

func (s *Service) DeleteSubtask(id int64) error {
	sub, err := s.store.GetSubtask(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSubtask(id); err != nil {
		return err
	}
	if err := s.recomputeTaskEstimate(sub.TaskID); err != nil {
		return err
	}
	return s.recomputeTask(sub.TaskID)
}
