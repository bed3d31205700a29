// workflow/tasks_test.go
package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"officeflow/internal/models"
	"officeflow/internal/store"
)

func TestCreateSubtaskMaintainsEstimate(t *testing.T) {
	f := newFixture(t)

	task, err := f.db.GetTask(f.task.ID)
	require.NoError(t, err)
	require.Equal(t, 4.0, task.TotalEstimatedHours)

	second := &models.Subtask{Title: "File returns", TaskID: f.task.ID,
		AssignedTo: f.employee.ID, EstimatedHours: 2.5, CreatedBy: f.hr.ID}
	require.NoError(t, f.svc.CreateSubtask(second))

	task, err = f.db.GetTask(f.task.ID)
	require.NoError(t, err)
	require.Equal(t, 6.5, task.TotalEstimatedHours)

	require.NoError(t, f.svc.DeleteSubtask(second.ID))
	task, err = f.db.GetTask(f.task.ID)
	require.NoError(t, err)
	require.Equal(t, 4.0, task.TotalEstimatedHours)
}

func TestCreateSubtaskValidation(t *testing.T) {
	f := newFixture(t)

	err := f.svc.CreateSubtask(&models.Subtask{TaskID: f.task.ID, AssignedTo: f.employee.ID})
	require.ErrorIs(t, err, ErrInvalidInput)

	err = f.svc.CreateSubtask(&models.Subtask{Title: "x", TaskID: 9999, AssignedTo: f.employee.ID})
	require.ErrorIs(t, err, store.ErrTaskNotFound)

	err = f.svc.CreateSubtask(&models.Subtask{Title: "x", TaskID: f.task.ID, AssignedTo: 9999})
	require.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestTaskStatusPrecedence(t *testing.T) {
	f := newFixture(t)

	second := &models.Subtask{Title: "File returns", TaskID: f.task.ID,
		AssignedTo: f.employee.ID, EstimatedHours: 2, CreatedBy: f.hr.ID}
	require.NoError(t, f.svc.CreateSubtask(second))

	setStatus := func(id int64, status models.SubtaskStatus) {
		require.NoError(t, f.db.SetSubtaskStatus(id, status))
		require.NoError(t, f.svc.recomputeTask(f.task.ID))
	}
	taskStatus := func() models.TaskStatus {
		task, err := f.db.GetTask(f.task.ID)
		require.NoError(t, err)
		return task.Status
	}

	require.Equal(t, models.TaskPending, taskStatus())

	setStatus(f.subtask.ID, models.SubtaskInProgress)
	require.Equal(t, models.TaskInProgress, taskStatus())

	// ON_HOLD outranks IN_PROGRESS.
	setStatus(second.ID, models.SubtaskOnHold)
	require.Equal(t, models.TaskOnHold, taskStatus())

	// COMPLETED requires every subtask done.
	setStatus(f.subtask.ID, models.SubtaskCompleted)
	require.Equal(t, models.TaskOnHold, taskStatus())
	setStatus(second.ID, models.SubtaskCompleted)
	require.Equal(t, models.TaskCompleted, taskStatus())

	// OUTSTANDING does not count as completed.
	setStatus(second.ID, models.SubtaskOutstanding)
	require.Equal(t, models.TaskPending, taskStatus())
}

func TestUpdateSubtaskRecomputesParent(t *testing.T) {
	f := newFixture(t)

	sub, err := f.db.GetSubtask(f.subtask.ID)
	require.NoError(t, err)
	sub.Status = models.SubtaskCompleted
	sub.EstimatedHours = 6
	require.NoError(t, f.svc.UpdateSubtask(sub))

	task, err := f.db.GetTask(f.task.ID)
	require.NoError(t, err)
	require.Equal(t, models.TaskCompleted, task.Status)
	require.Equal(t, 6.0, task.TotalEstimatedHours)
}
