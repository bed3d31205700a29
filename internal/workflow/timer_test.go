// workflow/timer_test.go
package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"officeflow/internal/models"
	"officeflow/internal/store"
)

func TestStartWorkGuards(t *testing.T) {
	f := newFixture(t)

	t.Run("unknown subtask", func(t *testing.T) {
		_, err := f.svc.StartWork(f.employee.ID, 9999)
		require.ErrorIs(t, err, store.ErrSubtaskNotFound)
	})

	t.Run("not assigned", func(t *testing.T) {
		_, err := f.svc.StartWork(f.hr.ID, f.subtask.ID)
		require.ErrorIs(t, err, ErrNotAssigned)
	})

	t.Run("outstanding blocks work", func(t *testing.T) {
		require.NoError(t, f.db.SetSubtaskStatus(f.subtask.ID, models.SubtaskOutstanding))
		_, err := f.svc.StartWork(f.employee.ID, f.subtask.ID)
		require.ErrorIs(t, err, ErrSubtaskOutstanding)
		require.NoError(t, f.db.SetSubtaskStatus(f.subtask.ID, models.SubtaskPending))
	})

	t.Run("open query blocks work", func(t *testing.T) {
		q := &models.Query{SubtaskID: f.subtask.ID, Message: "Which year?",
			Type: models.QueryClarification, Priority: models.PriorityLow}
		_, err := f.svc.RaiseQuery(f.employee.ID, q)
		require.NoError(t, err)

		_, err = f.svc.StartWork(f.employee.ID, f.subtask.ID)
		require.ErrorIs(t, err, ErrQueryBlocking)

		_, err = f.svc.CloseQuery(f.hr.ID, q.ID, "FY 2025")
		require.NoError(t, err)
	})

	t.Run("second timer rejected", func(t *testing.T) {
		_, err := f.svc.StartWork(f.employee.ID, f.subtask.ID)
		require.NoError(t, err)
		_, err = f.svc.StartWork(f.employee.ID, f.subtask.ID)
		require.ErrorIs(t, err, store.ErrTimerRunning)
	})
}

func TestStartWorkMovesPendingToInProgress(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.StartWork(f.employee.ID, f.subtask.ID)
	require.NoError(t, err)

	sub, err := f.db.GetSubtask(f.subtask.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubtaskInProgress, sub.Status)

	task, err := f.db.GetTask(f.task.ID)
	require.NoError(t, err)
	require.Equal(t, models.TaskInProgress, task.Status)
}

func TestStopWorkRecordsRoundedDuration(t *testing.T) {
	f := newFixture(t)

	log, err := f.svc.StartWork(f.employee.ID, f.subtask.ID)
	require.NoError(t, err)

	f.advance(90*time.Minute + 40*time.Second)
	stopped, err := f.svc.StopWork(f.employee.ID, log.ID, "receipts sorted")
	require.NoError(t, err)

	require.EqualValues(t, 91, stopped.Duration)
	require.NotNil(t, stopped.EndTime)
	require.Equal(t, "receipts sorted", stopped.Remark)

	sub, err := f.db.GetSubtask(f.subtask.ID)
	require.NoError(t, err)
	require.InDelta(t, 91.0/60, sub.LoggedHours, 0.01)

	task, err := f.db.GetTask(f.task.ID)
	require.NoError(t, err)
	require.InDelta(t, sub.LoggedHours, task.TotalLoggedHours, 0.001)
}

func TestStopWorkGuards(t *testing.T) {
	f := newFixture(t)

	log, err := f.svc.StartWork(f.employee.ID, f.subtask.ID)
	require.NoError(t, err)

	_, err = f.svc.StopWork(f.hr.ID, log.ID, "")
	require.ErrorIs(t, err, ErrNotOwner)

	f.advance(10 * time.Minute)
	_, err = f.svc.StopWork(f.employee.ID, log.ID, "")
	require.NoError(t, err)

	_, err = f.svc.StopWork(f.employee.ID, log.ID, "")
	require.ErrorIs(t, err, ErrTimerStopped)
}

func TestDismissRejectedLog(t *testing.T) {
	f := newFixture(t)

	log, err := f.svc.StartWork(f.employee.ID, f.subtask.ID)
	require.NoError(t, err)
	f.advance(20 * time.Minute)
	_, err = f.svc.StopWork(f.employee.ID, log.ID, "")
	require.NoError(t, err)

	// Only rejected logs can be dismissed.
	require.ErrorIs(t, f.svc.DismissRejectedLog(f.employee.ID, log.ID), ErrLogNotRejected)

	_, err = f.svc.RejectTimeLog(f.hr.ID, log.ID, "wrong subtask")
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.DismissRejectedLog(f.hr.ID, log.ID), ErrNotOwner)
	require.NoError(t, f.svc.DismissRejectedLog(f.employee.ID, log.ID))

	got, err := f.db.GetTimeLog(log.ID)
	require.NoError(t, err)
	require.True(t, got.Dismissed)
}
