// workflow/outstanding_test.go
package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"officeflow/internal/models"
	"officeflow/internal/store"
)

func TestShouldEscalate(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	threshold := 24 * time.Hour
	stop := now.Add(-30 * time.Hour)

	tests := []struct {
		name string
		c    store.SweepCandidate
		want bool
	}{
		{
			"fresh pending subtask",
			store.SweepCandidate{Status: models.SubtaskPending, CreatedAt: now.Add(-2 * time.Hour)},
			false,
		},
		{
			"stale pending subtask with no logs",
			store.SweepCandidate{Status: models.SubtaskPending, CreatedAt: now.Add(-25 * time.Hour)},
			true,
		},
		{
			"exactly at the threshold",
			store.SweepCandidate{Status: models.SubtaskPending, CreatedAt: now.Add(-threshold)},
			true,
		},
		{
			"stale creation but recent work",
			store.SweepCandidate{Status: models.SubtaskInProgress, CreatedAt: now.Add(-48 * time.Hour),
				LastStop: timeRef(now.Add(-time.Hour))},
			false,
		},
		{
			"stale last stop",
			store.SweepCandidate{Status: models.SubtaskInProgress, CreatedAt: now.Add(-48 * time.Hour),
				LastStop: &stop},
			true,
		},
		{
			"on hold is never swept",
			store.SweepCandidate{Status: models.SubtaskOnHold, CreatedAt: now.Add(-48 * time.Hour)},
			false,
		},
		{
			"completed is never swept",
			store.SweepCandidate{Status: models.SubtaskCompleted, CreatedAt: now.Add(-48 * time.Hour)},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, shouldEscalate(tt.c, now, threshold))
		})
	}
}

func timeRef(t time.Time) *time.Time { return &t }

func TestSweepOutstanding(t *testing.T) {
	f := newFixture(t)

	fresh := &models.Subtask{Title: "Fresh work", TaskID: f.task.ID,
		AssignedTo: f.employee.ID, EstimatedHours: 1, CreatedBy: f.hr.ID}
	require.NoError(t, f.svc.CreateSubtask(fresh))

	// Age the first subtask past the threshold; the second stays fresh.
	_, err := f.db.Exec(`UPDATE subtasks SET created_at = ? WHERE id = ?`,
		f.clock.Add(-25*time.Hour), f.subtask.ID)
	require.NoError(t, err)

	n, err := f.svc.SweepOutstanding()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	sub, err := f.db.GetSubtask(f.subtask.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubtaskOutstanding, sub.Status)

	got, err := f.db.GetSubtask(fresh.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubtaskPending, got.Status)

	// Escalated work is frozen for the employee.
	_, err = f.svc.StartWork(f.employee.ID, f.subtask.ID)
	require.ErrorIs(t, err, ErrSubtaskOutstanding)

	// HR lifts the escalation through a subtask update.
	sub.Status = models.SubtaskPending
	require.NoError(t, f.svc.UpdateSubtask(sub))
	_, err = f.svc.StartWork(f.employee.ID, f.subtask.ID)
	require.NoError(t, err)
}

func TestSweepUsesLastStopAsReference(t *testing.T) {
	f := newFixture(t)

	// Work happens 20 hours in: the stop time becomes the new reference.
	f.advance(20 * time.Hour)
	log, err := f.svc.StartWork(f.employee.ID, f.subtask.ID)
	require.NoError(t, err)
	f.advance(time.Hour)
	_, err = f.svc.StopWork(f.employee.ID, log.ID, "")
	require.NoError(t, err)

	// 23 hours after the stop: still inside the window.
	f.advance(23 * time.Hour)
	n, err := f.svc.SweepOutstanding()
	require.NoError(t, err)
	require.Equal(t, 0, n)

	// One more hour crosses it.
	f.advance(time.Hour)
	n, err = f.svc.SweepOutstanding()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
