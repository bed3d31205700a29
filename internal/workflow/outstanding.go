// workflow/outstanding.go - Stale-work escalation sweep
package workflow

import (
	"log"
	"time"

	"officeflow/internal/models"
	"officeflow/internal/store"
)

// shouldEscalate decides whether a subtask has been idle long enough to mark
// OUTSTANDING. The reference point is the end of the latest stopped log, or
// the subtask's creation time when no work was ever logged. The threshold is
// inclusive.
func shouldEscalate(c store.SweepCandidate, now time.Time, threshold time.Duration) bool {
	if c.Status != models.SubtaskPending && c.Status != models.SubtaskInProgress {
		return false
	}
	ref := c.CreatedAt
	if c.LastStop != nil {
		ref = *c.LastStop
	}
	return now.Sub(ref) >= threshold
}

// SweepOutstanding escalates idle subtasks. One failing update does not stop
// the sweep; the error is logged and the rest of the batch proceeds. Returns
// how many subtasks were escalated.
func (s *Service) SweepOutstanding() (int, error) {
	candidates, err := s.store.ListSweepCandidates()
	if err != nil {
		return 0, err
	}

	now := s.now()
	escalated := 0
	tasks := map[int64]bool{}
	for _, c := range candidates {
		if !shouldEscalate(c, now, s.threshold) {
			continue
		}
		if err := s.store.SetSubtaskStatus(c.SubtaskID, models.SubtaskOutstanding); err != nil {
			log.Printf("sweep: escalate subtask=%d err=%v", c.SubtaskID, err)
			continue
		}
		escalated++

		sub, err := s.store.GetSubtask(c.SubtaskID)
		if err != nil {
			log.Printf("sweep: reload subtask=%d err=%v", c.SubtaskID, err)
			continue
		}
		tasks[sub.TaskID] = true
	}

	for taskID := range tasks {
		if err := s.recomputeTask(taskID); err != nil {
			log.Printf("sweep: recompute task=%d err=%v", taskID, err)
		}
	}
	return escalated, nil
}
