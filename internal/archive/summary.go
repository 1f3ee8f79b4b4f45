package archive

import (
	"time"

	"rcsarchive/internal/history"
	"rcsarchive/internal/mover"
)

// Decision labels a per-session outcome, including the two skip paths that
// never reach the mover.
type Decision string

const (
	DecisionSkippedRecent Decision = "skipped_recent"
	DecisionSkippedExists Decision = "skipped_exists"
)

// Summary counts what one pass did.
type Summary struct {
	RunID           string
	DryRun          bool
	StartedAt       time.Time
	FinishedAt      time.Time
	Subjects        int
	Sources         int
	Sessions        int
	Moved           int
	Simulated       int
	SkippedRecent   int
	SkippedExists   int
	Failed          int
	CleanupWarnings int
	BytesMoved      int64
	Canceled        bool
}

// Duration is the wall-clock length of the pass.
func (s Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

func (s *Summary) addOutcome(outcome mover.Outcome) {
	if !outcome.Succeeded() {
		s.Failed++
		return
	}
	if outcome.Status == mover.StatusSimulated {
		s.Simulated++
		return
	}
	if outcome.Status == mover.StatusCleanupFailed {
		s.CleanupWarnings++
	}
	s.Moved++
	s.BytesMoved += outcome.Bytes
}

func (s Summary) historyRun() history.Run {
	return history.Run{
		ID:              s.RunID,
		StartedAt:       s.StartedAt,
		FinishedAt:      s.FinishedAt,
		DryRun:          s.DryRun,
		Subjects:        s.Subjects,
		Sessions:        s.Sessions,
		Moved:           s.Moved,
		Simulated:       s.Simulated,
		SkippedRecent:   s.SkippedRecent,
		SkippedExists:   s.SkippedExists,
		Failed:          s.Failed,
		CleanupWarnings: s.CleanupWarnings,
		BytesMoved:      s.BytesMoved,
	}
}
