package history

import "time"

// Run is one archive pass.
type Run struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      time.Time
	DryRun          bool
	Subjects        int
	Sessions        int
	Moved           int
	Simulated       int
	SkippedRecent   int
	SkippedExists   int
	Failed          int
	CleanupWarnings int
	BytesMoved      int64
}

// Finished reports whether the run recorded a completion time.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Outcome is one per-session decision within a run.
type Outcome struct {
	ID         int64
	RunID      string
	Subject    string
	Session    string
	SourcePath string
	DestPath   string
	Status     string
	Bytes      int64
	Duration   time.Duration
	Detail     string
	RecordedAt time.Time
}
