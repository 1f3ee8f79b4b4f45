package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a record for grep and alerting.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRunID correlates every record emitted by one archive pass.
	FieldRunID = "run_id"
	// FieldDryRun marks records from a simulation pass.
	FieldDryRun = "dry_run"
	// FieldSubject is the subject identity (e.g. RCS02L).
	FieldSubject = "subject"
	// FieldSourcePath is a source location or source session directory.
	FieldSourcePath = "source_path"
	// FieldSession is a session folder basename.
	FieldSession = "session"
	// FieldDestPath is the archive destination directory.
	FieldDestPath = "dest_path"
)
