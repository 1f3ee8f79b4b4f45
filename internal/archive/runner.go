package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"rcsarchive/internal/config"
	"rcsarchive/internal/discovery"
	"rcsarchive/internal/history"
	"rcsarchive/internal/layout"
	"rcsarchive/internal/logging"
	"rcsarchive/internal/mover"
	"rcsarchive/internal/rsync"
	"rcsarchive/internal/services"
	"rcsarchive/internal/session"
)

// Executor relocates one session. *mover.Mover implements it.
type Executor interface {
	Execute(ctx context.Context, src, dst string, simulate bool) mover.Outcome
}

// Ledger persists run outcomes. *history.Store implements it.
type Ledger interface {
	BeginRun(ctx context.Context, run history.Run) error
	FinishRun(ctx context.Context, run history.Run) error
	RecordOutcome(ctx context.Context, outcome history.Outcome) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithDryRun selects simulation mode.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) { r.dryRun = dryRun }
}

// WithFS replaces the filesystem used for discovery and existence checks.
func WithFS(fsys discovery.FS) Option {
	return func(r *Runner) {
		if fsys != nil {
			r.fs = fsys
		}
	}
}

// WithExecutor replaces the mover (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithLedger records outcomes to ledger.
func WithLedger(ledger Ledger) Option {
	return func(r *Runner) { r.ledger = ledger }
}

// WithClock overrides the time source used for session ages.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// Runner executes archive passes for one configuration.
type Runner struct {
	cfg       *config.Config
	resolver  *layout.Resolver
	fs        discovery.FS
	exec      Executor
	ledger    Ledger
	logger    *slog.Logger
	now       func() time.Time
	threshold time.Duration
	dryRun    bool
}

// New builds a Runner. copier is the copy step handed to the default mover.
func New(cfg *config.Config, copier rsync.Copier, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:       cfg,
		resolver:  layout.New(cfg, logger),
		fs:        discovery.OSFS{},
		logger:    logging.NewComponentLogger(logger, "archive"),
		now:       time.Now,
		threshold: cfg.MoveAgeThreshold(),
	}
	if copier != nil {
		r.exec = mover.New(copier, logger)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one pass. It returns a Summary rather than an error: every
// per-session failure has already been logged and counted.
func (r *Runner) Run(ctx context.Context) (summary Summary) {
	summary = Summary{
		RunID:     uuid.NewString(),
		DryRun:    r.dryRun,
		StartedAt: r.now(),
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := r.logger.With(logging.String(logging.FieldRunID, summary.RunID), logging.Bool(logging.FieldDryRun, r.dryRun))

	mode := "LIVE"
	if r.dryRun {
		mode = "DRY RUN"
	}
	logger.Info(fmt.Sprintf("--- Starting Move and Archive run in %s mode ---", mode),
		logging.String("data_root", r.cfg.Paths.DataRoot),
		logging.String("archive_root", r.cfg.Paths.ArchiveRoot),
		logging.Duration("move_age_threshold", r.threshold),
	)

	r.beginLedger(ctx, logger, summary)
	defer func() {
		summary.FinishedAt = r.now()
		r.finishLedger(ctx, logger, summary)
		logger.Info("--- Move and Archive run finished ---",
			logging.Int("subjects", summary.Subjects),
			logging.Int("sessions", summary.Sessions),
			logging.Int("moved", summary.Moved),
			logging.Int("simulated", summary.Simulated),
			logging.Int("skipped_recent", summary.SkippedRecent),
			logging.Int("skipped_exists", summary.SkippedExists),
			logging.Int("failed", summary.Failed),
			logging.Int("cleanup_warnings", summary.CleanupWarnings),
			logging.String("bytes_moved", humanize.Bytes(uint64(summary.BytesMoved))),
			logging.Bool("canceled", summary.Canceled),
		)
	}()

	if r.exec == nil {
		logging.ErrorWithContext(logger, "no mover configured, nothing can be moved", "archive_misconfigured")
		return summary
	}

	subjects := discovery.Discover(r.fs, r.resolver, r.cfg.Subjects, logger)
	if len(subjects) == 0 {
		logging.WarnWithContext(logger, "No subject directories found. Exiting.",
			"no_subjects_found",
			logging.String(logging.FieldErrorHint, "check that paths.data_root is mounted and synced"),
			logging.String(logging.FieldImpact, "nothing to archive this run"),
		)
		return summary
	}
	summary.Subjects = len(subjects)
	logger.Info(fmt.Sprintf("Found %d subjects to process", len(subjects)))

	for _, subject := range subjects {
		if !r.processSubject(ctx, logger, subject, &summary) {
			break
		}
	}
	return summary
}

// processSubject returns false once the context is canceled.
func (r *Runner) processSubject(ctx context.Context, logger *slog.Logger, subject discovery.Subject, summary *Summary) bool {
	ctx = services.WithSubject(ctx, subject.ID)
	logger = logger.With(logging.String(logging.FieldSubject, subject.ID))
	logger.Info(fmt.Sprintf("Processing subject: %s with %d source path(s)", subject.ID, len(subject.Sources)))

	for _, source := range subject.Sources {
		summary.Sources++
		srcLogger := logger.With(logging.String(logging.FieldSourcePath, source.Path))
		srcLogger.Info("processing source path", logging.String("kind", r.resolver.KindName(source.Kind)))

		sessions, err := discovery.ListSessions(r.fs, source.Path)
		if errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(srcLogger, "source path no longer exists, skipping",
				"source_vanished",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "the source was removed between discovery and listing"),
				logging.String(logging.FieldImpact, "sessions under this source are not archived this run"),
			)
			continue
		}
		if err != nil {
			logging.WarnWithContext(srcLogger, "could not list source path, skipping",
				"source_unreadable",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check read and execute permissions on the source directory"),
				logging.String(logging.FieldImpact, "sessions under this source are not archived this run"),
			)
			continue
		}

		for _, name := range sessions {
			if err := ctx.Err(); err != nil {
				summary.Canceled = true
				logging.WarnWithContext(srcLogger, "run canceled, stopping before next session",
					"run_canceled",
					logging.Error(err),
					logging.String(logging.FieldImpact, "remaining sessions are picked up by the next run"),
				)
				return false
			}
			summary.Sessions++
			r.processSession(ctx, srcLogger, subject.ID, source, name, summary)
		}
	}
	return true
}

func (r *Runner) processSession(ctx context.Context, logger *slog.Logger, subjectID string, source layout.Source, name string, summary *Summary) {
	src := filepath.Join(source.Path, name)
	logger = logger.With(logging.String(logging.FieldSession, name))

	age := session.Age(name, r.now(), logger)
	if age < r.threshold {
		summary.SkippedRecent++
		logger.Info(fmt.Sprintf("Skipping recent session '%s' (age: %s)", name, age.Round(time.Second)))
		r.record(ctx, logger, history.Outcome{
			Subject:    subjectID,
			Session:    name,
			SourcePath: src,
			Status:     string(DecisionSkippedRecent),
			Detail:     "age " + age.Round(time.Second).String(),
		})
		return
	}

	dest := r.resolver.Destination(subjectID, name, source.Path)
	if !r.dryRun {
		if exists, err := r.exists(dest); exists || err != nil {
			summary.SkippedExists++
			attrs := []logging.Attr{
				logging.String(logging.FieldDestPath, dest),
				logging.String(logging.FieldErrorHint, "compare the archived copy with the source and remove one by hand"),
				logging.String(logging.FieldImpact, "session stays in the synced folder"),
			}
			msg := fmt.Sprintf("Destination '%s' already exists. Skipping to avoid data loss.", dest)
			if err != nil {
				msg = fmt.Sprintf("Could not check destination '%s'. Skipping to avoid data loss.", dest)
				attrs = append(attrs, logging.Error(err))
			}
			logging.WarnWithContext(logger, msg, "destination_exists", attrs...)
			r.record(ctx, logger, history.Outcome{
				Subject:    subjectID,
				Session:    name,
				SourcePath: src,
				DestPath:   dest,
				Status:     string(DecisionSkippedExists),
			})
			return
		}
	}

	// A started move runs to completion; cancellation is honoured between sessions.
	outcome := r.exec.Execute(context.WithoutCancel(ctx), src, dest, r.dryRun)
	summary.addOutcome(outcome)
	detail := ""
	if outcome.Err != nil {
		detail = outcome.Err.Error()
	}
	r.record(ctx, logger, history.Outcome{
		Subject:    subjectID,
		Session:    name,
		SourcePath: src,
		DestPath:   dest,
		Status:     string(outcome.Status),
		Bytes:      outcome.Bytes,
		Duration:   outcome.Duration,
		Detail:     detail,
	})
}

// exists reports whether dest is present. A stat error other than not-exist
// is returned so the caller skips rather than risk an overwrite.
func (r *Runner) exists(dest string) (bool, error) {
	_, err := r.fs.Stat(dest)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (r *Runner) beginLedger(ctx context.Context, logger *slog.Logger, summary Summary) {
	if r.ledger == nil {
		return
	}
	if err := r.ledger.BeginRun(context.WithoutCancel(ctx), summary.historyRun()); err != nil {
		logging.WarnWithContext(logger, "history ledger unavailable for this run",
			"history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run proceeds without ledger records"),
		)
		r.ledger = nil
	}
}

func (r *Runner) finishLedger(ctx context.Context, logger *slog.Logger, summary Summary) {
	if r.ledger == nil {
		return
	}
	if err := r.ledger.FinishRun(context.WithoutCancel(ctx), summary.historyRun()); err != nil {
		logging.WarnWithContext(logger, "could not record run summary in history ledger",
			"history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history shows this run as unfinished"),
		)
	}
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, outcome history.Outcome) {
	if r.ledger == nil {
		return
	}
	runID, _ := services.RunIDFromContext(ctx)
	outcome.RunID = runID
	outcome.RecordedAt = r.now()
	if err := r.ledger.RecordOutcome(context.WithoutCancel(ctx), outcome); err != nil {
		logging.WarnWithContext(logger, "could not record session outcome in history ledger",
			"history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "ledger is missing this session"),
		)
	}
}
