package mover

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"rcsarchive/internal/logging"
	"rcsarchive/internal/rsync"
	"rcsarchive/internal/services"
)

// Status classifies what happened to one session.
type Status string

const (
	StatusMoved         Status = "moved"
	StatusSimulated     Status = "simulated"
	StatusCleanupFailed Status = "cleanup_failed"
	StatusCopyFailed    Status = "copy_failed"
	StatusSourceMissing Status = "source_missing"
)

// Outcome is the result of one Execute call.
type Outcome struct {
	Status   Status
	Source   string
	Dest     string
	Report   rsync.Report
	Bytes    int64
	Duration time.Duration
	Err      error
}

// Failed reports whether the session was left in place because the copy
// step never completed.
func (s Status) Failed() bool {
	return s == StatusCopyFailed || s == StatusSourceMissing
}

// Succeeded reports whether the copy step completed.
func (o Outcome) Succeeded() bool {
	return o.Status != "" && !o.Status.Failed()
}

// Option configures a Mover.
type Option func(*Mover)

// WithRemoveAll replaces the source cleanup function (primarily for tests).
func WithRemoveAll(fn func(string) error) Option {
	return func(m *Mover) {
		if fn != nil {
			m.removeAll = fn
		}
	}
}

// Mover executes session relocations through a Copier.
type Mover struct {
	copier    rsync.Copier
	logger    *slog.Logger
	removeAll func(string) error
}

// New constructs a Mover.
func New(copier rsync.Copier, logger *slog.Logger, opts ...Option) *Mover {
	m := &Mover{
		copier:    copier,
		logger:    logging.NewComponentLogger(logger, "mover"),
		removeAll: os.RemoveAll,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Execute relocates src to dst, or simulates it when simulate is set.
func (m *Mover) Execute(ctx context.Context, src, dst string, simulate bool) (outcome Outcome) {
	start := time.Now()
	outcome = Outcome{Source: src, Dest: dst}
	logger := m.contextLogger(ctx, src, dst, simulate)
	sessionName := filepath.Base(src)

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = StatusCopyFailed
			outcome.Err = services.Wrap(services.ErrExternalTool, "mover", "copy", sessionName, fmt.Errorf("panic: %v", r))
			logging.ErrorWithContext(logger, "unexpected error while moving session",
				"session_move_panic",
				logging.Error(outcome.Err),
			)
		}
		outcome.Duration = time.Since(start)
	}()

	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = errors.New("not a directory")
		}
		outcome.Status = StatusSourceMissing
		outcome.Err = services.Wrap(services.ErrNotFound, "mover", "stat source", src, err)
		logging.ErrorWithContext(logger, "source is not a directory",
			"session_source_missing",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the session was moved or deleted after it was listed"),
		)
		return outcome
	}

	outcome.Bytes = treeSize(src)
	opts := rsync.Options{DryRun: simulate, RemoveSourceFiles: !simulate}
	if simulate {
		logger.Info("[DRY RUN] simulating move", logging.String("size", humanize.Bytes(uint64(outcome.Bytes))))
	} else {
		logger.Info("moving session with checksum verification", logging.String("size", humanize.Bytes(uint64(outcome.Bytes))))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			outcome.Status = StatusCopyFailed
			outcome.Err = services.Wrap(services.ErrExternalTool, "mover", "create destination parent", filepath.Dir(dst), err)
			logging.ErrorWithContext(logger, "could not create destination parent directory",
				"archive_parent_create_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check archive root permissions and free space"),
			)
			return outcome
		}
	}

	report, err := m.copier.Copy(ctx, src, dst, opts)
	outcome.Report = report
	if err != nil {
		outcome.Status = StatusCopyFailed
		outcome.Err = err
		m.logCopyFailure(logger, sessionName, report, err)
		return outcome
	}

	prefix := ""
	if simulate {
		prefix = "[DRY RUN] "
	}
	logger.Info(fmt.Sprintf("%srsync summary for %s:\n    %s", prefix, sessionName, indent(report.Output)))

	if simulate {
		outcome.Status = StatusSimulated
		return outcome
	}

	logger.Info("removing source directory and any remaining empty subdirectories")
	if err := m.removeAll(src); err != nil {
		outcome.Status = StatusCleanupFailed
		outcome.Err = err
		logging.WarnWithContext(logger, "could not remove source directory",
			"source_cleanup_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the leftover source folder by hand"),
			logging.String(logging.FieldImpact, "session is archived; the empty source tree remains in the synced folder"),
		)
		return outcome
	}

	outcome.Status = StatusMoved
	return outcome
}

func (m *Mover) logCopyFailure(logger *slog.Logger, sessionName string, report rsync.Report, err error) {
	attrs := []logging.Attr{
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "inspect rsync stderr; the source was left untouched"),
	}
	var exitErr *rsync.ExitError
	if errors.As(err, &exitErr) {
		attrs = append(attrs,
			logging.String("command", strings.Join(exitErr.Command, " ")),
			logging.Int("return_code", exitErr.ExitCode),
			logging.String("stdout", exitErr.Stdout),
			logging.String("stderr", exitErr.Stderr),
		)
	} else if len(report.Command) > 0 {
		attrs = append(attrs, logging.String("command", report.CommandLine()))
	}
	logging.ErrorWithContext(logger, fmt.Sprintf("rsync command failed for %s", sessionName), "rsync_failed", attrs...)
}

func (m *Mover) contextLogger(ctx context.Context, src, dst string, simulate bool) *slog.Logger {
	attrs := []any{
		logging.String(logging.FieldSession, filepath.Base(src)),
		logging.String(logging.FieldSourcePath, src),
		logging.String(logging.FieldDestPath, dst),
		logging.Bool(logging.FieldDryRun, simulate),
	}
	if runID, ok := services.RunIDFromContext(ctx); ok {
		attrs = append(attrs, logging.String(logging.FieldRunID, runID))
	}
	if subject, ok := services.SubjectFromContext(ctx); ok {
		attrs = append(attrs, logging.String(logging.FieldSubject, subject))
	}
	return m.logger.With(attrs...)
}

func indent(output string) string {
	return strings.ReplaceAll(strings.TrimSpace(output), "\n", "\n    ")
}

// treeSize sums regular file sizes under dir. Unreadable entries count as
// zero; the figure is for reporting only.
func treeSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, infoErr := d.Info(); infoErr == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}
