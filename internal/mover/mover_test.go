package mover_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rcsarchive/internal/mover"
	"rcsarchive/internal/rsync"
	"rcsarchive/internal/services"
	"rcsarchive/internal/testsupport"
)

type fixture struct {
	src    string
	dst    string
	copier *testsupport.FakeCopier
	logs   *bytes.Buffer
	logger *slog.Logger
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	base := t.TempDir()
	src := testsupport.MakeSession(t, filepath.Join(base, "data", "RCS02L"), time.Now().Add(-9*time.Hour))
	dst := filepath.Join(base, "archive", "RCS02 Un-Synced Data", "SummitData", "SummitContinuousBilateralStreaming", "RCS02L", filepath.Base(src))
	var buf bytes.Buffer
	return fixture{
		src:    src,
		dst:    dst,
		copier: &testsupport.FakeCopier{Output: "sending incremental file list\n./\nDeviceNPC700000H/RawDataTD.json", Apply: true},
		logs:   &buf,
		logger: slog.New(slog.NewTextHandler(&buf, nil)),
	}
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	return n
}

func TestExecuteRealMoveRemovesSource(t *testing.T) {
	f := newFixture(t)
	m := mover.New(f.copier, f.logger)

	outcome := m.Execute(context.Background(), f.src, f.dst, false)
	if outcome.Status != mover.StatusMoved || outcome.Err != nil {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	calls := f.copier.Calls()
	if len(calls) != 1 || !calls[0].Opts.RemoveSourceFiles || calls[0].Opts.DryRun {
		t.Fatalf("unexpected copier calls %+v", calls)
	}
	if _, err := os.Stat(f.src); !os.IsNotExist(err) {
		t.Fatalf("expected source tree removed, stat err = %v", err)
	}
	if got := countFiles(t, f.dst); got != 2 {
		t.Fatalf("expected 2 archived files, got %d", got)
	}
	if outcome.Bytes != 2048+256 {
		t.Fatalf("unexpected byte count %d", outcome.Bytes)
	}
	if !strings.Contains(f.logs.String(), "rsync summary for "+filepath.Base(f.src)) {
		t.Fatalf("expected rsync summary in logs: %s", f.logs.String())
	}
}

func TestExecuteSimulationNeverTouchesSource(t *testing.T) {
	for _, copyErr := range []error{nil, errors.New("scripted failure")} {
		f := newFixture(t)
		f.copier.Err = copyErr
		removed := false
		m := mover.New(f.copier, f.logger, mover.WithRemoveAll(func(string) error {
			removed = true
			return nil
		}))

		outcome := m.Execute(context.Background(), f.src, f.dst, true)
		if copyErr == nil && outcome.Status != mover.StatusSimulated {
			t.Fatalf("expected simulated, got %+v", outcome)
		}
		if copyErr != nil && outcome.Status != mover.StatusCopyFailed {
			t.Fatalf("expected copy_failed, got %+v", outcome)
		}
		if f.copier.RemoveSourceRequested() {
			t.Fatal("simulation must not request source removal")
		}
		if calls := f.copier.Calls(); len(calls) != 1 || !calls[0].Opts.DryRun {
			t.Fatalf("expected one dry-run copy, got %+v", calls)
		}
		if removed {
			t.Fatal("simulation must not remove the source tree")
		}
		if got := countFiles(t, f.src); got != 2 {
			t.Fatalf("expected source intact, found %d files", got)
		}
		if _, err := os.Stat(filepath.Dir(f.dst)); !os.IsNotExist(err) {
			t.Fatalf("simulation must not create archive directories, stat err = %v", err)
		}
	}
}

func TestExecuteCopyFailureLeavesSourceIntact(t *testing.T) {
	f := newFixture(t)
	exitErr := &rsync.ExitError{
		Command:  []string{"rsync", "-avc", "--remove-source-files", f.src + "/", f.dst},
		ExitCode: 23,
		Stdout:   "partial transfer",
		Stderr:   "rsync: some files vanished",
	}
	f.copier.Err = services.Wrap(services.ErrExternalTool, "rsync", "copy", f.src, exitErr)
	removed := false
	m := mover.New(f.copier, f.logger, mover.WithRemoveAll(func(string) error {
		removed = true
		return nil
	}))

	outcome := m.Execute(context.Background(), f.src, f.dst, false)
	if outcome.Status != mover.StatusCopyFailed || outcome.Succeeded() {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if !errors.Is(outcome.Err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", outcome.Err)
	}
	if removed {
		t.Fatal("source must not be removed after a failed copy")
	}
	if got := countFiles(t, f.src); got != 2 {
		t.Fatalf("expected source intact, found %d files", got)
	}
	logs := f.logs.String()
	for _, want := range []string{"level=ERROR", "return_code=23", "vanished", "partial transfer", "--remove-source-files"} {
		if !strings.Contains(logs, want) {
			t.Fatalf("expected %q in logs: %s", want, logs)
		}
	}
}

func TestExecuteCleanupFailureIsWarning(t *testing.T) {
	f := newFixture(t)
	m := mover.New(f.copier, f.logger, mover.WithRemoveAll(func(string) error {
		return errors.New("device busy")
	}))

	outcome := m.Execute(context.Background(), f.src, f.dst, false)
	if outcome.Status != mover.StatusCleanupFailed || !outcome.Succeeded() {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	logs := f.logs.String()
	if !strings.Contains(logs, "level=WARN") || !strings.Contains(logs, "source_cleanup_failed") {
		t.Fatalf("expected cleanup warning, got %s", logs)
	}
	if strings.Contains(logs, "level=ERROR") {
		t.Fatalf("cleanup failure must not log an error: %s", logs)
	}
}

func TestExecuteMissingSource(t *testing.T) {
	f := newFixture(t)
	missing := filepath.Join(filepath.Dir(f.src), "Session1")
	m := mover.New(f.copier, f.logger)

	outcome := m.Execute(context.Background(), missing, f.dst, false)
	if outcome.Status != mover.StatusSourceMissing {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if !errors.Is(outcome.Err, services.ErrNotFound) {
		t.Fatalf("expected not found marker, got %v", outcome.Err)
	}
	if len(f.copier.Calls()) != 0 {
		t.Fatal("copier must not run for a missing source")
	}
	if _, err := os.Stat(filepath.Dir(f.dst)); !os.IsNotExist(err) {
		t.Fatalf("no destination state expected, stat err = %v", err)
	}
}

type panickingCopier struct{}

func (panickingCopier) Copy(context.Context, string, string, rsync.Options) (rsync.Report, error) {
	panic("boom")
}

func TestExecuteRecoversFromCopierPanic(t *testing.T) {
	f := newFixture(t)
	m := mover.New(panickingCopier{}, f.logger)

	outcome := m.Execute(context.Background(), f.src, f.dst, false)
	if outcome.Status != mover.StatusCopyFailed || outcome.Err == nil {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if got := countFiles(t, f.src); got != 2 {
		t.Fatalf("expected source intact, found %d files", got)
	}
}

func TestExecuteStampsContextFields(t *testing.T) {
	f := newFixture(t)
	m := mover.New(f.copier, f.logger)
	ctx := services.WithSubject(services.WithRunID(context.Background(), "run-9"), "RCS02L")

	m.Execute(ctx, f.src, f.dst, true)
	if !strings.Contains(f.logs.String(), "run_id=run-9") || !strings.Contains(f.logs.String(), "subject=RCS02L") {
		t.Fatalf("expected context fields in logs: %s", f.logs.String())
	}
}

func TestStatusFailedAndSucceeded(t *testing.T) {
	cases := []struct {
		status    mover.Status
		failed    bool
		succeeded bool
	}{
		{mover.StatusMoved, false, true},
		{mover.StatusSimulated, false, true},
		{mover.StatusCleanupFailed, false, true},
		{mover.StatusCopyFailed, true, false},
		{mover.StatusSourceMissing, true, false},
		{"", false, false},
	}
	for _, tc := range cases {
		if got := tc.status.Failed(); got != tc.failed {
			t.Errorf("Status(%q).Failed() = %v, want %v", tc.status, got, tc.failed)
		}
		if got := (mover.Outcome{Status: tc.status}).Succeeded(); got != tc.succeeded {
			t.Errorf("Outcome{%q}.Succeeded() = %v, want %v", tc.status, got, tc.succeeded)
		}
	}
}
