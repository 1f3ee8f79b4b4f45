package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"rcsarchive/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC)

	if err := store.BeginRun(ctx, history.Run{ID: "run-1", StartedAt: started, DryRun: true}); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Finished() || !runs[0].DryRun {
		t.Fatalf("unexpected unfinished run %+v", runs)
	}

	final := history.Run{
		ID:              "run-1",
		FinishedAt:      started.Add(2 * time.Minute),
		Subjects:        3,
		Sessions:        7,
		Simulated:       4,
		SkippedRecent:   2,
		Failed:          1,
		CleanupWarnings: 0,
		BytesMoved:      4096,
	}
	if err := store.FinishRun(ctx, final); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err = store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	got := runs[0]
	if !got.Finished() || !got.StartedAt.Equal(started) || !got.FinishedAt.Equal(final.FinishedAt) {
		t.Fatalf("unexpected times %+v", got)
	}
	if got.Subjects != 3 || got.Sessions != 7 || got.Simulated != 4 || got.SkippedRecent != 2 || got.Failed != 1 || got.BytesMoved != 4096 {
		t.Fatalf("unexpected counters %+v", got)
	}
}

func TestRecentRunsNewestFirstWithLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := store.BeginRun(ctx, history.Run{ID: id, StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("BeginRun %s: %v", id, err)
		}
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected runs %+v", runs)
	}
}

func TestRecentRunsOrdersWithinOneSecond(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	whole := time.Date(2026, 5, 1, 3, 0, 5, 0, time.UTC)
	runs := []history.Run{
		{ID: "whole-second", StartedAt: whole},
		{ID: "half-second", StartedAt: whole.Add(500 * time.Millisecond)},
		{ID: "local-zone", StartedAt: whole.Add(750 * time.Millisecond).In(time.FixedZone("PDT", -7*3600))},
	}
	for _, run := range runs {
		if err := store.BeginRun(ctx, run); err != nil {
			t.Fatalf("BeginRun %s: %v", run.ID, err)
		}
	}

	got, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(got) != 3 || got[0].ID != "local-zone" || got[1].ID != "half-second" || got[2].ID != "whole-second" {
		t.Fatalf("unexpected order %+v", got)
	}
	if !got[1].StartedAt.Equal(whole.Add(500 * time.Millisecond)) {
		t.Fatalf("start time not preserved: %v", got[1].StartedAt)
	}
}

func TestOutcomesRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if err := store.BeginRun(ctx, history.Run{ID: "run-2"}); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	records := []history.Outcome{
		{RunID: "run-2", Subject: "RCS02L", Session: "Session1", SourcePath: "/src/Session1", DestPath: "/dst/Session1", Status: "moved", Bytes: 10, Duration: 1500 * time.Millisecond},
		{RunID: "run-2", Subject: "RCS02L", Session: "Session2", SourcePath: "/src/Session2", Status: "skipped_recent", Detail: "age 2h0m0s"},
	}
	for _, rec := range records {
		if err := store.RecordOutcome(ctx, rec); err != nil {
			t.Fatalf("RecordOutcome: %v", err)
		}
	}

	got, err := store.Outcomes(ctx, "run-2")
	if err != nil {
		t.Fatalf("Outcomes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(got))
	}
	if got[0].Status != "moved" || got[0].Duration != 1500*time.Millisecond || got[0].DestPath != "/dst/Session1" {
		t.Fatalf("unexpected first outcome %+v", got[0])
	}
	if got[1].DestPath != "" || got[1].Detail != "age 2h0m0s" || got[1].RecordedAt.IsZero() {
		t.Fatalf("unexpected second outcome %+v", got[1])
	}
}

func TestOutcomeRequiresKnownRun(t *testing.T) {
	store := openStore(t)
	err := store.RecordOutcome(context.Background(), history.Outcome{RunID: "nope", Subject: "RCS01L", Session: "Session1", SourcePath: "/src", Status: "moved"})
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
}

func TestBeginRunRequiresID(t *testing.T) {
	store := openStore(t)
	if err := store.BeginRun(context.Background(), history.Run{}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := history.Open(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
