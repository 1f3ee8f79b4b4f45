package discovery_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rcsarchive/internal/config"
	"rcsarchive/internal/discovery"
	"rcsarchive/internal/layout"
	"rcsarchive/internal/services"
)

func newResolver(t *testing.T) (*config.Config, *layout.Resolver) {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.DataRoot = filepath.Join(base, "data")
	cfg.Paths.ArchiveRoot = filepath.Join(base, "archive")
	return &cfg, layout.New(&cfg, nil)
}

func mkdirs(t *testing.T, dirs ...string) {
	t.Helper()
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
}

func TestDiscoverEmptyRoot(t *testing.T) {
	_, r := newResolver(t)
	if got := discovery.Discover(discovery.OSFS{}, r, nil, nil); len(got) != 0 {
		t.Fatalf("expected no subjects, got %v", got)
	}
}

func TestDiscoverSortedWithBothKinds(t *testing.T) {
	cfg, r := newResolver(t)
	mkdirs(t,
		filepath.Join(cfg.Paths.DataRoot, "RCS07", "SummitData", "StarrLab", "RCS07R"),
		filepath.Join(cfg.Paths.DataRoot, "RCS07", "SummitData", "SummitContinuousBilateralStreaming", "RCS07R"),
		filepath.Join(cfg.Paths.DataRoot, "RC02LTE", "SummitData", "SummitContinuousBilateralStreaming", "RCS02L"),
	)

	got := discovery.Discover(discovery.OSFS{}, r, nil, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 subjects, got %v", got)
	}
	if got[0].ID != "RCS02L" || got[1].ID != "RCS07R" {
		t.Fatalf("unexpected order %q, %q", got[0].ID, got[1].ID)
	}
	if len(got[1].Sources) != 2 {
		t.Fatalf("expected two sources for RCS07R, got %v", got[1].Sources)
	}
}

func TestDiscoverExtraSubjects(t *testing.T) {
	cfg, r := newResolver(t)
	gaitA := filepath.Join(cfg.Paths.DataRoot, "GaitRCS01", "SummitData", "StarrLab", "GaitRCS01L")
	gaitB := filepath.Join(cfg.Paths.DataRoot, "GaitRCS01", "SummitData", "SummitContinuousBilateralStreaming", "GaitRCS01L")
	single := filepath.Join(cfg.Paths.DataRoot, "Other", "SummitData", "StarrLab", "OtherR")
	mkdirs(t, gaitA, gaitB, single)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	extra := map[string]any{
		"GaitRCS01L": []any{gaitA, gaitB, filepath.Join(cfg.Paths.DataRoot, "missing")},
		"OtherR":     single,
		"BrokenL":    int64(42),
		"MixedR":     []any{single, true},
	}

	got := discovery.Discover(discovery.OSFS{}, r, extra, logger)
	ids := make([]string, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	if strings.Join(ids, ",") != "GaitRCS01L,OtherR" {
		t.Fatalf("unexpected subjects %v", ids)
	}
	if len(got[0].Sources) != 2 {
		t.Fatalf("expected 2 gait sources, got %v", got[0].Sources)
	}
	if got[0].Sources[0].Kind != layout.KindA || got[0].Sources[1].Kind != layout.KindB {
		t.Fatalf("unexpected kinds %v", got[0].Sources)
	}

	logs := buf.String()
	for _, want := range []string{"subject=BrokenL", "subject=MixedR", "subject_mapping_malformed", "subject_source_missing"} {
		if !strings.Contains(logs, want) {
			t.Fatalf("expected %q in logs: %s", want, logs)
		}
	}
}

func TestDiscoverExtraMergesWithScanned(t *testing.T) {
	cfg, r := newResolver(t)
	scanned := filepath.Join(cfg.Paths.DataRoot, "RCS04", "SummitData", "StarrLab", "RCS04L")
	mkdirs(t, scanned)

	got := discovery.Discover(discovery.OSFS{}, r, map[string]any{"RCS04L": scanned}, nil)
	if len(got) != 1 || len(got[0].Sources) != 1 {
		t.Fatalf("expected duplicate path to merge, got %v", got)
	}
}

func TestListSessionsFiltersEntries(t *testing.T) {
	dir := t.TempDir()
	mkdirs(t,
		filepath.Join(dir, "Session1608052648432"),
		filepath.Join(dir, "session17"),
		filepath.Join(dir, "SessionABC"),
		filepath.Join(dir, "Settings"),
	)
	if err := os.WriteFile(filepath.Join(dir, "Session999"), []byte("file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := discovery.ListSessions(discovery.OSFS{}, dir)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if strings.Join(got, ",") != "Session1608052648432,session17" {
		t.Fatalf("unexpected sessions %v", got)
	}
}

func TestListSessionsMissingSource(t *testing.T) {
	_, err := discovery.ListSessions(discovery.OSFS{}, filepath.Join(t.TempDir(), "gone"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found marker, got %v", err)
	}
}

type deniedFS struct {
	discovery.OSFS
}

func (deniedFS) ReadDir(name string) ([]os.DirEntry, error) {
	return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
}

func TestListSessionsUnreadableSourceIsNotNotFound(t *testing.T) {
	_, err := discovery.ListSessions(deniedFS{}, t.TempDir())
	if err == nil {
		t.Fatal("expected error for unreadable source")
	}
	if errors.Is(err, services.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		t.Fatalf("permission error must not be classified as missing: %v", err)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("expected underlying permission error, got %v", err)
	}
}
