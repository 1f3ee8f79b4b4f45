package main

import (
	"os"
	"testing"

	"rcsarchive/internal/testsupport"
)

func TestCheckFailsWhenRootsMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	path := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"check"}, path)
	if err == nil {
		t.Fatal("expected check to fail for missing roots")
	}
	requireContains(t, out, "Data root")
	requireContains(t, out, "FAIL")
}

func TestCheckPassesWithRootsAndRsync(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	for _, dir := range []string{cfg.Paths.DataRoot, cfg.Paths.ArchiveRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	path := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"check"}, path)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Archive root")
	requireContains(t, out, "ok")
}
