package testsupport

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"rcsarchive/internal/rsync"
)

// CopyCall records one FakeCopier invocation.
type CopyCall struct {
	Src  string
	Dst  string
	Opts rsync.Options
}

// FakeCopier is a scripted rsync.Copier. With Apply set, a real-mode copy
// moves regular files from src to dst and leaves empty source directories
// behind, the way rsync --remove-source-files does.
type FakeCopier struct {
	mu sync.Mutex

	Output string
	Err    error
	// ErrFor scripts a failure for specific source directories.
	ErrFor map[string]error
	Apply  bool

	calls []CopyCall
}

// Copy implements rsync.Copier.
func (f *FakeCopier) Copy(ctx context.Context, src, dst string, opts rsync.Options) (rsync.Report, error) {
	f.mu.Lock()
	f.calls = append(f.calls, CopyCall{Src: src, Dst: dst, Opts: opts})
	err := f.Err
	if scripted, ok := f.ErrFor[src]; ok {
		err = scripted
	}
	f.mu.Unlock()

	report := rsync.Report{
		Command: append([]string{"rsync"}, rsync.Args(src, dst, opts)...),
		Output:  f.Output,
	}
	if err != nil {
		return report, err
	}
	if f.Apply && !opts.DryRun {
		if applyErr := moveTree(src, dst, opts.RemoveSourceFiles); applyErr != nil {
			return report, applyErr
		}
	}
	return report, nil
}

// Calls returns a copy of the recorded invocations.
func (f *FakeCopier) Calls() []CopyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CopyCall(nil), f.calls...)
}

// RemoveSourceRequested reports whether any call asked to delete source files.
func (f *FakeCopier) RemoveSourceRequested() bool {
	for _, call := range f.Calls() {
		if call.Opts.RemoveSourceFiles {
			return true
		}
	}
	return false
}

func moveTree(src, dst string, removeSource bool) error {
	src = strings.TrimRight(src, "/")
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		if removeSource {
			return os.Remove(path)
		}
		return nil
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		return errors.Join(err, out.Close())
	}
	return out.Close()
}
