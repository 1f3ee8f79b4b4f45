package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// SessionName returns the folder name for a session that started at started.
func SessionName(started time.Time) string {
	return "Session" + strconv.FormatInt(started.UnixMilli(), 10)
}

// MakeSession creates a session folder under source holding a few small files
// in the layout a Summit export produces. It returns the session path.
func MakeSession(t testing.TB, source string, started time.Time) string {
	t.Helper()

	dir := filepath.Join(source, SessionName(started))
	WriteFile(t, filepath.Join(dir, "DeviceNPC700000H", "RawDataTD.json"), 2048)
	WriteFile(t, filepath.Join(dir, "DeviceNPC700000H", "DeviceSettings.json"), 256)
	if err := os.MkdirAll(filepath.Join(dir, "DeviceNPC700000H", "empty"), 0o755); err != nil {
		t.Fatalf("mkdir empty subdir: %v", err)
	}
	return dir
}
