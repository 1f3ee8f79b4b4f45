package session_test

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"rcsarchive/internal/session"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestAgeFromMillisecondTimestamp(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	cases := []time.Duration{0, time.Second, 2 * time.Hour, 9 * time.Hour, 400 * 24 * time.Hour}
	for _, age := range cases {
		started := now.Add(-age)
		for _, prefix := range []string{"Session", "session"} {
			name := prefix + strconv.FormatInt(started.UnixMilli()+999, 10)
			got := session.Age(name, now, nil)
			if diff := got - age; diff < 0 || diff > time.Second {
				t.Fatalf("Age(%q) = %v, want %v within a second", name, got, age)
			}
		}
	}
}

func TestAgeUnparseableIsMaxAge(t *testing.T) {
	now := time.Now()
	names := []string{
		"Session",
		"SessionABC",
		"Session123abc",
		"notes",
		"xSession123",
		"Session99999999999999999999999",
		"Session9223372036854775807",
		"Session253402300800000",
	}
	for _, name := range names {
		logger, buf := captureLogger()
		if got := session.Age(name, now, logger); got != session.MaxAge {
			t.Fatalf("Age(%q) = %v, want MaxAge", name, got)
		}
		if !strings.Contains(buf.String(), name) {
			t.Fatalf("expected warning naming %q, got %q", name, buf.String())
		}
		if !strings.Contains(buf.String(), "level=WARN") {
			t.Fatalf("expected warn level, got %q", buf.String())
		}
	}
}

func TestIsSessionName(t *testing.T) {
	cases := map[string]bool{
		"Session1608052648432": true,
		"session1":             true,
		"Session12abc":         true,
		"Session":              false,
		"SESSION123":           false,
		"DeviceSettings.json":  false,
		"oldSession123":        false,
	}
	for name, want := range cases {
		if got := session.IsSessionName(name); got != want {
			t.Errorf("IsSessionName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestTimestamp(t *testing.T) {
	got, ok := session.Timestamp("Session1608052648432")
	if !ok {
		t.Fatal("expected timestamp to parse")
	}
	if got.Unix() != 1608052648 {
		t.Fatalf("unexpected timestamp %v", got.Unix())
	}
	if _, ok := session.Timestamp("Session"); ok {
		t.Fatal("expected bare prefix to fail")
	}
}
