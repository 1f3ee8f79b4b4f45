// Package session classifies session folders by the epoch-millisecond
// timestamp embedded in their name.
package session

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"time"

	"rcsarchive/internal/logging"
)

// MaxAge is returned for names whose timestamp cannot be recovered. Such
// folders are always old enough to move.
const MaxAge = time.Duration(math.MaxInt64)

var (
	listingPattern  = regexp.MustCompile(`^[Ss]ession\d+`)
	classifyPattern = regexp.MustCompile(`^[Ss]ession(\d+)$`)
)

// maxTimestampMillis is the last millisecond of year 9999. Larger values would
// saturate time arithmetic into a negative age.
const maxTimestampMillis = 253402300799999

// IsSessionName reports whether a directory basename looks like a session
// folder. It is the listing filter; Age applies the stricter full match.
func IsSessionName(name string) bool {
	return listingPattern.MatchString(name)
}

// Timestamp returns the recording start encoded in name.
func Timestamp(name string) (time.Time, bool) {
	match := classifyPattern.FindStringSubmatch(name)
	if match == nil {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || ms > maxTimestampMillis {
		return time.Time{}, false
	}
	return time.Unix(ms/1000, 0), true
}

// Age returns now minus the session start encoded in name. Names that do not
// parse yield MaxAge and a warning naming the folder.
func Age(name string, now time.Time, logger *slog.Logger) time.Duration {
	started, ok := Timestamp(name)
	if !ok {
		logging.WarnWithContext(logger, "could not parse timestamp from session folder, treating as old",
			"session_name_unparseable",
			logging.String(logging.FieldSession, name),
			logging.String(logging.FieldErrorHint, "rename the folder to Session<epoch-ms> if it should wait for the age threshold"),
			logging.String(logging.FieldImpact, "folder is eligible for archiving regardless of age"),
		)
		return MaxAge
	}
	return now.Sub(started)
}
