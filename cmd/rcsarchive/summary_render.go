package main

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"rcsarchive/internal/archive"
)

func renderSummary(s archive.Summary, colorize bool) string {
	mode := "live"
	if s.DryRun {
		mode = "dry run"
	}
	rows := [][]string{
		{"Run", s.RunID},
		{"Mode", mode},
		{"Duration", s.Duration().Round(time.Second).String()},
		{"Subjects", strconv.Itoa(s.Subjects)},
		{"Source paths", strconv.Itoa(s.Sources)},
		{"Sessions seen", strconv.Itoa(s.Sessions)},
		{"Moved", strconv.Itoa(s.Moved)},
		{"Simulated", strconv.Itoa(s.Simulated)},
		{"Skipped (recent)", strconv.Itoa(s.SkippedRecent)},
		{"Skipped (destination exists)", strconv.Itoa(s.SkippedExists)},
		{"Failed", statusCount(s.Failed, colorize)},
		{"Cleanup warnings", strconv.Itoa(s.CleanupWarnings)},
		{"Data moved", humanize.Bytes(uint64(s.BytesMoved))},
	}
	if s.Canceled {
		rows = append(rows, []string{"Canceled", statusText(false, "", "yes", colorize)})
	}
	return renderTable([]string{"Summary", "Value"}, rows, []columnAlignment{alignLeft, alignRight}, colorize)
}

func statusCount(n int, colorize bool) string {
	return statusText(n == 0, "0", strconv.Itoa(n), colorize)
}
