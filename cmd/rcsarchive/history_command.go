package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"rcsarchive/internal/history"
	"rcsarchive/internal/mover"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent archive runs from the history ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if _, err := os.Stat(cfg.HistoryPath()); os.IsNotExist(err) {
				fmt.Fprintln(out, "No archive runs recorded yet")
				return nil
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			colorize := shouldColorize(out)
			if strings.TrimSpace(runID) != "" {
				outcomes, err := store.Outcomes(cmd.Context(), strings.TrimSpace(runID))
				if err != nil {
					return err
				}
				if len(outcomes) == 0 {
					fmt.Fprintf(out, "No outcomes recorded for run %s\n", runID)
					return nil
				}
				fmt.Fprintln(out, renderOutcomes(outcomes, colorize))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No archive runs recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs, colorize))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show per-session outcomes for one run")
	return cmd
}

func renderRuns(runs []history.Run, colorize bool) string {
	headers := []string{"Run", "Started", "Mode", "Sessions", "Moved", "Simulated", "Skipped", "Failed", "Data", "Duration"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		mode := "live"
		if run.DryRun {
			mode = "dry run"
		}
		duration := "unfinished"
		if run.Finished() {
			duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
		}
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			mode,
			strconv.Itoa(run.Sessions),
			strconv.Itoa(run.Moved),
			strconv.Itoa(run.Simulated),
			strconv.Itoa(run.SkippedRecent + run.SkippedExists),
			statusCount(run.Failed, colorize),
			humanize.Bytes(uint64(run.BytesMoved)),
			duration,
		})
	}
	return renderTable(headers, rows, aligns, colorize)
}

func renderOutcomes(outcomes []history.Outcome, colorize bool) string {
	headers := []string{"Subject", "Session", "Status", "Data", "Duration", "Detail"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		ok := !mover.Status(o.Status).Failed()
		rows = append(rows, []string{
			o.Subject,
			o.Session,
			statusText(ok, o.Status, o.Status, colorize),
			humanize.Bytes(uint64(o.Bytes)),
			o.Duration.Round(time.Millisecond).String(),
			o.Detail,
		})
	}
	return renderTable(headers, rows, aligns, colorize)
}
