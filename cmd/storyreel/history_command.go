package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"storyreel/internal/ledger"
)

const defaultHistoryLimit = 20

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded pipeline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLedger(func(store *ledger.Store) error {
				out := cmd.OutOrStdout()
				if id := strings.TrimSpace(runID); id != "" {
					run, err := store.GetRun(cmd.Context(), id)
					if err != nil {
						return err
					}
					fmt.Fprint(out, formatRunDetail(run))
					return nil
				}
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, formatRunTable(runs))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Maximum number of runs to list (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show item outcomes for one run ID")
	return cmd
}

func formatRunTable(runs []ledger.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			formatTimestamp(run.StartedAt),
			string(run.Status),
			strconv.Itoa(run.Segments),
			formatElapsed(run.Elapsed()),
			runSummary(run),
		})
	}
	return renderTable([]column{
		{Header: "ID"},
		{Header: "Started"},
		{Header: "Status"},
		{Header: "Segments", Align: alignRight},
		{Header: "Elapsed", Align: alignRight},
		{Header: "Result", MaxWidth: 60},
	}, rows)
}

func formatRunDetail(run ledger.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run:       %s\n", run.ID)
	fmt.Fprintf(&b, "Status:    %s\n", run.Status)
	fmt.Fprintf(&b, "Started:   %s\n", formatTimestamp(run.StartedAt))
	fmt.Fprintf(&b, "Elapsed:   %s\n", formatElapsed(run.Elapsed()))
	fmt.Fprintf(&b, "Clips:     %s\n", run.VideoDir)
	fmt.Fprintf(&b, "Narration: %s\n", run.AudioDir)
	fmt.Fprintf(&b, "Output:    %s\n", run.OutputDir)
	if run.FinalPath != "" {
		fmt.Fprintf(&b, "Final:     %s\n", run.FinalPath)
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(&b, "Error:     %s\n", run.ErrorMessage)
	}
	if len(run.Items) == 0 {
		return b.String()
	}

	rows := make([][]string, 0, len(run.Items))
	for _, item := range run.Items {
		rows = append(rows, []string{item.Stage, item.Name, item.Status, item.Detail})
	}
	b.WriteString("\n")
	b.WriteString(renderTable([]column{
		{Header: "Stage"},
		{Header: "Item"},
		{Header: "Status"},
		{Header: "Detail", MaxWidth: 80},
	}, rows))
	b.WriteString("\n")
	return b.String()
}

func runSummary(run ledger.Run) string {
	if run.ErrorMessage != "" {
		return run.ErrorMessage
	}
	return run.FinalPath
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.In(time.Local).Format("2006-01-02 15:04:05")
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(100 * time.Millisecond).String()
}
