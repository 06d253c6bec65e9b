package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qrelay/internal/display"
	"qrelay/internal/format"
	"qrelay/internal/journal"
)

var summaryFlags struct {
	run         int64
	journalPath string
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize journaled results for a run",
	Long: "Reads the local journal and prints pass/fail counts for a run. Works\n" +
		"offline; no platform credentials needed.",
	RunE: runSummary,
}

func init() {
	f := summaryCmd.Flags()
	f.Int64Var(&summaryFlags.run, "run", 0, "Test run ID")
	f.StringVar(&summaryFlags.journalPath, "journal", journal.DefaultDBPath, "Journal database path")
	_ = summaryCmd.MarkFlagRequired("run")
}

func runSummary(cmd *cobra.Command, _ []string) error {
	jnl, err := journal.Open(summaryFlags.journalPath)
	if err != nil {
		return fmt.Errorf("open journal %s: %w", summaryFlags.journalPath, err)
	}
	defer func() { _ = jnl.Close() }()

	s, err := jnl.Summary(summaryFlags.run)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if s.Total == 0 {
		fmt.Fprintf(out, "No journaled results for run %d\n", summaryFlags.run)
		return nil
	}

	tb := format.NewTable(tableMode())
	tb.Header("Run", "Total", "Passed", "Failed", "Skipped", "Pass Rate", "Time")
	tb.RightAlign(1, 2, 3, 4, 5, 6, 7)
	tb.Row(s.RunID, s.Total, s.Passed, s.Failed, s.Skipped, display.PassRate(s.PassRate), display.Duration(s.TotalExeTime))
	fmt.Fprintln(out, tb.String())
	return nil
}
