package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"qrelay/internal/format"
	"qrelay/internal/journal"
	"qrelay/internal/report"
)

// bulkFileItem is one entry of the results file. Step logs keep the loose
// container shape (list or object with a "logs" list).
type bulkFileItem struct {
	TestCaseID      int64    `json:"test_case_id" yaml:"test_case_id"`
	Status          string   `json:"status" yaml:"status"`
	Note            string   `json:"note,omitempty" yaml:"note,omitempty"`
	ExecutionTimeMS int64    `json:"execution_time_ms,omitempty" yaml:"execution_time_ms,omitempty"`
	VersionID       int64    `json:"version_id,omitempty" yaml:"version_id,omitempty"`
	Defects         []string `json:"defects,omitempty" yaml:"defects,omitempty"`
	ExeStartDate    string   `json:"exe_start_date,omitempty" yaml:"exe_start_date,omitempty"`
	ExeEndDate      string   `json:"exe_end_date,omitempty" yaml:"exe_end_date,omitempty"`
	StepLogs        any      `json:"step_logs,omitempty" yaml:"step_logs,omitempty"`
}

var bulkFlags struct {
	run       int64
	file      string
	parallel  int
	quiet     bool
	noJournal bool
}

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Report many results to a run from a YAML or JSON file",
	Long: "Reports every result in the file to one run. Each item needs\n" +
		"test_case_id and status; note, execution_time_ms, version_id, defects,\n" +
		"exe_start_date, exe_end_date, and step_logs are optional. Items fail\n" +
		"independently; the command exits non-zero when any item failed.",
	RunE: runBulk,
}

func init() {
	f := bulkCmd.Flags()
	f.Int64Var(&bulkFlags.run, "run", 0, "Test run ID")
	f.StringVar(&bulkFlags.file, "file", "", "Results file (YAML or JSON list)")
	f.IntVar(&bulkFlags.parallel, "parallel", 1, "Concurrent submissions")
	f.BoolVar(&bulkFlags.quiet, "quiet", false, "Suppress the progress spinner")
	f.BoolVar(&bulkFlags.noJournal, "no-journal", false, "Skip the local journal")
	_ = bulkCmd.MarkFlagRequired("run")
	_ = bulkCmd.MarkFlagRequired("file")
}

func runBulk(cmd *cobra.Command, _ []string) error {
	mgr, cfg, err := newManager()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	fileItems, err := readBulkFile(bulkFlags.file)
	if err != nil {
		return err
	}
	if len(fileItems) == 0 {
		return fmt.Errorf("%s: no results", bulkFlags.file)
	}
	items, err := toBulkItems(fileItems)
	if err != nil {
		return err
	}

	jnl, err := openJournal(cfg, bulkFlags.noJournal)
	if err != nil {
		return err
	}
	defer func() { _ = jnl.Close() }()

	batch := &journal.Batch{
		ID:        journal.NewBatchID(),
		RunID:     bulkFlags.run,
		StartedAt: journal.NowUTC(),
	}
	if err := jnl.RecordBatch(batch); err != nil {
		return err
	}

	var spin *spinner.Spinner
	if !bulkFlags.quiet {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		spin.Suffix = fmt.Sprintf(" Reporting %d results to run %d...", len(items), bulkFlags.run)
		spin.Start()
	}
	results := mgr.BulkUpdateResults(ctx, bulkFlags.run, items, report.WithParallelism(bulkFlags.parallel))
	if spin != nil {
		spin.Stop()
	}

	failed := 0
	now := journal.NowUTC()
	tb := format.NewTable(tableMode())
	tb.Header("Case", "Status", "Log", "Error")
	tb.RightAlign(1, 3)
	tb.MaxWidth(4, 60)
	for i, r := range results {
		rec := &journal.Result{
			BatchID:    batch.ID,
			RunID:      bulkFlags.run,
			CaseID:     r.TestCaseID,
			Status:     strings.ToUpper(fileItems[i].Status),
			ExeTime:    fileItems[i].ExecutionTimeMS,
			ReportedAt: now,
		}
		errText := ""
		logCol := "-"
		if r.Err != nil {
			failed++
			errText = r.Err.Error()
			rec.Err = errText
		} else if r.Log != nil {
			rec.LogID = r.Log.ID
			logCol = strconv.FormatInt(r.Log.ID, 10)
		}
		if err := jnl.RecordResult(rec); err != nil {
			return fmt.Errorf("journal result for case %d: %w", r.TestCaseID, err)
		}
		tb.Row(r.TestCaseID, fileItems[i].Status, logCol, errText)
	}

	batch.FinishedAt = journal.NowUTC()
	batch.Total = len(results)
	batch.Failed = failed
	if err := jnl.RecordBatch(batch); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tb.String())
	fmt.Fprintf(out, "%d reported, %d failed (batch %s)\n", len(results)-failed, failed, batch.ID)
	if failed > 0 {
		return fmt.Errorf("%d of %d results failed", failed, len(results))
	}
	return nil
}

func readBulkFile(path string) ([]bulkFileItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []bulkFileItem
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &items)
	} else {
		err = yaml.Unmarshal(data, &items)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return items, nil
}

func toBulkItems(fileItems []bulkFileItem) ([]report.BulkItem, error) {
	items := make([]report.BulkItem, 0, len(fileItems))
	for i, it := range fileItems {
		if it.TestCaseID == 0 {
			return nil, fmt.Errorf("results[%d]: test_case_id is required", i)
		}
		b := report.BulkItem{
			CaseID:    it.TestCaseID,
			Status:    it.Status,
			VersionID: it.VersionID,
			Note:      it.Note,
			ExeTime:   it.ExecutionTimeMS,
			Defects:   it.Defects,
		}
		var err error
		if b.ExeStart, err = parseTimestamp(fmt.Sprintf("results[%d].exe_start_date", i), it.ExeStartDate); err != nil {
			return nil, err
		}
		if b.ExeEnd, err = parseTimestamp(fmt.Sprintf("results[%d].exe_end_date", i), it.ExeEndDate); err != nil {
			return nil, err
		}
		if it.StepLogs != nil {
			if b.StepLogs, err = report.StepLogs(it.StepLogs); err != nil {
				return nil, fmt.Errorf("results[%d]: %w", i, err)
			}
		}
		items = append(items, b)
	}
	return items, nil
}
