package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qrelay/internal/report"
	"qrelay/internal/resolve"
)

var reportFlags struct {
	run       int64
	caseToken string
	status    string
	note      string
	exeTime   int64
	versionID int64
	defects   []string
	exeStart  string
	exeEnd    string
	stepsFile string
	approve   bool
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report one test result to a run",
	RunE:  runReport,
}

func init() {
	f := reportCmd.Flags()
	f.Int64Var(&reportFlags.run, "run", 0, "Test run ID")
	f.StringVar(&reportFlags.caseToken, "case", "", "Test case ID or name")
	f.StringVar(&reportFlags.status, "status", "", "Execution status (project vocabulary, case-insensitive)")
	f.StringVar(&reportFlags.note, "note", "", "Log note")
	f.Int64Var(&reportFlags.exeTime, "exe-time", 0, "Execution time in milliseconds")
	f.Int64Var(&reportFlags.versionID, "version", 0, "Test case version ID (defaults to the case ID)")
	f.StringArrayVar(&reportFlags.defects, "defect", nil, "Linked defect ID (repeatable)")
	f.StringVar(&reportFlags.exeStart, "exe-start", "", "Execution start (RFC 3339)")
	f.StringVar(&reportFlags.exeEnd, "exe-end", "", "Execution end (RFC 3339)")
	f.StringVar(&reportFlags.stepsFile, "steps", "", "YAML or JSON file with step logs")
	f.BoolVar(&reportFlags.approve, "approve", false, "Approve the case first and report against the approved version")
	_ = reportCmd.MarkFlagRequired("run")
	_ = reportCmd.MarkFlagRequired("case")
	_ = reportCmd.MarkFlagRequired("status")
}

func runReport(cmd *cobra.Command, _ []string) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	caseID, err := resolve.Parse(reportFlags.caseToken).CaseID(ctx, mgr.Resolver())
	if err != nil {
		return err
	}

	in := report.ResultInput{
		RunID:     reportFlags.run,
		CaseID:    caseID,
		Status:    reportFlags.status,
		VersionID: reportFlags.versionID,
		Note:      reportFlags.note,
		ExeTime:   reportFlags.exeTime,
		Defects:   reportFlags.defects,
	}
	if in.ExeStart, err = parseTimestamp("--exe-start", reportFlags.exeStart); err != nil {
		return err
	}
	if in.ExeEnd, err = parseTimestamp("--exe-end", reportFlags.exeEnd); err != nil {
		return err
	}
	if reportFlags.stepsFile != "" {
		if in.StepLogs, err = readStepLogs(reportFlags.stepsFile); err != nil {
			return err
		}
	}
	if reportFlags.approve {
		res, err := mgr.ApproveCase(ctx, caseID)
		if err != nil {
			return err
		}
		in.VersionID = res.VersionID
	}

	log, err := mgr.UpdateResult(ctx, in)
	if err != nil {
		return fmt.Errorf("report result for case %d: %w", caseID, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Log for case %d: id=%d\n", caseID, log.ID)
	return nil
}
