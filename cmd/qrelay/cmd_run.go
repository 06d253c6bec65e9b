package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qrelay/internal/report"
	"qrelay/internal/resolve"
)

var runFlags struct {
	name         string
	cases        []string
	cycle        string
	description  string
	buildVersion string
	plannedStart string
	plannedEnd   string
	approve      bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Create a test run for one or more test cases",
	Long: "Creates a test run under a cycle (or the project root when --cycle is\n" +
		"omitted). A single case binds the run to that case; several cases\n" +
		"produce one run covering all of them. With --approve the case is\n" +
		"approved first and the run is bound to the approved version.",
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.name, "name", "", "Run name")
	f.StringArrayVar(&runFlags.cases, "case", nil, "Test case ID or name (repeatable; comma-separated values allowed)")
	f.StringVar(&runFlags.cycle, "cycle", "", "Parent cycle, as ID or name")
	f.StringVar(&runFlags.description, "description", "", "Run description")
	f.StringVar(&runFlags.buildVersion, "build-version", "", "Build version property value")
	f.StringVar(&runFlags.plannedStart, "planned-start", "", "Planned start (RFC 3339)")
	f.StringVar(&runFlags.plannedEnd, "planned-end", "", "Planned end (RFC 3339)")
	f.BoolVar(&runFlags.approve, "approve", false, "Approve the case first and bind the run to its version (single case only)")
	_ = runCmd.MarkFlagRequired("name")
	_ = runCmd.MarkFlagRequired("case")
}

func runRun(cmd *cobra.Command, _ []string) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	ids, err := resolveCaseTokens(ctx, mgr, runFlags.cases)
	if err != nil {
		return err
	}

	in := report.CreateRunInput{
		Name:         runFlags.name,
		Description:  runFlags.description,
		BuildVersion: runFlags.buildVersion,
	}
	if in.PlannedStart, err = parseTimestamp("--planned-start", runFlags.plannedStart); err != nil {
		return err
	}
	if in.PlannedEnd, err = parseTimestamp("--planned-end", runFlags.plannedEnd); err != nil {
		return err
	}
	if runFlags.cycle != "" {
		in.Cycle = resolve.Parse(runFlags.cycle)
	}

	out := cmd.OutOrStdout()
	if runFlags.approve {
		if len(ids) != 1 {
			return fmt.Errorf("--approve requires a single test case, got %d", len(ids))
		}
		res, err := mgr.ApproveCase(ctx, ids[0])
		if err != nil {
			return err
		}
		in.VersionID = res.VersionID
		fmt.Fprintf(out, "Approved case %d: version %d\n", ids[0], res.VersionID)
	}
	if len(ids) == 1 {
		in.CaseID = ids[0]
	} else {
		in.CaseIDs = ids
	}

	run, err := mgr.CreateRun(ctx, in)
	if err != nil {
		return fmt.Errorf("create run %q: %w", runFlags.name, err)
	}
	fmt.Fprintf(out, "Run %q: id=%d (%d case(s))\n", run.Name, run.ID, len(ids))
	return nil
}
