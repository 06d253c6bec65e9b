package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qrelay/internal/display"
	"qrelay/internal/qtest"
	"qrelay/internal/report"
	"qrelay/internal/resolve"
)

var ensureFlags struct {
	parentID   int64
	parentType string
	caseToken  string
	noCreate   bool
	exeStart   string
	exeEnd     string
}

var ensureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Find the run for a test case under a parent, creating it when missing",
	RunE:  runEnsure,
}

func init() {
	f := ensureCmd.Flags()
	f.Int64Var(&ensureFlags.parentID, "parent-id", 0, "Parent container ID")
	f.StringVar(&ensureFlags.parentType, "parent-type", qtest.ParentTestCycle, "Parent type (root, release, test-cycle, test-suite)")
	f.StringVar(&ensureFlags.caseToken, "case", "", "Test case ID or name")
	f.BoolVar(&ensureFlags.noCreate, "no-create", false, "Fail instead of creating when no run exists")
	f.StringVar(&ensureFlags.exeStart, "exe-start", "", "Execution start for a newly created run (RFC 3339)")
	f.StringVar(&ensureFlags.exeEnd, "exe-end", "", "Execution end for a newly created run (RFC 3339)")
	_ = ensureCmd.MarkFlagRequired("parent-id")
	_ = ensureCmd.MarkFlagRequired("case")
}

func runEnsure(cmd *cobra.Command, _ []string) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	caseID, err := resolve.Parse(ensureFlags.caseToken).CaseID(ctx, mgr.Resolver())
	if err != nil {
		return err
	}

	in := report.EnsureRunInput{
		Parent:          qtest.Parent{ID: ensureFlags.parentID, Type: ensureFlags.parentType},
		CaseID:          caseID,
		CreateIfMissing: !ensureFlags.noCreate,
	}
	if in.ExeStart, err = parseTimestamp("--exe-start", ensureFlags.exeStart); err != nil {
		return err
	}
	if in.ExeEnd, err = parseTimestamp("--exe-end", ensureFlags.exeEnd); err != nil {
		return err
	}

	runID, err := mgr.EnsureRunForCase(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Run for case %d under %s %d: id=%d\n",
		caseID, display.ParentType(ensureFlags.parentType), ensureFlags.parentID, runID)
	return nil
}
