package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qrelay/internal/resolve"
)

var approveFlags struct {
	caseToken string
}

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve a test case and print its version ID",
	RunE:  runApprove,
}

func init() {
	approveCmd.Flags().StringVar(&approveFlags.caseToken, "case", "", "Test case ID or name")
	_ = approveCmd.MarkFlagRequired("case")
}

func runApprove(cmd *cobra.Command, _ []string) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	caseID, err := resolve.Parse(approveFlags.caseToken).CaseID(ctx, mgr.Resolver())
	if err != nil {
		return err
	}
	res, err := mgr.ApproveCase(ctx, caseID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if res.Fallback {
		fmt.Fprintf(out, "Case %d approved. No version id exposed, using the case id: %d\n", caseID, res.VersionID)
		return nil
	}
	fmt.Fprintf(out, "Case %d approved. Version: %d\n", caseID, res.VersionID)
	return nil
}
