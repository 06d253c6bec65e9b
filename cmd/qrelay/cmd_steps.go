package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qrelay/internal/format"
	"qrelay/internal/resolve"
)

var stepsFlags struct {
	caseToken string
}

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List a test case's steps with their ordering keys",
	RunE:  runSteps,
}

func init() {
	stepsCmd.Flags().StringVar(&stepsFlags.caseToken, "case", "", "Test case ID or name")
	_ = stepsCmd.MarkFlagRequired("case")
}

func runSteps(cmd *cobra.Command, _ []string) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	caseID, err := resolve.Parse(stepsFlags.caseToken).CaseID(ctx, mgr.Resolver())
	if err != nil {
		return err
	}
	steps, err := mgr.Project().Cases().Steps(ctx, caseID)
	if err != nil {
		return fmt.Errorf("list steps for case %d: %w", caseID, err)
	}

	tb := format.NewTable(tableMode())
	tb.Header("Order", "ID", "Description", "Expected")
	tb.RightAlign(1, 2)
	tb.MaxWidth(3, 50)
	tb.MaxWidth(4, 40)
	for _, s := range steps {
		order := "-"
		if k, ok := s.Key(); ok {
			order = string(k)
		}
		text := s.Description
		if text == "" {
			text = s.Action
		}
		tb.Row(order, s.ID, text, s.Expected)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}
