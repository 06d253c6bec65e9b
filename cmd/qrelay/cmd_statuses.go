package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qrelay/internal/format"
)

var statusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "List the project's execution status vocabulary",
	RunE:  runStatuses,
}

func runStatuses(cmd *cobra.Command, _ []string) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	statuses, err := mgr.Registry().Statuses(ctx)
	if err != nil {
		return fmt.Errorf("list execution statuses: %w", err)
	}
	names, err := mgr.Registry().Names(ctx)
	if err != nil {
		return err
	}

	tb := format.NewTable(tableMode())
	tb.Header("ID", "Status")
	tb.RightAlign(1)
	for _, name := range names {
		tb.Row(statuses[name], name)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}
