package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cycleFlags struct {
	name        string
	description string
}

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Get or create a test cycle by name",
	RunE:  runCycle,
}

func init() {
	f := cycleCmd.Flags()
	f.StringVar(&cycleFlags.name, "name", "", "Cycle name (matched case-insensitively, reused when it exists)")
	f.StringVar(&cycleFlags.description, "description", "", "Description for a newly created cycle")
	_ = cycleCmd.MarkFlagRequired("name")
}

func runCycle(cmd *cobra.Command, _ []string) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}
	id, err := mgr.GetOrCreateCycle(cmd.Context(), cycleFlags.name, cycleFlags.description)
	if err != nil {
		return fmt.Errorf("get or create cycle %q: %w", cycleFlags.name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cycle %q: id=%d\n", cycleFlags.name, id)
	return nil
}
