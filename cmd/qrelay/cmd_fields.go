package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"qrelay/internal/format"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the project's test run field settings",
	Long: "Lists the test run fields the project defines, with their IDs, types,\n" +
		"and allowed values. Use it to find the field and value IDs for the\n" +
		"build_version_field config override.",
	RunE: runFields,
}

func runFields(cmd *cobra.Command, _ []string) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}
	fields, err := mgr.Project().Fields().RunFields(cmd.Context())
	if err != nil {
		return fmt.Errorf("list run fields: %w", err)
	}

	tb := format.NewTable(tableMode())
	tb.Header("ID", "Label", "Type", "Required", "Allowed Values")
	tb.RightAlign(1)
	tb.MaxWidth(5, 60)
	for _, f := range fields {
		vals := make([]string, 0, len(f.AllowedValues))
		for _, av := range f.AllowedValues {
			vals = append(vals, fmt.Sprintf("%s=%s", fieldValue(av.Value), av.Label))
		}
		tb.Row(f.ID, f.Label, f.AttributeType, format.BoolMark(f.Required), strings.Join(vals, ", "))
	}
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}

// fieldValue renders an allowed value. Numeric value ids arrive as float64
// from JSON and would otherwise print in scientific notation.
func fieldValue(v any) string {
	if f, ok := v.(float64); ok && f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprintf("%v", v)
}
