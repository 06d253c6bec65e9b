package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "qrelay",
	Short: "Report test results to qTest by name",
	Long: "qrelay relays test execution results to qTest. It resolves cases and\n" +
		"cycles by name, creates runs on demand, and reports single or bulk\n" +
		"results with step-level detail.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(statusesCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(cycleCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(ensureCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(bulkCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(serveCmd)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.config, "config", "", "Config file path (default: config.yaml, config.yml, or config.json)")
	pf.BoolVar(&rootFlags.markdown, "markdown", false, "Render tables as Markdown")
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
