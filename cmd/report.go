package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/ziwei/internal/ui"
)

var reportCmd = &cobra.Command{
	Use:   "report <input>",
	Short: "Generate the correlated report for an input file",
	Long: `Reads a birth record and query from a JSON, TOML or YAML input file, asks
the chart engine for the natal chart and each queried date, and writes the
correlated report as JSON to stdout or --out.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	addRunFlags(reportCmd)
	reportCmd.Flags().StringP("out", "o", "", "write the report to this file instead of stdout")
	reportCmd.Flags().Bool("pretty", true, "indent the JSON output")
	reportCmd.Flags().Bool("save", false, "save the report to history")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalContext(ui.New())
	defer cancel()

	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	pretty, _ := cmd.Flags().GetBool("pretty")
	_, data, err := s.generate(ctx, cmd, args[0], pretty)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	return writeOutput(cmd, out, data)
}
