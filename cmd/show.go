package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/ziwei/internal/report"
	"github.com/papapumpkin/ziwei/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <input>",
	Short: "Render the correlated palaces as terminal tables",
	Long: `Generates the report for an input file and prints one palace table for the
current date and one for each future date, instead of JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	addRunFlags(showCmd)
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalContext(ui.New())
	defer cancel()

	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	doc, _, err := s.generate(ctx, cmd, args[0], false)
	if err != nil {
		return err
	}
	return renderDocument(cmd, doc)
}

// renderDocument prints the palace tables of a document followed by the
// isolated failures, if any.
func renderDocument(cmd *cobra.Command, doc *report.Document) error {
	w := cmd.OutOrStdout()
	in := doc.NormalizedInput
	title := fmt.Sprintf("current %s", in.BaseDateSolar)
	if in.BaseDateLunar != nil {
		title += " (" + *in.BaseDateLunar + ")"
	}
	if _, err := fmt.Fprint(w, ui.PalaceTable(title, doc.CurrentDetailed.Palaces)); err != nil {
		return err
	}
	for _, snap := range doc.FutureDetailed {
		title := "future " + snap.TargetSolarDate
		if snap.TargetLunarDate != nil {
			title += " (" + *snap.TargetLunarDate + ")"
		}
		if _, err := fmt.Fprint(w, "\n"+ui.PalaceTable(title, snap.Palaces)); err != nil {
			return err
		}
	}
	for _, f := range doc.FutureFailures {
		if _, err := fmt.Fprintf(w, "\nfuture %s failed: %s\n", f.TargetSolarDate, f.Error); err != nil {
			return err
		}
	}
	return nil
}
