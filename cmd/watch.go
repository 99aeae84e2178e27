package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papapumpkin/ziwei/internal/telemetry"
	"github.com/papapumpkin/ziwei/internal/ui"
	"github.com/papapumpkin/ziwei/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <input>",
	Short: "Regenerate the report whenever the input file changes",
	Long: `Generates the report once, then watches the input file and regenerates it
after every save. Invalid input is reported and the previous output is kept.
Stop with ctrl-c.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addRunFlags(watchCmd)
	watchCmd.Flags().StringP("out", "o", "", "write each report to this file instead of stdout")
	watchCmd.Flags().Bool("pretty", true, "indent the JSON output")
	watchCmd.Flags().Bool("save", false, "save every report to history")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	printer := ui.New()
	ctx, cancel := setupSignalContext(printer)
	defer cancel()

	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	input := args[0]
	out, _ := cmd.Flags().GetString("out")
	pretty, _ := cmd.Flags().GetBool("pretty")

	regenerate := func() {
		_, data, err := s.generate(ctx, cmd, input, pretty)
		if err != nil {
			printer.Error(err.Error())
			return
		}
		if err := writeOutput(cmd, out, data); err != nil {
			printer.Error(err.Error())
		}
	}

	w, err := watch.NewWatcher(input)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	regenerate()
	printer.Watching(filepath.Clean(input))

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.Changes:
			if !ok {
				return nil
			}
			s.emit(telemetry.Event{Kind: telemetry.KindInputChanged, Data: map[string]string{"change": change.Kind.String()}})
			if change.Kind == watch.ChangeRemoved {
				s.logger.Info("input removed; waiting for it to return", zap.String("file", change.File))
				printer.Info(fmt.Sprintf("%s removed; waiting for it to return", input))
				continue
			}
			printer.InputChanged(input)
			regenerate()
		}
	}
}
