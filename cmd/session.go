package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papapumpkin/ziwei/internal/config"
	"github.com/papapumpkin/ziwei/internal/correlate"
	"github.com/papapumpkin/ziwei/internal/engine"
	"github.com/papapumpkin/ziwei/internal/history"
	"github.com/papapumpkin/ziwei/internal/logging"
	"github.com/papapumpkin/ziwei/internal/report"
	"github.com/papapumpkin/ziwei/internal/request"
	"github.com/papapumpkin/ziwei/internal/telemetry"
	"github.com/papapumpkin/ziwei/internal/ui"
)

// addRunFlags registers the flags shared by every command that runs a report.
func addRunFlags(c *cobra.Command) {
	c.Flags().Bool("include-index-mapping", false, "add the fixed-position view to every palace")
	c.Flags().StringArray("future-date", nil, "additional date to correlate (repeatable, replaces the input's list)")
	c.Flags().String("base-date", "", "date of the current snapshot (default: the input's, or today)")
	c.Flags().String("timezone", "", "IANA timezone for date resolution (default: the input's, or config)")
	c.Flags().String("tag-language", "", "tag vocabulary: en or zh")
	c.Flags().String("failure-policy", "", "future-date failures: abort or isolate")
	c.Flags().String("telemetry", "", "append JSONL run events to this file")
}

// loadConfig reads config and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagOverrides(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// applyFlagOverrides applies CLI flag values to the loaded config. Flags a
// command does not define are skipped.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}
	if v, _ := cmd.Flags().GetBool("include-index-mapping"); v {
		cfg.IncludeIndexMapping = true
	}
	if v, _ := cmd.Flags().GetString("tag-language"); v != "" {
		cfg.TagLanguage = v
	}
	if v, _ := cmd.Flags().GetString("failure-policy"); v != "" {
		cfg.FailurePolicy = v
	}
	if v, _ := cmd.Flags().GetString("telemetry"); v != "" {
		cfg.TelemetryPath = v
	}
	if v, _ := cmd.Flags().GetBool("save"); v {
		cfg.History.Enabled = true
	}
}

// applyQueryOverrides replaces query fields of the input with flag values.
func applyQueryOverrides(cmd *cobra.Command, in *request.Input) {
	if v, _ := cmd.Flags().GetString("base-date"); v != "" {
		in.Query.BaseDate = v
	}
	if v, _ := cmd.Flags().GetString("timezone"); v != "" {
		in.Query.Timezone = v
	}
	if cmd.Flags().Changed("future-date") {
		in.Query.FutureDates, _ = cmd.Flags().GetStringArray("future-date")
	}
}

// newEngine builds the configured chart engine.
func newEngine(cfg config.Config, logger *zap.Logger) (engine.Engine, error) {
	switch cfg.Engine.Kind {
	case config.EngineFixture:
		return &engine.Fixture{Dir: cfg.Engine.FixtureDir}, nil
	case config.EngineNode:
		return engine.NewNode(cfg.Engine.NodePath, cfg.Engine.Script, logger), nil
	}
	return nil, fmt.Errorf("unknown engine kind %q", cfg.Engine.Kind)
}

// session wires the collaborators of one command invocation.
type session struct {
	cfg       config.Config
	logger    *zap.Logger
	printer   *ui.Printer
	runner    *report.Runner
	telemetry *telemetry.Emitter
	history   *history.Store
}

func newSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return nil, err
	}
	vocab, err := correlate.VocabularyFor(cfg.TagLanguage)
	if err != nil {
		return nil, err
	}
	eng, err := newEngine(cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, logger: logger, printer: ui.New()}
	if cfg.TelemetryPath != "" {
		if s.telemetry, err = telemetry.NewEmitter(cfg.TelemetryPath); err != nil {
			s.Close()
			return nil, err
		}
	}
	if cfg.History.Enabled {
		if s.history, err = history.Open(ctx, cfg.History.Path); err != nil {
			s.Close()
			return nil, err
		}
	}

	s.runner = &report.Runner{
		Engine:      eng,
		Vocabulary:  vocab,
		Policy:      cfg.FailurePolicy,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
		Telemetry:   s.telemetry,
		Progress:    s.printer,
	}
	return s, nil
}

// Close releases the session's files. It is safe on a partly built session.
func (s *session) Close() {
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			s.logger.Warn("closing history", zap.Error(err))
		}
	}
	if err := s.telemetry.Close(); err != nil {
		s.logger.Warn("closing telemetry", zap.Error(err))
	}
	_ = s.logger.Sync()
}

// normalize loads the input file and applies config and flag overrides.
func (s *session) normalize(cmd *cobra.Command, path string) (*request.Normalized, error) {
	in, err := request.Load(path)
	if err != nil {
		return nil, err
	}
	applyQueryOverrides(cmd, in)
	if s.cfg.IncludeIndexMapping {
		in.Query.Debug.IncludeIndexMapping = true
	}
	return request.Normalize(*in, request.Defaults{Timezone: s.cfg.Timezone})
}

// generate runs one report for the input at path, saving it to history
// when enabled. The encoded document is returned with it.
func (s *session) generate(ctx context.Context, cmd *cobra.Command, path string, pretty bool) (*report.Document, []byte, error) {
	n, err := s.normalize(cmd, path)
	if err != nil {
		return nil, nil, err
	}

	doc, err := s.runner.Run(ctx, n)
	if err != nil {
		return nil, nil, err
	}
	data, err := report.Marshal(doc, pretty)
	if err != nil {
		return nil, nil, err
	}

	if s.history != nil {
		if err := s.save(ctx, doc, data); err != nil {
			return nil, nil, err
		}
	}
	return doc, data, nil
}

func (s *session) save(ctx context.Context, doc *report.Document, data []byte) error {
	generated, err := parseGeneratedAt(doc.GeneratedAt)
	if err != nil {
		return err
	}
	rec := history.Record{
		Entry: history.Entry{
			ID:                  doc.RunID,
			GeneratedAt:         generated,
			BirthDate:           doc.NormalizedInput.BirthDate,
			BaseDate:            doc.NormalizedInput.BaseDateSolar,
			IncludeIndexMapping: doc.OutputPolicy.IncludeIndexMapping,
			FutureCount:         len(doc.Future) + len(doc.FutureFailures),
			FailureCount:        len(doc.FutureFailures),
		},
		Document: data,
	}
	if err := s.history.Save(ctx, rec); err != nil {
		return err
	}
	s.emit(telemetry.Event{Kind: telemetry.KindReportSaved, RunID: doc.RunID})
	s.printer.Saved(doc.RunID, s.cfg.History.Path)
	return nil
}

func (s *session) emit(evt telemetry.Event) {
	if err := s.telemetry.Emit(evt); err != nil {
		s.logger.Warn("telemetry emit failed", zap.Error(err))
	}
}

// writeOutput writes data to the file named by out, or to the command's
// stdout when out is empty.
func writeOutput(cmd *cobra.Command, out string, data []byte) error {
	if out == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}

// setupSignalContext returns a context that is canceled on SIGINT or SIGTERM.
func setupSignalContext(printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			printer.Info("shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func parseGeneratedAt(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing generatedAt %q: %w", s, err)
	}
	return t, nil
}
