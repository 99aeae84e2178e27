package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/ziwei/internal/config"
	"github.com/papapumpkin/ziwei/internal/engine"
	"github.com/papapumpkin/ziwei/internal/history"
	"github.com/papapumpkin/ziwei/internal/logging"
	"github.com/papapumpkin/ziwei/internal/request"
	"github.com/papapumpkin/ziwei/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate [input]",
	Short: "Check the engine, config and optionally an input file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if !runChecks(cmd.Context(), cfg, args, ui.New()) {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// runChecks reports every check through printer and returns whether all
// of them passed.
func runChecks(ctx context.Context, cfg config.Config, args []string, printer *ui.Printer) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	ok := true
	check := func(name string, err error) {
		printer.ValidateResult(name, err)
		if err != nil {
			ok = false
		}
	}

	check("engine ("+cfg.Engine.Kind+")", checkEngine(cfg))

	_, err := time.LoadLocation(cfg.Timezone)
	check("timezone "+cfg.Timezone, err)

	if cfg.History.Enabled {
		check("history "+cfg.History.Path, checkHistory(ctx, cfg.History.Path))
	}

	if len(args) == 1 {
		check("input "+args[0], checkInput(args[0], cfg.Timezone))
	}
	return ok
}

func checkEngine(cfg config.Config) error {
	switch cfg.Engine.Kind {
	case config.EngineNode:
		logger, err := logging.New(cfg.Verbose)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		return engine.NewNode(cfg.Engine.NodePath, cfg.Engine.Script, logger).Validate()
	case config.EngineFixture:
		info, err := os.Stat(cfg.Engine.FixtureDir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", cfg.Engine.FixtureDir)
		}
		return nil
	}
	return fmt.Errorf("unknown engine kind %q", cfg.Engine.Kind)
}

func checkHistory(ctx context.Context, path string) error {
	store, err := history.Open(ctx, path)
	if err != nil {
		return err
	}
	return store.Close()
}

func checkInput(path, timezone string) error {
	in, err := request.Load(path)
	if err != nil {
		return err
	}
	_, err = request.Normalize(*in, request.Defaults{Timezone: timezone})
	return err
}
