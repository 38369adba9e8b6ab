// Package cli implements recipectl, the operator command line for the
// extraction pipeline and the recipe store.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/recipebox/recipebox/internal/infrastructure/config"
	"github.com/recipebox/recipebox/internal/infrastructure/container"
	"github.com/recipebox/recipebox/pkg/logger"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "recipectl",
		Short:        "Extract, parse and manage recipes from the command line",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("RECIPEBOX_CONFIG"), "config file (optional)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall command deadline")

	cmd.AddCommand(
		extractCmd(opts),
		parseCmd(opts),
		fixOwnersCmd(opts),
		tokenCmd(opts),
		modelsCmd(opts),
		attemptsCmd(opts),
	)
	return cmd
}

// withApp starts the core container, populates targets and runs fn. The
// container is stopped afterwards so pending telemetry is flushed.
func withApp(ctx context.Context, opts *rootOptions, fn func(ctx context.Context) error, targets ...interface{}) error {
	app := fx.New(
		fx.NopLogger,
		fx.Supply(container.ConfigPath(opts.configPath)),
		container.CoreModule,
		fx.Decorate(stderrLogger),
		fx.Populate(targets...),
	)
	if err := app.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}

	runErr := fn(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// stderrLogger keeps stdout for command output
func stderrLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      "console",
		Development: cfg.App.Debug,
		OutputPaths: []string{"stderr"},
	})
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
