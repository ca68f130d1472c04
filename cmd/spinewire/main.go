package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/AnotherFullstackDev/spinewire/cmd/spinewire/devops"
	"github.com/AnotherFullstackDev/spinewire/cmd/spinewire/gcp"
	"github.com/AnotherFullstackDev/spinewire/cmd/spinewire/health"
	"github.com/AnotherFullstackDev/spinewire/internal/config"
	"github.com/AnotherFullstackDev/spinewire/internal/factories"
	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/AnotherFullstackDev/spinewire/internal/logger"
	"github.com/AnotherFullstackDev/spinewire/internal/output"
	"github.com/AnotherFullstackDev/spinewire/internal/placeholders"
	"github.com/AnotherFullstackDev/spinewire/internal/placeholders/git"
	"github.com/AnotherFullstackDev/spinewire/internal/prompt"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := output.NewPrinter(os.Stdout, os.Stderr)
	locator := &factories.SharedServicesLocator{
		Printer:  printer,
		Prompter: prompt.New(os.Stdin, os.Stderr),
	}

	if err := newRootCmd(locator).ExecuteContext(ctx); err != nil {
		switch {
		case errors.Is(err, lib.CancelledError):
			printer.Warningf("%v", err)
		default:
			printer.Errorf("%v", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(locator *factories.SharedServicesLocator) *cobra.Command {
	var projectDir, logLevel, logFormat string
	var closeLogger func() error

	rootCmd := &cobra.Command{
		Use:           "spinewire",
		Short:         "Spinewire prepares Laravel apps for Google Cloud Run and talks to the services they use.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(projectDir)
			if err != nil {
				return fmt.Errorf("resolving project directory: %w", err)
			}

			cfg, err := config.LoadProjectConfig(dir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if logLevel == "" {
				logLevel = cfg.Logging.Level
			}
			if logFormat == "" {
				logFormat = cfg.Logging.Format
			}
			closeLogger = initializeLogger(cmd.Context(), cfg, logLevel, logFormat)

			repoInfo, err := git.NewRepositoryInfoService(dir)
			if err != nil {
				slog.Debug("git placeholders unavailable", "dir", dir, "error", err)
			}

			*locator = *factories.NewSharedServicesLocator(cfg, dir, locator.Printer, locator.Prompter, placeholders.NewService(dir, repoInfo))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closeLogger != nil {
				return closeLogger()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&projectDir, "dir", ".", "Laravel project root")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warning, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text, json or cloud")

	rootCmd.AddCommand(
		devops.NewDevopsCmd(locator),
		gcp.NewGcpCmd(locator),
		health.NewHealthCmd(locator),
	)

	return rootCmd
}

func initializeLogger(ctx context.Context, cfg *config.Config, level, format string) func() error {
	if format != logger.FormatCloud {
		logger.Initialize(level, format)
		return nil
	}

	logName := cfg.Logging.LogName
	if logName == "" {
		logName, _ = os.LookupEnv(lib.AppNameEnv)
	}

	h := logger.NewCloudHandler(ctx, logger.CloudConfig{
		ProjectID: cfg.CloudRun.ProjectID,
		LogName:   logName,
		Level:     logger.ParseLevel(level),
	})
	slog.SetDefault(slog.New(h))

	return h.Close
}
