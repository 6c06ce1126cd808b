// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for wheelhouse.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"wheelhouse/internal/config"
	"wheelhouse/internal/issue"
	"wheelhouse/pkg/source"
	"wheelhouse/pkg/wheelhouse"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// cfg is the loaded configuration, populated by initRootConfig.
	cfg *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "wheelhouse",
		Short: "Package Python projects with their wheel dependencies",
		Long: TitleStyle.Render("wheelhouse") + SubtitleStyle.Render(" - Package Python projects with their wheel dependencies") + `

wheelhouse creates portable archives that bundle a Python package
together with every wheel it depends on, so the package can be
installed later on machines without index access.

An archive records the platform and Python versions it was built for
and refuses to install where it cannot work.

` + SubtitleStyle.Render("Examples:") + `
  wheelhouse create flask==2.0.0        Package flask and its dependencies
  wheelhouse create ~/src/myproject     Package a local project (needs setup.py)
  wheelhouse install myproject.whs      Install an archive offline
  wheelhouse validate myproject.whs     Check an archive is installable
  wheelhouse show myproject.whs         Print an archive's descriptor
  wheelhouse repair myproject.whs       Make Linux wheels portable via auditwheel`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/wheelhouse/config.cue)")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(repairCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads the config file before any command runs.
func initRootConfig() {
	provider := config.DefaultProvider()
	if cfgFile != "" {
		provider = config.FileProvider(cfgFile)
	}

	var err error
	cfg, err = config.LoadWithProvider(provider)
	if err != nil {
		// Surface config problems but keep going on defaults.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		cfg = &config.Config{
			DefaultFormat: config.DefaultFormat,
			PythonPath:    config.DefaultPythonPath,
			PipPath:       config.DefaultPipPath,
			IndexURL:      config.DefaultIndexURL,
		}
	}

	if !verbose {
		verbose = cfg.Verbose
	}
}

// newLogger builds the logger every lifecycle operation writes through.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// newLifecycleContext assembles the tool context from the loaded
// configuration.
func newLifecycleContext() wheelhouse.Context {
	return wheelhouse.Context{
		Logger:  newLogger(),
		Python:  cfg.PythonPath,
		Pip:     cfg.PipPath,
		Index:   source.NewIndexClient(cfg.IndexURL),
		Version: Version,
	}
}

// lifecycleError converts a lifecycle failure into an ExitError and,
// when the failure class has a documented remediation, prints the
// rendered guidance to stderr first.
func lifecycleError(err error) error {
	var lerr *wheelhouse.Error
	if errors.As(err, &lerr) {
		if doc := issue.Get(issueIDForKind(lerr.Kind)); doc != nil {
			if rendered, renderErr := doc.Render("dark"); renderErr == nil {
				fmt.Fprintln(os.Stderr, rendered)
			}
		}
	}
	return &ExitError{Code: 1, Err: err}
}

// issueIDForKind maps the unambiguous failure kinds to their
// documentation entries. KindLocator covers several distinct causes
// and gets no single doc.
func issueIDForKind(kind wheelhouse.ErrorKind) issue.Id {
	switch kind {
	case wheelhouse.KindCollision:
		return issue.DestinationExistsId
	case wheelhouse.KindCompatibility:
		return issue.PlatformUnsupportedId
	case wheelhouse.KindTool:
		return issue.ToolInvocationFailedId
	default:
		return 0
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
