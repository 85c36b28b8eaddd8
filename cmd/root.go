// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/naka-gawa/project-size-stats/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "project-size-stats",
	Short: "A CLI tool to compare open-source project metrics by project size.",
	Long: `project-size-stats merges a CSV of per-project metrics (CI durations, commit
rates, broken-build days, ...) with a CSV of project size categories, summarizes
the metric and renders one boxplot per size category to a PNG file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Job file (YAML); defaults to ./sizestats.yaml when present")
}

// newLogger discards all logs unless --verbose is set, in which case it logs
// to standard error at debug level.
func newLogger(cmd *cobra.Command) *logrus.Logger {
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	if verbose {
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// fail prints the error kind and message to standard error and exits non-zero.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", domain.KindName(err), err)
	os.Exit(1)
}

// printJSON writes v to w as pretty-printed JSON.
func printJSON(w io.Writer, v any) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}
