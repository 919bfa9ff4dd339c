// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/portfolio/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "A personal portfolio site backed by the GitHub API.",
	Long: `portfolio serves a personal portfolio: HTML pages and a small JSON API
built from a GitHub user's repositories, their languages and public gists.
It can also print the aggregated projects or mirror them into a database.`,
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
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format, 'text' or 'json'")
}

// newLogger builds the process logger from the persistent flags. Logs go to stderr
// so that command output on stdout stays machine readable.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	format, _ := cmd.Flags().GetString("log-format")

	level := "info"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(os.Stderr, format, level)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}
