// Package cmd provides CLI commands for scrubber.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func setupLogger() {
	logLevel := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "INFO"
	}

	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	logger := slog.New(handler)

	slog.SetDefault(logger)
}

// loadDotEnv reads a .env file from the working directory, if there is one.
// Variables already set in the environment win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "scrubber",
	Short: "Scrub GIS-unsafe header names and file names from tabular data",
	Long: `Scrubber rewrites delimited text files and spreadsheet workbooks so that
their header fields, sheet titles and file names are valid GIS identifiers:
letters, digits and underscores, starting with a letter, at most 16 characters.

Only the header row and names change; every data row is copied as-is.

Examples:
  scrubber run -d dirty -c clean
  scrubber run -d dirty -c clean -p shapefile --report run.yaml
  scrubber ident "2020 Total (ft)" "pH-level"
  scrubber sniff dirty/sites.txt
  scrubber profiles list`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadDotEnv()
		setupLogger()
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(identCmd)
	rootCmd.AddCommand(sniffCmd)
	rootCmd.AddCommand(profilesCmd)
}
