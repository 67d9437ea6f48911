package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	funique "github.com/mattkeenan/funique/pkg"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes funique and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	opts, flagSet, err := parseArguments(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stdout, flagSet)
			return exitOK
		}
		fmt.Fprintf(stderr, "funique: %v\n", err)
		showUsage(stderr)
		return exitError
	}

	switch {
	case opts.Help:
		printHelp(stdout, flagSet)
		return exitOK
	case opts.Version:
		fmt.Fprintf(stdout, "funique %s\n", version)
		return exitOK
	case opts.ListAlgorithms:
		fmt.Fprintln(stdout, strings.Join(funique.SupportedHashAlgorithms(), "\n"))
		return exitOK
	}

	if err := compare(opts, stdout, stderr, setupSignalHandler()); err != nil {
		fmt.Fprintf(stderr, "funique: %v\n", err)
		if errors.Is(err, funique.ErrInterrupted) {
			return exitInterrupted
		}
		return exitError
	}
	return exitOK
}

// compare resolves settings, runs the comparison and writes the report
func compare(opts *cliOptions, stdout, stderr io.Writer, shutdown <-chan struct{}) error {
	settings, err := resolveSettings(opts)
	if err != nil {
		return err
	}

	level := settings.VerboseLevel
	if opts.Verbose > level {
		level = opts.Verbose
	}
	debug := settings.DebugFlags
	if opts.Debug != "" {
		debug = opts.Debug
	}
	funique.SetVerboseLevel(level)
	funique.InitDebugFlags(debug)

	// debug categories log at debug level
	loggerLevel := level
	if debug != "" && loggerLevel < 2 {
		loggerLevel = 2
	}
	funique.SetLogger(funique.NewLogger(stderr, loggerLevel))

	cmp, err := funique.NewComparison(settings)
	if err != nil {
		return err
	}
	for _, pattern := range opts.Excludes {
		if err := cmp.AddExclude(pattern); err != nil {
			return err
		}
	}
	for _, dir := range opts.Left {
		if err := cmp.AddDirectory(funique.Left, dir); err != nil {
			return err
		}
	}
	for _, dir := range opts.Right {
		if err := cmp.AddDirectory(funique.Right, dir); err != nil {
			return err
		}
	}
	for _, path := range opts.LeftChecksums {
		if err := cmp.AddChecksumFile(funique.Left, path); err != nil {
			return err
		}
	}
	for _, path := range opts.RightChecksums {
		if err := cmp.AddChecksumFile(funique.Right, path); err != nil {
			return err
		}
	}

	result, err := cmp.Run(shutdown)
	if err != nil {
		return err
	}

	if opts.Output == "" {
		return funique.WriteReport(stdout, result.Unique, &result.Stats, settings.Format, settings.SideMarker)
	}

	file, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeOutput(file, result.Unique, &result.Stats, settings.Format, settings.SideMarker); err != nil {
		return err
	}
	funique.Logger().Info("report written", "path", opts.Output, "entries", len(result.Unique))
	return nil
}

// writeOutput writes the report and closes out, returning the first error
func writeOutput(out io.WriteCloser, unique []funique.UniqueEntry, stats *funique.MatchStats, format string, sideMarker bool) error {
	if err := funique.WriteReport(out, unique, stats, format, sideMarker); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

// resolveSettings loads the config file and applies --set and flag overrides
func resolveSettings(opts *cliOptions) (*funique.Settings, error) {
	configPath := opts.ConfigPath
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
	} else {
		configPath = funique.DefaultConfigPath()
	}

	cfg, err := funique.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(opts.overrides()); err != nil {
		return nil, err
	}
	return cfg.Settings()
}

func showUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: funique -l DIR... -r DIR... [options]\n")
	fmt.Fprintf(w, "Try 'funique --help' for more information.\n")
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `funique - list files that exist on only one side

Compares the files below the left directories (and left checksum
manifests) with the right ones by content, and prints every file with no
content-equal counterpart on the other side.

Usage:
  funique -l DIR... -r DIR... [options]
  funique -l DIR --right-checksums SHA512SUMS [options]

Options:
`)
	fmt.Fprint(w, flagSet.FlagUsages())
	fmt.Fprintf(w, `
Examples:
  # Files in the old backup that are missing from the new one, and vice versa
  funique -l /backup/2023 -r /backup/2024

  # Check a directory against a manifest, marking which side each line is from
  funique -l ./photos --right-checksums photos.sha512 --side-marker

  # JSON report with sha256 manifests
  funique -a sha256 -f json -l a --right-checksums SHA256SUMS
`)
}
