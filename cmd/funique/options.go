package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// cliOptions holds the parsed command line
type cliOptions struct {
	Left           []string
	Right          []string
	LeftChecksums  []string
	RightChecksums []string

	Output     string
	Excludes   []string
	ConfigPath string
	Overrides  []string
	Verbose    int
	Debug      string

	ListAlgorithms bool
	Version        bool
	Help           bool

	// flags that map onto config keys, applied after --set
	flagOverrides []string
}

// newFlagSet defines the funique flags, writing into opts
func newFlagSet(opts *cliOptions) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("funique", pflag.ContinueOnError)
	// errors are reported by the caller
	flagSet.SetOutput(io.Discard)
	flagSet.Usage = func() {}
	flagSet.SortFlags = false

	flagSet.StringArrayVarP(&opts.Left, "left", "l", nil, "left directory (repeatable)")
	flagSet.StringArrayVarP(&opts.Right, "right", "r", nil, "right directory (repeatable)")
	flagSet.StringArrayVar(&opts.LeftChecksums, "left-checksums", nil, "left checksum manifest (repeatable)")
	flagSet.StringArrayVar(&opts.RightChecksums, "right-checksums", nil, "right checksum manifest (repeatable)")
	flagSet.StringVarP(&opts.Output, "output", "o", "", "write the report to this file instead of stdout")
	flagSet.StringArrayVarP(&opts.Excludes, "exclude", "x", nil, "skip relative paths matching this regex (repeatable)")

	flagSet.StringP("algorithm", "a", "", "full checksum algorithm (default sha512)")
	flagSet.StringP("format", "f", "", "report format: plain, json, yaml")
	flagSet.Bool("side-marker", false, "prefix plain output with < or >")
	flagSet.Bool("relative", false, "print paths relative to their directory")
	flagSet.Bool("hidden", false, "include hidden files and directories")
	flagSet.String("symlinks", "", "symlink mode: none, contained, all")
	flagSet.String("divisor", "", "size bucket width in bytes")
	flagSet.String("read-errors", "", "on unreadable files: abort or skip")

	flagSet.StringVar(&opts.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/funique/config)")
	flagSet.StringArrayVar(&opts.Overrides, "set", nil, "override a config key, as key:value (repeatable)")
	flagSet.CountVarP(&opts.Verbose, "verbose", "v", "increase verbosity (repeatable)")
	flagSet.StringVar(&opts.Debug, "debug", "", "debug categories: scan,match,hash,config or all")

	flagSet.BoolVar(&opts.ListAlgorithms, "list-algorithms", false, "list supported checksum algorithms")
	flagSet.BoolVar(&opts.Version, "version", false, "print version")
	flagSet.BoolVarP(&opts.Help, "help", "h", false, "show help")
	return flagSet
}

// configFlags maps flags onto override keys
var configFlags = []struct {
	flag string
	key  string
}{
	{"algorithm", "algorithm"},
	{"format", "format"},
	{"side-marker", "side_marker"},
	{"relative", "relative"},
	{"hidden", "hidden"},
	{"symlinks", "symlinks"},
	{"divisor", "divisor"},
	{"read-errors", "read_errors"},
}

// parseArguments parses args. Input validation is skipped when only help,
// version or the algorithm list was asked for.
func parseArguments(args []string) (*cliOptions, *pflag.FlagSet, error) {
	opts := &cliOptions{}
	flagSet := newFlagSet(opts)

	if err := flagSet.Parse(args); err != nil {
		return nil, flagSet, err
	}

	if extra := flagSet.Args(); len(extra) > 0 {
		return nil, flagSet, fmt.Errorf("unexpected argument: %s", extra[0])
	}

	for _, cf := range configFlags {
		if flagSet.Changed(cf.flag) {
			opts.flagOverrides = append(opts.flagOverrides, cf.key+":"+flagSet.Lookup(cf.flag).Value.String())
		}
	}

	if opts.Help || opts.Version || opts.ListAlgorithms {
		return opts, flagSet, nil
	}

	if len(opts.Left) == 0 && len(opts.LeftChecksums) == 0 {
		return nil, flagSet, fmt.Errorf("no left input: give at least one --left directory or --left-checksums file")
	}
	if len(opts.Right) == 0 && len(opts.RightChecksums) == 0 {
		return nil, flagSet, fmt.Errorf("no right input: give at least one --right directory or --right-checksums file")
	}
	for _, o := range opts.Overrides {
		if !strings.Contains(o, ":") {
			return nil, flagSet, fmt.Errorf("invalid --set value %q, expected key:value", o)
		}
	}
	return opts, flagSet, nil
}

// overrides returns --set values followed by the config-mapped flags, so
// explicit flags win
func (o *cliOptions) overrides() []string {
	all := make([]string, 0, len(o.Overrides)+len(o.flagOverrides))
	all = append(all, o.Overrides...)
	return append(all, o.flagOverrides...)
}
