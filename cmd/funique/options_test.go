package main

import (
	"errors"
	"reflect"
	"testing"

	"github.com/spf13/pflag"
)

func TestParseArguments(t *testing.T) {
	args := []string{
		"-l", "/a", "--left", "/b",
		"-r", "/c",
		"--right-checksums", "SUMS",
		"-o", "out.txt",
		"-vv",
		"--debug", "match",
		"--set", "divisor:1024",
	}

	opts, _, err := parseArguments(args)
	if err != nil {
		t.Fatalf("parseArguments() error = %v", err)
	}

	if !reflect.DeepEqual(opts.Left, []string{"/a", "/b"}) {
		t.Errorf("Expected left [/a /b], got %v", opts.Left)
	}
	if !reflect.DeepEqual(opts.Right, []string{"/c"}) {
		t.Errorf("Expected right [/c], got %v", opts.Right)
	}
	if !reflect.DeepEqual(opts.RightChecksums, []string{"SUMS"}) {
		t.Errorf("Expected right checksums [SUMS], got %v", opts.RightChecksums)
	}
	if opts.Output != "out.txt" {
		t.Errorf("Expected output out.txt, got %s", opts.Output)
	}
	if opts.Verbose != 2 {
		t.Errorf("Expected verbose level 2, got %d", opts.Verbose)
	}
	if opts.Debug != "match" {
		t.Errorf("Expected debug match, got %s", opts.Debug)
	}
	if !reflect.DeepEqual(opts.overrides(), []string{"divisor:1024"}) {
		t.Errorf("Expected overrides [divisor:1024], got %v", opts.overrides())
	}
}

func TestParseArgumentsFlagOverrides(t *testing.T) {
	args := []string{
		"-l", "a", "-r", "b",
		"--set", "algorithm:md5",
		"-a", "sha256",
		"-f", "json",
		"--side-marker",
		"--hidden",
		"--symlinks", "contained",
	}

	opts, _, err := parseArguments(args)
	if err != nil {
		t.Fatalf("parseArguments() error = %v", err)
	}

	expected := []string{
		"algorithm:md5",
		"algorithm:sha256",
		"format:json",
		"side_marker:true",
		"hidden:true",
		"symlinks:contained",
	}
	if got := opts.overrides(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected overrides %v, got %v", expected, got)
	}
}

func TestParseArgumentsErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"no inputs", []string{}},
		{"no right side", []string{"-l", "a"}},
		{"no left side", []string{"--right-checksums", "SUMS"}},
		{"positional argument", []string{"-l", "a", "-r", "b", "extra"}},
		{"unknown flag", []string{"-l", "a", "-r", "b", "--colour"}},
		{"bad set", []string{"-l", "a", "-r", "b", "--set", "divisor=4"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := parseArguments(tc.args); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestParseArgumentsInfoFlags(t *testing.T) {
	for _, args := range [][]string{{"--version"}, {"--list-algorithms"}, {"-h"}} {
		opts, _, err := parseArguments(args)
		if err != nil {
			t.Errorf("parseArguments(%v) error = %v", args, err)
			continue
		}
		if !opts.Version && !opts.ListAlgorithms && !opts.Help {
			t.Errorf("parseArguments(%v): expected an info flag to be set", args)
		}
	}

	if _, _, err := parseArguments([]string{"--help"}); errors.Is(err, pflag.ErrHelp) {
		t.Error("Expected --help to be handled as a flag, not ErrHelp")
	}
}
