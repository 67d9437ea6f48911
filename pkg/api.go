package funique

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"
)

// Comparison holds the inputs and settings of one left/right comparison
type Comparison struct {
	settings  *Settings
	algorithm *HashAlgorithm
	inputs    [2]sideInputs
	excludes  []string
	sleepFunc func(time.Duration)
}

// Result is the outcome of a comparison
type Result struct {
	Left   *SideSet
	Right  *SideSet
	Unique []UniqueEntry
	Stats  MatchStats
	Scan   [2]ScanStats // indexed by Side
}

// NewComparison creates a comparison. A nil settings uses the defaults. An
// unknown checksum algorithm is rejected here, before any file is read.
func NewComparison(settings *Settings) (*Comparison, error) {
	if settings == nil {
		settings = DefaultSettings()
	}
	algorithm, err := GetHashAlgorithm(settings.Algorithm)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Comparison{settings: settings, algorithm: algorithm}, nil
}

// Settings returns the settings the comparison runs with
func (c *Comparison) Settings() *Settings {
	return c.settings
}

// WithSleepFunc replaces the pacing sleep, for tests
func (c *Comparison) WithSleepFunc(sleep func(time.Duration)) *Comparison {
	c.sleepFunc = sleep
	return c
}

func (c *Comparison) newPacer() *Pacer {
	pacer := NewPacer(c.settings.PaceEvery, c.settings.PaceInterval, c.settings.PaceSleep)
	if c.sleepFunc != nil {
		pacer.WithSleepFunc(c.sleepFunc)
	}
	return pacer
}

// AddDirectory adds a directory to one side. The path must exist and be a
// directory.
func (c *Comparison) AddDirectory(side Side, path string) error {
	if err := validSide(side); err != nil {
		return err
	}
	root := cleanRoot(path)
	info, err := os.Stat(root)
	if err != nil {
		return &DirectoryReadError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return &DirectoryReadError{Path: path, Err: errors.New("not a directory")}
	}
	c.inputs[side].directories = append(c.inputs[side].directories, root)
	return nil
}

// AddChecksumFile adds a checksum manifest to one side
func (c *Comparison) AddChecksumFile(side Side, path string) error {
	if err := validSide(side); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("checksum file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("checksum file %s is a directory", path)
	}
	c.inputs[side].checksumFiles = append(c.inputs[side].checksumFiles, path)
	return nil
}

// AddExclude adds a regular expression matched against paths relative to
// each scanned directory; matching files and directories are skipped
func (c *Comparison) AddExclude(pattern string) error {
	if _, err := regexp.Compile(pattern); err != nil {
		return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
	}
	c.excludes = append(c.excludes, pattern)
	return nil
}

func validSide(side Side) error {
	if side != Left && side != Right {
		return fmt.Errorf("invalid side %d", side)
	}
	return nil
}

// Run loads both sides, matches them and returns the unique entries. A
// closed shutdownChan stops scanning and hashing with ErrInterrupted.
func (c *Comparison) Run(shutdownChan <-chan struct{}) (*Result, error) {
	defer VerboseEnter()()
	for _, side := range []Side{Left, Right} {
		if c.inputs[side].empty() {
			return nil, fmt.Errorf("%s side has no directories or checksum files", side)
		}
	}

	left, right, scanStats, err := c.loadSides(shutdownChan)
	if err != nil {
		return nil, err
	}

	unique, stats, err := c.compareSides(left, right, shutdownChan)
	if err != nil {
		return nil, err
	}

	full, leading := GetHashStats()
	VerboseLog(1, "compared %d pairs in %d buckets, %d unique (%d full checksums, %d leading checksums)",
		stats.Comparisons, stats.BucketsExamined, len(unique), full, leading)

	return &Result{
		Left:   left,
		Right:  right,
		Unique: unique,
		Stats:  stats,
		Scan:   scanStats,
	}, nil
}

// InitDebugFlags initialises debug flags - for CLI compatibility
func InitDebugFlags(flagsStr string) {
	if flagsStr != "" {
		SetDebugFlags(flagsStr)
	}
}
