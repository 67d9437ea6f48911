package funique

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// sideInputs are the directories and checksum manifests given for one side
type sideInputs struct {
	directories   []string
	checksumFiles []string
}

func (in sideInputs) empty() bool {
	return len(in.directories) == 0 && len(in.checksumFiles) == 0
}

// loadSide scans the side's directories and parses its manifests. Each side
// gets its own scanner and pacer so both sides can load concurrently.
func (c *Comparison) loadSide(side Side, shutdownChan <-chan struct{}) (*SideSet, ScanStats, error) {
	defer VerboseEnter()()
	inputs := c.inputs[side]
	set := NewSideSet(side)

	ignore := NewIgnoreManager(c.settings.IgnoreFile)
	if err := ignore.LoadIgnorePatterns(); err != nil {
		return nil, ScanStats{}, err
	}
	for _, pattern := range c.excludes {
		if err := ignore.AddPattern(pattern); err != nil {
			return nil, ScanStats{}, err
		}
	}
	if ignore.HasPatterns() && IsDebugEnabled(DebugScan) {
		VerboseLog(2, "%s: skipping paths matching %d patterns", side, len(ignore.GetPatterns()))
	}

	scanner := NewScanner(c.settings.Scan, ignore, c.newPacer())
	for _, dir := range inputs.directories {
		entries, err := scanner.Scan(dir, shutdownChan)
		if err != nil {
			return nil, scanner.Stats(), err
		}
		set.Add(entries...)
		VerboseLog(1, "%s: %d files below %s", side, len(entries), dir)
	}

	for _, path := range inputs.checksumFiles {
		records, err := LoadManifest(path)
		if err != nil {
			return nil, scanner.Stats(), err
		}
		checkRecordAlgorithms(records, c.algorithm, path)
		set.Add(records...)
	}

	if err := set.BuildIndex(c.settings.Divisor); err != nil {
		return nil, scanner.Stats(), fmt.Errorf("failed to index %s side: %w", side, err)
	}
	if IsDebugEnabled(DebugMatch) {
		VerboseLog(2, "%s: %d files in %d buckets, %d empty files dropped, %d records",
			side, set.Index.Count(), set.Index.Len(), set.Index.Dropped(), len(set.Records))
		if GetVerboseLevel() >= 3 {
			set.Index.ForEach(func(key int64, entries []*Entry) bool {
				VerboseLog(3, "%s: bucket %d holds %d files", side, key, len(entries))
				return true
			})
		}
	}
	return set, scanner.Stats(), nil
}

// loadSides loads both sides concurrently. The first error cancels nothing
// already running but is the one returned.
func (c *Comparison) loadSides(shutdownChan <-chan struct{}) (*SideSet, *SideSet, [2]ScanStats, error) {
	var sets [2]*SideSet
	var stats [2]ScanStats

	var g errgroup.Group
	for _, side := range []Side{Left, Right} {
		g.Go(func() error {
			set, scanStats, err := c.loadSide(side, shutdownChan)
			stats[side] = scanStats
			if err != nil {
				return err
			}
			sets[side] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, stats, err
	}
	return sets[Left], sets[Right], stats, nil
}

// compareSides runs the matching engine over two loaded sides and collects
// what is left unique
func (c *Comparison) compareSides(left, right *SideSet, shutdownChan <-chan struct{}) ([]UniqueEntry, MatchStats, error) {
	defer VerboseEnter()()
	comparator := &Comparator{
		Algorithm:        c.algorithm,
		LeadingThreshold: c.settings.LeadingThreshold,
		LeadingSize:      c.settings.LeadingSize,
		BufferSize:       c.settings.HashBuffer,
	}
	comparator.WithShutdown(shutdownChan)

	matcher := NewMatcher(comparator, c.newPacer(), c.settings.ReadErrors)
	if err := matcher.Run(left, right); err != nil {
		return nil, matcher.Stats(), err
	}

	return CollectUnique(left, right, c.settings.Relative), matcher.Stats(), nil
}
