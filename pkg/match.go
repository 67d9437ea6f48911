package funique

import "errors"

// MatchPhase is the state of a matching run
type MatchPhase int

const (
	PhaseInit     MatchPhase = iota
	PhaseHardlink            // identity pass over one bucket
	PhaseChecksum            // comparator rounds over one bucket
	PhaseDrained             // all buckets processed
)

func (p MatchPhase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseHardlink:
		return "hardlink"
	case PhaseChecksum:
		return "checksum"
	case PhaseDrained:
		return "drained"
	default:
		return "unknown"
	}
}

// SideSet is everything loaded for one side of a comparison
type SideSet struct {
	Side    Side
	Files   []*Entry // physical files in discovery order
	Records []*Entry // checksum manifest records in manifest order
	Index   *SizeIndex
}

// NewSideSet creates an empty side
func NewSideSet(side Side) *SideSet {
	return &SideSet{Side: side}
}

// Add appends entries, routing them by kind and stamping the side
func (s *SideSet) Add(entries ...*Entry) {
	for _, e := range entries {
		e.Side = s.Side
		if e.IsPhysical() {
			s.Files = append(s.Files, e)
		} else {
			s.Records = append(s.Records, e)
		}
	}
}

// BuildIndex buckets the side's physical files
func (s *SideSet) BuildIndex(divisor int64) error {
	idx, err := BuildIndex(s.Files, divisor, s.Side)
	if err != nil {
		return err
	}
	s.Index = idx
	return nil
}

// MatchStats counts the work done by a matching run
type MatchStats struct {
	BucketsExamined int `json:"buckets_examined" yaml:"buckets_examined"`
	BucketsOneSided int `json:"buckets_one_sided" yaml:"buckets_one_sided"`
	EarlyExits      int `json:"early_exits" yaml:"early_exits"`
	HardlinkMatches int `json:"hardlink_matches" yaml:"hardlink_matches"`
	Comparisons     int `json:"comparisons" yaml:"comparisons"`
	ChecksumMatches int `json:"checksum_matches" yaml:"checksum_matches"`
	SkippedErrors   int `json:"skipped_errors" yaml:"skipped_errors"`
}

// Matcher drives bucket-by-bucket comparison of two sides and clears the
// uniqueness flag of every entry that has a content-equal counterpart.
// It is single-threaded; the flags are the only shared state.
type Matcher struct {
	comparator      *Comparator
	pacer           *Pacer
	readErrorPolicy string

	phase MatchPhase
	stats MatchStats
}

// NewMatcher creates a matcher. A nil pacer disables pacing.
func NewMatcher(comparator *Comparator, pacer *Pacer, readErrorPolicy string) *Matcher {
	if pacer == nil {
		pacer = NoPacer()
	}
	if readErrorPolicy == "" {
		readErrorPolicy = ReadErrorAbort
	}
	return &Matcher{
		comparator:      comparator,
		pacer:           pacer,
		readErrorPolicy: readErrorPolicy,
	}
}

// Phase returns the current phase of the run
func (m *Matcher) Phase() MatchPhase {
	return m.phase
}

// Stats returns the counters of the last run
func (m *Matcher) Stats() MatchStats {
	return m.stats
}

// Run compares left against right. Both sides must have been indexed with
// the same divisor. For every size bucket a hardlink pass runs first, then
// (unless nothing unique is left) three checksum rounds: physical against
// physical, left physical against right records, and left records against
// right physical. Records of both sides are finally compared against each
// other by digest.
func (m *Matcher) Run(left, right *SideSet) error {
	defer VerboseEnter()()
	if left.Index == nil || right.Index == nil {
		return errors.New("matcher: both sides must be indexed before running")
	}

	m.phase = PhaseInit
	m.stats = MatchStats{}
	divisor := left.Index.Divisor()

	for _, key := range mergedBucketKeys(left.Index, right.Index) {
		leftFiles := left.Index.Bucket(key)
		rightFiles := right.Index.Bucket(key)
		m.stats.BucketsExamined++

		traceMatch("reviewing bucket",
			"bucket", key,
			"min_size", key*divisor,
			"max_size", (key+1)*divisor-1,
			"left", len(leftFiles),
			"right", len(rightFiles))

		twoSided := len(leftFiles) > 0 && len(rightFiles) > 0
		if twoSided {
			m.phase = PhaseHardlink
			if err := m.hardlinkPass(leftFiles, rightFiles); err != nil {
				return err
			}
		} else {
			m.stats.BucketsOneSided++
			if len(left.Records) == 0 && len(right.Records) == 0 {
				continue
			}
		}

		if !anyUnique(leftFiles) && !anyUnique(rightFiles) &&
			!anyUnique(left.Records) && !anyUnique(right.Records) {
			m.stats.EarlyExits++
			traceMatch("nothing unique left in bucket", "bucket", key)
			continue
		}

		m.phase = PhaseChecksum
		if twoSided {
			if err := m.checksumRound(leftFiles, rightFiles); err != nil {
				return err
			}
		}
		if err := m.checksumRound(leftFiles, right.Records); err != nil {
			return err
		}
		if err := m.checksumRound(left.Records, rightFiles); err != nil {
			return err
		}
	}

	if len(left.Records) > 0 && len(right.Records) > 0 {
		traceMatch("comparing checksum records", "left", len(left.Records), "right", len(right.Records))
		m.phase = PhaseChecksum
		if err := m.checksumRound(left.Records, right.Records); err != nil {
			return err
		}
	}

	m.phase = PhaseDrained
	return nil
}

// hardlinkPass marks physical pairs sharing device and inode as duplicates
func (m *Matcher) hardlinkPass(lefts, rights []*Entry) error {
	for _, l := range lefts {
		for _, r := range rights {
			if !l.unique && !r.unique {
				continue
			}

			same, err := l.IsHardlinkOf(r)
			if err != nil {
				if m.skippable(err, l, r) {
					continue
				}
				return err
			}
			if same {
				traceMatch("device and inode match", "left", l.DisplayPath(), "right", r.DisplayPath())
				l.MarkDuplicate()
				r.MarkDuplicate()
				m.stats.HardlinkMatches++
			}
		}
	}
	return nil
}

// checksumRound runs the comparator over every pair where at least one
// side is still unique. A match clears both flags but does not stop the
// left entry from being compared with the remaining right entries.
func (m *Matcher) checksumRound(lefts, rights []*Entry) error {
	if len(lefts) == 0 || len(rights) == 0 {
		return nil
	}
	if !anyUnique(lefts) && !anyUnique(rights) {
		return nil
	}

	for _, l := range lefts {
		for _, r := range rights {
			if !l.unique && !r.unique {
				continue
			}

			m.stats.Comparisons++
			match, stage, err := m.comparator.compare(l, r)
			if err != nil {
				if m.skippable(err, l, r) {
					continue
				}
				return err
			}

			traceMatch("compared",
				"left", l.DisplayPath(),
				"right", r.DisplayPath(),
				"stage", string(stage),
				"match", match)

			if match {
				l.MarkDuplicate()
				r.MarkDuplicate()
				m.stats.ChecksumMatches++
			}
		}
		m.pacer.Tick()
	}
	return nil
}

// skippable applies the read error policy. Interruptions are never skipped.
func (m *Matcher) skippable(err error, l, r *Entry) bool {
	if m.readErrorPolicy != ReadErrorSkip || errors.Is(err, ErrInterrupted) || !IsFileReadError(err) {
		return false
	}
	logger.Warn("skipping comparison after read error",
		"left", l.DisplayPath(),
		"right", r.DisplayPath(),
		"error", err)
	m.stats.SkippedErrors++
	return true
}
