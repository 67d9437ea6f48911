package funique

import "strings"

// Side identifies one of the two collections being compared
type Side int

const (
	Left Side = iota
	Right
)

// String returns "left" or "right"
func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Opposite returns the other side
func (s Side) Opposite() Side {
	if s == Left {
		return Right
	}
	return Left
}

// Marker returns the single character side marker used in plain output
func (s Side) Marker() string {
	if s == Left {
		return "<"
	}
	return ">"
}

// SideFromName parses "left"/"right" (case-insensitive, "l"/"r" accepted)
func SideFromName(name string) (Side, bool) {
	switch strings.ToLower(name) {
	case "left", "l":
		return Left, true
	case "right", "r":
		return Right, true
	default:
		return 0, false
	}
}

// Matching defaults
const (
	DefaultGroupingDivisor  int64 = 256        // bytes per size bucket
	DefaultLeadingThreshold int64 = 128 * 1024 // files larger than this get a leading checksum
	DefaultLeadingSize            = 2 * 1024   // bytes covered by the leading checksum
	DefaultAlgorithm              = "sha512"
	DefaultHashBuffer             = 2 * 1024 * 1024
)

// Pacing defaults, taken from the original tool: 1ms after every 10 files
const (
	DefaultPaceEvery = 10
	DefaultPaceSleep = "1ms"
)

// Hash type constants
const (
	HashTypeMD5     uint16 = 1
	HashTypeSHA1    uint16 = 2
	HashTypeSHA256  uint16 = 3
	HashTypeSHA512  uint16 = 4
	HashTypeSHA3512 uint16 = 5
	HashTypeBLAKE3  uint16 = 6
)

// Hash size constants
const (
	HashSizeMD5     = 16
	HashSizeSHA1    = 20
	HashSizeSHA256  = 32
	HashSizeSHA512  = 64
	HashSizeSHA3512 = 64
	HashSizeBLAKE3  = 32
)

// Symlink handling modes for directory enumeration
const (
	SymlinkModeNone      = "none"
	SymlinkModeContained = "contained"
	SymlinkModeAll       = "all"
)

// Read error policies
const (
	ReadErrorAbort = "abort"
	ReadErrorSkip  = "skip"
)

// Output formats
const (
	FormatPlain = "plain"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Debug categories
const (
	DebugScan   = "scan"
	DebugMatch  = "match"
	DebugHash   = "hash"
	DebugConfig = "config"
)

// ChecksumDisplayPrefix prefixes the display path of manifest records
const ChecksumDisplayPrefix = "CHECKSUM: "
