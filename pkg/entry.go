package funique

import (
	"path/filepath"
	"strings"
)

// EntryKind tags which variant an Entry is
type EntryKind int

const (
	KindPhysicalFile   EntryKind = iota // backed by a real file on disk
	KindChecksumRecord                  // backed by a line in a checksum manifest
)

// String returns a short name for the kind
func (k EntryKind) String() string {
	switch k {
	case KindPhysicalFile:
		return "file"
	case KindChecksumRecord:
		return "checksum"
	default:
		return "unknown"
	}
}

// FileIdentity is the device and inode pair of a physical file
type FileIdentity struct {
	Device uint64
	Inode  uint64
}

// Entry is something identifiable by content: either a physical file or a
// record from a checksum manifest. Entries are created once per run and are
// only mutated through checksum caching and the uniqueness flag.
type Entry struct {
	Kind EntryKind
	Side Side

	// Physical file fields
	root       string
	rel        string
	statLoaded bool
	identity   FileIdentity
	size       int64

	leadingSum  string
	leadingSize int // prefix size leadingSum was computed over

	sum          string
	sumAlgorithm string // algorithm sum was computed under

	// Checksum record fields
	name            string
	checksum        string
	recordAlgorithm string // algorithm named by a BSD-style tag line, if any

	unique bool
}

// NewPhysicalFile creates an entry for the file rel under root. Stat data is
// loaded lazily on first access.
func NewPhysicalFile(root, rel string) *Entry {
	return &Entry{
		Kind:   KindPhysicalFile,
		root:   root,
		rel:    rel,
		unique: true,
	}
}

// NewChecksumRecord creates an entry for a precomputed checksum of name
func NewChecksumRecord(checksum, name string) *Entry {
	return &Entry{
		Kind:     KindChecksumRecord,
		name:     name,
		checksum: strings.ToLower(strings.TrimSpace(checksum)),
		unique:   true,
	}
}

// IsPhysical returns true for entries backed by a real file
func (e *Entry) IsPhysical() bool {
	return e.Kind == KindPhysicalFile
}

// Path returns the path used to open the file, or the manifest filename for records
func (e *Entry) Path() string {
	if e.Kind == KindChecksumRecord {
		return e.name
	}
	if e.rel == "" || e.rel == "." {
		return e.root
	}
	return filepath.Join(e.root, e.rel)
}

// RelativePath returns the path relative to the scan root. Records return
// their manifest filename.
func (e *Entry) RelativePath() string {
	if e.Kind == KindChecksumRecord {
		return e.name
	}
	return e.rel
}

// DisplayPath returns the path shown in diagnostics and reports
func (e *Entry) DisplayPath() string {
	if e.Kind == KindChecksumRecord {
		return ChecksumDisplayPrefix + e.name
	}
	return e.Path()
}

// String returns the display path
func (e *Entry) String() string {
	return e.DisplayPath()
}

// Checksum returns the precomputed digest of a record, or the cached full
// checksum of a physical file (empty if not yet computed)
func (e *Entry) Checksum() string {
	if e.Kind == KindChecksumRecord {
		return e.checksum
	}
	return e.sum
}

// RecordAlgorithm returns the algorithm named in a tagged manifest line, if any
func (e *Entry) RecordAlgorithm() string {
	return e.recordAlgorithm
}

// IsUnique returns whether the entry is still unmatched. Starts true.
func (e *Entry) IsUnique() bool {
	return e.unique
}

// MarkDuplicate clears the uniqueness flag. The flag never goes back to true.
func (e *Entry) MarkDuplicate() {
	e.unique = false
}

// anyUnique returns true if at least one entry is still unique
func anyUnique(entries []*Entry) bool {
	for _, e := range entries {
		if e.unique {
			return true
		}
	}
	return false
}
