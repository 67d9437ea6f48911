package funique

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewPhysicalFile(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "sub/a.txt", "hello")

	entry := NewPhysicalFile(dir, filepath.Join("sub", "a.txt"))
	if !entry.IsPhysical() {
		t.Error("Expected physical file entry")
	}
	if !entry.IsUnique() {
		t.Error("Expected new entry to be unique")
	}
	if got, want := entry.Path(), filepath.Join(dir, "sub", "a.txt"); got != want {
		t.Errorf("Expected path %s, got %s", want, got)
	}
	if got := entry.RelativePath(); got != filepath.Join("sub", "a.txt") {
		t.Errorf("Expected relative path sub/a.txt, got %s", got)
	}
	if entry.DisplayPath() != entry.Path() {
		t.Errorf("Expected display path to equal path, got %s", entry.DisplayPath())
	}

	size, err := entry.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if size != 5 {
		t.Errorf("Expected size 5, got %d", size)
	}
}

func TestNewChecksumRecord(t *testing.T) {
	record := NewChecksumRecord("  ABCDEF01  ", "photos/cat.jpg")
	if record.IsPhysical() {
		t.Error("Expected checksum record entry")
	}
	if record.Checksum() != "abcdef01" {
		t.Errorf("Expected normalised checksum abcdef01, got %s", record.Checksum())
	}
	if record.DisplayPath() != "CHECKSUM: photos/cat.jpg" {
		t.Errorf("Expected CHECKSUM display path, got %s", record.DisplayPath())
	}
	if record.Path() != "photos/cat.jpg" {
		t.Errorf("Expected record path photos/cat.jpg, got %s", record.Path())
	}

	algorithm, _ := GetHashAlgorithm("sha512")
	sum, err := record.Sum(algorithm)
	if err != nil {
		t.Fatalf("Sum() on record error = %v", err)
	}
	if sum != "abcdef01" {
		t.Errorf("Expected record sum to be its digest, got %s", sum)
	}

	if _, err := record.LeadingSum(DefaultLeadingSize); err == nil {
		t.Error("Expected error computing leading checksum of a record")
	}
}

func TestMarkDuplicateIsMonotonic(t *testing.T) {
	entry := NewChecksumRecord("00", "x")
	entry.MarkDuplicate()
	if entry.IsUnique() {
		t.Fatal("Expected entry to be duplicate after MarkDuplicate")
	}
	entry.MarkDuplicate()
	if entry.IsUnique() {
		t.Error("Expected entry to stay duplicate")
	}
}

func TestEntryStatErrors(t *testing.T) {
	entry := NewPhysicalFile(t.TempDir(), "missing.txt")

	_, err := entry.Size()
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	var readErr *FileReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("Expected FileReadError, got %T", err)
	}
	if readErr.Op != "stat" {
		t.Errorf("Expected op stat, got %s", readErr.Op)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("Expected error to wrap os.ErrNotExist")
	}
}

func TestSumCachePerAlgorithm(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "cache me")
	entry := NewPhysicalFile(dir, "a.txt")

	sha256, _ := GetHashAlgorithm("sha256")
	md5, _ := GetHashAlgorithm("md5")

	ResetHashStats()
	first, err := entry.Sum(sha256)
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if _, err := entry.Sum(sha256); err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if full, _ := GetHashStats(); full != 1 {
		t.Errorf("Expected 1 full hash for repeated sha256, got %d", full)
	}

	other, err := entry.Sum(md5)
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if other == first {
		t.Error("Expected md5 sum to differ from sha256 sum")
	}
	if full, _ := GetHashStats(); full != 2 {
		t.Errorf("Expected a recompute for a different algorithm, got %d full hashes", full)
	}
	if len(other) != HashSizeMD5*2 {
		t.Errorf("Expected md5 hex length %d, got %d", HashSizeMD5*2, len(other))
	}
}

func TestIsHardlinkOf(t *testing.T) {
	dir := t.TempDir()
	original := writeTestFile(t, dir, "a.txt", "linked")
	if err := os.Link(original, filepath.Join(dir, "b.txt")); err != nil {
		t.Skipf("hard links not supported: %v", err)
	}
	writeTestFile(t, dir, "c.txt", "linked")

	a := NewPhysicalFile(dir, "a.txt")
	b := NewPhysicalFile(dir, "b.txt")
	c := NewPhysicalFile(dir, "c.txt")

	if same, err := a.IsHardlinkOf(b); err != nil || !same {
		t.Errorf("Expected a and b to be hard links, got %v (err %v)", same, err)
	}
	if same, err := a.IsHardlinkOf(c); err != nil || same {
		t.Errorf("Expected a and c not to be hard links, got %v (err %v)", same, err)
	}
	if same, _ := a.IsHardlinkOf(NewChecksumRecord("00", "a.txt")); same {
		t.Error("Expected a record never to be a hard link")
	}
}
