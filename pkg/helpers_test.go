package funique

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestFile creates dir/rel with content, making parent directories
func writeTestFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
	return path
}

// sizedContent returns size bytes built by repeating seed
func sizedContent(seed string, size int) string {
	return strings.Repeat(seed, size/len(seed)+1)[:size]
}

// quietSettings are the defaults without pacing sleeps
func quietSettings() *Settings {
	settings := DefaultSettings()
	settings.PaceSleep = 0
	return settings
}

// testSideSet scans root (if not empty) into an indexed side set, adding records
func testSideSet(t *testing.T, side Side, root string, records ...*Entry) *SideSet {
	t.Helper()
	set := NewSideSet(side)
	if root != "" {
		entries, err := NewScanner(ScanOptions{}, nil, nil).Scan(root, nil)
		if err != nil {
			t.Fatalf("Failed to scan %s: %v", root, err)
		}
		set.Add(entries...)
	}
	set.Add(records...)
	if err := set.BuildIndex(DefaultGroupingDivisor); err != nil {
		t.Fatalf("Failed to build index: %v", err)
	}
	return set
}

// testMatcher creates a sha512 matcher that never sleeps
func testMatcher(t *testing.T, policy string) *Matcher {
	t.Helper()
	algorithm, err := GetHashAlgorithm(DefaultAlgorithm)
	if err != nil {
		t.Fatalf("Failed to get algorithm: %v", err)
	}
	return NewMatcher(NewComparator(algorithm), nil, policy)
}

// uniqueRelPaths returns "side:relative path" for each unique entry
func uniqueRelPaths(left, right *SideSet) []string {
	var paths []string
	for _, u := range CollectUnique(left, right, true) {
		paths = append(paths, u.Side+":"+u.Path)
	}
	return paths
}

// sha512Hex hashes content with sha512
func sha512Hex(t *testing.T, content string) string {
	t.Helper()
	algorithm, err := GetHashAlgorithm("sha512")
	if err != nil {
		t.Fatalf("Failed to get sha512: %v", err)
	}
	return HashBytesToHexString([]byte(content), algorithm)
}
