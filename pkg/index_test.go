package funique

import (
	"reflect"
	"testing"
)

func TestBucketKey(t *testing.T) {
	testCases := []struct {
		size     int64
		divisor  int64
		expected int64
	}{
		{1, 256, 0},
		{255, 256, 0},
		{256, 256, 1},
		{1000, 256, 3},
		{1000, 1, 1000},
	}
	for _, tc := range testCases {
		if got := BucketKey(tc.size, tc.divisor); got != tc.expected {
			t.Errorf("BucketKey(%d, %d): expected %d, got %d", tc.size, tc.divisor, tc.expected, got)
		}
	}
}

func TestBuildIndex(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", sizedContent("a", 10))
	writeTestFile(t, dir, "b.txt", sizedContent("b", 300))
	writeTestFile(t, dir, "c.txt", sizedContent("c", 20))
	writeTestFile(t, dir, "d.txt", sizedContent("d", 1000))
	writeTestFile(t, dir, "empty.txt", "")

	entries, err := NewScanner(ScanOptions{}, nil, nil).Scan(dir, nil)
	if err != nil {
		t.Fatalf("Scan error = %v", err)
	}
	entries = append(entries, NewChecksumRecord("00", "ignored"))

	idx, err := BuildIndex(entries, 256, Left)
	if err != nil {
		t.Fatalf("BuildIndex error = %v", err)
	}

	if idx.Count() != 4 {
		t.Errorf("Expected 4 indexed files, got %d", idx.Count())
	}
	if idx.Dropped() != 1 {
		t.Errorf("Expected 1 dropped empty file, got %d", idx.Dropped())
	}
	if !reflect.DeepEqual(idx.Keys(), []int64{0, 1, 3}) {
		t.Errorf("Expected keys [0 1 3], got %v", idx.Keys())
	}

	var names []string
	for _, e := range idx.Bucket(0) {
		names = append(names, e.RelativePath())
	}
	if !reflect.DeepEqual(names, []string{"a.txt", "c.txt"}) {
		t.Errorf("Expected bucket 0 in discovery order [a.txt c.txt], got %v", names)
	}
	if idx.Bucket(2) != nil {
		t.Error("Expected nil for absent bucket")
	}

	total := 0
	idx.ForEach(func(key int64, entries []*Entry) bool {
		for _, e := range entries {
			size, _ := e.Size()
			if BucketKey(size, 256) != key {
				t.Errorf("Entry %s of size %d in wrong bucket %d", e.RelativePath(), size, key)
			}
		}
		total += len(entries)
		return true
	})
	if total != idx.Count() {
		t.Errorf("Expected ForEach to visit %d entries, got %d", idx.Count(), total)
	}
}

func TestBuildIndexManyBucketsAscending(t *testing.T) {
	dir := t.TempDir()
	// sizes chosen so insertion order differs from bucket order
	for i, size := range []int{5000, 17, 700, 4100, 256, 90000} {
		writeTestFile(t, dir, string(rune('a'+i))+".bin", sizedContent("z", size))
	}

	entries, err := NewScanner(ScanOptions{}, nil, nil).Scan(dir, nil)
	if err != nil {
		t.Fatalf("Scan error = %v", err)
	}
	idx, err := BuildIndex(entries, 256, Right)
	if err != nil {
		t.Fatalf("BuildIndex error = %v", err)
	}

	keys := idx.Keys()
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("Expected ascending keys, got %v", keys)
		}
	}
	if idx.Len() != len(keys) {
		t.Errorf("Expected Len %d, got %d", len(keys), idx.Len())
	}
}

func TestBuildIndexInvalidDivisor(t *testing.T) {
	if _, err := BuildIndex(nil, 0, Left); err == nil {
		t.Error("Expected error for zero divisor")
	}
}

func TestBuildIndexStatError(t *testing.T) {
	entries := []*Entry{NewPhysicalFile(t.TempDir(), "gone.txt")}
	_, err := BuildIndex(entries, 256, Left)
	if !IsFileReadError(err) {
		t.Errorf("Expected FileReadError, got %v", err)
	}
}

func TestMergedBucketKeys(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "l/a", sizedContent("a", 10))
	writeTestFile(t, dir, "l/b", sizedContent("b", 600))
	writeTestFile(t, dir, "r/c", sizedContent("c", 300))
	writeTestFile(t, dir, "r/d", sizedContent("d", 700))

	left := testSideSet(t, Left, dir+"/l")
	right := testSideSet(t, Right, dir+"/r")

	merged := mergedBucketKeys(left.Index, right.Index)
	if !reflect.DeepEqual(merged, []int64{0, 1, 2}) {
		t.Errorf("Expected merged keys [0 1 2], got %v", merged)
	}
}
