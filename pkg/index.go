package funique

import "fmt"

// SizeIndex groups the physical files of one side into size buckets keyed by
// floor(size/divisor). Zero-size files are not indexed.
type SizeIndex struct {
	divisor int64
	buckets *bucketList
	count   int
	dropped int
}

// BuildIndex buckets the physical files in entries, preserving discovery
// order within each bucket. Checksum records are ignored since they carry no
// size. An error is returned only if a file's size cannot be loaded.
func BuildIndex(entries []*Entry, divisor int64, side Side) (*SizeIndex, error) {
	defer VerboseEnter()()
	if divisor <= 0 {
		return nil, fmt.Errorf("size bucket divisor must be positive, got %d", divisor)
	}

	idx := &SizeIndex{
		divisor: divisor,
		buckets: newBucketList(16, side.String()),
	}

	for _, entry := range entries {
		if entry.Kind != KindPhysicalFile {
			continue
		}

		size, err := entry.Size()
		if err != nil {
			return nil, err
		}
		if size == 0 {
			idx.dropped++
			continue
		}

		idx.buckets.Append(BucketKey(size, divisor), entry)
		idx.count++
	}

	return idx, nil
}

// BucketKey returns floor(size/divisor)
func BucketKey(size, divisor int64) int64 {
	return size / divisor
}

// Divisor returns the divisor the index was built with
func (idx *SizeIndex) Divisor() int64 {
	return idx.divisor
}

// Len returns the number of buckets
func (idx *SizeIndex) Len() int {
	return idx.buckets.Length()
}

// Count returns the number of indexed entries
func (idx *SizeIndex) Count() int {
	return idx.count
}

// Dropped returns the number of zero-size files left out of the index
func (idx *SizeIndex) Dropped() int {
	return idx.dropped
}

// Bucket returns the entries in the given bucket, or nil
func (idx *SizeIndex) Bucket(key int64) []*Entry {
	if bucket := idx.buckets.Find(key); bucket != nil {
		return bucket.Entries
	}
	return nil
}

// Keys returns all bucket keys in ascending order
func (idx *SizeIndex) Keys() []int64 {
	keys := make([]int64, 0, idx.buckets.Length())
	idx.buckets.ForEach(func(b *sizeBucket) bool {
		keys = append(keys, b.Key)
		return true
	})
	return keys
}

// ForEach visits buckets in ascending key order until callback returns false
func (idx *SizeIndex) ForEach(callback func(key int64, entries []*Entry) bool) {
	idx.buckets.ForEach(func(b *sizeBucket) bool {
		return callback(b.Key, b.Entries)
	})
}

// mergedBucketKeys returns the sorted union of bucket keys of both indexes
func mergedBucketKeys(left, right *SizeIndex) []int64 {
	a, b := left.Keys(), right.Keys()
	merged := make([]int64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			merged = append(merged, a[i])
			i++
		case a[i] > b[j]:
			merged = append(merged, b[j])
			j++
		default:
			merged = append(merged, a[i])
			i++
			j++
		}
	}
	merged = append(merged, a[i:]...)
	return append(merged, b[j:]...)
}
