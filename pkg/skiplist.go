package funique

import (
	"fmt"
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// sizeBucket holds the entries of one side whose size falls in
// [Key*divisor, (Key+1)*divisor), in discovery order
type sizeBucket struct {
	Key     int64
	Entries []*Entry
}

// bucketKeyString encodes a bucket number so that byte order equals numeric
// order. Bucket numbers are never negative.
func bucketKeyString(key int64) string {
	return fmt.Sprintf("%016x", uint64(key))
}

// bucketList keeps size buckets ordered by bucket number. The skiplist
// context carries the side name.
type bucketList struct {
	skiplist *zcsl.ZeroCopySkiplist[sizeBucket, string, string]
	side     string
}

// newBucketList creates an empty ordered bucket list for one side
func newBucketList(maxLevels int, side string) *bucketList {
	if maxLevels < 8 {
		maxLevels = 16
	}

	getKeyFromItem := func(b *sizeBucket) string {
		return bucketKeyString(b.Key)
	}

	getItemSize := func(b *sizeBucket) int {
		return len(b.Entries)
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	return &bucketList{
		skiplist: zcsl.MakeZeroCopySkiplist[sizeBucket, string, string](
			maxLevels,
			getKeyFromItem,
			getItemSize,
			cmpKey,
		),
		side: side,
	}
}

// Append adds an entry to the bucket with the given key, creating the bucket
// if needed
func (bl *bucketList) Append(key int64, entry *Entry) {
	if bucket := bl.Find(key); bucket != nil {
		bucket.Entries = append(bucket.Entries, entry)
		return
	}
	bl.skiplist.Insert(&sizeBucket{Key: key, Entries: []*Entry{entry}}, bl.side)
}

// Find returns the bucket with the given key, or nil
func (bl *bucketList) Find(key int64) *sizeBucket {
	itemPtr, _ := bl.skiplist.Find(bucketKeyString(key))
	if itemPtr == nil {
		return nil
	}
	return itemPtr.Item()
}

// ForEach iterates buckets in ascending key order until callback returns false
func (bl *bucketList) ForEach(callback func(*sizeBucket) bool) {
	for current := bl.skiplist.First(); current != nil; current = current.Next() {
		if !callback(current.Item()) {
			break
		}
	}
}

// Length returns the number of buckets
func (bl *bucketList) Length() int {
	return bl.skiplist.Length()
}
