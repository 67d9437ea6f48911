package funique

import (
	"encoding/hex"
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// loadStats loads device, inode and size with a single stat call. Values are
// never reloaded once present.
func (e *Entry) loadStats() error {
	if e.statLoaded {
		return nil
	}
	if e.Kind != KindPhysicalFile {
		return fmt.Errorf("stat on checksum record %s", e.name)
	}

	var st unix.Stat_t
	if err := unix.Stat(e.Path(), &st); err != nil {
		return &FileReadError{Path: e.Path(), Op: "stat", Err: err}
	}

	e.identity = FileIdentity{Device: uint64(st.Dev), Inode: uint64(st.Ino)}
	e.size = st.Size
	e.statLoaded = true
	return nil
}

// setStats fills the stat cache from data the scanner already has
func (e *Entry) setStats(st *syscall.Stat_t) {
	if e.statLoaded || st == nil {
		return
	}
	e.identity = FileIdentity{Device: uint64(st.Dev), Inode: uint64(st.Ino)}
	e.size = st.Size
	e.statLoaded = true
}

// Identity returns the device and inode of a physical file
func (e *Entry) Identity() (FileIdentity, error) {
	if err := e.loadStats(); err != nil {
		return FileIdentity{}, err
	}
	return e.identity, nil
}

// Size returns the file size in bytes
func (e *Entry) Size() (int64, error) {
	if err := e.loadStats(); err != nil {
		return 0, err
	}
	return e.size, nil
}

// IsHardlinkOf reports whether both physical files share device and inode
func (e *Entry) IsHardlinkOf(other *Entry) (bool, error) {
	if e.Kind != KindPhysicalFile || other.Kind != KindPhysicalFile {
		return false, nil
	}
	a, err := e.Identity()
	if err != nil {
		return false, err
	}
	b, err := other.Identity()
	if err != nil {
		return false, err
	}
	return a == b, nil
}

// LeadingSum returns the adler32 checksum of the first prefixSize bytes,
// computing and caching it on first use
func (e *Entry) LeadingSum(prefixSize int) (string, error) {
	if e.Kind != KindPhysicalFile {
		return "", fmt.Errorf("leading checksum on checksum record %s", e.name)
	}
	if e.leadingSum != "" && e.leadingSize == prefixSize {
		return e.leadingSum, nil
	}

	sum, err := HashFilePrefix(e.Path(), prefixSize)
	if err != nil {
		return "", &FileReadError{Path: e.Path(), Op: "leading checksum", Err: err}
	}
	if IsDebugEnabled(DebugHash) {
		VerboseLog(2, "leading checksum %s: %s", e.Path(), sum)
	}

	e.leadingSum = sum
	e.leadingSize = prefixSize
	return sum, nil
}

// Sum returns the full checksum under the given algorithm
func (e *Entry) Sum(algorithm *HashAlgorithm) (string, error) {
	return e.SumInterruptible(algorithm, DefaultHashBuffer, nil)
}

// SumInterruptible returns the full checksum under the given algorithm. A
// cached sum is reused only if it was computed under the same algorithm;
// otherwise it is recomputed and the cache overwritten. Records always return
// their precomputed digest.
func (e *Entry) SumInterruptible(algorithm *HashAlgorithm, bufferSize int, shutdownChan <-chan struct{}) (string, error) {
	if e.Kind == KindChecksumRecord {
		return e.checksum, nil
	}
	if e.sum != "" && e.sumAlgorithm == algorithm.Name {
		return e.sum, nil
	}

	hashBytes, err := HashFileInterruptible(e.Path(), algorithm, bufferSize, shutdownChan)
	if err != nil {
		return "", &FileReadError{Path: e.Path(), Op: "checksum", Err: err}
	}

	e.sum = hex.EncodeToString(hashBytes)
	e.sumAlgorithm = algorithm.Name
	if IsDebugEnabled(DebugHash) {
		VerboseLog(2, "%s %s: %s", algorithm.Name, e.Path(), e.sum)
	}
	return e.sum, nil
}
