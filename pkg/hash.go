package funique

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/adler32"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// Instrumentation counters for hashing work
var (
	fullHashCount    int64 // Full-file checksums computed
	leadingHashCount int64 // Leading checksums computed
)

// GetHashStats returns how many full and leading checksums have been computed
func GetHashStats() (full, leading int64) {
	return atomic.LoadInt64(&fullHashCount), atomic.LoadInt64(&leadingHashCount)
}

// ResetHashStats resets the instrumentation counters
func ResetHashStats() {
	atomic.StoreInt64(&fullHashCount, 0)
	atomic.StoreInt64(&leadingHashCount, 0)
}

// HashAlgorithm represents a hash algorithm configuration
type HashAlgorithm struct {
	Name    string
	TypeID  uint16
	Size    int
	NewFunc func() hash.Hash
}

var hashAlgorithms = []HashAlgorithm{
	{Name: "md5", TypeID: HashTypeMD5, Size: HashSizeMD5, NewFunc: md5.New},
	{Name: "sha1", TypeID: HashTypeSHA1, Size: HashSizeSHA1, NewFunc: sha1.New},
	{Name: "sha256", TypeID: HashTypeSHA256, Size: HashSizeSHA256, NewFunc: sha256.New},
	{Name: "sha512", TypeID: HashTypeSHA512, Size: HashSizeSHA512, NewFunc: sha512.New},
	{Name: "sha3-512", TypeID: HashTypeSHA3512, Size: HashSizeSHA3512, NewFunc: sha3.New512},
	{Name: "blake3", TypeID: HashTypeBLAKE3, Size: HashSizeBLAKE3, NewFunc: func() hash.Hash { return blake3.New() }},
}

// SupportedHashAlgorithms returns the names of all supported algorithms
func SupportedHashAlgorithms() []string {
	names := make([]string, 0, len(hashAlgorithms))
	for _, alg := range hashAlgorithms {
		names = append(names, alg.Name)
	}
	return names
}

// GetHashAlgorithm returns the hash algorithm configuration for the given name.
// Names are case-insensitive and the dashed spellings used by the coreutils
// tools ("sha-256") are accepted.
func GetHashAlgorithm(name string) (*HashAlgorithm, error) {
	normalised := strings.ToLower(strings.TrimSpace(name))
	switch normalised {
	case "sha-1", "sha-256", "sha-512":
		normalised = strings.Replace(normalised, "-", "", 1)
	case "sha3", "sha3_512":
		normalised = "sha3-512"
	}

	for i := range hashAlgorithms {
		if hashAlgorithms[i].Name == normalised {
			alg := hashAlgorithms[i]
			return &alg, nil
		}
	}
	return nil, fmt.Errorf("%w: %s (supported: %s)", ErrInvalidAlgorithm, name, strings.Join(SupportedHashAlgorithms(), ", "))
}

// GetHashAlgorithmByType returns the hash algorithm configuration for the given type ID
func GetHashAlgorithmByType(typeID uint16) (*HashAlgorithm, error) {
	for i := range hashAlgorithms {
		if hashAlgorithms[i].TypeID == typeID {
			alg := hashAlgorithms[i]
			return &alg, nil
		}
	}
	return nil, fmt.Errorf("%w: type ID %d", ErrInvalidAlgorithm, typeID)
}

// HashFile calculates the hash of a file using the specified algorithm
func HashFile(filePath string, algorithm *HashAlgorithm) ([]byte, error) {
	return HashFileInterruptible(filePath, algorithm, DefaultHashBuffer, nil)
}

// HashFileToHexString calculates the hash of a file and returns it as a hex string
func HashFileToHexString(filePath string, algorithm *HashAlgorithm) (string, error) {
	hashBytes, err := HashFile(filePath, algorithm)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(hashBytes), nil
}

// HashBytesToHexString hashes data in memory and returns it as a hex string
func HashBytesToHexString(data []byte, algorithm *HashAlgorithm) string {
	hasher := algorithm.NewFunc()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashFileInterruptible calculates the hash of a file using a configurable buffer size
// and checks for shutdown signals between buffer reads for graceful interruption.
// A nil shutdownChan never fires.
func HashFileInterruptible(filePath string, algorithm *HashAlgorithm, bufferSize int, shutdownChan <-chan struct{}) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	if bufferSize <= 0 {
		bufferSize = DefaultHashBuffer
	}

	hasher := algorithm.NewFunc()
	buffer := make([]byte, bufferSize)

	for {
		select {
		case <-shutdownChan:
			return nil, fmt.Errorf("hashing %s: %w", filePath, ErrInterrupted)
		default:
		}

		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read from file %s: %w", filePath, err)
		}
	}

	atomic.AddInt64(&fullHashCount, 1)
	return hasher.Sum(nil), nil
}

// HashFilePrefix returns the adler32 checksum of the first prefixSize bytes
// of a file as a hex string. Shorter files are hashed in full.
func HashFilePrefix(filePath string, prefixSize int) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	hasher := adler32.New()
	if _, err := io.CopyN(hasher, file, int64(prefixSize)); err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read from file %s: %w", filePath, err)
	}

	atomic.AddInt64(&leadingHashCount, 1)
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
