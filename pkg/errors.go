package funique

import (
	"errors"
	"fmt"
)

// ErrInvalidAlgorithm is returned when a checksum algorithm name is not supported
var ErrInvalidAlgorithm = errors.New("unsupported checksum algorithm")

// ErrInterrupted is returned when hashing stops because of a shutdown signal
var ErrInterrupted = errors.New("interrupted by shutdown")

// DirectoryReadError describes a directory that could not be enumerated.
// The scanner logs it and treats the subtree as empty.
type DirectoryReadError struct {
	Path string
	Err  error
}

func (e *DirectoryReadError) Error() string {
	return fmt.Sprintf("could not read directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryReadError) Unwrap() error { return e.Err }

// FileReadError describes a file that could not be stat'd or read while
// comparing. It aborts the run unless the skip policy is configured.
type FileReadError struct {
	Path string
	Op   string // "stat", "leading checksum" or "checksum"
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// IsFileReadError reports whether err is or wraps a FileReadError
func IsFileReadError(err error) bool {
	var fre *FileReadError
	return errors.As(err, &fre)
}
