package funique

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// ScanOptions controls directory enumeration
type ScanOptions struct {
	IncludeHidden bool   // include names starting with "."
	SymlinkMode   string // none, contained or all
}

// ScanStats counts what a scan saw
type ScanStats struct {
	Directories int
	Files       int
	Skipped     int
	Unreadable  int
}

// Scanner enumerates regular files below a root directory
type Scanner struct {
	options ScanOptions
	ignore  *IgnoreManager
	pacer   *Pacer
	stats   ScanStats
}

// NewScanner creates a scanner. ignore and pacer may be nil.
func NewScanner(options ScanOptions, ignore *IgnoreManager, pacer *Pacer) *Scanner {
	if options.SymlinkMode == "" {
		options.SymlinkMode = SymlinkModeNone
	}
	if ignore == nil {
		ignore = NewIgnoreManager("")
	}
	if pacer == nil {
		pacer = NoPacer()
	}
	return &Scanner{options: options, ignore: ignore, pacer: pacer}
}

// Stats returns the counters accumulated over all scans
func (s *Scanner) Stats() ScanStats {
	return s.stats
}

// Scan walks root and returns one physical file entry per regular file, with
// stat data preloaded. Within a directory, files come before subdirectories
// and names are in lexical order. A directory that cannot be read is logged
// and contributes nothing; only an unusable root or a shutdown is an error.
func (s *Scanner) Scan(root string, shutdownChan <-chan struct{}) ([]*Entry, error) {
	defer VerboseEnter()()

	root = cleanRoot(root)
	rootInfo, err := os.Stat(root)
	if err != nil {
		return nil, &DirectoryReadError{Path: root, Err: err}
	}
	if !rootInfo.IsDir() {
		return nil, &DirectoryReadError{Path: root, Err: fmt.Errorf("not a directory")}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	visited := make(map[FileIdentity]bool)
	if id, ok := identityOf(rootInfo); ok {
		visited[id] = true
	}

	var entries []*Entry
	stack := []string{"."}

	for len(stack) > 0 {
		select {
		case <-shutdownChan:
			return nil, fmt.Errorf("scanning %s: %w", root, ErrInterrupted)
		default:
		}

		rel := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		dirPath := joinRel(root, rel)

		if IsDebugEnabled(DebugScan) {
			logger.Debug("loading dir", "path", dirPath)
		}

		dirEntries, err := os.ReadDir(dirPath)
		if err != nil {
			s.stats.Unreadable++
			logger.Warn("skipping unreadable directory", "error", &DirectoryReadError{Path: dirPath, Err: err})
			continue
		}
		s.stats.Directories++
		s.pacer.Tick()

		var subdirs []string
		for _, de := range dirEntries {
			name := de.Name()
			childRel := name
			if rel != "." {
				childRel = filepath.Join(rel, name)
			}
			childPath := filepath.Join(root, childRel)

			if !s.options.IncludeHidden && strings.HasPrefix(name, ".") {
				s.stats.Skipped++
				continue
			}
			if s.ignore.ShouldIgnore(childRel) {
				s.stats.Skipped++
				continue
			}

			info, err := os.Lstat(childPath)
			if err != nil {
				s.stats.Skipped++
				continue
			}

			if info.Mode()&os.ModeSymlink != 0 {
				target, ok := s.followSymlink(childPath, absRoot)
				if !ok {
					s.stats.Skipped++
					continue
				}
				info = target
			}

			switch {
			case info.IsDir():
				id, ok := identityOf(info)
				if ok && visited[id] {
					s.stats.Skipped++
					continue
				}
				if ok {
					visited[id] = true
				}
				subdirs = append(subdirs, childRel)
			case info.Mode().IsRegular():
				entry := NewPhysicalFile(root, childRel)
				if st, ok := info.Sys().(*syscall.Stat_t); ok {
					entry.setStats(st)
				}
				entries = append(entries, entry)
				s.stats.Files++
				if IsDebugEnabled(DebugScan) {
					logger.Debug("found file", "path", childPath, "size", info.Size())
				}
			default:
				s.stats.Skipped++
			}
		}

		// push in reverse so subdirectories are visited in lexical order
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	return entries, nil
}

// followSymlink applies the symlink mode and returns the target's info if
// the link should be followed
func (s *Scanner) followSymlink(linkPath, absRoot string) (os.FileInfo, bool) {
	switch s.options.SymlinkMode {
	case SymlinkModeAll:
	case SymlinkModeContained:
		target, err := filepath.EvalSymlinks(linkPath)
		if err != nil {
			return nil, false
		}
		if !isPathContained(target, absRoot) {
			return nil, false
		}
	default:
		return nil, false
	}

	info, err := os.Stat(linkPath)
	if err != nil {
		return nil, false // broken link
	}
	return info, true
}

// identityOf extracts device and inode from file info
func identityOf(info os.FileInfo) (FileIdentity, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return FileIdentity{}, false
	}
	return FileIdentity{Device: uint64(st.Dev), Inode: uint64(st.Ino)}, true
}
