package funique

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var (
	hexDigest = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	bsdTag    = regexp.MustCompile(`^([A-Za-z0-9_-]+) \((.*)\) = ([0-9a-fA-F]+)$`)
)

// LoadManifest reads a checksum manifest file and returns one checksum
// record per line
func LoadManifest(path string) ([]*Entry, error) {
	defer VerboseEnter()()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checksum file: %w", err)
	}
	defer file.Close()

	records, err := ParseManifest(file, path)
	if err != nil {
		return nil, err
	}
	VerboseLog(1, "loaded %d checksum records from %s", len(records), path)
	return records, nil
}

// ParseManifest parses manifest lines in the coreutils format
// "<hex>  <path>" (a '*' before the path marks binary mode) or the BSD tag
// format "ALG (path) = <hex>". Blank lines and '#' comments are skipped.
// source names the manifest in error messages.
func ParseManifest(r io.Reader, source string) ([]*Entry, error) {
	var records []*Entry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		record, err := parseManifestLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", source, lineNum, err)
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading checksum file %s: %w", source, err)
	}

	return records, nil
}

func parseManifestLine(line string) (*Entry, error) {
	if m := bsdTag.FindStringSubmatch(line); m != nil {
		record := NewChecksumRecord(m[3], m[2])
		record.recordAlgorithm = strings.ToLower(m[1])
		return record, nil
	}

	// coreutils prefixes lines whose filename needed escaping with a backslash
	escaped := strings.HasPrefix(line, "\\")
	if escaped {
		line = line[1:]
	}

	sep := strings.IndexAny(line, " \t")
	if sep <= 0 {
		return nil, fmt.Errorf("malformed checksum line %q", line)
	}

	digest := line[:sep]
	if !hexDigest.MatchString(digest) || len(digest)%2 != 0 {
		return nil, fmt.Errorf("invalid hex checksum %q", digest)
	}

	// "<hex> <name>", "<hex>  <name>" (text mode) or "<hex> *<name>" (binary mode)
	rest := line[sep+1:]
	var name string
	switch {
	case strings.HasPrefix(rest, " "), strings.HasPrefix(rest, "*"):
		name = rest[1:]
	default:
		name = rest
	}
	if name == "" {
		return nil, fmt.Errorf("missing filename after checksum %q", digest)
	}
	if escaped {
		name = unescapeManifestName(name)
	}

	return NewChecksumRecord(digest, name), nil
}

// unescapeManifestName reverses the coreutils filename escaping of "\\" and "\n"
func unescapeManifestName(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] == '\\' && i+1 < len(name) {
			switch name[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(name[i])
	}
	return b.String()
}

// checkRecordAlgorithms warns about records whose tag names a different
// algorithm, or whose digest length does not fit the configured one. The
// records are still used.
func checkRecordAlgorithms(records []*Entry, algorithm *HashAlgorithm, source string) {
	mismatched := 0
	for _, record := range records {
		if tag := record.recordAlgorithm; tag != "" {
			if tagged, err := GetHashAlgorithm(tag); err != nil || tagged.Name != algorithm.Name {
				mismatched++
				continue
			}
		}
		if len(record.checksum) != algorithm.Size*2 {
			mismatched++
		}
	}
	if mismatched > 0 {
		logger.Warn("checksum records do not look like the configured algorithm",
			"file", source,
			"algorithm", algorithm.Name,
			"records", mismatched)
	}
}
