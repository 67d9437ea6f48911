package funique

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"syscall"
	"unsafe"

	"github.com/google/vectorio"
	"gopkg.in/yaml.v3"
)

// iovMax is the Linux IOV_MAX; writev rejects longer vectors
const iovMax = 1024

// UniqueEntry is one reported file or checksum record with no counterpart
// on the other side
type UniqueEntry struct {
	Side string `json:"side" yaml:"side"`
	Kind string `json:"kind" yaml:"kind"`
	Path string `json:"path" yaml:"path"`
}

// Report is the structured form written by the json and yaml formats
type Report struct {
	Unique []UniqueEntry `json:"unique" yaml:"unique"`
	Stats  *MatchStats   `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// CollectUnique lists every entry still flagged unique: left before right,
// physical files in discovery order before records in manifest order.
// Zero-size files are left out.
func CollectUnique(left, right *SideSet, relative bool) []UniqueEntry {
	var result []UniqueEntry
	for _, side := range []*SideSet{left, right} {
		for _, group := range [][]*Entry{side.Files, side.Records} {
			for _, e := range group {
				if !e.IsUnique() || isEmptyFile(e) {
					continue
				}
				path := e.DisplayPath()
				if relative && e.IsPhysical() {
					path = e.RelativePath()
				}
				result = append(result, UniqueEntry{
					Side: side.Side.String(),
					Kind: e.Kind.String(),
					Path: path,
				})
			}
		}
	}
	return result
}

// isEmptyFile reports zero-size physical files, which are never matched
// and never reported
func isEmptyFile(e *Entry) bool {
	if !e.IsPhysical() {
		return false
	}
	size, err := e.Size()
	return err == nil && size == 0
}

// WriteReport writes entries in the given format. stats is only included
// by the structured formats and may be nil.
func WriteReport(w io.Writer, entries []UniqueEntry, stats *MatchStats, format string, sideMarker bool) error {
	switch strings.ToLower(format) {
	case FormatPlain, "":
		return writePlain(w, entries, sideMarker)
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(newReport(entries, stats))
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(newReport(entries, stats)); err != nil {
			return fmt.Errorf("failed to encode yaml report: %w", err)
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported output format: %s (supported: plain, json, yaml)", format)
	}
}

func newReport(entries []UniqueEntry, stats *MatchStats) *Report {
	if entries == nil {
		entries = []UniqueEntry{}
	}
	return &Report{Unique: entries, Stats: stats}
}

// plainLines renders one newline-terminated line per entry
func plainLines(entries []UniqueEntry, sideMarker bool) [][]byte {
	lines := make([][]byte, 0, len(entries))
	for _, entry := range entries {
		line := entry.Path + "\n"
		if sideMarker {
			if side, ok := SideFromName(entry.Side); ok {
				line = side.Marker() + " " + line
			}
		}
		lines = append(lines, []byte(line))
	}
	return lines
}

func writePlain(w io.Writer, entries []UniqueEntry, sideMarker bool) error {
	lines := plainLines(entries, sideMarker)

	if file, ok := w.(*os.File); ok {
		return writeLinesVectored(file, lines)
	}

	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.Write(line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return bw.Flush()
}

// writeLinesVectored writes lines with writev in IOV_MAX sized chunks. A
// short write falls back to a plain write of the rest of the chunk.
func writeLinesVectored(file *os.File, lines [][]byte) error {
	for offset := 0; offset < len(lines); offset += iovMax {
		end := offset + iovMax
		if end > len(lines) {
			end = len(lines)
		}
		chunk := lines[offset:end]

		iovecs := make([]syscall.Iovec, 0, len(chunk))
		expected := 0
		for _, line := range chunk {
			iov := syscall.Iovec{Base: (*byte)(unsafe.Pointer(&line[0]))}
			iov.SetLen(len(line))
			iovecs = append(iovecs, iov)
			expected += len(line)
		}

		nw, err := vectorio.WritevRaw(uintptr(file.Fd()), iovecs)
		if err != nil {
			return fmt.Errorf("failed to write report chunk with vectorio: %w", err)
		}
		if nw < expected {
			if err := writeRemainder(file, chunk, nw); err != nil {
				return err
			}
		}
		runtime.KeepAlive(chunk)
	}
	return nil
}

// writeRemainder writes whatever writev left unwritten in chunk
func writeRemainder(w io.Writer, chunk [][]byte, written int) error {
	for _, line := range chunk {
		if written >= len(line) {
			written -= len(line)
			continue
		}
		if _, err := w.Write(line[written:]); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		written = 0
	}
	return nil
}
