package dupindex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/google/vectorio"
)

// Output formats accepted by WriteReport
const (
	FormatHuman  = "human"
	FormatJSON   = "json"
	FormatFdupes = "fdupes"
)

// Upper bound on iovecs per writev call (IOV_MAX on Linux)
const maxReportIovecs = 1024

// Report is the result of a duplicate scan
type Report struct {
	RunID       string           `json:"run_id,omitempty"`
	Mode        string           `json:"mode"`
	Algorithm   string           `json:"algorithm,omitempty"`
	Directories []string         `json:"directories"`
	Groups      []DuplicateGroup `json:"groups"`
	Summary     DuplicateSummary `json:"summary"`
}

// NewReport builds a report from a duplicate listing
func NewReport(mode IndexMode, algorithm string, dirs []string, groups []DuplicateGroup) *Report {
	if groups == nil {
		groups = []DuplicateGroup{}
	}
	return &Report{
		Mode:        mode.String(),
		Algorithm:   algorithm,
		Directories: dirs,
		Groups:      groups,
		Summary:     Summarise(groups),
	}
}

// WriteReport renders report to w in the given format
func WriteReport(w io.Writer, report *Report, format string) error {
	switch strings.ToLower(format) {
	case FormatHuman, "":
		return writeLines(w, humanLines(report))
	case FormatFdupes:
		return writeLines(w, fdupesLines(report))
	case FormatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return writeLines(w, [][]byte{append(data, '\n')})
	default:
		return fmt.Errorf("unsupported output format: %s (supported: human, json, fdupes)", format)
	}
}

func humanLines(report *Report) [][]byte {
	lines := [][]byte{[]byte("Result:\n")}
	for _, g := range report.Groups {
		lines = append(lines, fmt.Appendf(nil, "** (%d): %s\n", g.Count, g.Key))
		for _, f := range g.Files {
			lines = append(lines, fmt.Appendf(nil, "    - %s (%s, %s)\n", f.Path(), humanize.Bytes(uint64(f.Size)), f.Digest))
		}
	}

	s := report.Summary
	if report.Mode == ByDigest.String() {
		lines = append(lines, fmt.Appendf(nil, "%s duplicate groups, %s files, %s reclaimable\n",
			humanize.Comma(int64(s.Groups)), humanize.Comma(int64(s.Files)), humanize.Bytes(uint64(s.Reclaimable))))
	} else {
		lines = append(lines, fmt.Appendf(nil, "%s duplicate groups, %s files\n",
			humanize.Comma(int64(s.Groups)), humanize.Comma(int64(s.Files))))
	}
	return lines
}

// fdupesLines lists one path per line with a blank line after each group
func fdupesLines(report *Report) [][]byte {
	var lines [][]byte
	for _, g := range report.Groups {
		for _, p := range g.Paths() {
			lines = append(lines, []byte(p+"\n"))
		}
		lines = append(lines, []byte("\n"))
	}
	return lines
}

// writeLines writes with writev when w is a file, otherwise line by line
func writeLines(w io.Writer, lines [][]byte) error {
	if f, ok := w.(*os.File); ok {
		return writevLines(f, lines)
	}
	for _, line := range lines {
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

func writevLines(f *os.File, lines [][]byte) error {
	for start := 0; start < len(lines); start += maxReportIovecs {
		chunk := lines[start:min(start+maxReportIovecs, len(lines))]

		iovecs := make([]syscall.Iovec, 0, len(chunk))
		expected := 0
		for _, line := range chunk {
			if len(line) == 0 {
				continue
			}
			iov := syscall.Iovec{Base: &line[0]}
			iov.SetLen(len(line))
			iovecs = append(iovecs, iov)
			expected += len(line)
		}
		if len(iovecs) == 0 {
			continue
		}

		nw, err := vectorio.WritevRaw(f.Fd(), iovecs)
		if err != nil {
			return fmt.Errorf("failed to write report with vectorio: %w", err)
		}
		if nw < expected {
			// short write (signal or pipe pressure): finish the chunk with write(2)
			if _, err := f.Write(bytes.Join(chunk, nil)[nw:]); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
		}
	}
	return nil
}
