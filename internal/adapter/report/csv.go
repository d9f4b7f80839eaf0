// Package report writes and reads the filename,rainy CSV label report.
package report

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/couchcryptid/radar-rain-labeler/internal/domain"
)

// Header is the first row of every report.
var Header = []string{"filename", "rainy"}

// Label values as written in the rainy column. Unknown labels are empty.
const (
	True    = "True"
	False   = "False"
	Unknown = ""
)

// CSVSink writes reports to a file, replacing it atomically.
// It implements pipeline.ReportSink.
type CSVSink struct {
	path string
}

// NewCSVSink returns a sink that writes to path.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Name identifies the sink in logs and metrics.
func (s *CSVSink) Name() string { return "csv" }

// WriteReport writes the report to a temporary file next to the target and
// renames it into place, so readers never see a partial report.
func (s *CSVSink) WriteReport(ctx context.Context, r domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if err := Write(tmp, r); err != nil {
		tmp.Close() //nolint:errcheck // already failing
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck // already failing
		return fmt.Errorf("sync report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace report: %w", err)
	}
	return nil
}

// Write encodes the report as CSV.
func Write(w io.Writer, r domain.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, l := range r.Labels {
		if err := cw.Write([]string{l.Filename, FormatLabel(l)}); err != nil {
			return fmt.Errorf("write report row %s: %w", l.Filename, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}

// FormatLabel renders the rainy column of a label.
func FormatLabel(l domain.Label) string {
	switch l.Outcome() {
	case "rainy":
		return True
	case "dry":
		return False
	default:
		return Unknown
	}
}

// Row is one parsed report line. Rainy is nil for unknown labels.
type Row struct {
	Filename string
	Rainy    *bool
}

// Read parses a report, checking the header and every rainy value.
func Read(rd io.Reader) ([]Row, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("report is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read report header: %w", err)
	}
	if header[0] != Header[0] || header[1] != Header[1] {
		return nil, fmt.Errorf("unexpected report header %q", header)
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read report: %w", err)
		}
		row := Row{Filename: rec[0]}
		switch rec[1] {
		case True:
			v := true
			row.Rainy = &v
		case False:
			v := false
			row.Rainy = &v
		case Unknown:
		default:
			return nil, fmt.Errorf("row %s: invalid rainy value %q", rec[0], rec[1])
		}
		rows = append(rows, row)
	}
}

// ReadFile parses the report at path.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
