// Package dataset reads and writes the CSV files the pipeline works on.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/naka-gawa/project-size-stats/internal/domain"
)

const utf8BOM = "\uFEFF"

// Load reads a UTF-8 CSV file whose first record is the header.
func Load(path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewDatasetLoadError("load", path, "", "cannot open source", err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, domain.NewDatasetLoadError("load", path, "", "malformed CSV", err)
	}
	ds.Path = path
	return ds, nil
}

// Read parses CSV data from r. All records must have as many fields as the header.
func Read(r io.Reader) (*domain.Dataset, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}
	seen := make(map[string]struct{}, len(header))
	for _, h := range header {
		if _, dup := seen[h]; dup {
			return nil, fmt.Errorf("duplicate column %q in header", h)
		}
		seen[h] = struct{}{}
	}

	ds := &domain.Dataset{Columns: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		ds.Rows = append(ds.Rows, rec)
	}
	return ds, nil
}

func trimBOM(s string) string {
	if len(s) >= len(utf8BOM) && s[:len(utf8BOM)] == utf8BOM {
		return s[len(utf8BOM):]
	}
	return s
}

// EncodeTable renders the cleaned joined table as CSV. The metric column
// carries the coerced value rather than the raw cell.
func EncodeTable(t *domain.JoinedTable) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	metricIdx := -1
	for i, c := range t.Columns {
		if c == t.MetricColumn {
			metricIdx = i
		}
	}
	for _, row := range t.Rows {
		rec := make([]string, len(row.Cells))
		copy(rec, row.Cells)
		if metricIdx >= 0 {
			rec[metricIdx] = strconv.FormatFloat(row.Metric, 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSizes writes a size dataset that Load can read back.
func WriteSizes(w io.Writer, keyColumn, categoryColumn string, sizes []*domain.ProjectSize) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{keyColumn, "Size", categoryColumn}); err != nil {
		return err
	}
	for _, s := range sizes {
		if err := cw.Write([]string{s.Name, strconv.Itoa(s.Size), s.Category}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFileAtomic replaces path with data, creating parent directories as
// needed. The previous file, if any, is left untouched on failure.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}
