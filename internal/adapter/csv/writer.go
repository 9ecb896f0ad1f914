// Package csv writes the exported table as a flat CSV file.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/ballpark-weather-etl/internal/domain"
)

// Header is the fixed column order of the export.
var Header = append([]string{"date", "station_id", "Stadium"}, domain.MetricColumns...)

// Writer writes tables to a single CSV path, replacing it on every load.
// It implements pipeline.TableLoader.
type Writer struct {
	path string
}

// NewWriter creates a Writer for path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the destination file.
func (w *Writer) Path() string {
	return w.path
}

// LoadTable writes the table to a temp file next to the destination and
// renames it into place, so readers never see a partial file.
func (w *Writer) LoadTable(ctx context.Context, table domain.Table) error {
	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := writeRows(ctx, tmp, table.Rows); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("rename %s: %w", w.path, err)
	}
	return nil
}

func writeRows(ctx context.Context, f *os.File, rows []domain.ShapedRecord) error {
	cw := csv.NewWriter(f)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(Header))
	for i := range rows {
		if i%1000 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		encodeRow(record, rows[i])
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func encodeRow(dst []string, row domain.ShapedRecord) {
	dst[0] = row.Date.Format(domain.DateLayout)
	dst[1] = string(row.StationID)
	dst[2] = row.Location
	for i, v := range row.Values() {
		dst[3+i] = FormatValue(v)
	}
}

// FormatValue renders a metric cell: empty for missing values, otherwise the
// shortest decimal form, keeping a trailing ".0" on whole numbers.
func FormatValue(v *float64) string {
	if v == nil {
		return ""
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
