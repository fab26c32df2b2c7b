// Package export writes completed flow records to rotated CSV files and
// runs the asynchronous writeout handler that decouples file I/O from
// the capture loop.
package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/els0r/fluere/pkg/types"
)

// Writer writes flow records to a single CSV file, header first
type Writer struct {
	file *os.File
	csv  *csv.Writer
}

// NewWriter creates the output file (truncating any previous one) and
// writes the column header
func NewWriter(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	w := &Writer{
		file: file,
		csv:  csv.NewWriter(file),
	}
	if err := w.csv.Write(types.Columns); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	return w, nil
}

// WriteRecords appends one row per record
func (w *Writer) WriteRecords(records []*types.FlowRecord) error {
	for _, record := range records {
		if err := w.csv.Write(record.ToRow()); err != nil {
			return fmt.Errorf("failed to write flow record: %w", err)
		}
	}

	return nil
}

// Close flushes all buffered rows and closes the file
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}

	return w.file.Close()
}

// ReadFile parses a CSV file previously produced by a Writer. Used by
// tests and downstream tooling to round-trip exported flows.
func ReadFile(path string) ([]*types.FlowRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file %s carries no header row", path)
	}

	records := make([]*types.FlowRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record, err := types.ParseRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}
