package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrTabInField is returned when a field value would corrupt the TSV layout.
var ErrTabInField = errors.New("field contains a tab character")

// Writer writes rows of a TSV file through a buffered writer.
type Writer struct {
	file *os.File
	buf  *bufio.Writer
	rows int
}

// CreateWriter creates (or truncates) a TSV file and writes the header row.
func CreateWriter(path string, columns []string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create TSV file: %w", err)
	}

	w := &Writer{
		file: file,
		buf:  bufio.NewWriter(file),
	}

	if _, err := w.buf.WriteString(strings.Join(columns, "\t") + "\n"); err != nil {
		file.Close()

		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	return w, nil
}

// WriteRow writes one data row. Fields must not contain tabs or newlines.
func (w *Writer) WriteRow(fields []string) error {
	for _, f := range fields {
		if strings.ContainsAny(f, "\t\n") {
			return fmt.Errorf("%w: %q", ErrTabInField, f)
		}
	}

	if _, err := w.buf.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}

	w.rows++

	return nil
}

// Rows returns the number of data rows written so far.
func (w *Writer) Rows() int {
	return w.rows
}

// Close flushes buffered rows and closes the file.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.file.Close()

		return fmt.Errorf("failed to flush TSV file: %w", err)
	}

	return w.file.Close()
}
