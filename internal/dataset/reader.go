// Package dataset provides streaming access to tab-separated corpus files.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Reader errors.
var (
	ErrEmptyFile          = errors.New("file has no header row")
	ErrFieldCountMismatch = errors.New("field count does not match header")
)

// maxLineBytes bounds a single TSV line. Abstracts are a few KB; 1 MB
// leaves ample headroom.
const maxLineBytes = 1024 * 1024

// Reader streams rows of a TSV file one at a time.
// Fields are plain tab-joined values without quoting.
type Reader struct {
	file    *os.File
	scanner *bufio.Scanner
	columns []string
	line    int
	err     error
}

// OpenReader opens a TSV file and consumes its header row.
func OpenReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open TSV file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	if !scanner.Scan() {
		closeErr := file.Close()
		if scanErr := scanner.Err(); scanErr != nil {
			return nil, fmt.Errorf("failed to read header: %w", scanErr)
		}

		if closeErr != nil {
			return nil, closeErr
		}

		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	return &Reader{
		file:    file,
		scanner: scanner,
		columns: strings.Split(scanner.Text(), "\t"),
		line:    1,
	}, nil
}

// Columns returns the header columns.
func (r *Reader) Columns() []string {
	return r.columns
}

// Next returns the next row, or false at end of input or on error.
// Rows with a field count different from the header are an error.
func (r *Reader) Next() ([]string, bool) {
	if r.err != nil {
		return nil, false
	}

	if !r.scanner.Scan() {
		r.err = r.scanner.Err()

		return nil, false
	}

	r.line++

	row := strings.Split(r.scanner.Text(), "\t")
	if len(row) != len(r.columns) {
		r.err = fmt.Errorf("%w: line %d has %d fields, want %d",
			ErrFieldCountMismatch, r.line, len(row), len(r.columns))

		return nil, false
	}

	return row, true
}

// Err returns the first error encountered while reading.
func (r *Reader) Err() error {
	return r.err
}

// Line returns the number of the last line read, header included.
func (r *Reader) Line() int {
	return r.line
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// ReadHeader returns just the header columns of a TSV file.
func ReadHeader(path string) ([]string, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}

	columns := r.Columns()

	if err := r.Close(); err != nil {
		return nil, err
	}

	return columns, nil
}

// ColumnIndex returns the index of name in columns, or -1.
func ColumnIndex(columns []string, name string) int {
	for i, col := range columns {
		if col == name {
			return i
		}
	}

	return -1
}
