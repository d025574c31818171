package dataset

import (
	"errors"
	"fmt"
)

// Schema validation errors.
var (
	ErrMissingTitleColumn    = errors.New("missing 'title' column")
	ErrMissingAbstractColumn = errors.New("missing 'abstract' column")
	ErrTextColumnNotFirst    = errors.New("'text' must be the first column")
	ErrNoCategoryColumns     = errors.New("at least one category column is required")
)

// ValidateRawHeader checks the schema of a raw corpus TSV:
// it must carry title and abstract columns plus at least one category.
func ValidateRawHeader(columns []string) error {
	if ColumnIndex(columns, "title") < 0 {
		return ErrMissingTitleColumn
	}

	if ColumnIndex(columns, "abstract") < 0 {
		return ErrMissingAbstractColumn
	}

	if len(columns) < 3 {
		return fmt.Errorf("%w: got columns %v", ErrNoCategoryColumns, columns)
	}

	return nil
}

// ValidatePreprocessedHeader checks the schema of a preprocessed TSV:
// a leading text column followed by at least one category column.
func ValidatePreprocessedHeader(columns []string) error {
	if len(columns) == 0 || columns[0] != "text" {
		return ErrTextColumnNotFirst
	}

	if len(columns) < 2 {
		return fmt.Errorf("%w: got columns %v", ErrNoCategoryColumns, columns)
	}

	return nil
}

// CategoryColumns returns the category column names of a preprocessed
// header, i.e. everything after the text column.
func CategoryColumns(columns []string) []string {
	if len(columns) < 2 {
		return nil
	}

	return columns[1:]
}
