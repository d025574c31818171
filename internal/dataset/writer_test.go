package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tsv")

	w, err := CreateWriter(path, []string{"text", "cs", "math"})
	if err != nil {
		t.Fatalf("CreateWriter failed: %v", err)
	}

	rows := [][]string{
		{"a b c", "1", "0"},
		{"d e", "0", "1"},
	}

	for _, row := range rows {
		if err := w.WriteRow(row); err != nil {
			t.Fatalf("WriteRow failed: %v", err)
		}
	}

	if w.Rows() != 2 {
		t.Errorf("Rows = %d, want 2", w.Rows())
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer r.Close()

	count := 0

	for {
		row, ok := r.Next()
		if !ok {
			break
		}

		if row[0] != rows[count][0] {
			t.Errorf("Row %d text = %q, want %q", count, row[0], rows[count][0])
		}

		count++
	}

	if count != 2 {
		t.Errorf("Read back %d rows, want 2", count)
	}
}

func TestWriter_RejectsTabInField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tsv")

	w, err := CreateWriter(path, []string{"text"})
	if err != nil {
		t.Fatalf("CreateWriter failed: %v", err)
	}
	defer w.Close()

	if err := w.WriteRow([]string{"has\ttab"}); !errors.Is(err, ErrTabInField) {
		t.Errorf("WriteRow = %v, want ErrTabInField", err)
	}
}

func TestCreateWriter_BadPath(t *testing.T) {
	if _, err := CreateWriter(filepath.Join(t.TempDir(), "missing", "out.tsv"), []string{"text"}); err == nil {
		t.Error("CreateWriter expected error for missing directory")
	}

	// Make sure nothing was left behind.
	if _, err := os.Stat(filepath.Join(t.TempDir(), "missing")); !os.IsNotExist(err) && err == nil {
		t.Error("CreateWriter should not create parent directories")
	}
}
