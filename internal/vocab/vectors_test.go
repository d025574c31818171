package vocab

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeVectorFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "vectors.vec")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLoadVectors_GloVeFormat(t *testing.T) {
	path := writeVectorFile(t, "the 0.1 0.2\nmodel -0.5 1.5\n")

	vectors, err := LoadVectors(path, 2, nil)
	if err != nil {
		t.Fatalf("LoadVectors failed: %v", err)
	}

	if len(vectors) != 2 {
		t.Fatalf("Loaded %d vectors, want 2", len(vectors))
	}

	if !reflect.DeepEqual(vectors["the"], []float32{0.1, 0.2}) {
		t.Errorf("vectors[the] = %v", vectors["the"])
	}
}

func TestLoadVectors_FastTextHeaderSkipped(t *testing.T) {
	path := writeVectorFile(t, "2 3\nword 1 2 3\nother 4 5 6\n")

	vectors, err := LoadVectors(path, 3, nil)
	if err != nil {
		t.Fatalf("LoadVectors failed: %v", err)
	}

	if len(vectors) != 2 {
		t.Errorf("Loaded %d vectors, want 2 (header should be skipped)", len(vectors))
	}
}

func TestLoadVectors_KeepFilter(t *testing.T) {
	path := writeVectorFile(t, "a 1 2\nb 3 4\nc 5 6\n")

	keep := map[string]int{"a": 0, "c": 1}

	vectors, err := LoadVectors(path, 2, keep)
	if err != nil {
		t.Fatalf("LoadVectors failed: %v", err)
	}

	if len(vectors) != 2 {
		t.Fatalf("Loaded %d vectors, want 2", len(vectors))
	}

	if _, ok := vectors["b"]; ok {
		t.Error("vectors should not contain filtered word b")
	}
}

func TestLoadVectors_DimensionMismatch(t *testing.T) {
	path := writeVectorFile(t, "word 1 2 3\n")

	if _, err := LoadVectors(path, 2, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("LoadVectors = %v, want ErrDimensionMismatch", err)
	}
}

func TestLoadVectors_Empty(t *testing.T) {
	path := writeVectorFile(t, "")

	if _, err := LoadVectors(path, 2, nil); !errors.Is(err, ErrNoVectors) {
		t.Errorf("LoadVectors = %v, want ErrNoVectors", err)
	}

	// With a keep filter an empty result is fine.
	if _, err := LoadVectors(path, 2, map[string]int{"x": 0}); err != nil {
		t.Errorf("LoadVectors with keep = %v, want nil", err)
	}
}

func TestEmbeddingMatrix(t *testing.T) {
	v := Build(samplesFromTokens([]string{"known", "known", "unknown"}), 1)

	vectors := map[string][]float32{
		"known": {1, 2},
	}

	params := v.EmbeddingMatrix(vectors, 2)

	if params.VocabSize != v.Len() {
		t.Errorf("VocabSize = %d, want %d", params.VocabSize, v.Len())
	}

	if params.EmbDim != 2 {
		t.Errorf("EmbDim = %d, want 2", params.EmbDim)
	}

	if len(params.Matrix) != v.Len() {
		t.Fatalf("Matrix has %d rows, want %d", len(params.Matrix), v.Len())
	}

	if !reflect.DeepEqual(params.Matrix[v.Index("known")], []float32{1, 2}) {
		t.Errorf("Row for known = %v, want [1 2]", params.Matrix[v.Index("known")])
	}

	// Specials and out-of-collection words get zero vectors.
	for _, idx := range []int{UnkIndex, PadIndex, v.Index("unknown")} {
		if !reflect.DeepEqual(params.Matrix[idx], []float32{0, 0}) {
			t.Errorf("Row %d = %v, want zeros", idx, params.Matrix[idx])
		}
	}
}
