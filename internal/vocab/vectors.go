package vocab

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"arxivprep/internal/models"
)

// Vector file errors.
var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrNoVectors         = errors.New("vector file contains no vectors")
)

// LoadVectors parses a text-format word vector file (GloVe .txt or
// fastText .vec): one word followed by its components per line, space
// separated. A fastText-style "count dim" header line is skipped.
// Only words present in keep are retained, so a multi-gigabyte vector file
// loads into memory proportional to the vocabulary, not the collection.
// A nil keep set retains everything.
func LoadVectors(path string, dim int, keep map[string]int) (map[string][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	vectors := make(map[string][]float32)
	line := 0

	for scanner.Scan() {
		line++

		fields := strings.Fields(scanner.Text())

		// fastText .vec files open with "<count> <dim>".
		if line == 1 && len(fields) == 2 {
			continue
		}

		if len(fields) == 0 {
			continue
		}

		word := fields[0]
		if keep != nil {
			if _, ok := keep[word]; !ok {
				continue
			}
		}

		if len(fields)-1 != dim {
			return nil, fmt.Errorf("%w: line %d has %d components, want %d",
				ErrDimensionMismatch, line, len(fields)-1, dim)
		}

		vec := make([]float32, dim)

		for i, field := range fields[1:] {
			val, convErr := strconv.ParseFloat(field, 32)
			if convErr != nil {
				return nil, fmt.Errorf("line %d: %w", line, convErr)
			}

			vec[i] = float32(val)
		}

		vectors[word] = vec
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vector file: %w", err)
	}

	// An empty result with a keep set just means the vocabulary is fully
	// out of collection; only an unfiltered empty parse is an error.
	if len(vectors) == 0 && keep == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoVectors, path)
	}

	return vectors, nil
}

// EmbeddingMatrix assembles the pretrained embedding matrix for the
// vocabulary. Row i holds the vector of Itos[i]; tokens without a
// pretrained vector, including the specials, get zero vectors.
func (v *Vocab) EmbeddingMatrix(vectors map[string][]float32, dim int) models.EmbeddingParams {
	matrix := make([][]float32, v.Len())

	for i, word := range v.Itos {
		if vec, ok := vectors[word]; ok {
			matrix[i] = vec
		} else {
			matrix[i] = make([]float32, dim)
		}
	}

	return models.EmbeddingParams{
		VocabSize: v.Len(),
		EmbDim:    dim,
		Matrix:    matrix,
	}
}
