package elmo

import (
	"fmt"
	"io"

	"arxivprep/internal/batcher"
	"arxivprep/internal/store"
	"arxivprep/pkg/progress"
)

// Cache is the subset of the embedding store the extractor needs.
type Cache interface {
	Get(text string) ([]float32, error)
	Put(text string, vector []float32) error
}

// Extractor turns documents into one mean-pooled vector each, batching
// requests to the embedder and caching results.
type Extractor struct {
	embedder  Embedder
	cache     Cache
	batchSize int
	progressW io.Writer
}

// NewExtractor creates an extractor. cache may be nil to disable caching,
// progressW may be nil to disable the status line.
func NewExtractor(embedder Embedder, cache Cache, batchSize int, progressW io.Writer) *Extractor {
	if batchSize < 1 {
		batchSize = 50
	}

	return &Extractor{
		embedder:  embedder,
		cache:     cache,
		batchSize: batchSize,
		progressW: progressW,
	}
}

// Extract returns one embedding per document, in input order. Documents
// found in the cache are not sent to the service; fresh results are cached.
func (e *Extractor) Extract(texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))

	desc := fmt.Sprintf("Extracting ELMo features from the %d rows...", len(texts))
	bar := progress.NewPrinter(e.progressW, desc, len(texts))

	// Resolve cache hits first so only misses are batched to the service.
	var missIdx []int

	for i, text := range texts {
		if e.cache != nil {
			vec, err := e.cache.Get(text)
			if err != nil {
				return nil, err
			}

			if vec != nil {
				result[i] = vec
				bar.Add(1)

				continue
			}
		}

		missIdx = append(missIdx, i)
	}

	for _, group := range batcher.Chunks(missIdx, e.batchSize) {
		batch := make([]string, len(group))
		for i, idx := range group {
			batch[i] = texts[idx]
		}

		embeddings, err := e.embedder.EmbedBatch(batch)
		if err != nil {
			return nil, fmt.Errorf("batch starting at row %d: %w", group[0], err)
		}

		for i, idx := range group {
			vec := meanPool(embeddings[i], e.embedder.Dimension())
			result[idx] = vec

			if e.cache != nil {
				if err := e.cache.Put(texts[idx], vec); err != nil {
					return nil, err
				}
			}
		}

		bar.Add(len(group))
	}

	bar.Finish()

	return result, nil
}

// ExtractWithStore is a convenience wrapper opening a store at dbPath for
// the duration of one extraction run.
func ExtractWithStore(embedder Embedder, dbPath string, batchSize int, progressW io.Writer, texts []string) ([][]float32, error) {
	cache, err := store.New(dbPath)
	if err != nil {
		return nil, err
	}
	defer cache.Close()

	return NewExtractor(embedder, cache, batchSize, progressW).Extract(texts)
}

// meanPool averages per-token vectors into one document vector. Documents
// with no tokens get a zero vector.
func meanPool(tokens [][]float32, dim int) []float32 {
	vec := make([]float32, dim)

	if len(tokens) == 0 {
		return vec
	}

	for _, tok := range tokens {
		for i := 0; i < len(tok) && i < dim; i++ {
			vec[i] += tok[i]
		}
	}

	n := float32(len(tokens))
	for i := range vec {
		vec[i] /= n
	}

	return vec
}
