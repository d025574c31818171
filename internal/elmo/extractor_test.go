package elmo

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// fakeEmbedder returns deterministic per-token vectors: each token of doc i
// gets the vector {float(len(tokens)), 1}.
type fakeEmbedder struct {
	dim     int
	batches [][]string
	fail    error
}

func (f *fakeEmbedder) EmbedBatch(texts []string) ([][][]float32, error) {
	if f.fail != nil {
		return nil, f.fail
	}

	f.batches = append(f.batches, texts)

	out := make([][][]float32, len(texts))

	for i, text := range texts {
		tokens := strings.Fields(text)
		out[i] = make([][]float32, len(tokens))

		for j := range tokens {
			out[i][j] = []float32{float32(j + 1), 1}
		}
	}

	return out, nil
}

func (f *fakeEmbedder) Dimension() int {
	return f.dim
}

// memCache is an in-memory Cache for tests.
type memCache struct {
	data map[string][]float32
	gets int
	puts int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]float32)}
}

func (m *memCache) Get(text string) ([]float32, error) {
	m.gets++

	return m.data[text], nil
}

func (m *memCache) Put(text string, vector []float32) error {
	m.puts++
	m.data[text] = vector

	return nil
}

func TestExtractor_MeanPooling(t *testing.T) {
	emb := &fakeEmbedder{dim: 2}
	ex := NewExtractor(emb, nil, 10, nil)

	// Tokens get vectors {1,1},{2,1},{3,1} -> mean {2,1}
	vectors, err := ex.Extract([]string{"a b c"})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if !reflect.DeepEqual(vectors[0], []float32{2, 1}) {
		t.Errorf("vector = %v, want [2 1]", vectors[0])
	}
}

func TestExtractor_EmptyDocumentGetsZeroVector(t *testing.T) {
	emb := &fakeEmbedder{dim: 3}
	ex := NewExtractor(emb, nil, 10, nil)

	vectors, err := ex.Extract([]string{""})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if !reflect.DeepEqual(vectors[0], []float32{0, 0, 0}) {
		t.Errorf("vector = %v, want zeros", vectors[0])
	}
}

func TestExtractor_BatchesBySize(t *testing.T) {
	emb := &fakeEmbedder{dim: 2}
	ex := NewExtractor(emb, nil, 2, nil)

	texts := []string{"a", "b", "c", "d", "e"}

	if _, err := ex.Extract(texts); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(emb.batches) != 3 {
		t.Fatalf("Embedder saw %d batches, want 3", len(emb.batches))
	}

	if len(emb.batches[0]) != 2 || len(emb.batches[2]) != 1 {
		t.Errorf("Batch sizes = %d,%d,%d, want 2,2,1",
			len(emb.batches[0]), len(emb.batches[1]), len(emb.batches[2]))
	}
}

func TestExtractor_PreservesOrder(t *testing.T) {
	emb := &fakeEmbedder{dim: 2}
	ex := NewExtractor(emb, nil, 2, nil)

	// Doc i has i+1 tokens, so its mean first component is (i+2)/2.
	texts := []string{"a", "a a", "a a a"}

	vectors, err := ex.Extract(texts)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	for i, vec := range vectors {
		want := float32(i+2) / 2
		if vec[0] != want {
			t.Errorf("vectors[%d][0] = %f, want %f", i, vec[0], want)
		}
	}
}

func TestExtractor_CacheHitsSkipService(t *testing.T) {
	emb := &fakeEmbedder{dim: 2}
	cache := newMemCache()

	ex := NewExtractor(emb, cache, 10, nil)

	texts := []string{"a b", "c d"}

	first, err := ex.Extract(texts)
	if err != nil {
		t.Fatalf("First Extract failed: %v", err)
	}

	if cache.puts != 2 {
		t.Errorf("Cache puts = %d, want 2", cache.puts)
	}

	serviceBatches := len(emb.batches)

	second, err := ex.Extract(texts)
	if err != nil {
		t.Fatalf("Second Extract failed: %v", err)
	}

	if len(emb.batches) != serviceBatches {
		t.Error("Second run should be served entirely from cache")
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Cached vectors differ from fresh ones")
	}
}

func TestExtractor_PartialCache(t *testing.T) {
	emb := &fakeEmbedder{dim: 2}
	cache := newMemCache()

	// Warm the cache with one document only.
	warm := NewExtractor(emb, cache, 10, nil)
	if _, err := warm.Extract([]string{"warm doc"}); err != nil {
		t.Fatal(err)
	}

	emb.batches = nil

	ex := NewExtractor(emb, cache, 10, nil)

	vectors, err := ex.Extract([]string{"cold a", "warm doc", "cold b"})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(vectors) != 3 {
		t.Fatalf("Got %d vectors, want 3", len(vectors))
	}

	if len(emb.batches) != 1 || len(emb.batches[0]) != 2 {
		t.Errorf("Service should only see the two cold documents, saw %v", emb.batches)
	}
}

func TestExtractor_PropagatesEmbedderError(t *testing.T) {
	sentinel := errors.New("service down")
	emb := &fakeEmbedder{dim: 2, fail: sentinel}

	ex := NewExtractor(emb, nil, 10, nil)

	if _, err := ex.Extract([]string{"doc"}); !errors.Is(err, sentinel) {
		t.Errorf("Extract = %v, want wrapped sentinel", err)
	}
}

func TestExtractor_ProgressOutput(t *testing.T) {
	emb := &fakeEmbedder{dim: 2}

	var buf bytes.Buffer

	ex := NewExtractor(emb, nil, 2, &buf)

	if _, err := ex.Extract([]string{"a", "b", "c"}); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Extracting ELMo features from the 3 rows...") {
		t.Errorf("Progress output missing description: %q", out)
	}

	if !strings.Contains(out, "100.00% completed.") {
		t.Errorf("Progress output missing completion: %q", out)
	}
}
