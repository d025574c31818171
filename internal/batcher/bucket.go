// Package batcher groups samples of similar token length into padded batches.
//
// Sorting length-wise pools before cutting batches keeps padding waste low:
// each batch is padded only to its own longest sample, not the corpus max.
package batcher

import (
	"math/rand"
	"sort"

	"arxivprep/internal/dataset"
	"arxivprep/internal/models"
	"arxivprep/internal/vocab"
)

// poolFactor is the number of batches sorted together as one bucket.
const poolFactor = 100

// Chunks splits items into consecutive slices of at most size elements.
// The last chunk may be short. A size below 1 yields a single chunk.
func Chunks[T any](items []T, size int) [][]T {
	if size < 1 {
		size = len(items)
	}

	var chunks [][]T

	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}

		chunks = append(chunks, items[start:end])
	}

	return chunks
}

// BucketIterator iterates over padded batches of numericalized samples.
// Batch order is shuffled with the seed; sample order within a batch
// follows ascending token length from the pool sort.
type BucketIterator struct {
	samples   []models.Sample
	vocab     *vocab.Vocab
	batchSize int
	order     [][]models.Sample
	pos       int
}

// NewBucketIterator prepares batches for the samples: pools of
// poolFactor*batchSize samples are sorted by token count, cut into batches
// of batchSize, and the resulting batch order is shuffled with seed.
func NewBucketIterator(samples []models.Sample, v *vocab.Vocab, batchSize int, seed int64) *BucketIterator {
	it := &BucketIterator{
		samples:   samples,
		vocab:     v,
		batchSize: batchSize,
	}

	pooled := make([]models.Sample, len(samples))
	copy(pooled, samples)

	for _, pool := range Chunks(pooled, poolFactor*batchSize) {
		sort.SliceStable(pool, func(i, j int) bool {
			return len(pool[i].Tokens) < len(pool[j].Tokens)
		})
	}

	batches := Chunks(pooled, batchSize)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(batches), func(i, j int) {
		batches[i], batches[j] = batches[j], batches[i]
	})

	it.order = batches

	return it
}

// Splits builds bucket iterators over a training and a validation set that
// share one vocabulary, mirroring how the two are batched together.
func Splits(train, val *dataset.TabularDataset, v *vocab.Vocab, batchSize int, seed int64) (*BucketIterator, *BucketIterator) {
	trainIter := NewBucketIterator(train.Samples, v, batchSize, seed)
	valIter := NewBucketIterator(val.Samples, v, batchSize, seed)

	return trainIter, valIter
}

// Len returns the number of batches.
func (it *BucketIterator) Len() int {
	return len(it.order)
}

// BatchSize returns the configured batch size.
func (it *BucketIterator) BatchSize() int {
	return it.batchSize
}

// Next returns the next padded batch, or false when exhausted.
func (it *BucketIterator) Next() (*models.Batch, bool) {
	if it.pos >= len(it.order) {
		return nil, false
	}

	group := it.order[it.pos]
	it.pos++

	return it.pad(group), true
}

// Reset rewinds the iterator to the first batch.
func (it *BucketIterator) Reset() {
	it.pos = 0
}

// pad numericalizes a group of samples and pads every row to the group's
// max token count with the pad index.
func (it *BucketIterator) pad(group []models.Sample) *models.Batch {
	maxLen := 0
	for _, s := range group {
		if len(s.Tokens) > maxLen {
			maxLen = len(s.Tokens)
		}
	}

	batch := &models.Batch{
		Text:   make([][]int, len(group)),
		Labels: make([][]float32, len(group)),
	}

	for i, s := range group {
		row := make([]int, maxLen)

		ids := it.vocab.Numericalize(s.Tokens)
		copy(row, ids)

		for j := len(ids); j < maxLen; j++ {
			row[j] = vocab.PadIndex
		}

		batch.Text[i] = row
		batch.Labels[i] = s.Labels
	}

	return batch
}
