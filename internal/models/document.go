// Package models defines data structures shared across the preprocessing pipeline.
package models

// Document represents a single scholarly article before tokenization.
type Document struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

// Text returns the merged title and abstract, the unit that gets tokenized.
func (d Document) Text() string {
	return d.Title + " " + d.Abstract
}

// Sample is one tokenized document together with its category labels.
type Sample struct {
	Tokens []string
	Labels []float32
}

// Batch is a group of numericalized samples padded to a common length.
// Text is rectangular: one row per sample, padded with the pad index up to
// the longest sample in the batch. Labels keeps row i aligned with Text row i.
type Batch struct {
	Text   [][]int
	Labels [][]float32
}

// Size returns the number of samples in the batch.
func (b *Batch) Size() int {
	return len(b.Text)
}

// SeqLen returns the padded sequence length of the batch.
func (b *Batch) SeqLen() int {
	if len(b.Text) == 0 {
		return 0
	}

	return len(b.Text[0])
}

// EmbeddingParams describes the vocabulary and its pretrained embedding
// matrix, as handed to a downstream model.
type EmbeddingParams struct {
	VocabSize int
	EmbDim    int
	Matrix    [][]float32
}
