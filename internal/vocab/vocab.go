// Package vocab builds token vocabularies and attaches pretrained word vectors.
package vocab

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"

	"arxivprep/internal/models"
)

// Special tokens. Index 0 and 1 are reserved; corpus tokens start at 2.
const (
	UnkToken = "<unk>"
	PadToken = "<pad>"
	UnkIndex = 0
	PadIndex = 1
)

// Vocab maps tokens to indices and back. Itos lists the specials first and
// then corpus tokens by descending frequency, ties broken lexicographically.
type Vocab struct {
	Itos  []string
	Stoi  map[string]int
	Freqs map[string]int
}

// Build constructs a vocabulary from the samples, keeping tokens that occur
// at least minFreq times. minFreq below 1 is treated as 1.
func Build(samples []models.Sample, minFreq int) *Vocab {
	if minFreq < 1 {
		minFreq = 1
	}

	freqs := make(map[string]int)

	for _, s := range samples {
		for _, tok := range s.Tokens {
			freqs[tok]++
		}
	}

	words := make([]string, 0, len(freqs))

	for w, n := range freqs {
		if n >= minFreq {
			words = append(words, w)
		}
	}

	sort.Slice(words, func(i, j int) bool {
		if freqs[words[i]] != freqs[words[j]] {
			return freqs[words[i]] > freqs[words[j]]
		}

		return words[i] < words[j]
	})

	itos := make([]string, 0, len(words)+2)
	itos = append(itos, UnkToken, PadToken)
	itos = append(itos, words...)

	stoi := make(map[string]int, len(itos))
	for i, w := range itos {
		stoi[w] = i
	}

	return &Vocab{
		Itos:  itos,
		Stoi:  stoi,
		Freqs: freqs,
	}
}

// Len returns the vocabulary size including specials.
func (v *Vocab) Len() int {
	return len(v.Itos)
}

// Index returns the index of token, or the unknown index.
func (v *Vocab) Index(token string) int {
	if idx, ok := v.Stoi[token]; ok {
		return idx
	}

	return UnkIndex
}

// Token returns the token at idx, or the unknown token for out-of-range indices.
func (v *Vocab) Token(idx int) string {
	if idx < 0 || idx >= len(v.Itos) {
		return UnkToken
	}

	return v.Itos[idx]
}

// Numericalize maps tokens to their indices.
func (v *Vocab) Numericalize(tokens []string) []int {
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		ids[i] = v.Index(tok)
	}

	return ids
}

// Save persists the vocabulary to a gob file.
func (v *Vocab) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create vocab file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("failed to encode vocab: %w", err)
	}

	return nil
}

// LoadVocab reads a vocabulary from a gob file.
func LoadVocab(path string) (*Vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocab file: %w", err)
	}
	defer f.Close()

	var v Vocab
	if err := gob.NewDecoder(f).Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode vocab: %w", err)
	}

	return &v, nil
}
