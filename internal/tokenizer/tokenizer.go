// Package tokenizer segments document text into word tokens.
//
// Segmentation follows Unicode UAX #29 word boundaries, which keeps
// punctuation as standalone tokens the way an NLP tokenizer does, while
// whitespace runs are discarded.
package tokenizer

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/words"
)

// Tokenizer splits text into word tokens.
type Tokenizer struct {
	lowercase bool
}

// NewTokenizer creates a tokenizer that preserves case.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// NewLowercaseTokenizer creates a tokenizer that lowercases its output.
func NewLowercaseTokenizer() *Tokenizer {
	return &Tokenizer{lowercase: true}
}

// Tokenize returns the word tokens of text in order.
// Whitespace segments are dropped; punctuation segments are kept.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string

	segs := words.FromString(text)
	for segs.Next() {
		tok := segs.Value()
		if strings.TrimSpace(tok) == "" {
			continue
		}

		if t.lowercase {
			tok = strings.ToLower(tok)
		}

		tokens = append(tokens, tok)
	}

	return tokens
}

// Pipe tokenizes docs and invokes fn once per document, in order.
// Documents are processed one at a time so memory stays bounded by the
// longest single document, not the corpus.
func (t *Tokenizer) Pipe(docs []string, fn func(tokens []string) error) error {
	for _, doc := range docs {
		if err := fn(t.Tokenize(doc)); err != nil {
			return err
		}
	}

	return nil
}
