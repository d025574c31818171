package dataset

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"arxivprep/internal/models"
)

// TabularDataset holds a fully loaded preprocessed corpus: tokenized texts
// with one float label per category column.
type TabularDataset struct {
	Categories []string
	Samples    []models.Sample
}

// LoadTabular reads a preprocessed TSV (text column first, then category
// columns) into memory. Texts are split on whitespace, so the file's
// space-joined token lines round-trip without retokenizing.
func LoadTabular(path string) (*TabularDataset, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	columns := r.Columns()
	if err := ValidatePreprocessedHeader(columns); err != nil {
		return nil, fmt.Errorf("invalid header in %s: %w", path, err)
	}

	ds := &TabularDataset{
		Categories: CategoryColumns(columns),
	}

	for {
		row, ok := r.Next()
		if !ok {
			break
		}

		labels := make([]float32, len(row)-1)

		for i, cell := range row[1:] {
			val, convErr := strconv.ParseFloat(cell, 32)
			if convErr != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", r.Line(), ds.Categories[i], convErr)
			}

			labels[i] = float32(val)
		}

		ds.Samples = append(ds.Samples, models.Sample{
			Tokens: strings.Fields(row[0]),
			Labels: labels,
		})
	}

	if err := r.Err(); err != nil {
		return nil, err
	}

	return ds, nil
}

// Len returns the number of samples.
func (d *TabularDataset) Len() int {
	return len(d.Samples)
}

// Split shuffles the samples with the seed and divides them into a training
// set with ratio of the samples and a validation set with the remainder.
// The same seed and sample count always produce the same split.
func (d *TabularDataset) Split(ratio float64, seed int64) (train, val *TabularDataset) {
	rng := rand.New(rand.NewSource(seed))

	perm := rng.Perm(len(d.Samples))
	cut := int(ratio * float64(len(d.Samples)))

	train = &TabularDataset{Categories: d.Categories}
	val = &TabularDataset{Categories: d.Categories}

	for i, idx := range perm {
		if i < cut {
			train.Samples = append(train.Samples, d.Samples[idx])
		} else {
			val.Samples = append(val.Samples, d.Samples[idx])
		}
	}

	return train, val
}
