// Package loader assembles training-ready data: it loads a preprocessed
// corpus, splits it, builds the vocabulary with pretrained vectors and
// wraps both splits in bucketed batch iterators.
package loader

import (
	"errors"
	"fmt"
	"os"

	"arxivprep/internal/batcher"
	"arxivprep/internal/config"
	"arxivprep/internal/dataset"
	"arxivprep/internal/fetch"
	"arxivprep/internal/logger"
	"arxivprep/internal/models"
	"arxivprep/internal/vocab"
)

// ErrNoVectorSource is returned when the vector file is absent and no
// download URL is configured.
var ErrNoVectorSource = errors.New("vector file missing and no download URL configured")

// Loaded bundles everything a training run needs.
type Loaded struct {
	Train      *batcher.BucketIterator
	Val        *batcher.BucketIterator
	Vocab      *vocab.Vocab
	Params     models.EmbeddingParams
	Categories []string
}

// Loader loads preprocessed corpora according to a pipeline config.
type Loader struct {
	cfg     *config.Config
	log     *logger.Logger
	fetcher *fetch.Fetcher
}

// New creates a loader for the config.
func New(cfg *config.Config, log *logger.Logger) *Loader {
	return &Loader{
		cfg:     cfg,
		log:     log,
		fetcher: fetch.NewFetcherWithConfig(&cfg.Pipeline.Retry),
	}
}

// Load reads the preprocessed TSV named without extension (for example
// "arxiv_data_mcats", resolving to {data_dir}/arxiv_data_mcats_pp.tsv),
// splits it with the configured ratio and seed, builds the vocabulary over
// the training split and attaches the configured pretrained vectors.
func (l *Loader) Load(tsvName string) (*Loaded, error) {
	path := l.cfg.PreprocessedPath(tsvName)

	ds, err := dataset.LoadTabular(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	lc := l.cfg.Pipeline.Loader

	train, val := ds.Split(lc.SplitRatio, lc.RandomSeed)

	l.log.Debug("dataset split",
		"total", ds.Len(), "train", train.Len(), "val", val.Len())

	v := vocab.Build(train.Samples, 1)

	vectors, err := l.loadVectors(v)
	if err != nil {
		return nil, err
	}

	params := v.EmbeddingMatrix(vectors, lc.EmbeddingDim)

	trainIter, valIter := batcher.Splits(train, val, v, lc.BatchSize, lc.RandomSeed)

	return &Loaded{
		Train:      trainIter,
		Val:        valIter,
		Vocab:      v,
		Params:     params,
		Categories: ds.Categories,
	}, nil
}

// loadVectors ensures the configured vector file is present locally and
// parses it, keeping only words in the vocabulary.
func (l *Loader) loadVectors(v *vocab.Vocab) (map[string][]float32, error) {
	path := l.cfg.VectorPath()

	if _, err := os.Stat(path); err != nil {
		url := l.cfg.VectorURL()
		if url == "" {
			return nil, fmt.Errorf("%w: %s", ErrNoVectorSource, path)
		}

		l.log.Info("downloading pretrained vectors", "url", url, "dest", path)

		if _, err := l.fetcher.Download(url, path); err != nil {
			return nil, fmt.Errorf("failed to download vectors: %w", err)
		}
	}

	vectors, err := vocab.LoadVectors(path, l.cfg.Pipeline.Loader.EmbeddingDim, v.Stoi)
	if err != nil {
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}

	return vectors, nil
}
