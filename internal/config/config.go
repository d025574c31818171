// Package config provides configuration management for the preprocessing pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Valid word vector collections.
const (
	VectorsFastText = "fasttext"
	VectorsGloVe    = "glove"
)

// Configuration validation errors.
var (
	ErrMissingDataDir           = errors.New("data_dir is required")
	ErrMissingCategoriesFile    = errors.New("files.categories is required")
	ErrMissingMasterFile        = errors.New("files.master_categories is required")
	ErrMissingTokenizedFile     = errors.New("files.tokenized is required")
	ErrInvalidPreprocessBatch   = errors.New("preprocess.batch_size must be at least 1")
	ErrInvalidLoaderBatch       = errors.New("loader.batch_size must be at least 1")
	ErrInvalidSplitRatio        = errors.New("loader.split_ratio must be in (0, 1]")
	ErrInvalidEmbeddingDim      = errors.New("loader.embedding_dim must be one of: 50, 100, 200, 300")
	ErrInvalidVectors           = errors.New("loader.vectors must be 'fasttext' or 'glove'")
	ErrInvalidEmbeddingBatch    = errors.New("embedding.batch_size must be at least 1")
	ErrMissingEmbeddingEndpoint = errors.New("embedding.endpoint is required when embedding extraction is enabled")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
)

// validEmbeddingDims are the dimensions the pretrained collections ship in.
var validEmbeddingDims = map[int]bool{50: true, 100: true, 200: true, 300: true}

// Config represents the complete pipeline configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Features FeaturesConfig `yaml:"features"`
}

// PipelineConfig contains the pipeline-specific settings.
type PipelineConfig struct {
	DataDir    string           `yaml:"data_dir"`
	Files      FilesConfig      `yaml:"files"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Loader     LoaderConfig     `yaml:"loader"`
	Vectors    VectorsConfig    `yaml:"vectors"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Retry      RetryPolicy      `yaml:"retry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// FilesConfig names the corpus files inside the data directory.
// TSV names are given without the .tsv extension.
type FilesConfig struct {
	Categories       string `yaml:"categories"`
	MasterCategories string `yaml:"master_categories"`
	Tokenized        string `yaml:"tokenized"`
}

// PreprocessConfig controls the constant-memory preprocessing loop.
type PreprocessConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// LoaderConfig controls dataset loading, splitting and batching.
type LoaderConfig struct {
	BatchSize    int     `yaml:"batch_size"`
	SplitRatio   float64 `yaml:"split_ratio"`
	RandomSeed   int64   `yaml:"random_seed"`
	EmbeddingDim int     `yaml:"embedding_dim"`
	Vectors      string  `yaml:"vectors"`
}

// VectorsConfig locates pretrained word vector files.
type VectorsConfig struct {
	Dir         string `yaml:"dir"`
	FastTextURL string `yaml:"fasttext_url"`
	GloVeURL    string `yaml:"glove_url"`
}

// EmbeddingConfig configures contextual embedding extraction.
type EmbeddingConfig struct {
	Endpoint  string `yaml:"endpoint"`
	BatchSize int    `yaml:"batch_size"`
	CachePath string `yaml:"cache_path"`
}

// RetryPolicy defines retry behavior for HTTP operations.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level"`
	ShowProgress bool   `yaml:"show_progress"`
}

// FeaturesConfig contains feature flags.
type FeaturesConfig struct {
	EnableManifests      bool `yaml:"enable_manifests"`
	EnableEmbeddingCache bool `yaml:"enable_embedding_cache"`
	EnableEmbedding      bool `yaml:"enable_embedding"`
}

// DefaultConfig returns the configuration used when no file is given.
// The defaults match the corpus layout the pipeline was built around.
func DefaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			DataDir: "data",
			Files: FilesConfig{
				Categories:       "arxiv_data_cats",
				MasterCategories: "arxiv_data_mcats",
				Tokenized:        "preprocessed_docs.txt",
			},
			Preprocess: PreprocessConfig{
				BatchSize: 1000,
			},
			Loader: LoaderConfig{
				BatchSize:    32,
				SplitRatio:   0.99,
				RandomSeed:   42,
				EmbeddingDim: 50,
				Vectors:      VectorsFastText,
			},
			Vectors: VectorsConfig{
				Dir: "data/vectors",
			},
			Embedding: EmbeddingConfig{
				Endpoint:  "http://localhost:8080/v1/embed",
				BatchSize: 50,
				CachePath: "data/embeddings.db",
			},
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
			Logging: LoggingConfig{
				Level:        "info",
				ShowProgress: true,
			},
		},
		Features: FeaturesConfig{
			EnableManifests:      true,
			EnableEmbeddingCache: true,
		},
	}
}

// LoadConfig loads configuration from YAML file.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	p := &c.Pipeline

	if p.DataDir == "" {
		return ErrMissingDataDir
	}

	if p.Files.Categories == "" {
		return ErrMissingCategoriesFile
	}

	if p.Files.MasterCategories == "" {
		return ErrMissingMasterFile
	}

	if p.Files.Tokenized == "" {
		return ErrMissingTokenizedFile
	}

	if p.Preprocess.BatchSize < 1 {
		return ErrInvalidPreprocessBatch
	}

	// Validate loader config
	if p.Loader.BatchSize < 1 {
		return ErrInvalidLoaderBatch
	}

	if p.Loader.SplitRatio <= 0 || p.Loader.SplitRatio > 1 {
		return ErrInvalidSplitRatio
	}

	if !validEmbeddingDims[p.Loader.EmbeddingDim] {
		return fmt.Errorf("%w: got %d", ErrInvalidEmbeddingDim, p.Loader.EmbeddingDim)
	}

	if p.Loader.Vectors != VectorsFastText && p.Loader.Vectors != VectorsGloVe {
		return fmt.Errorf("%w: got %q", ErrInvalidVectors, p.Loader.Vectors)
	}

	// Validate embedding config
	if p.Embedding.BatchSize < 1 {
		return ErrInvalidEmbeddingBatch
	}

	if c.Features.EnableEmbedding && p.Embedding.Endpoint == "" {
		return ErrMissingEmbeddingEndpoint
	}

	// Validate retry policy
	if p.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if p.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if p.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if p.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	// Validate logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[p.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// CategoriesPath returns the path of the raw categories TSV.
func (c *Config) CategoriesPath() string {
	return filepath.Join(c.Pipeline.DataDir, c.Pipeline.Files.Categories+".tsv")
}

// MasterCategoriesPath returns the path of the raw master categories TSV.
func (c *Config) MasterCategoriesPath() string {
	return filepath.Join(c.Pipeline.DataDir, c.Pipeline.Files.MasterCategories+".tsv")
}

// PreprocessedPath returns the path of the preprocessed counterpart of a
// TSV named without extension, following the {name}_pp.tsv convention.
func (c *Config) PreprocessedPath(name string) string {
	return filepath.Join(c.Pipeline.DataDir, name+"_pp.tsv")
}

// TokenizedPath returns the path of the token-per-line text file.
func (c *Config) TokenizedPath() string {
	return filepath.Join(c.Pipeline.DataDir, c.Pipeline.Files.Tokenized)
}

// VectorPath returns the local path of the pretrained vector file for the
// configured collection and dimension.
func (c *Config) VectorPath() string {
	name := fmt.Sprintf("%s.%dd.vec", c.Pipeline.Loader.Vectors, c.Pipeline.Loader.EmbeddingDim)

	return filepath.Join(c.Pipeline.Vectors.Dir, name)
}

// VectorURL returns the download URL for the configured vector collection.
func (c *Config) VectorURL() string {
	if c.Pipeline.Loader.Vectors == VectorsGloVe {
		return c.Pipeline.Vectors.GloVeURL
	}

	return c.Pipeline.Vectors.FastTextURL
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{DataDir: %s, Vectors: %s-%dd, LoaderBatch: %d}",
		c.Pipeline.DataDir,
		c.Pipeline.Loader.Vectors,
		c.Pipeline.Loader.EmbeddingDim,
		c.Pipeline.Loader.BatchSize,
	)
}
