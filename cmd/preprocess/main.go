// Package main provides the preprocess command that tokenizes the raw
// corpus and rewrites the category TSVs.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"arxivprep/internal/config"
	"arxivprep/internal/logger"
	"arxivprep/internal/preprocess"
	"arxivprep/internal/tokenizer"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional, defaults baked in)")
	dataDir := flag.String("data-dir", "", "Override the data directory")
	batchSize := flag.Int("batch-size", 0, "Override the preprocessing batch size")
	flag.Parse()

	cfg := config.DefaultConfig()

	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
			os.Exit(1)
		}

		cfg = loaded
	}

	if *dataDir != "" {
		cfg.Pipeline.DataDir = *dataDir
	}

	if *batchSize > 0 {
		cfg.Pipeline.Preprocess.BatchSize = *batchSize
	}

	log := logger.NewLogger(cfg.Pipeline.Logging.Level)

	log.Info("🚀 Starting corpus preprocessing")
	log.Info(fmt.Sprintf("📂 Data directory: %s", cfg.Pipeline.DataDir))

	var progressW *os.File
	if cfg.Pipeline.Logging.ShowProgress {
		progressW = os.Stderr
	}

	pp := preprocess.New(tokenizer.NewTokenizer(), cfg.Pipeline.Preprocess.BatchSize, progressW)

	opts := preprocess.Options{
		CategoriesIn:        cfg.CategoriesPath(),
		MasterCategoriesIn:  cfg.MasterCategoriesPath(),
		CategoriesOut:       cfg.PreprocessedPath(cfg.Pipeline.Files.Categories),
		MasterCategoriesOut: cfg.PreprocessedPath(cfg.Pipeline.Files.MasterCategories),
		TokenizedPath:       cfg.TokenizedPath(),
		SignManifests:       cfg.Features.EnableManifests,
	}

	startTime := time.Now()

	res, err := pp.Run(opts)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Preprocessing failed: %v", err))
		os.Exit(1)
	}

	log.Info(fmt.Sprintf("✅ Preprocessed %d rows (%d dropped) in %v",
		res.Rows, res.Dropped, time.Since(startTime)))
	log.Info(fmt.Sprintf("📄 Token file: %s", opts.TokenizedPath))
	log.Info(fmt.Sprintf("📄 Categories: %s", opts.CategoriesOut))
	log.Info(fmt.Sprintf("📄 Master categories: %s", opts.MasterCategoriesOut))
}
