// Package main provides the unified pipeline command: preprocess the raw
// corpus, verify the generated files, load the dataset and report the
// resulting vocabulary and batch statistics.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"arxivprep/internal/config"
	"arxivprep/internal/loader"
	"arxivprep/internal/logger"
	"arxivprep/internal/preprocess"
	"arxivprep/internal/tokenizer"
	"arxivprep/pkg/manifest"
	"arxivprep/pkg/report"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional, defaults baked in)")
	datasetName := flag.String("dataset", "", "Which preprocessed TSV to load (defaults to master categories)")
	skipPreprocess := flag.Bool("skip-preprocess", false, "Load existing preprocessed files without regenerating")
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

	log := logger.NewLogger(cfg.Pipeline.Logging.Level)

	log.Info("🚀 Starting arxivprep pipeline")
	log.Info(fmt.Sprintf("📂 Data directory: %s", cfg.Pipeline.DataDir))

	startTime := time.Now()

	// 1. Preprocessing
	// ----------------
	if !*skipPreprocess {
		log.Info("Phase 1: Preprocessing (tokenization)...")

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

		res, err := pp.Run(opts)
		if err != nil {
			log.Error(fmt.Sprintf("❌ Preprocessing failed: %v", err))
			os.Exit(1)
		}

		log.Info(fmt.Sprintf("✅ Preprocessed %d rows (%d dropped)", res.Rows, res.Dropped))
	}

	// 2. Integrity check
	// ------------------
	if cfg.Features.EnableManifests {
		log.Info("Phase 2: Verifying manifests...")

		paths := []string{
			cfg.TokenizedPath(),
			cfg.PreprocessedPath(cfg.Pipeline.Files.Categories),
			cfg.PreprocessedPath(cfg.Pipeline.Files.MasterCategories),
		}

		for _, path := range paths {
			if _, err := manifest.Verify(path); err != nil {
				log.Error(fmt.Sprintf("❌ Manifest check failed for %s: %v", path, err))
				os.Exit(1)
			}
		}

		log.Info("✅ Manifests verified")
	}

	// 3. Loading and batching
	// -----------------------
	log.Info("Phase 3: Loading dataset (vocabulary, vectors, batching)...")

	name := *datasetName
	if name == "" {
		name = cfg.Pipeline.Files.MasterCategories
	}

	loaded, err := loader.New(cfg, log).Load(name)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Loading failed: %v", err))
		os.Exit(1)
	}

	// 4. Final report
	// ---------------
	log.Info("✨ Pipeline Complete!")

	table := report.NewTable("Metric", "Value")
	table.AddRow("Dataset", name)
	table.AddRow("Categories", strconv.Itoa(len(loaded.Categories)))
	table.AddRow("Vocabulary size", strconv.Itoa(loaded.Params.VocabSize))
	table.AddRow("Embedding dim", strconv.Itoa(loaded.Params.EmbDim))
	table.AddRow("Train batches", strconv.Itoa(loaded.Train.Len()))
	table.AddRow("Validation batches", strconv.Itoa(loaded.Val.Len()))
	table.AddRow("Batch size", strconv.Itoa(loaded.Train.BatchSize()))
	table.AddRow("Total duration", time.Since(startTime).String())

	fmt.Println()
	fmt.Print(table.String())
}
