// Package main provides the elmo command that extracts one contextual
// embedding per document from an external embedding service.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"arxivprep/internal/config"
	"arxivprep/internal/elmo"
	"arxivprep/internal/logger"
	"arxivprep/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional, defaults baked in)")
	inputPath := flag.String("input", "", "Path to input text file, one document per line")
	outputPath := flag.String("output", "", "Path to output TSV of document vectors")
	endpoint := flag.String("endpoint", "", "Override the embedding service endpoint")
	dim := flag.Int("dim", 1024, "Embedding dimension of the service model")
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

	if *endpoint != "" {
		cfg.Pipeline.Embedding.Endpoint = *endpoint
	}

	log := logger.NewLogger(cfg.Pipeline.Logging.Level)

	if *inputPath == "" || *outputPath == "" {
		log.Error("Usage: elmo -input <docs.txt> -output <vectors.tsv>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	texts, err := readLines(*inputPath)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Failed to read input: %v", err))
		os.Exit(1)
	}

	log.Info("🚀 Starting embedding extraction")
	log.Info(fmt.Sprintf("📍 Service: %s", cfg.Pipeline.Embedding.Endpoint))
	log.Info(fmt.Sprintf("📄 Documents: %d", len(texts)))

	client := elmo.NewClient(cfg.Pipeline.Embedding.Endpoint, *dim, &cfg.Pipeline.Retry)

	var cache elmo.Cache

	if cfg.Features.EnableEmbeddingCache {
		s, storeErr := store.New(cfg.Pipeline.Embedding.CachePath)
		if storeErr != nil {
			log.Error(fmt.Sprintf("❌ Failed to open embedding cache: %v", storeErr))
			os.Exit(1)
		}
		defer s.Close()

		cache = s
	}

	var progressW *os.File
	if cfg.Pipeline.Logging.ShowProgress {
		progressW = os.Stderr
	}

	startTime := time.Now()

	extractor := elmo.NewExtractor(client, cache, cfg.Pipeline.Embedding.BatchSize, progressW)

	vectors, err := extractor.Extract(texts)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Extraction failed: %v", err))
		os.Exit(1)
	}

	if err := writeVectors(*outputPath, vectors); err != nil {
		log.Error(fmt.Sprintf("❌ Failed to write output: %v", err))
		os.Exit(1)
	}

	log.Info(fmt.Sprintf("✅ Extracted %d vectors in %v", len(vectors), time.Since(startTime)))
	log.Info(fmt.Sprintf("📄 Output: %s", *outputPath))
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	return lines, scanner.Err()
}

func writeVectors(path string, vectors [][]float32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	buf := bufio.NewWriter(f)

	for _, vec := range vectors {
		for i, v := range vec {
			if i > 0 {
				if err := buf.WriteByte('\t'); err != nil {
					f.Close()

					return err
				}
			}

			if _, err := buf.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32)); err != nil {
				f.Close()

				return err
			}
		}

		if err := buf.WriteByte('\n'); err != nil {
			f.Close()

			return err
		}
	}

	if err := buf.Flush(); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}
