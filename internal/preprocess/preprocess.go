// Package preprocess turns raw title/abstract corpora into tokenized,
// classification-ready files.
//
// The whole operation works batch-at-a-time and writes incrementally, so
// peak memory stays constant in the corpus size.
package preprocess

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"arxivprep/internal/dataset"
	"arxivprep/internal/models"
	"arxivprep/internal/tokenizer"
	"arxivprep/pkg/manifest"
	"arxivprep/pkg/progress"
	"arxivprep/pkg/textutil"
)

// Preprocessing errors.
var (
	ErrRowCountMismatch = errors.New("token file and TSV row counts do not match")
)

// Options names the input and output files of one preprocessing run.
// TSV inputs must carry title and abstract columns followed by categories;
// the category files must list the same rows in the same order.
type Options struct {
	CategoriesIn        string
	MasterCategoriesIn  string
	CategoriesOut       string
	MasterCategoriesOut string
	TokenizedPath       string
	SignManifests       bool
}

// Result reports what a run produced.
type Result struct {
	Rows    int
	Dropped int
}

// Preprocessor merges titles with abstracts, tokenizes them and rewrites
// the category TSVs with the tokenized text as the first column.
type Preprocessor struct {
	tok       *tokenizer.Tokenizer
	batchSize int
	progressW io.Writer
}

// New creates a preprocessor working in batches of batchSize rows.
// progressW may be nil to disable the status line.
func New(tok *tokenizer.Tokenizer, batchSize int, progressW io.Writer) *Preprocessor {
	if batchSize < 1 {
		batchSize = 1000
	}

	return &Preprocessor{
		tok:       tok,
		batchSize: batchSize,
		progressW: progressW,
	}
}

// Run executes the full preprocessing operation: write the token file from
// the categories input, then rewrite both category TSVs against it.
func (p *Preprocessor) Run(opts Options) (*Result, error) {
	res, err := p.WriteTokenLines(opts.CategoriesIn, opts.TokenizedPath)
	if err != nil {
		return nil, fmt.Errorf("tokenization failed: %w", err)
	}

	insOuts := [][2]string{
		{opts.CategoriesIn, opts.CategoriesOut},
		{opts.MasterCategoriesIn, opts.MasterCategoriesOut},
	}

	for _, pair := range insOuts {
		if err := p.AttachText(pair[0], pair[1], opts.TokenizedPath); err != nil {
			return nil, fmt.Errorf("storing preprocessed texts for %s failed: %w", pair[0], err)
		}
	}

	if opts.SignManifests {
		for _, path := range []string{opts.TokenizedPath, opts.CategoriesOut, opts.MasterCategoriesOut} {
			if err := manifest.Sign(path, res.Rows); err != nil {
				return nil, err
			}
		}
	}

	return res, nil
}

// WriteTokenLines streams the input TSV, merges each row's title and
// abstract, tokenizes the result and writes one space-joined token line per
// surviving row. Rows with an empty title or abstract are dropped.
func (p *Preprocessor) WriteTokenLines(inPath, txtPath string) (*Result, error) {
	total, err := countDataRows(inPath)
	if err != nil {
		return nil, err
	}

	r, err := dataset.OpenReader(inPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	columns := r.Columns()
	if err := dataset.ValidateRawHeader(columns); err != nil {
		return nil, fmt.Errorf("invalid header in %s: %w", inPath, err)
	}

	titleIdx := dataset.ColumnIndex(columns, "title")
	abstractIdx := dataset.ColumnIndex(columns, "abstract")

	out, err := os.Create(txtPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create token file: %w", err)
	}

	buf := bufio.NewWriter(out)
	bar := progress.NewPrinter(p.progressW, "Preprocessing texts", total)
	res := &Result{}

	// Batch loop: tokenize batchSize merged documents at a time and flush
	// their lines before reading the next batch.
	batch := make([]string, 0, p.batchSize)

	flush := func() error {
		err := p.tok.Pipe(batch, func(tokens []string) error {
			if _, werr := buf.WriteString(textutil.JoinTokens(tokens) + "\n"); werr != nil {
				return fmt.Errorf("failed to write token line: %w", werr)
			}

			return nil
		})
		if err != nil {
			return err
		}

		res.Rows += len(batch)
		bar.Add(len(batch))
		batch = batch[:0]

		return nil
	}

	for {
		row, ok := r.Next()
		if !ok {
			break
		}

		doc := models.Document{
			Title:    textutil.TrimWhitespace(row[titleIdx]),
			Abstract: textutil.TrimWhitespace(row[abstractIdx]),
		}

		if doc.Title == "" || doc.Abstract == "" {
			res.Dropped++
			bar.Add(1)

			continue
		}

		batch = append(batch, doc.Text())

		if len(batch) >= p.batchSize {
			if err := flush(); err != nil {
				out.Close()

				return nil, err
			}
		}
	}

	if err := r.Err(); err != nil {
		out.Close()

		return nil, err
	}

	if err := flush(); err != nil {
		out.Close()

		return nil, err
	}

	bar.Finish()

	if err := buf.Flush(); err != nil {
		out.Close()

		return nil, fmt.Errorf("failed to flush token file: %w", err)
	}

	return res, out.Close()
}

// AttachText rewrites a category TSV with the tokenized text first: the
// output header is "text" followed by the input's category columns, and
// row i pairs token line i with the categories of the i-th surviving row.
func (p *Preprocessor) AttachText(inPath, outPath, txtPath string) error {
	r, err := dataset.OpenReader(inPath)
	if err != nil {
		return err
	}
	defer r.Close()

	columns := r.Columns()
	if err := dataset.ValidateRawHeader(columns); err != nil {
		return fmt.Errorf("invalid header in %s: %w", inPath, err)
	}

	titleIdx := dataset.ColumnIndex(columns, "title")
	abstractIdx := dataset.ColumnIndex(columns, "abstract")

	var catIdx []int

	outColumns := []string{"text"}

	for i, col := range columns {
		if i == titleIdx || i == abstractIdx {
			continue
		}

		catIdx = append(catIdx, i)
		outColumns = append(outColumns, col)
	}

	txt, err := os.Open(txtPath)
	if err != nil {
		return fmt.Errorf("failed to open token file: %w", err)
	}
	defer txt.Close()

	lines := bufio.NewScanner(txt)
	lines.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	w, err := dataset.CreateWriter(outPath, outColumns)
	if err != nil {
		return err
	}

	for {
		row, ok := r.Next()
		if !ok {
			break
		}

		// Mirror the drop criterion of WriteTokenLines so the token lines
		// stay aligned with the surviving rows.
		if textutil.TrimWhitespace(row[titleIdx]) == "" ||
			textutil.TrimWhitespace(row[abstractIdx]) == "" {
			continue
		}

		if !lines.Scan() {
			w.Close()

			if scanErr := lines.Err(); scanErr != nil {
				return fmt.Errorf("failed to read token file: %w", scanErr)
			}

			return fmt.Errorf("%w: token file ends before row %d", ErrRowCountMismatch, r.Line())
		}

		fields := make([]string, 0, len(outColumns))
		fields = append(fields, lines.Text())

		for _, idx := range catIdx {
			fields = append(fields, row[idx])
		}

		if err := w.WriteRow(fields); err != nil {
			w.Close()

			return err
		}
	}

	if err := r.Err(); err != nil {
		w.Close()

		return err
	}

	if lines.Scan() {
		w.Close()

		return fmt.Errorf("%w: token file has extra lines", ErrRowCountMismatch)
	}

	return w.Close()
}

// countDataRows counts the data rows of a TSV without loading it.
func countDataRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open TSV file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	count := 0
	for scanner.Scan() {
		count++
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}

	if count == 0 {
		return 0, nil
	}

	return count - 1, nil
}
