// Package importer warms the word store from a word list in an Excel or CSV file.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/example/wordbot/internal/database"
	"github.com/example/wordbot/internal/vocabulary"
	"github.com/example/wordbot/pkg/models"
)

// Lookuper resolves a word, fetching it from the dictionary on a miss
type Lookuper interface {
	Lookup(ctx context.Context, raw string) (*models.Word, error)
}

// WordStore tells words already cached apart from new ones
type WordStore interface {
	GetByWord(ctx context.Context, word string) (*models.Word, error)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath   string // Path to the Excel or CSV file
	WordColumn string // Column with the word, e.g. "A"
	SheetName  string // Sheet to read; the first sheet when empty
	StartRow   int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn: "A",
		StartRow:   2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Cached         int // already in the word store
	Fetched        int // looked up from the dictionary
	Failed         int
	Errors         []string
}

type entry struct {
	row  int
	word string
}

// Importer looks up every word of a list through the cache
type Importer struct {
	cache  Lookuper
	words  WordStore
	logger logrus.FieldLogger
}

// New creates an importer
func New(cache Lookuper, words WordStore, logger logrus.FieldLogger) *Importer {
	return &Importer{cache: cache, words: words, logger: logger}
}

// Import reads the word column of the file and makes sure every distinct word
// is in the word store. Bad rows and failed lookups are reported in the
// result and do not stop the import.
func (im *Importer) Import(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	col, err := excelize.ColumnNameToNumber(config.WordColumn)
	if err != nil {
		return nil, fmt.Errorf("invalid word column %q: %w", config.WordColumn, err)
	}

	var rows [][]string
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	entries := make([]entry, 0, len(rows))
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < config.StartRow || len(row) < col || strings.TrimSpace(row[col-1]) == "" {
			continue
		}
		result.TotalProcessed++

		word, err := vocabulary.Normalize(cleanWord(row[col-1]))
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %q is not a single word", rowNum, row[col-1]))
			continue
		}
		entries = append(entries, entry{row: rowNum, word: word})
	}

	unique := lo.UniqBy(entries, func(e entry) string { return e.word })
	im.logger.WithFields(logrus.Fields{
		"file":       config.FilePath,
		"rows":       result.TotalProcessed,
		"duplicates": len(entries) - len(unique),
	}).Info("importing word list")

	for _, e := range unique {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		im.importWord(ctx, e, result)
	}
	return result, nil
}

func (im *Importer) importWord(ctx context.Context, e entry, result *ImportResult) {
	_, err := im.words.GetByWord(ctx, e.word)
	if err == nil {
		result.Cached++
		return
	}
	if !errors.Is(err, database.ErrNotFound) {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", e.row, err))
		return
	}

	if _, err := im.cache.Lookup(ctx, e.word); err != nil {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s: %v", e.row, e.word, err))
		im.logger.WithError(err).WithField("word", e.word).Debug("import lookup failed")
		return
	}
	result.Fetched++
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cleanWord drops a trailing note in parentheses, e.g. "go (went, gone)"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}
