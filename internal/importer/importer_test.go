package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/wordbot/internal/database"
	"github.com/example/wordbot/internal/database/dbtest"
	"github.com/example/wordbot/internal/logging"
	"github.com/example/wordbot/internal/vocabulary"
	"github.com/example/wordbot/pkg/models"
)

type fakeCache struct {
	words   *database.WordRepository
	missing map[string]bool
	calls   []string
}

func (f *fakeCache) Lookup(ctx context.Context, raw string) (*models.Word, error) {
	f.calls = append(f.calls, raw)
	if f.missing[raw] {
		return nil, vocabulary.ErrNotFound
	}
	w, _, err := f.words.GetOrCreate(ctx, &models.Word{Word: raw, Pronunciation: "p", Definition: "d"})
	return w, err
}

func newTestImporter(t *testing.T) (*Importer, *fakeCache) {
	t.Helper()
	words := database.NewWordRepository(dbtest.New(t))
	cache := &fakeCache{words: words, missing: map[string]bool{}}
	return New(cache, words, logging.Discard()), cache
}

func TestImportCSV(t *testing.T) {
	im, cache := newTestImporter(t)
	ctx := context.Background()
	_, _, err := cache.words.GetOrCreate(ctx, &models.Word{Word: "apple", Pronunciation: "p", Definition: "d"})
	require.NoError(t, err)
	cache.missing["qwzx"] = true

	path := filepath.Join(t.TempDir(), "words.csv")
	content := "word,note\napple,fruit\nBanana,\ngo (went; gone),verb\nbanana,dup\nhello world,\n\nqwzx,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	result, err := im.Import(ctx, cfg)
	require.NoError(t, err)

	assert.Equal(t, 6, result.TotalProcessed)
	assert.Equal(t, 1, result.Cached)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 2, result.Failed)
	assert.Len(t, result.Errors, 2)
	assert.Equal(t, []string{"banana", "go", "qwzx"}, cache.calls)
}

func TestImportExcel(t *testing.T) {
	im, cache := newTestImporter(t)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, v := range []string{"Word", "elephant", "tiger", "Elephant"} {
		cell, err := excelize.CoordinatesToCellName(2, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}
	path := filepath.Join(t.TempDir(), "words.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	result, err := im.Import(context.Background(), ImportConfig{FilePath: path, WordColumn: "B", StartRow: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 2, result.Fetched)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"elephant", "tiger"}, cache.calls)
}

func TestImportErrors(t *testing.T) {
	im, _ := newTestImporter(t)

	_, err := im.Import(context.Background(), ImportConfig{FilePath: "missing.csv", WordColumn: "A"})
	assert.Error(t, err)

	_, err = im.Import(context.Background(), ImportConfig{FilePath: "words.csv", WordColumn: "1"})
	assert.Error(t, err)
}

func TestCleanWord(t *testing.T) {
	assert.Equal(t, "go", cleanWord(" go (went, gone) "))
	assert.Equal(t, "(odd)", cleanWord("(odd)"))
	assert.Equal(t, "apple", cleanWord("apple"))
}
