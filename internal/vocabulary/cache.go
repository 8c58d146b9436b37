// Package vocabulary resolves words through the local word store, falling
// back to the dictionary provider on a miss.
package vocabulary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/example/wordbot/internal/database"
	"github.com/example/wordbot/internal/dictionary"
	"github.com/example/wordbot/internal/metrics"
	"github.com/example/wordbot/pkg/models"
)

// WordStore is the persistent side of the cache
type WordStore interface {
	GetByWord(ctx context.Context, word string) (*models.Word, error)
	GetOrCreate(ctx context.Context, word *models.Word) (*models.Word, bool, error)
}

// Provider is the authoritative dictionary
type Provider interface {
	Lookup(ctx context.Context, word string) (*dictionary.Entry, error)
	FetchAudio(ctx context.Context, audioURL string) ([]byte, error)
}

// Cache is a look-aside cache of dictionary entries
type Cache struct {
	words    WordStore
	provider Provider
	audio    *AudioStore
	logger   logrus.FieldLogger
	inflight singleflight.Group
}

// NewCache creates a cache. audio may be nil to skip downloading clips.
func NewCache(words WordStore, provider Provider, audio *AudioStore, logger logrus.FieldLogger) *Cache {
	return &Cache{
		words:    words,
		provider: provider,
		audio:    audio,
		logger:   logger,
	}
}

// Lookup returns the stored word for raw, fetching and persisting it on a miss.
// Errors are ErrInvalidInput, ErrNotFound, ErrLookupFailure (which also
// matches ErrNotFound) or a store failure.
func (c *Cache) Lookup(ctx context.Context, raw string) (*models.Word, error) {
	text, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	word, err := c.words.GetByWord(ctx, text)
	if err == nil {
		metrics.RecordWordLookup(true)
		return word, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	metrics.RecordWordLookup(false)

	// Concurrent misses for the same word share one provider call. The flight
	// outlives any single caller, so it runs detached from the caller's
	// cancellation and is bounded by the provider's own timeout.
	ch := c.inflight.DoChan(text, func() (interface{}, error) {
		return c.fetch(context.WithoutCancel(ctx), text)
	})
	select {
	case <-ctx.Done():
		return nil, &lookupError{err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Word), nil
	}
}

func (c *Cache) fetch(ctx context.Context, text string) (*models.Word, error) {
	// a flight that just finished may have stored it
	if word, err := c.words.GetByWord(ctx, text); err == nil {
		return word, nil
	}

	entry, err := c.provider.Lookup(ctx, text)
	if err != nil {
		if errors.Is(err, dictionary.ErrNotFound) {
			c.logger.WithField("word", text).Info("word not found in dictionary")
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		c.logger.WithError(err).WithField("word", text).Warn("dictionary lookup failed")
		return nil, &lookupError{err: err}
	}

	word := &models.Word{
		Word:          text,
		Pronunciation: entry.Pronunciation,
		Definition:    truncate(entry.Definition, MaxDefinitionLength),
	}
	if entry.AudioURL != "" && c.audio != nil {
		if path, err := c.saveAudio(ctx, entry.AudioURL); err != nil {
			c.logger.WithError(err).WithField("word", text).Warn("failed to cache audio")
		} else {
			word.Audio = sql.NullString{String: path, Valid: true}
		}
	}

	stored, created, err := c.words.GetOrCreate(ctx, word)
	if err != nil {
		c.dropAudio(word)
		return nil, fmt.Errorf("failed to store word: %w", err)
	}
	if !created {
		// another process stored the word first; keep only the clip its row points to
		if stored.AudioPath() != word.AudioPath() {
			c.dropAudio(word)
		}
		return stored, nil
	}
	c.logger.WithFields(logrus.Fields{"word": text, "id": stored.ID}).Info("word cached")
	return stored, nil
}

func (c *Cache) saveAudio(ctx context.Context, audioURL string) (string, error) {
	data, err := c.provider.FetchAudio(ctx, audioURL)
	if err != nil {
		return "", err
	}
	return c.audio.Save(audioFileName(audioURL), data)
}

// dropAudio removes a clip that no stored word refers to
func (c *Cache) dropAudio(word *models.Word) {
	if !word.Audio.Valid {
		return
	}
	if err := c.audio.Remove(word.Audio.String); err != nil {
		c.logger.WithError(err).WithField("word", word.Word).Warn("failed to remove unused audio")
	}
}
