package database_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordbot/internal/database"
	"github.com/example/wordbot/internal/database/dbtest"
	"github.com/example/wordbot/pkg/models"
)

func elephant() *models.Word {
	return &models.Word{
		Word:          "elephant",
		Pronunciation: "ˈelɪfənt",
		Definition:    "n. a very large animal with a trunk",
		Audio:         sql.NullString{String: "data/audio/elephant.mp3", Valid: true},
	}
}

func TestWordRepositoryGetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := database.NewWordRepository(dbtest.New(t))

	first, created, err := repo.GetOrCreate(ctx, elephant())
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, first.ID)
	assert.Equal(t, "elephant", first.Word)
	assert.Equal(t, "data/audio/elephant.mp3", first.AudioPath())

	dup := elephant()
	dup.Definition = "something else"
	second, created, err := repo.GetOrCreate(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Definition, second.Definition)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWordRepositoryConcurrentGetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := database.NewWordRepository(dbtest.New(t))

	const n = 16
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, _, err := repo.GetOrCreate(ctx, elephant())
			assert.NoError(t, err)
			if w != nil {
				ids[i] = w.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWordRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := database.NewWordRepository(dbtest.New(t))

	_, err := repo.GetByWord(ctx, "ghost")
	assert.True(t, errors.Is(err, database.ErrNotFound))

	_, err = repo.GetByID(ctx, 42)
	assert.True(t, errors.Is(err, database.ErrNotFound))

	_, err = repo.GetByOffset(ctx, 0)
	assert.True(t, errors.Is(err, database.ErrNotFound))
}

func TestWordRepositoryGetByOffset(t *testing.T) {
	ctx := context.Background()
	repo := database.NewWordRepository(dbtest.New(t))

	for _, text := range []string{"apple", "banana", "cherry"} {
		_, _, err := repo.GetOrCreate(ctx, &models.Word{Word: text, Pronunciation: "p", Definition: "d"})
		require.NoError(t, err)
	}

	w, err := repo.GetByOffset(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "banana", w.Word)
}

func TestUserRepositoryGetOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := database.NewUserRepository(dbtest.New(t))

	user, created, err := repo.GetOrCreate(ctx, "1001")
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, user.IsSubscribed)
	assert.False(t, user.CreatedAt.IsZero())

	again, created, err := repo.GetOrCreate(ctx, "1001")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)

	_, _, err = repo.GetOrCreate(ctx, "1002")
	require.NoError(t, err)

	users, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserProgressRepository(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	words := database.NewWordRepository(db)
	users := database.NewUserRepository(db)
	repo := database.NewUserProgressRepository(db)

	word, _, err := words.GetOrCreate(ctx, elephant())
	require.NoError(t, err)
	user, _, err := users.GetOrCreate(ctx, "1001")
	require.NoError(t, err)
	other, _, err := users.GetOrCreate(ctx, "2002")
	require.NoError(t, err)

	progress, created, err := repo.GetOrCreate(ctx, user.ID, word.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 0, progress.CheckTimes)

	same, created, err := repo.GetOrCreate(ctx, user.ID, word.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, progress.ID, same.ID)

	t.Run("increment is relative", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Increment(ctx, user.ID, progress.ID)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := repo.GetByID(ctx, progress.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, got.CheckTimes)
	})

	t.Run("increment of another user's record", func(t *testing.T) {
		_, err := repo.Increment(ctx, other.ID, progress.ID)
		assert.True(t, errors.Is(err, database.ErrNotFound))
	})

	t.Run("reset", func(t *testing.T) {
		require.NoError(t, repo.Reset(ctx, progress.ID))
		got, err := repo.GetByID(ctx, progress.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.CheckTimes)

		assert.True(t, errors.Is(repo.Reset(ctx, 9999), database.ErrNotFound))
	})

	count, err := repo.CountByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUserProgressRepositoryReviewQueries(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	words := database.NewWordRepository(db)
	users := database.NewUserRepository(db)
	repo := database.NewUserProgressRepository(db)

	user, _, err := users.GetOrCreate(ctx, "1001")
	require.NoError(t, err)

	var ids []int64
	for _, text := range []string{"apple", "banana", "cherry"} {
		w, _, err := words.GetOrCreate(ctx, &models.Word{Word: text, Pronunciation: "p", Definition: "d"})
		require.NoError(t, err)
		p, _, err := repo.GetOrCreate(ctx, user.ID, w.ID)
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	// master banana
	for i := 0; i < 2; i++ {
		_, err := repo.Increment(ctx, user.ID, ids[1])
		require.NoError(t, err)
	}
	const threshold = 2

	next, err := repo.NextAfter(ctx, user.ID, 0, threshold)
	require.NoError(t, err)
	assert.Equal(t, ids[0], next.ID)

	next, err = repo.NextAfter(ctx, user.ID, ids[0], threshold)
	require.NoError(t, err)
	assert.Equal(t, ids[2], next.ID)

	_, err = repo.NextAfter(ctx, user.ID, ids[2], threshold)
	assert.True(t, errors.Is(err, database.ErrNotFound))

	unmastered, err := repo.UnmasteredIDs(ctx, user.ID, threshold)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0], ids[2]}, unmastered)
}
