package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
)

type cachedCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestCacheRepositorySetGet(t *testing.T) {
	mr, client := newRedis(t)
	repo := NewCacheRepository(client, "test:cache", nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "categories:parents", []cachedCategory{{ID: "c1", Name: "Design"}}, time.Minute))
	assert.True(t, mr.Exists("test:cache:categories:parents"))

	var out []cachedCategory
	require.NoError(t, repo.Get(ctx, "categories:parents", &out))
	assert.Equal(t, "Design", out[0].Name)

	err := repo.Get(ctx, "categories:all", &out)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestCacheRepositoryCorruptEntryIsMiss(t *testing.T) {
	mr, client := newRedis(t)
	repo := NewCacheRepository(client, "test:cache", nil)
	require.NoError(t, mr.Set("test:cache:broken", "{not json"))

	var out []cachedCategory
	err := repo.Get(context.Background(), "broken", &out)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.False(t, mr.Exists("test:cache:broken"))
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	mr, client := newRedis(t)
	repo := NewCacheRepository(client, "test:cache", nil)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, repo.Set(ctx, fmt.Sprintf("categories:%d", i), i, time.Minute))
	}
	require.NoError(t, repo.Set(ctx, "courses:featured", 1, time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "categories:*"))

	assert.Len(t, mr.Keys(), 1)
	assert.True(t, mr.Exists("test:cache:courses:featured"))
}
