package cache_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/cache"
	redisc "github.com/inkpress/core/internal/pkg/redis"
)

func newTestCache(t *testing.T) (*cache.ArticleCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redisc.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return cache.New(rc, zaptest.NewLogger(t)), mr
}

func published(id, slug string) *models.ArticleModel {
	a := &models.ArticleModel{
		Title:  "Feature",
		Slug:   slug,
		Status: models.StatusPublished,
	}
	a.ID = id
	return a
}

func TestSetGetBySlug(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	assert.Nil(t, c.GetBySlug(ctx, "city-gardens"), "cold cache misses")

	c.SetBySlug(ctx, published("a1", "city-gardens"))

	got := c.GetBySlug(ctx, "city-gardens")
	require.NotNil(t, got)
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, "Feature", got.Title)
}

func TestGetBySlug_DropsUndecodableEntry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("ink:article:slug:bad", "{{{"))
	assert.Nil(t, c.GetBySlug(ctx, "bad"))
	assert.False(t, mr.Exists("ink:article:slug:bad"), "a poisoned entry is deleted")
}

func TestInvalidateArticle_DropsDerivedKeyFamilies(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	catID := "c-culture"
	a := published("a1", "city-gardens")
	a.CategoryID = &catID
	a.Tags = models.StringSlice{"urbanism"}

	c.SetBySlug(ctx, a)
	for _, key := range []string{
		"ink:article:id:a1",
		"ink:article:related:a1",
		"ink:articles:list:page:1",
		"ink:articles:list:page:2",
		"ink:articles:category:c-culture:page:1",
		"ink:articles:tag:urbanism:page:1",
		"ink:articles:category:c-other:page:1",
		"ink:article:slug:untouched",
	} {
		require.NoError(t, mr.Set(key, "x"))
	}

	c.InvalidateArticle(ctx, a)

	for _, gone := range []string{
		"ink:article:slug:city-gardens",
		"ink:article:id:a1",
		"ink:article:related:a1",
		"ink:articles:list:page:1",
		"ink:articles:list:page:2",
		"ink:articles:category:c-culture:page:1",
		"ink:articles:tag:urbanism:page:1",
	} {
		assert.False(t, mr.Exists(gone), gone)
	}

	assert.True(t, mr.Exists("ink:articles:category:c-other:page:1"),
		"other categories keep their entries")
	assert.True(t, mr.Exists("ink:article:slug:untouched"))
}

func TestCache_FailOpen(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	a := published("a1", "city-gardens")

	mr.Close()

	assert.Nil(t, c.GetBySlug(ctx, "city-gardens"))
	assert.NotPanics(t, func() {
		c.SetBySlug(ctx, a)
		c.InvalidateArticle(ctx, a)
	})
}

func TestCache_NilClient(t *testing.T) {
	c := cache.New(nil, zaptest.NewLogger(t))
	ctx := context.Background()
	a := published("a1", "slug")

	assert.Nil(t, c.GetBySlug(ctx, "slug"))
	assert.NotPanics(t, func() {
		c.SetBySlug(ctx, a)
		c.InvalidateArticle(ctx, a)
	})
}
