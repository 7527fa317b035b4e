// Package cache keeps short-lived projections of published articles in
// Redis. Every operation here is fail-open: a cache outage degrades to
// hitting the database, it never fails a request.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/inkpress/core/internal/models"
	redisc "github.com/inkpress/core/internal/pkg/redis"
	"go.uber.org/zap"
)

const (
	keyPrefix     = "ink:"
	keyBySlug     = keyPrefix + "article:slug:"
	keyByID       = keyPrefix + "article:id:"
	keyRelated    = keyPrefix + "article:related:"
	patternList   = keyPrefix + "articles:list:*"
	prefixByCat   = keyPrefix + "articles:category:"
	prefixByTag   = keyPrefix + "articles:tag:"
	defaultTTL    = 60 * time.Second
	listCacheTTL  = 30 * time.Second
	invalidateTTL = 3 * time.Second // budget for one invalidation pass
)

// ArticleCache caches published-article lookups and knows how to drop
// every derived key family for one article.
type ArticleCache struct {
	rc     *redisc.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New builds an ArticleCache. A nil client disables caching entirely.
func New(rc *redisc.Client, logger *zap.Logger) *ArticleCache {
	return &ArticleCache{rc: rc, ttl: defaultTTL, logger: logger}
}

// GetBySlug returns the cached article for slug, or nil on miss or error.
func (c *ArticleCache) GetBySlug(ctx context.Context, slug string) *models.ArticleModel {
	if c == nil || c.rc == nil {
		return nil
	}
	raw, err := c.rc.Get(ctx, keyBySlug+slug)
	if err != nil {
		c.warn("cache get failed", err)
		return nil
	}
	if raw == "" {
		return nil
	}
	var article models.ArticleModel
	if err := json.Unmarshal([]byte(raw), &article); err != nil {
		c.warn("cache entry undecodable, dropping", err)
		_ = c.rc.Del(ctx, keyBySlug+slug)
		return nil
	}
	return &article
}

// SetBySlug caches a published article under its slug with a short TTL.
func (c *ArticleCache) SetBySlug(ctx context.Context, article *models.ArticleModel) {
	if c == nil || c.rc == nil || article == nil {
		return
	}
	raw, err := json.Marshal(article)
	if err != nil {
		c.warn("cache marshal failed", err)
		return
	}
	if err := c.rc.Set(ctx, keyBySlug+article.Slug, raw, c.ttl); err != nil {
		c.warn("cache set failed", err)
	}
}

// InvalidateArticle drops the slug, id, related, list, category and tag
// cache entries derived from one article. Implements workflow.Invalidator.
func (c *ArticleCache) InvalidateArticle(ctx context.Context, article *models.ArticleModel) {
	if c == nil || c.rc == nil || article == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, invalidateTTL)
	defer cancel()

	if err := c.rc.Del(ctx,
		keyBySlug+article.Slug,
		keyByID+article.ID,
		keyRelated+article.ID,
	); err != nil {
		c.warn("cache invalidate (keys) failed", err)
	}
	if err := c.rc.DelPattern(ctx, patternList); err != nil {
		c.warn("cache invalidate (lists) failed", err)
	}
	if article.CategoryID != nil {
		if err := c.rc.DelPattern(ctx, prefixByCat+*article.CategoryID+":*"); err != nil {
			c.warn("cache invalidate (category) failed", err)
		}
	}
	for _, tag := range article.Tags {
		if err := c.rc.DelPattern(ctx, prefixByTag+tag+":*"); err != nil {
			c.warn("cache invalidate (tag) failed", err)
		}
	}
}

func (c *ArticleCache) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, zap.Error(err))
	}
}
