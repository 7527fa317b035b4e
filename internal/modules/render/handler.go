package render

import (
	"github.com/gin-gonic/gin"
	"github.com/inkpress/core/internal/blocks"
	"github.com/inkpress/core/internal/middleware"
	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/modules/article"
	"github.com/inkpress/core/internal/pkg/response"
	"go.uber.org/zap"
)

// Handler serves the public article page payload: rendered HTML + SEO.
type Handler struct {
	articles *article.Service
	renderer *Renderer
	logger   *zap.Logger
}

func NewHandler(articles *article.Service, renderer *Renderer, logger *zap.Logger) *Handler {
	return &Handler{articles: articles, renderer: renderer, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, optionalAuthMW gin.HandlerFunc) {
	g := rg.Group("/public", optionalAuthMW)
	g.GET("/articles/:slug", h.bySlug)
}

func (h *Handler) bySlug(c *gin.Context) {
	slug := c.Param("slug")
	isStaff := middleware.CurrentRole(c).AtLeast(models.RoleEditor)

	art, err := h.articles.GetBySlug(c.Request.Context(), slug, !isStaff)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	// Unpublished articles are invisible to the public; editors get a
	// preview.
	if art == nil || (!art.IsPublished() && !isStaff) {
		response.NotFound(c)
		return
	}

	seq := blocks.ParseSequence(art.Content, h.logger)
	response.OK(c, gin.H{
		"article": gin.H{
			"id":           art.ID,
			"title":        art.Title,
			"slug":         art.Slug,
			"summary":      art.Summary,
			"published_at": art.PublishedAt,
			"category":     art.Category,
			"tags":         art.Tags,
			"views":        art.ViewCount,
		},
		"html": h.renderer.HTML(seq),
		"seo":  h.renderer.SEO(art, seq),
	})
}
