package comment

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/core/internal/middleware"
	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/pagination"
	"github.com/inkpress/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	// Public surface.
	rg.GET("/articles/:id/comments", h.listPublic)
	rg.POST("/comments", h.create)
	rg.POST("/comments/:id/flag", h.flag)

	// Moderation queue.
	g := rg.Group("/admin/comments", authMW, middleware.RequireRole(models.RoleEditor))
	g.GET("", h.list)
	g.PATCH("/:id/state", h.setState)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) listPublic(c *gin.Context) {
	comments, err := h.svc.ListPublic(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, comments)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCommentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comment, err := h.svc.Create(c.Request.Context(), &dto, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

func (h *Handler) flag(c *gin.Context) {
	if err := h.svc.Flag(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"flagged": true})
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)

	var articleID *string
	if v := c.Query("article_id"); v != "" {
		articleID = &v
	}
	var state *models.CommentState
	if v := c.Query("state"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s := models.CommentState(n)
			state = &s
		}
	}

	comments, pag, err := h.svc.List(q, articleID, state)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, comments, pag)
}

func (h *Handler) setState(c *gin.Context) {
	var dto struct {
		State models.CommentState `json:"state"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comment, err := h.svc.SetState(c.Request.Context(), c.Param("id"), dto.State)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, comment)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
