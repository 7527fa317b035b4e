package article

import (
	"github.com/gin-gonic/gin"
	"github.com/inkpress/core/internal/middleware"
	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/apperror"
	"github.com/inkpress/core/internal/pkg/pagination"
	"github.com/inkpress/core/internal/pkg/response"
	"github.com/inkpress/core/internal/workflow"
)

// Handler exposes article CRUD, block saving and workflow transitions.
type Handler struct {
	svc     *Service
	machine *workflow.Machine
}

func NewHandler(svc *Service, machine *workflow.Machine) *Handler {
	return &Handler{svc: svc, machine: machine}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	writerMW := middleware.RequireRole(models.RoleWriter)

	g := rg.Group("/articles", authMW)
	g.GET("", h.list)
	g.POST("", writerMW, h.create)
	g.POST("/bulk", middleware.RequireRole(models.RoleEditor), h.bulk)
	g.GET("/:id", h.get)
	g.PATCH("/:id", writerMW, h.update)
	g.DELETE("/:id", middleware.RequireRole(models.RoleEditor), h.delete)
	g.GET("/:id/blocks", h.getBlocks)
	g.PUT("/:id/blocks", writerMW, h.saveBlocks)
	g.POST("/:id/submit", h.submit)
	g.POST("/:id/approve", h.approve)
	g.POST("/:id/reject", h.reject)
	g.POST("/:id/publish", h.publish)
	g.POST("/:id/unpublish", h.unpublish)
}

func (h *Handler) actor(c *gin.Context) workflow.Actor {
	return workflow.Actor{
		ID:   middleware.CurrentUserID(c),
		Role: middleware.CurrentRole(c),
	}
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	var lq ListQuery

	if v := c.Query("status"); v != "" {
		status := models.ArticleStatus(v)
		lq.Status = &status
	}
	if v := c.Query("category"); v != "" {
		lq.Category = &v
	}
	if v := c.Query("tag"); v != "" {
		lq.Tag = &v
	}
	// Writers only see their own articles; editors see everything.
	if !middleware.CurrentRole(c).AtLeast(models.RoleEditor) {
		author := middleware.CurrentUserID(c)
		lq.AuthorID = &author
	}

	articles, pag, err := h.svc.List(q, lq)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, articles, pag)
}

func (h *Handler) get(c *gin.Context) {
	article, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if article == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, article)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	article, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, article)
}

// mutable loads the target article and refuses the request unless the
// caller may modify it (models.ArticleModel.EditableBy).
func (h *Handler) mutable(c *gin.Context) bool {
	article, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return false
	}
	if article == nil {
		response.NotFound(c)
		return false
	}
	if !article.EditableBy(middleware.CurrentUserID(c), middleware.CurrentRole(c)) {
		response.Error(c, apperror.Authorization("only the author or an editor may modify this article"))
		return false
	}
	return true
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	fields := dto.Fields()
	if len(fields) == 0 {
		response.BadRequest(c, "no fields to update")
		return
	}
	if !h.mutable(c) {
		return
	}
	id := c.Param("id")
	if err := h.svc.Update(c.Request.Context(), id, fields); err != nil {
		response.Error(c, err)
		return
	}
	article, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, article)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) getBlocks(c *gin.Context) {
	seq, err := h.svc.Blocks(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"blocks": seq})
}

func (h *Handler) saveBlocks(c *gin.Context) {
	var dto SaveBlocksDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !h.mutable(c) {
		return
	}
	if err := h.svc.UpdateBlocks(c.Request.Context(), c.Param("id"), dto.Content); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"saved": true})
}

func (h *Handler) submit(c *gin.Context) {
	article, err := h.machine.SubmitForReview(c.Request.Context(), h.actor(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, article)
}

func (h *Handler) approve(c *gin.Context) {
	var dto ReviewDTO
	_ = c.ShouldBindJSON(&dto)
	article, err := h.machine.Approve(c.Request.Context(), h.actor(c), c.Param("id"), dto.Feedback)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, article)
}

func (h *Handler) reject(c *gin.Context) {
	var dto ReviewDTO
	_ = c.ShouldBindJSON(&dto)
	article, err := h.machine.Reject(c.Request.Context(), h.actor(c), c.Param("id"), dto.Feedback)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, article)
}

func (h *Handler) publish(c *gin.Context) {
	article, err := h.machine.Publish(c.Request.Context(), h.actor(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, article)
}

func (h *Handler) unpublish(c *gin.Context) {
	article, err := h.machine.Unpublish(c.Request.Context(), h.actor(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, article)
}

func (h *Handler) bulk(c *gin.Context) {
	var dto BulkDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	results, err := h.machine.BulkApply(
		c.Request.Context(), h.actor(c),
		workflow.BulkAction(dto.Action), dto.IDs, dto.CategoryID,
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"results": results})
}
