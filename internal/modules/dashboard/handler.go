package dashboard

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/core/internal/middleware"
	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/response"
	"github.com/inkpress/core/internal/workflow"
)

// Handler exposes the dashboard workspace over HTTP.
type Handler struct {
	mgr     *Manager
	machine *workflow.Machine
}

func NewHandler(mgr *Manager, machine *workflow.Machine) *Handler {
	return &Handler{mgr: mgr, machine: machine}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/dashboard", authMW, middleware.RequireRole(models.RoleWriter))
	g.GET("/selection", h.selection)
	g.POST("/selection/toggle", h.toggle)
	g.DELETE("/selection", h.clear)
	g.POST("/bulk", middleware.RequireRole(models.RoleEditor), h.bulk)
	g.PATCH("/articles/:id/title", h.rename)
}

func (h *Handler) workspace(c *gin.Context) *Workspace {
	return h.mgr.Workspace(middleware.CurrentUserID(c))
}

func (h *Handler) selection(c *gin.Context) {
	ws := h.workspace(c)
	response.OK(c, gin.H{"ids": ws.Selected(), "count": ws.SelectedCount()})
}

func (h *Handler) toggle(c *gin.Context) {
	var dto struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ws := h.workspace(c)
	ws.Toggle(dto.ID)
	response.OK(c, gin.H{"count": ws.SelectedCount()})
}

func (h *Handler) clear(c *gin.Context) {
	h.workspace(c).ClearSelection()
	response.NoContent(c)
}

func (h *Handler) bulk(c *gin.Context) {
	var dto struct {
		Action     string  `json:"action" binding:"required"`
		CategoryID *string `json:"category_id"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actor := workflow.Actor{
		ID:   middleware.CurrentUserID(c),
		Role: middleware.CurrentRole(c),
	}
	var results []workflow.BulkResult
	err := h.workspace(c).BulkApply(c.Request.Context(), dto.Action,
		func(ctx context.Context, action string, ids []string) error {
			res, err := h.machine.BulkApply(ctx, actor, workflow.BulkAction(action), ids, dto.CategoryID)
			results = res
			return err
		})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"results": results})
}

func (h *Handler) rename(c *gin.Context) {
	var dto struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	id := c.Param("id")
	ws := h.workspace(c)
	if err := ws.RenameArticle(c.Request.Context(), h.mgr.articles, id, dto.Title); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": id, "title": dto.Title})
}
