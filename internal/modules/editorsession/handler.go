package editorsession

import (
	"github.com/gin-gonic/gin"
	"github.com/inkpress/core/internal/blocks"
	"github.com/inkpress/core/internal/middleware"
	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/response"
)

// Handler exposes the editing session over HTTP. Every route requires
// the writer role and passes requireAccess, which loads the target
// article and refuses callers who are neither its author nor an editor.
type Handler struct {
	mgr *Manager
}

func NewHandler(mgr *Manager) *Handler { return &Handler{mgr: mgr} }

// requireAccess guards the whole session surface with the article-level
// ownership check.
func (h *Handler) requireAccess(c *gin.Context) {
	err := h.mgr.Authorize(c.Request.Context(), c.Param("id"),
		middleware.CurrentUserID(c), middleware.CurrentRole(c))
	if err != nil {
		response.Error(c, err)
		c.Abort()
		return
	}
	c.Next()
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/editor/:id", authMW,
		middleware.RequireRole(models.RoleWriter), h.requireAccess)
	g.POST("/open", h.open)
	g.DELETE("", h.close)
	g.GET("/state", h.state)
	g.POST("/blocks", h.addBlock)
	g.PATCH("/blocks/:blockId", h.updateBlock)
	g.DELETE("/blocks/:blockId", h.deleteBlock)
	g.POST("/blocks/:blockId/duplicate", h.duplicateBlock)
	g.POST("/move", h.move)
	g.POST("/palette", h.palette)
	g.POST("/select", h.selectBlock)
	g.POST("/undo", h.undo)
	g.POST("/redo", h.redo)
	g.POST("/save", h.save)
}

func (h *Handler) open(c *gin.Context) {
	s, err := h.mgr.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, s.Snapshot())
}

func (h *Handler) close(c *gin.Context) {
	h.mgr.Close(c.Param("id"))
	response.NoContent(c)
}

func (h *Handler) state(c *gin.Context) {
	s, err := h.mgr.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, s.Snapshot())
}

func (h *Handler) addBlock(c *gin.Context) {
	var dto struct {
		Type string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	s, err := h.mgr.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	b, err := s.AddBlock(blocks.Type(dto.Type))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, b)
}

func (h *Handler) updateBlock(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	s, err := h.mgr.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	s.UpdateBlock(c.Param("blockId"), patch)
	response.OK(c, s.Snapshot())
}

func (h *Handler) deleteBlock(c *gin.Context) {
	s, err := h.mgr.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	s.DeleteBlock(c.Param("blockId"))
	response.NoContent(c)
}

func (h *Handler) duplicateBlock(c *gin.Context) {
	s, err := h.mgr.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	dup, err := s.DuplicateBlock(c.Param("blockId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dup)
}

func (h *Handler) move(c *gin.Context) {
	var dto struct {
		BlockID  string `json:"block_id"  binding:"required"`
		TargetID string `json:"target_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	s, err := h.mgr.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	moved := s.Move(dto.BlockID, dto.TargetID)
	response.OK(c, gin.H{"moved": moved})
}

func (h *Handler) palette(c *gin.Context) {
	var dto struct {
		Type string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	s, err := h.mgr.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !s.InsertFromPalette(blocks.Type(dto.Type)) {
		response.BadRequest(c, "unknown block type: "+dto.Type)
		return
	}
	response.OK(c, s.Snapshot())
}

func (h *Handler) selectBlock(c *gin.Context) {
	var dto struct {
		BlockID string `json:"block_id"`
	}
	_ = c.ShouldBindJSON(&dto)
	s, err := h.mgr.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	s.Select(dto.BlockID)
	response.NoContent(c)
}

func (h *Handler) undo(c *gin.Context) {
	s, err := h.mgr.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !s.Undo() {
		response.OK(c, gin.H{"undone": false})
		return
	}
	response.OK(c, s.Snapshot())
}

func (h *Handler) redo(c *gin.Context) {
	s, err := h.mgr.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !s.Redo() {
		response.OK(c, gin.H{"redone": false})
		return
	}
	response.OK(c, s.Snapshot())
}

func (h *Handler) save(c *gin.Context) {
	s, err := h.mgr.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	s.SaveNow()
	response.OK(c, gin.H{"status": s.Snapshot().SaveStatus})
}
