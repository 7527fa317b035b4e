package user

import (
	"github.com/gin-gonic/gin"
	"github.com/inkpress/core/internal/middleware"
	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/auth/login", h.login)

	g := rg.Group("/users", authMW)
	g.GET("/me", h.me)
	g.POST("", middleware.RequireRole(models.RoleAdmin), h.create)
	g.PATCH("/:id/role", middleware.RequireRole(models.RoleAdmin), h.setRole)
}

func (h *Handler) login(c *gin.Context) {
	var dto struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, u, err := h.svc.Login(c.Request.Context(), dto.Username, dto.Password, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"token": token, "user": u})
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.svc.GetByID(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, u)
}

func (h *Handler) create(c *gin.Context) {
	var dto struct {
		Username string      `json:"username" binding:"required"`
		Password string      `json:"password" binding:"required"`
		Name     string      `json:"name"`
		Role     models.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Create(c.Request.Context(), dto.Username, dto.Password, dto.Name, dto.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, u)
}

func (h *Handler) setRole(c *gin.Context) {
	var dto struct {
		Role models.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.SetRole(c.Request.Context(), c.Param("id"), dto.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
