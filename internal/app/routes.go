package app

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkpress/core/internal/middleware"
	"github.com/inkpress/core/internal/modules/article"
	"github.com/inkpress/core/internal/modules/comment"
	"github.com/inkpress/core/internal/modules/dashboard"
	"github.com/inkpress/core/internal/modules/editorsession"
	"github.com/inkpress/core/internal/modules/media"
	"github.com/inkpress/core/internal/modules/render"
	"github.com/inkpress/core/internal/modules/user"
	"github.com/inkpress/core/internal/pkg/cache"
	pkgredis "github.com/inkpress/core/internal/pkg/redis"
	"github.com/inkpress/core/internal/pkg/response"
	"github.com/inkpress/core/internal/workflow"
)

var errNoMediaStore = errors.New("no s3 bucket configured")

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	authMW := middleware.Auth()
	optionalMW := middleware.OptionalAuth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	api := r.Group("/api/v1")
	// Identity first so authenticated staff bypass the rate limit.
	api.Use(optionalMW)
	if rc != nil {
		api.Use(middleware.RateLimit(rc.Raw()))
	}

	api.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "pong"})
	})

	// Shared services
	articleCache := cache.New(rc, a.logger)
	articleSvc := article.NewService(db, articleCache, a.logger)
	machine := workflow.NewMachine(articleSvc, articleCache, a.logger)

	userSvc := user.NewService(db)
	user.NewHandler(userSvc).RegisterRoutes(api, authMW)

	article.NewHandler(articleSvc, machine).RegisterRoutes(api, authMW)

	a.sessions = editorsession.NewManager(articleSvc, a.logger)
	editorsession.NewHandler(a.sessions).RegisterRoutes(api, authMW)

	dashboard.NewHandler(dashboard.NewManager(articleSvc), machine).RegisterRoutes(api, authMW)

	renderer := render.New(a.cfg.SiteURL, a.logger)
	render.NewHandler(articleSvc, renderer, a.logger).RegisterRoutes(api, optionalMW)

	comment.NewHandler(comment.NewService(db)).RegisterRoutes(api, authMW)

	mediaSvc, err := a.buildMediaService()
	if err != nil {
		a.logger.Warn("media storage disabled", zap.Error(err))
	} else {
		media.NewHandler(mediaSvc).RegisterRoutes(api, authMW)
	}
}

func (a *App) buildMediaService() (*media.Service, error) {
	if a.cfg.S3.Bucket == "" {
		return nil, errNoMediaStore
	}
	blob, err := media.NewS3Store(a.cfg.S3)
	if err != nil {
		return nil, err
	}
	return media.NewService(a.db, blob), nil
}
