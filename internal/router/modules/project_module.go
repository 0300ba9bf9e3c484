package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/craftfolio/craftfolio-api/internal/container"
	handlers "github.com/craftfolio/craftfolio-api/internal/interface/http"
	"github.com/craftfolio/craftfolio-api/internal/interface/middleware"
)

type ProjectModule struct {
	Handler *handlers.ProjectHandler
	Session *middleware.SessionGuard
}

func NewProjectModule(h *handlers.ProjectHandler, session *middleware.SessionGuard) *ProjectModule {
	return &ProjectModule{Handler: h, Session: session}
}

func (m *ProjectModule) Register(rg *gin.RouterGroup) {
	rg.GET("/projects/user/:friendlyId", m.Handler.ListByUser)
	rg.GET("/project/:id", m.Handler.Get)

	// The assist endpoint burns model inference time, so it gets its own
	// per-session budget.
	assistLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyBySession(), nil)

	private := rg.Group("/")
	private.Use(m.Session.Authenticate())
	{
		private.GET("/projects", m.Handler.ListOwn)
		private.POST("/project", m.Handler.Create)
		private.PUT("/project/:id", m.Handler.Update)
		private.DELETE("/project/:id", m.Handler.Delete)
		private.POST("/project/feedback", m.Handler.AddFeedback)
		private.POST("/project/assist", assistLimiter, m.Handler.Assist)
	}
}
