package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/craftfolio/craftfolio-api/internal/interface/http"
	"github.com/craftfolio/craftfolio-api/internal/interface/middleware"
)

type UserModule struct {
	Handler *handlers.UserHandler
	Session *middleware.SessionGuard
}

func NewUserModule(h *handlers.UserHandler, session *middleware.SessionGuard) *UserModule {
	return &UserModule{Handler: h, Session: session}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.GET("/profile/:friendlyId", m.Handler.GetProfile)

	private := rg.Group("/")
	private.Use(m.Session.Authenticate())
	{
		private.PUT("/profile", m.Handler.UpdateProfile)
		private.GET("/logged-user", m.Handler.GetLoggedUser)
		private.DELETE("/user", m.Handler.DeleteAccount)
	}
}
