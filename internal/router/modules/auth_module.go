package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/craftfolio/craftfolio-api/internal/container"
	handlers "github.com/craftfolio/craftfolio-api/internal/interface/http"
	"github.com/craftfolio/craftfolio-api/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Session *middleware.SessionGuard
}

func NewAuthModule(h *handlers.AuthHandler, session *middleware.SessionGuard) *AuthModule {
	return &AuthModule{Handler: h, Session: session}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Credential endpoints get tight per-IP-and-path buckets so brute force
	// does not eat the general budget.
	signUpLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	signInLimiter := middleware.RateLimit(container.GetRedis(), 15, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/signup", signUpLimiter, m.Handler.SignUp)
	rg.POST("/auth/signin", signInLimiter, m.Handler.SignIn)
	rg.POST("/auth/refresh-token", m.Handler.RefreshToken)
	rg.POST("/auth/signout", m.Handler.SignOut)

	rg.POST("/auth/admin/signin", signInLimiter, m.Handler.AdminSignIn)
	rg.POST("/auth/admin/refresh-token", m.Handler.AdminRefreshToken)
	rg.POST("/auth/admin/signout", m.Handler.AdminSignOut)

	private := rg.Group("/")
	private.Use(m.Session.Authenticate())
	{
		private.GET("/auth/credentials", m.Handler.GetCredentials)
		private.PUT("/auth/credentials", m.Handler.UpdateCredentials)
	}
}
