package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/craftfolio/craftfolio-api/internal/interface/http"
	"github.com/craftfolio/craftfolio-api/internal/interface/middleware"
)

// AdminModule mounts moderation routes behind the admin cookie namespace
// and the role gate.
type AdminModule struct {
	Handler *handlers.AdminHandler
	Session *middleware.SessionGuard // bound to admin_ cookies
	Gate    *middleware.RoleGate
}

func NewAdminModule(h *handlers.AdminHandler, session *middleware.SessionGuard, gate *middleware.RoleGate) *AdminModule {
	return &AdminModule{Handler: h, Session: session, Gate: gate}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(m.Session.Authenticate(), m.Gate.RequireAdmin())
	{
		admin.GET("/users", m.Handler.ListUsers)
		admin.DELETE("/user/:id", m.Handler.DeleteUser)
		admin.GET("/posts", m.Handler.ListPosts)
		admin.DELETE("/post/:postId", m.Handler.DeletePost)
		admin.DELETE("/post/:postId/comment/:commentId", m.Handler.DeleteComment)
		admin.DELETE("/project/:id", m.Handler.DeleteProject)
		admin.GET("/analytics", m.Handler.Analytics)
	}
}
