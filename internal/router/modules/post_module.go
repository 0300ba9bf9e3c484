package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/craftfolio/craftfolio-api/internal/interface/http"
	"github.com/craftfolio/craftfolio-api/internal/interface/middleware"
)

type PostModule struct {
	Handler *handlers.PostHandler
	Session *middleware.SessionGuard
}

func NewPostModule(h *handlers.PostHandler, session *middleware.SessionGuard) *PostModule {
	return &PostModule{Handler: h, Session: session}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	// A user's posts are part of their public portfolio page.
	rg.GET("/posts/user/:friendlyId", m.Handler.UserPosts)

	private := rg.Group("/")
	private.Use(m.Session.Authenticate())
	{
		private.GET("/posts", m.Handler.Feed)
		private.POST("/post", m.Handler.Create)
		private.POST("/post/like", m.Handler.ToggleLike)
		private.POST("/post/comment", m.Handler.AddComment)
		private.DELETE("/post/:postId", m.Handler.Delete)
		private.DELETE("/post/:postId/comment/:commentId", m.Handler.DeleteComment)
	}
}
