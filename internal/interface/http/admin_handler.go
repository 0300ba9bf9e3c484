package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/craftfolio/craftfolio-api/internal/application"
	"github.com/craftfolio/craftfolio-api/pkg/response"
)

// AdminHandler exposes moderation endpoints. Authorization happens in the
// role gate; handlers only translate HTTP to service calls.
type AdminHandler struct {
	Svc    *application.AdminService
	Posts  *application.PostService
	Logger *logrus.Logger
}

func NewAdminHandler(svc *application.AdminService, posts *application.PostService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Posts: posts, Logger: logger}
}

// ListUsers GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	list, err := h.Svc.ListUsers(c.Request.Context(), c.Query("search"), intQuery(c, "page", 1), intQuery(c, "limit", 20))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, list, "")
}

// DeleteUser DELETE /api/admin/user/:id (id is the target's cross_ref)
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteUser(c.Request.Context(), sess.CrossRef, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, nil, "User deleted")
}

// ListPosts GET /api/admin/posts
func (h *AdminHandler) ListPosts(c *gin.Context) {
	feed, err := h.Posts.Feed(c.Request.Context(), nil, intQuery(c, "page", 1), intQuery(c, "limit", 20))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, feed, "")
}

// DeletePost DELETE /api/admin/post/:postId
func (h *AdminHandler) DeletePost(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	if err := h.Svc.DeletePost(c.Request.Context(), sess.CrossRef, c.Param("postId")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, nil, "Post deleted")
}

// DeleteComment DELETE /api/admin/post/:postId/comment/:commentId
func (h *AdminHandler) DeleteComment(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteComment(c.Request.Context(), sess.CrossRef, c.Param("postId"), c.Param("commentId")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, nil, "Comment deleted")
}

// DeleteProject DELETE /api/admin/project/:id
func (h *AdminHandler) DeleteProject(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteProject(c.Request.Context(), sess.CrossRef, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, nil, "Project deleted")
}

// Analytics GET /api/admin/analytics
func (h *AdminHandler) Analytics(c *gin.Context) {
	stats, err := h.Svc.GetAnalytics(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, stats, "")
}
