package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/craftfolio/craftfolio-api/internal/application"
	"github.com/craftfolio/craftfolio-api/internal/interface/middleware"
	"github.com/craftfolio/craftfolio-api/pkg/apperr"
	"github.com/craftfolio/craftfolio-api/pkg/response"
	"github.com/craftfolio/craftfolio-api/pkg/validation"
)

type PostHandler struct {
	Svc    *application.PostService
	Logger *logrus.Logger
}

func NewPostHandler(svc *application.PostService, logger *logrus.Logger) *PostHandler {
	return &PostHandler{Svc: svc, Logger: logger}
}

func intQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

func sessionOrAbort(c *gin.Context) (middleware.Session, bool) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		response.FromError(c, apperr.New(apperr.Unauthorized, "Authentication required"))
	}
	return sess, ok
}

type createPostRequest struct {
	Content string `json:"content"`
	Image   string `json:"image" binding:"omitempty,url"`
}

// Create POST /api/post
func (h *PostHandler) Create(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, validation.Summary(err))
		return
	}
	view, err := h.Svc.Create(c.Request.Context(), sess.ProfileID, application.CreatePostInput{
		Content: req.Content,
		Image:   req.Image,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusCreated, view, "Post created")
}

// Feed GET /api/posts
func (h *PostHandler) Feed(c *gin.Context) {
	var viewer *primitive.ObjectID
	if sess, ok := middleware.SessionFrom(c); ok {
		viewer = &sess.ProfileID
	}
	feed, err := h.Svc.Feed(c.Request.Context(), viewer, intQuery(c, "page", 1), intQuery(c, "limit", 10))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, feed, "")
}

// UserPosts GET /api/posts/user/:friendlyId
func (h *PostHandler) UserPosts(c *gin.Context) {
	var viewer *primitive.ObjectID
	if sess, ok := middleware.SessionFrom(c); ok {
		viewer = &sess.ProfileID
	}
	posts, err := h.Svc.UserPosts(c.Request.Context(), c.Param("friendlyId"), viewer)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, posts, "")
}

type likeRequest struct {
	PostID string `json:"post_id" binding:"required"`
}

// ToggleLike POST /api/post/like
func (h *PostHandler) ToggleLike(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, validation.Summary(err))
		return
	}
	result, err := h.Svc.ToggleLike(c.Request.Context(), sess.ProfileID, req.PostID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, result, "")
}

type commentRequest struct {
	PostID string `json:"post_id" binding:"required"`
	Text   string `json:"text" binding:"required,max=500"`
}

// AddComment POST /api/post/comment
func (h *PostHandler) AddComment(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, validation.Summary(err))
		return
	}
	view, err := h.Svc.AddComment(c.Request.Context(), sess.ProfileID, req.PostID, req.Text)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusCreated, view, "Comment added")
}

// DeleteComment DELETE /api/post/:postId/comment/:commentId
func (h *PostHandler) DeleteComment(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteComment(c.Request.Context(), sess.ProfileID, c.Param("postId"), c.Param("commentId")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, nil, "Comment deleted")
}

// Delete DELETE /api/post/:postId
func (h *PostHandler) Delete(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), sess.ProfileID, c.Param("postId")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, nil, "Post deleted")
}
