package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/craftfolio/craftfolio-api/internal/application"
	"github.com/craftfolio/craftfolio-api/pkg/assist"
	"github.com/craftfolio/craftfolio-api/pkg/response"
	"github.com/craftfolio/craftfolio-api/pkg/validation"
)

type ProjectHandler struct {
	Svc    *application.ProjectService
	Logger *logrus.Logger
}

func NewProjectHandler(svc *application.ProjectService, logger *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{Svc: svc, Logger: logger}
}

type projectRequest struct {
	Title           string   `json:"title" binding:"required,max=120"`
	Description     string   `json:"description" binding:"required,max=2000"`
	URL             string   `json:"url" binding:"omitempty,url"`
	MediaURLs       []string `json:"media_urls" binding:"omitempty,dive,url"`
	Thumbnail       string   `json:"thumbnail" binding:"omitempty,url"`
	Tags            []string `json:"tags" binding:"omitempty,max=10,dive,max=30"`
	FeedbackAllowed bool     `json:"feedback_allowed"`
}

// Create POST /api/project
func (h *ProjectHandler) Create(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, validation.Summary(err))
		return
	}
	project, err := h.Svc.Create(c.Request.Context(), sess.ProfileID, application.ProjectInput{
		Title:           req.Title,
		Description:     req.Description,
		URL:             req.URL,
		MediaURLs:       req.MediaURLs,
		Thumbnail:       req.Thumbnail,
		Tags:            req.Tags,
		FeedbackAllowed: req.FeedbackAllowed,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusCreated, project, "Project created")
}

// ListOwn GET /api/projects
func (h *ProjectHandler) ListOwn(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	projects, err := h.Svc.ListOwn(c.Request.Context(), sess.ProfileID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, projects, "")
}

// ListByUser GET /api/projects/user/:friendlyId
func (h *ProjectHandler) ListByUser(c *gin.Context) {
	projects, err := h.Svc.ListByFriendlyID(c.Request.Context(), c.Param("friendlyId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, projects, "")
}

// Get GET /api/project/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, project, "")
}

type updateProjectRequest struct {
	Title           *string   `json:"title" binding:"omitempty,max=120"`
	Description     *string   `json:"description" binding:"omitempty,max=2000"`
	URL             *string   `json:"url" binding:"omitempty,url"`
	MediaURLs       *[]string `json:"media_urls" binding:"omitempty,dive,url"`
	Thumbnail       *string   `json:"thumbnail" binding:"omitempty,url"`
	Tags            *[]string `json:"tags" binding:"omitempty,max=10,dive,max=30"`
	FeedbackAllowed *bool     `json:"feedback_allowed"`
}

// Update PUT /api/project/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, validation.Summary(err))
		return
	}
	project, err := h.Svc.Update(c.Request.Context(), sess.ProfileID, c.Param("id"), application.UpdateProjectInput{
		Title:           req.Title,
		Description:     req.Description,
		URL:             req.URL,
		MediaURLs:       req.MediaURLs,
		Thumbnail:       req.Thumbnail,
		Tags:            req.Tags,
		FeedbackAllowed: req.FeedbackAllowed,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, project, "Project updated")
}

// Delete DELETE /api/project/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), sess.ProfileID, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, nil, "Project deleted")
}

type feedbackRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
	Comment   string `json:"comment" binding:"required,max=500"`
}

// AddFeedback POST /api/project/feedback
func (h *ProjectHandler) AddFeedback(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, validation.Summary(err))
		return
	}
	project, err := h.Svc.AddFeedback(c.Request.Context(), sess.ProfileID, req.ProjectID, req.Comment)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusCreated, project, "Feedback added")
}

type assistRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
	Mode      string `json:"mode" binding:"required"`
	LastMode  string `json:"last_mode"`
}

// Assist POST /api/project/assist
func (h *ProjectHandler) Assist(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req assistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, validation.Summary(err))
		return
	}
	out, err := h.Svc.Suggest(c.Request.Context(), sess.ProfileID, req.ProjectID, assist.Mode(req.Mode), assist.Mode(req.LastMode))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, out, "")
}
