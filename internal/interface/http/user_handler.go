package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/craftfolio/craftfolio-api/internal/application"
	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	"github.com/craftfolio/craftfolio-api/internal/interface/middleware"
	"github.com/craftfolio/craftfolio-api/pkg/apperr"
	"github.com/craftfolio/craftfolio-api/pkg/helpers"
	"github.com/craftfolio/craftfolio-api/pkg/response"
	"github.com/craftfolio/craftfolio-api/pkg/validation"
)

type UserHandler struct {
	Svc     *application.UserService
	Cookies *helpers.CookieManager
	Logger  *logrus.Logger
}

func NewUserHandler(svc *application.UserService, cookies *helpers.CookieManager, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Cookies: cookies, Logger: logger}
}

// GetProfile GET /api/profile/:friendlyId
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.Svc.GetPublicProfile(c.Request.Context(), c.Param("friendlyId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, profile, "")
}

// GetLoggedUser GET /api/logged-user
func (h *UserHandler) GetLoggedUser(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		response.FromError(c, apperr.New(apperr.Unauthorized, "Authentication required"))
		return
	}
	info, err := h.Svc.GetLoggedUser(c.Request.Context(), sess.CrossRef)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, info, "")
}

type updateProfileRequest struct {
	Username       *string          `json:"username" binding:"omitempty,handle"`
	Bio            *string          `json:"bio"`
	Profession     *string          `json:"profession"`
	Age            *int             `json:"age" binding:"omitempty,min=13,max=120"`
	CountryOrigin  *string          `json:"country_origin"`
	ProfilePicture *string          `json:"profile_picture" binding:"omitempty,url"`
	CoverImage     *string          `json:"cover_image" binding:"omitempty,url"`
	Location       *entity.Location `json:"location"`
}

// UpdateProfile PUT /api/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		response.FromError(c, apperr.New(apperr.Unauthorized, "Authentication required"))
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, validation.Summary(err))
		return
	}
	profile, err := h.Svc.UpdateProfile(c.Request.Context(), sess.CrossRef, application.UpdateProfileInput{
		Username:       req.Username,
		Bio:            req.Bio,
		Profession:     req.Profession,
		Age:            req.Age,
		CountryOrigin:  req.CountryOrigin,
		ProfilePicture: req.ProfilePicture,
		CoverImage:     req.CoverImage,
		Location:       req.Location,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, profile, "Profile updated")
}

// DeleteAccount DELETE /api/user
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		response.FromError(c, apperr.New(apperr.Unauthorized, "Authentication required"))
		return
	}
	if err := h.Svc.DeleteAccount(c.Request.Context(), sess.CrossRef); err != nil {
		response.FromError(c, err)
		return
	}
	h.Cookies.Clear(c)
	response.OK[any](c, http.StatusOK, nil, "Account deleted")
}
