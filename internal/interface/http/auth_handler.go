package handlers

import (
	"context"
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

// AuthHandler exposes signup, signin, token rotation, and credential
// management. Admin endpoints reuse the same flows bound to the admin
// cookie namespace.
type AuthHandler struct {
	Svc     *application.AuthService
	Cookies *helpers.CookieManager
	Logger  *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, cookies *helpers.CookieManager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies, Logger: logger}
}

type signUpRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,pwd"`
	Username       string `json:"username" binding:"required,handle"`
	Age            *int   `json:"age" binding:"omitempty,min=13,max=120"`
	Bio            string `json:"bio"`
	Profession     string `json:"profession"`
	CountryOrigin  string `json:"country_origin"`
	ProfilePicture string `json:"profile_picture" binding:"omitempty,url"`
	CoverImage     string `json:"cover_image" binding:"omitempty,url"`
}

// SignUp POST /api/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, validation.Summary(err))
		return
	}
	profile, err := h.Svc.SignUp(c.Request.Context(), application.SignUpInput{
		Email:          req.Email,
		Password:       req.Password,
		Username:       req.Username,
		Age:            req.Age,
		Bio:            req.Bio,
		Profession:     req.Profession,
		CountryOrigin:  req.CountryOrigin,
		ProfilePicture: req.ProfilePicture,
		CoverImage:     req.CoverImage,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusCreated, profile, "Account created")
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type signInFunc func(ctx context.Context, email, password string) (*entity.Profile, application.TokenPair, error)

func (h *AuthHandler) signIn(c *gin.Context, cookies *helpers.CookieManager, fn signInFunc) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, validation.Summary(err))
		return
	}
	profile, pair, err := fn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.OK(c, http.StatusOK, profile, "Signed in")
}

// SignIn POST /api/auth/signin
func (h *AuthHandler) SignIn(c *gin.Context) {
	h.signIn(c, h.Cookies, h.Svc.SignIn)
}

// AdminSignIn POST /api/auth/admin/signin
func (h *AuthHandler) AdminSignIn(c *gin.Context) {
	h.signIn(c, h.Cookies.Admin(), h.Svc.AdminSignIn)
}

func (h *AuthHandler) refreshToken(c *gin.Context, cookies *helpers.CookieManager) {
	refresh := cookies.RefreshToken(c)
	if refresh == "" {
		response.FromError(c, apperr.New(apperr.Unauthorized, "Invalid refresh token"))
		return
	}
	access, aexp, profile, err := h.Svc.RefreshAccess(c.Request.Context(), refresh)
	if err != nil {
		cookies.Clear(c)
		response.FromError(c, err)
		return
	}
	cookies.SetAccess(c, access, aexp)
	response.OK(c, http.StatusOK, gin.H{"friendly_id": profile.FriendlyID}, "Token refreshed")
}

// RefreshToken POST /api/auth/refresh-token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	h.refreshToken(c, h.Cookies)
}

// AdminRefreshToken POST /api/auth/admin/refresh-token
func (h *AuthHandler) AdminRefreshToken(c *gin.Context) {
	h.refreshToken(c, h.Cookies.Admin())
}

// SignOut POST /api/auth/signout
func (h *AuthHandler) SignOut(c *gin.Context) {
	h.Cookies.Clear(c)
	response.OK[any](c, http.StatusOK, nil, "Signed out")
}

// AdminSignOut POST /api/auth/admin/signout
func (h *AuthHandler) AdminSignOut(c *gin.Context) {
	h.Cookies.Admin().Clear(c)
	response.OK[any](c, http.StatusOK, nil, "Signed out")
}

// GetCredentials GET /api/auth/credentials
func (h *AuthHandler) GetCredentials(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		response.FromError(c, apperr.New(apperr.Unauthorized, "Authentication required"))
		return
	}
	creds, err := h.Svc.Credentials(c.Request.Context(), sess.CrossRef)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, creds, "")
}

type updateCredentialsRequest struct {
	Email           string `json:"email" binding:"omitempty,email"`
	NewPassword     string `json:"new_password" binding:"omitempty,pwd"`
	CurrentPassword string `json:"current_password"`
}

// UpdateCredentials PUT /api/auth/credentials
func (h *AuthHandler) UpdateCredentials(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		response.FromError(c, apperr.New(apperr.Unauthorized, "Authentication required"))
		return
	}
	var req updateCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, validation.Summary(err))
		return
	}
	err := h.Svc.UpdateCredentials(c.Request.Context(), sess.CrossRef, application.UpdateCredentialsInput{
		Email:           req.Email,
		NewPassword:     req.NewPassword,
		CurrentPassword: req.CurrentPassword,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, nil, "Credentials updated")
}
