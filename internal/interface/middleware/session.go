package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	repo "github.com/craftfolio/craftfolio-api/internal/domain/repository"
	"github.com/craftfolio/craftfolio-api/pkg/apperr"
	"github.com/craftfolio/craftfolio-api/pkg/helpers"
	"github.com/craftfolio/craftfolio-api/pkg/response"
)

const sessionKey = "session"

// Session is the authenticated caller attached to the request context.
type Session struct {
	CrossRef   string
	ProfileID  primitive.ObjectID
	FriendlyID string
}

// SessionFrom returns the authenticated session, if any.
func SessionFrom(c *gin.Context) (Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}

// SessionGuard authenticates requests from the token cookies. An expired
// access token with a valid refresh token is refreshed silently; every other
// failure is a 401. Admin routes use the same guard bound to the admin
// cookie namespace.
type SessionGuard struct {
	JWT      *helpers.JWTManager
	Cookies  *helpers.CookieManager
	Profiles repo.ProfileRepository
	Logger   *logrus.Logger
}

func NewSessionGuard(jwt *helpers.JWTManager, cookies *helpers.CookieManager, profiles repo.ProfileRepository, logger *logrus.Logger) *SessionGuard {
	return &SessionGuard{JWT: jwt, Cookies: cookies, Profiles: profiles, Logger: logger}
}

func (g *SessionGuard) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		access := g.Cookies.AccessToken(c)
		if access == "" {
			// A lapsed access cookie with a live refresh cookie is still a
			// session; only the refresh path can tell.
			g.refresh(c)
			return
		}

		claims, err := g.JWT.ParseAccessToken(access)
		if err == nil {
			g.attach(c, claims)
			return
		}
		if !helpers.IsTokenExpired(err) {
			// Tampered or malformed token. Terminal, no refresh attempt.
			g.Logger.WithError(err).Warn("access token rejected")
			g.Cookies.Clear(c)
			response.AbortError(c, apperr.New(apperr.Unauthorized, "Invalid session"))
			return
		}

		g.refresh(c)
	}
}

// refresh handles the expired-access path: a valid refresh token whose
// subject still resolves to an active profile mints a new access cookie.
func (g *SessionGuard) refresh(c *gin.Context) {
	refresh := g.Cookies.RefreshToken(c)
	if refresh == "" {
		g.Cookies.Clear(c)
		response.AbortError(c, apperr.New(apperr.Unauthorized, "Session expired"))
		return
	}
	claims, err := g.JWT.ParseRefreshToken(refresh)
	if err != nil {
		g.Cookies.Clear(c)
		response.AbortError(c, apperr.New(apperr.Unauthorized, "Session expired"))
		return
	}

	profile, err := g.Profiles.GetByCrossRef(c.Request.Context(), claims.CrossRef)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !profile.Active) {
		g.Cookies.Clear(c)
		response.AbortError(c, apperr.New(apperr.Unauthorized, "Session expired"))
		return
	}
	if err != nil {
		response.AbortError(c, apperr.Wrap(apperr.Internal, "session refresh failed", err))
		return
	}

	access, aexp, err := g.JWT.GenerateAccessToken(profile.CrossRef, profile.ID.Hex(), profile.FriendlyID)
	if err != nil {
		response.AbortError(c, apperr.Wrap(apperr.Internal, "session refresh failed", err))
		return
	}
	g.Cookies.SetAccess(c, access, aexp)

	c.Set(sessionKey, Session{
		CrossRef:   profile.CrossRef,
		ProfileID:  profile.ID,
		FriendlyID: profile.FriendlyID,
	})
	c.Next()
}

func (g *SessionGuard) attach(c *gin.Context, claims *helpers.SessionClaims) {
	profileID, err := primitive.ObjectIDFromHex(claims.ProfileID)
	if err != nil {
		g.Cookies.Clear(c)
		response.AbortError(c, apperr.New(apperr.Unauthorized, "Invalid session"))
		return
	}
	c.Set(sessionKey, Session{
		CrossRef:   claims.CrossRef,
		ProfileID:  profileID,
		FriendlyID: claims.FriendlyID,
	})
	c.Next()
}
