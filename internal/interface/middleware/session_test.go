package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	repo "github.com/craftfolio/craftfolio-api/internal/domain/repository"
	"github.com/craftfolio/craftfolio-api/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// stubProfiles resolves profiles by cross_ref only; everything else panics,
// which is what we want when the guard reaches for a method it should not.
type stubProfiles struct {
	repo.ProfileRepository
	byCrossRef map[string]*entity.Profile
}

func (s *stubProfiles) GetByCrossRef(ctx context.Context, crossRef string) (*entity.Profile, error) {
	if p, ok := s.byCrossRef[crossRef]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

type sessionHarness struct {
	router   *gin.Engine
	jwt      *helpers.JWTManager
	cookies  *helpers.CookieManager
	profiles *stubProfiles
}

func newSessionHarness() *sessionHarness {
	jwt := helpers.NewJWTManager("a-secret", "r-secret", 30*time.Minute, 168*time.Hour)
	cookies := helpers.NewCookie("", false, false)
	profiles := &stubProfiles{byCrossRef: map[string]*entity.Profile{}}
	guard := NewSessionGuard(jwt, cookies, profiles, quietLogger())

	router := gin.New()
	router.GET("/me", guard.Authenticate(), func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no session attached")
			return
		}
		c.String(http.StatusOK, sess.CrossRef)
	})
	return &sessionHarness{router: router, jwt: jwt, cookies: cookies, profiles: profiles}
}

func (h *sessionHarness) get(cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestAuthenticateNoTokenIs401(t *testing.T) {
	h := newSessionHarness()

	rec := h.get()
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateValidAccessAttachesSession(t *testing.T) {
	h := newSessionHarness()
	access, _, err := h.jwt.GenerateAccessToken("cr-jane", primitive.NewObjectID().Hex(), "jane-x")
	require.NoError(t, err)

	rec := h.get(&http.Cookie{Name: "accessToken", Value: access})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cr-jane", rec.Body.String())
	// No refresh happened, so no cookie rotation either.
	assert.Nil(t, responseCookie(rec, "accessToken"))
}

func TestAuthenticateTamperedTokenIsTerminal(t *testing.T) {
	h := newSessionHarness()
	// Signed with the wrong secret: parse fails with a non-expiry error.
	forged := helpers.NewJWTManager("other-secret", "r-secret", 30*time.Minute, 168*time.Hour)
	access, _, err := forged.GenerateAccessToken("cr-jane", primitive.NewObjectID().Hex(), "jane-x")
	require.NoError(t, err)

	refresh, _, err := h.jwt.GenerateRefreshToken("cr-jane", primitive.NewObjectID().Hex(), "jane-x")
	require.NoError(t, err)

	rec := h.get(
		&http.Cookie{Name: "accessToken", Value: access},
		&http.Cookie{Name: "refreshToken", Value: refresh},
	)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A valid refresh token must not rescue a forged access token, and both
	// cookies get expired.
	cleared := responseCookie(rec, "accessToken")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.LessOrEqual(t, cleared.MaxAge, 0)
}

func TestAuthenticateExpiredAccessRefreshesSilently(t *testing.T) {
	h := newSessionHarness()
	profile := &entity.Profile{
		ID:         primitive.NewObjectID(),
		CrossRef:   "cr-jane",
		FriendlyID: "jane-x",
		Active:     true,
	}
	h.profiles.byCrossRef[profile.CrossRef] = profile

	expired := helpers.NewJWTManager("a-secret", "r-secret", -time.Minute, 168*time.Hour)
	access, _, err := expired.GenerateAccessToken(profile.CrossRef, profile.ID.Hex(), profile.FriendlyID)
	require.NoError(t, err)
	refresh, _, err := h.jwt.GenerateRefreshToken(profile.CrossRef, profile.ID.Hex(), profile.FriendlyID)
	require.NoError(t, err)

	rec := h.get(
		&http.Cookie{Name: "accessToken", Value: access},
		&http.Cookie{Name: "refreshToken", Value: refresh},
	)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cr-jane", rec.Body.String())

	rotated := responseCookie(rec, "accessToken")
	require.NotNil(t, rotated, "refresh must set a new access cookie")
	assert.NotEmpty(t, rotated.Value)
	assert.NotEqual(t, access, rotated.Value)

	claims, err := h.jwt.ParseAccessToken(rotated.Value)
	require.NoError(t, err)
	assert.Equal(t, "cr-jane", claims.CrossRef)
}

func TestAuthenticateMissingAccessWithValidRefresh(t *testing.T) {
	h := newSessionHarness()
	profile := &entity.Profile{
		ID:         primitive.NewObjectID(),
		CrossRef:   "cr-jane",
		FriendlyID: "jane-x",
		Active:     true,
	}
	h.profiles.byCrossRef[profile.CrossRef] = profile

	refresh, _, err := h.jwt.GenerateRefreshToken(profile.CrossRef, profile.ID.Hex(), profile.FriendlyID)
	require.NoError(t, err)

	// The access cookie lapsed entirely; the refresh cookie alone keeps the
	// session alive.
	rec := h.get(&http.Cookie{Name: "refreshToken", Value: refresh})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cr-jane", rec.Body.String())

	minted := responseCookie(rec, "accessToken")
	require.NotNil(t, minted)
	assert.NotEmpty(t, minted.Value)
}

func TestAuthenticateExpiredAccessWithoutRefreshIs401(t *testing.T) {
	h := newSessionHarness()
	expired := helpers.NewJWTManager("a-secret", "r-secret", -time.Minute, 168*time.Hour)
	access, _, err := expired.GenerateAccessToken("cr-jane", primitive.NewObjectID().Hex(), "jane-x")
	require.NoError(t, err)

	rec := h.get(&http.Cookie{Name: "accessToken", Value: access})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cleared := responseCookie(rec, "refreshToken")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestAuthenticateRefreshRejectsDeactivatedProfile(t *testing.T) {
	h := newSessionHarness()
	profile := &entity.Profile{
		ID:         primitive.NewObjectID(),
		CrossRef:   "cr-jane",
		FriendlyID: "jane-x",
		Active:     false,
	}
	h.profiles.byCrossRef[profile.CrossRef] = profile

	expired := helpers.NewJWTManager("a-secret", "r-secret", -time.Minute, 168*time.Hour)
	access, _, err := expired.GenerateAccessToken(profile.CrossRef, profile.ID.Hex(), profile.FriendlyID)
	require.NoError(t, err)
	refresh, _, err := h.jwt.GenerateRefreshToken(profile.CrossRef, profile.ID.Hex(), profile.FriendlyID)
	require.NoError(t, err)

	rec := h.get(
		&http.Cookie{Name: "accessToken", Value: access},
		&http.Cookie{Name: "refreshToken", Value: refresh},
	)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRefreshRejectsAccessTokenAsRefresh(t *testing.T) {
	h := newSessionHarness()
	expired := helpers.NewJWTManager("a-secret", "r-secret", -time.Minute, 168*time.Hour)
	access, _, err := expired.GenerateAccessToken("cr-jane", primitive.NewObjectID().Hex(), "jane-x")
	require.NoError(t, err)
	// The access token is signed with the access secret, so it must not
	// verify against the refresh secret.
	rec := h.get(
		&http.Cookie{Name: "accessToken", Value: access},
		&http.Cookie{Name: "refreshToken", Value: access},
	)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
