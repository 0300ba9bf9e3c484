package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	repo "github.com/craftfolio/craftfolio-api/internal/domain/repository"
)

type stubIdentities struct {
	repo.IdentityRepository
	byCrossRef map[string]*entity.Identity
}

func (s *stubIdentities) GetByCrossRef(ctx context.Context, crossRef string) (*entity.Identity, error) {
	if id, ok := s.byCrossRef[crossRef]; ok {
		cp := *id
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func gateRequest(t *testing.T, identities *stubIdentities, sess *Session) *httptest.ResponseRecorder {
	t.Helper()
	gate := NewRoleGate(identities, quietLogger())

	router := gin.New()
	if sess != nil {
		router.Use(func(c *gin.Context) {
			c.Set(sessionKey, *sess)
			c.Next()
		})
	}
	router.GET("/admin/ping", gate.RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/ping", nil))
	return rec
}

func TestRequireAdminWithoutSession(t *testing.T) {
	identities := &stubIdentities{byCrossRef: map[string]*entity.Identity{}}

	rec := gateRequest(t, identities, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminRejectsRegularUser(t *testing.T) {
	identities := &stubIdentities{byCrossRef: map[string]*entity.Identity{
		"cr-jane": {CrossRef: "cr-jane", Role: entity.RoleUser, Active: true},
	}}

	rec := gateRequest(t, identities, &Session{CrossRef: "cr-jane"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminRejectsDeactivatedAdmin(t *testing.T) {
	// Deactivation takes effect on the next request even while the session
	// cookies are still valid.
	identities := &stubIdentities{byCrossRef: map[string]*entity.Identity{
		"cr-ops": {CrossRef: "cr-ops", Role: entity.RoleAdmin, Active: false},
	}}

	rec := gateRequest(t, identities, &Session{CrossRef: "cr-ops"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminRejectsUnknownIdentity(t *testing.T) {
	identities := &stubIdentities{byCrossRef: map[string]*entity.Identity{}}

	rec := gateRequest(t, identities, &Session{CrossRef: "cr-ghost"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminAllowsAdminRoles(t *testing.T) {
	identities := &stubIdentities{byCrossRef: map[string]*entity.Identity{
		"cr-ops":  {CrossRef: "cr-ops", Role: entity.RoleAdmin, Active: true},
		"cr-root": {CrossRef: "cr-root", Role: entity.RoleSuperAdmin, Active: true},
	}}

	for _, crossRef := range []string{"cr-ops", "cr-root"} {
		rec := gateRequest(t, identities, &Session{CrossRef: crossRef})
		assert.Equal(t, http.StatusOK, rec.Code, crossRef)
	}
}
