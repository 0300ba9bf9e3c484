package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	repo "github.com/craftfolio/craftfolio-api/internal/domain/repository"
	"github.com/craftfolio/craftfolio-api/pkg/apperr"
	"github.com/craftfolio/craftfolio-api/pkg/response"
)

// RoleGate authorizes admin routes. The role is re-read from the relational
// store on every request so a demotion or deactivation takes effect
// immediately, not at next sign-in. Tokens never carry roles.
type RoleGate struct {
	Identities repo.IdentityRepository
	Logger     *logrus.Logger
}

func NewRoleGate(identities repo.IdentityRepository, logger *logrus.Logger) *RoleGate {
	return &RoleGate{Identities: identities, Logger: logger}
}

func (g *RoleGate) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			response.AbortError(c, apperr.New(apperr.Unauthorized, "Authentication required"))
			return
		}

		ident, err := g.Identities.GetByCrossRef(c.Request.Context(), sess.CrossRef)
		if errors.Is(err, repo.ErrNotFound) {
			g.deny(c, sess.CrossRef, "identity not found")
			return
		}
		if err != nil {
			response.AbortError(c, apperr.Wrap(apperr.Internal, "authorization check failed", err))
			return
		}
		if !ident.Active {
			g.deny(c, sess.CrossRef, "account deactivated")
			return
		}
		if !ident.IsAdmin() {
			g.deny(c, sess.CrossRef, "insufficient role")
			return
		}

		g.Logger.WithFields(logrus.Fields{
			"cross_ref": sess.CrossRef,
			"role":      ident.Role,
			"path":      c.FullPath(),
		}).Info("admin access granted")
		c.Next()
	}
}

func (g *RoleGate) deny(c *gin.Context, crossRef, reason string) {
	g.Logger.WithFields(logrus.Fields{
		"cross_ref": crossRef,
		"path":      c.FullPath(),
		"reason":    reason,
	}).Warn("admin access denied")
	response.AbortError(c, apperr.New(apperr.Forbidden, "Admin access required"))
}
