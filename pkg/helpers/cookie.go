package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieManager writes and clears the session token cookies. Admin sessions
// share the same verification logic but live under an "admin_" prefix so a
// user session and an admin session can coexist in one browser.
type CookieManager struct {
	Domain     string
	Secure     bool
	Production bool
	prefix     string
}

func NewCookie(domain string, secure, production bool) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure, Production: production}
}

// Admin returns a manager for the admin cookie namespace.
func (m *CookieManager) Admin() *CookieManager {
	cp := *m
	cp.prefix = "admin_"
	return &cp
}

func (m *CookieManager) AccessName() string  { return m.prefix + "accessToken" }
func (m *CookieManager) RefreshName() string { return m.prefix + "refreshToken" }

// AccessToken reads the access token cookie; empty string when absent.
func (m *CookieManager) AccessToken(c *gin.Context) string {
	v, _ := c.Cookie(m.AccessName())
	return v
}

// RefreshToken reads the refresh token cookie; empty string when absent.
func (m *CookieManager) RefreshToken(c *gin.Context) string {
	v, _ := c.Cookie(m.RefreshName())
	return v
}

// SetPair sets both token cookies with max-ages matching the token expiries.
func (m *CookieManager) SetPair(c *gin.Context, access string, aexp time.Time, refresh string, rexp time.Time) {
	m.setSameSite(c)
	c.SetCookie(m.AccessName(), access, maxAgeFrom(aexp), "/", m.Domain, m.Secure, true)
	c.SetCookie(m.RefreshName(), refresh, maxAgeFrom(rexp), "/", m.Domain, m.Secure, true)
}

// SetAccess rotates only the access token cookie (silent refresh).
func (m *CookieManager) SetAccess(c *gin.Context, access string, aexp time.Time) {
	m.setSameSite(c)
	c.SetCookie(m.AccessName(), access, maxAgeFrom(aexp), "/", m.Domain, m.Secure, true)
}

// Clear expires both token cookies.
func (m *CookieManager) Clear(c *gin.Context) {
	m.setSameSite(c)
	c.SetCookie(m.AccessName(), "", -1, "/", m.Domain, m.Secure, true)
	c.SetCookie(m.RefreshName(), "", -1, "/", m.Domain, m.Secure, true)
}

// Cross-site frontends need SameSite=None (with Secure) in production;
// Lax is kept for local development over plain HTTP.
func (m *CookieManager) setSameSite(c *gin.Context) {
	if m.Production {
		c.SetSameSite(http.SameSiteNoneMode)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
