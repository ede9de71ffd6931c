package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storeadmin/internal/session"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/admin/dashboard"
	AdminPrefix   = "/admin"
)

// RequireAdminPage sends anyone without a valid admin session to the login
// page instead of answering with JSON.
func RequireAdminPage(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := sessionFromRequest(c, sessions)
		if err != nil || !claims.IsAdmin {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireAdminPrefix applies the page gate to every path under /admin,
// including ones with no route of their own. Other paths pass through.
func RequireAdminPrefix(sessions *session.Manager) gin.HandlerFunc {
	gate := RequireAdminPage(sessions)
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path != AdminPrefix && !strings.HasPrefix(path, AdminPrefix+"/") {
			c.Next()
			return
		}
		gate(c)
	}
}

// RedirectIfAuthenticated keeps signed-in admins away from the login and
// register pages. A non-admin session would only bounce back from the
// dashboard, so it stays here.
func RedirectIfAuthenticated(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := sessionFromRequest(c, sessions); err == nil && claims.IsAdmin {
			c.Redirect(http.StatusFound, DashboardPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
