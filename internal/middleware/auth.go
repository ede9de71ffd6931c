package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storeadmin/internal/session"
)

// ClaimsKey is where the guards leave the verified session on the context.
const ClaimsKey = "claims"

var errNoSession = errors.New("no session")

// sessionFromRequest reads the session cookie, falling back to a bearer
// token for non-browser clients.
func sessionFromRequest(c *gin.Context, sessions *session.Manager) (*session.Claims, error) {
	raw, err := c.Cookie(session.CookieName)
	if err != nil || strings.TrimSpace(raw) == "" {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		parts := strings.Split(header, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return nil, errNoSession
		}
		raw = parts[1]
	}
	return sessions.Parse(raw)
}

// AuthGuard protects JSON endpoints: 401 without a valid session, 403 when
// requireAdmin is set and the account is not an admin.
func AuthGuard(sessions *session.Manager, requireAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := sessionFromRequest(c, sessions)
		if errors.Is(err, errNoSession) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
			return
		}
		if err != nil {
			log.Println("[AUTH] [ERROR] session validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if requireAdmin && !claims.IsAdmin {
			log.Println("[AUTH] [ERROR] non-admin session rejected:", claims.UserID)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func AdminAuth(sessions *session.Manager) gin.HandlerFunc {
	return AuthGuard(sessions, true)
}
