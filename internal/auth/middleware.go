package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the name of the httpOnly cookie carrying the token.
const SessionCookie = "blueme_session"

const claimsKey = "claims"

// RequireSession rejects requests without a valid session token. The token
// is read from the session cookie, or from an Authorization bearer header
// for non-browser clients.
func RequireSession(jwt *JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CallerID returns the authenticated user's id set by RequireSession.
func CallerID(c *gin.Context) string {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*Claims); ok {
			return claims.UserID
		}
	}
	return ""
}
