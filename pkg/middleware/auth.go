package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context keys set by RequireSession.
const (
	ClaimsKey      = "claims"
	AccessTokenKey = "access_token"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// AccessTokenSource yields the current access token, "" when logged out.
// *session.Controller implements it.
type AccessTokenSource interface {
	AccessToken(ctx context.Context) string
}

// RequireSession aborts with 401 unless the session holds a valid access
// token. The verified claims are stored under ClaimsKey.
func RequireSession(src AccessTokenSource, ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := src.AccessToken(c.Request.Context())
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}

		tok, err := ver.Verify(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "details": err.Error()})
			return
		}

		var claims map[string]interface{}
		if err := tok.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(AccessTokenKey, raw)
		c.Next()
	}
}
