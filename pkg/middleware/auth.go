package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/auth"
)

const principalKey = "principal"

// Authenticator is the minimal interface the middleware depends on
type Authenticator interface {
	Authenticate(ctx context.Context, cookies []*http.Cookie) *auth.Principal
}

// Authenticate resolves the request principal from cookies. It never aborts:
// anonymous requests continue without a principal.
func Authenticate(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p := a.Authenticate(c.Request.Context(), c.Request.Cookies()); p != nil {
			c.Set(principalKey, p)
			c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if PrincipalFrom(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal set by Authenticate, or nil.
func PrincipalFrom(c *gin.Context) *auth.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}
