package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/csrf"
	"github.com/CrowdUp-org/CrowdUp-sub002/pkg/logger"
	"github.com/CrowdUp-org/CrowdUp-sub002/pkg/metrics"
)

// OriginGuard rejects mutating requests whose Origin header is not allow-listed.
// It runs before authentication and ignores auth state.
func OriginGuard(g *csrf.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if g.RequiresCheck(c.Request.Method, c.Request.URL.Path) {
			origin := c.GetHeader("Origin")
			if !g.IsOriginAllowed(origin) {
				metrics.OriginRejected.Inc()
				logger.Debugf("origin guard: rejected %s %s origin=%q", c.Request.Method, c.Request.URL.Path, origin)
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
				return
			}
		}
		c.Next()
	}
}
