// Package csrf decides which requests must present an allowed Origin.
package csrf

import (
	"net/http"
	"strings"
)

// DefaultExemptPrefixes are paths whose mutating requests are authenticated by
// other means (OAuth state, webhook signatures).
var DefaultExemptPrefixes = []string{"/api/auth/callback/", "/api/webhooks/"}

var mutating = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
}

type Policy struct {
	AllowedOrigins []string
	// ExemptPrefixes defaults to DefaultExemptPrefixes when nil.
	ExemptPrefixes []string
}

// Guard is immutable after construction and safe for concurrent use.
type Guard struct {
	origins map[string]bool
	exempt  []string
}

func NewGuard(p Policy) *Guard {
	g := &Guard{origins: map[string]bool{}}
	for _, o := range p.AllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			g.origins[o] = true
		}
	}
	g.exempt = p.ExemptPrefixes
	if g.exempt == nil {
		g.exempt = DefaultExemptPrefixes
	}
	return g
}

// RequiresCheck reports whether a request with method and path must carry an allowed Origin.
func (g *Guard) RequiresCheck(method, path string) bool {
	if !mutating[strings.ToUpper(method)] {
		return false
	}
	for _, p := range g.exempt {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	return true
}

// IsOriginAllowed matches origin exactly against the allow-list. An empty origin is never allowed.
func (g *Guard) IsOriginAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	return g.origins[origin]
}
