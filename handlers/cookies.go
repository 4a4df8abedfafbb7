package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/auth"
	"github.com/CrowdUp-org/CrowdUp-sub002/internal/tokens"
)

const oauthStateCookie = "oauth_state"

// CookiePolicy holds the attributes shared by the session cookies.
type CookiePolicy struct {
	// Secure is set in production.
	Secure bool
	// RefreshPath scopes the refresh cookie, normally the auth route prefix.
	RefreshPath string
}

func (p CookiePolicy) access(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.AccessCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (p CookiePolicy) refresh(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.RefreshCookieName,
		Value:    value,
		Path:     p.RefreshPath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (p CookiePolicy) setSession(c *gin.Context, s *auth.Session) {
	http.SetCookie(c.Writer, p.access(s.AccessToken, int(tokens.AccessTokenTTL/time.Second)))
	http.SetCookie(c.Writer, p.refresh(s.RefreshToken, int(tokens.RefreshTokenTTL/time.Second)))
}

func (p CookiePolicy) clearSession(c *gin.Context) {
	http.SetCookie(c.Writer, p.access("", -1))
	http.SetCookie(c.Writer, p.refresh("", -1))
}

func (p CookiePolicy) setOAuthState(c *gin.Context, state string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     p.RefreshPath,
		MaxAge:   600,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieValue(c *gin.Context, name string) string {
	v, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return v
}
