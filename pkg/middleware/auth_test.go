package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/auth"
)

// fakeAuthenticator accepts a single cookie value
type fakeAuthenticator struct{}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, cookies []*http.Cookie) *auth.Principal {
	for _, c := range cookies {
		if c.Name == auth.AccessCookieName && c.Value == "goodtoken" {
			return &auth.Principal{UserID: "user1", Username: "alice"}
		}
	}
	return nil
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	g.Use(Authenticate(&fakeAuthenticator{}))
	g.GET("/public", func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": p.Username})
	})
	g.GET("/private", RequireAuth(), func(c *gin.Context) {
		p := auth.PrincipalFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"id": p.UserID})
	})
	return g
}

func TestAuthenticate_AnonymousContinues(t *testing.T) {
	rw := httptest.NewRecorder()
	newRouter().ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/public", nil))

	require.Equal(t, http.StatusOK, rw.Code)
	require.JSONEq(t, `{"user":null}`, rw.Body.String())
}

func TestAuthenticate_SetsPrincipal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessCookieName, Value: "goodtoken"})
	rw := httptest.NewRecorder()
	newRouter().ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
	require.JSONEq(t, `{"user":"alice"}`, rw.Body.String())
}

func TestRequireAuth_RejectsAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessCookieName, Value: "badtoken"})
	rw := httptest.NewRecorder()
	newRouter().ServeHTTP(rw, req)

	require.Equal(t, http.StatusUnauthorized, rw.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "unauthenticated", got["error"])
}

func TestRequireAuth_PrincipalInRequestContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessCookieName, Value: "goodtoken"})
	rw := httptest.NewRecorder()
	newRouter().ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
	require.JSONEq(t, `{"id":"user1"}`, rw.Body.String())
}
