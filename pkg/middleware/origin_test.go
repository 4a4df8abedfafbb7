package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/csrf"
	"github.com/CrowdUp-org/CrowdUp-sub002/pkg/metrics"
)

func newGuardedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := csrf.NewGuard(csrf.Policy{AllowedOrigins: []string{"http://localhost:3000"}})
	r := gin.New()
	r.Use(CORS(g), OriginGuard(g))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/api/posts", ok)
	r.POST("/api/posts", ok)
	r.POST("/api/auth/callback/google", ok)
	return r
}

func do(r http.Handler, method, path, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)
	return rw
}

func TestOriginGuard(t *testing.T) {
	r := newGuardedRouter()
	before := testutil.ToFloat64(metrics.OriginRejected)

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/posts", "http://localhost:3000").Code)
	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/posts", "").Code)
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/auth/callback/google", "https://accounts.example").Code)

	rw := do(r, http.MethodPost, "/api/posts", "https://evil.example")
	require.Equal(t, http.StatusForbidden, rw.Code)
	require.JSONEq(t, `{"error":"origin not allowed"}`, rw.Body.String())

	require.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/api/posts", "").Code)
	require.Equal(t, before+2, testutil.ToFloat64(metrics.OriginRejected))
}

func TestCORS(t *testing.T) {
	r := newGuardedRouter()

	rw := do(r, http.MethodOptions, "/api/posts", "http://localhost:3000")
	require.Equal(t, http.StatusNoContent, rw.Code)
	require.Equal(t, "http://localhost:3000", rw.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rw.Header().Get("Access-Control-Allow-Credentials"))

	rw = do(r, http.MethodGet, "/api/posts", "https://evil.example")
	require.Equal(t, http.StatusOK, rw.Code)
	require.Empty(t, rw.Header().Get("Access-Control-Allow-Origin"))
}
