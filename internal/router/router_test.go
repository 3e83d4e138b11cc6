package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/admin-security/internal/middleware"
	"github.com/jwalitptl/admin-security/pkg/auth"
)

type stubHandler struct{}

func ok(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }

func (stubHandler) RegisterRoutes(rg *gin.RouterGroup)     { rg.GET("/security/parameters", ok) }
func (stubHandler) RegisterUserRoutes(rg *gin.RouterGroup) { rg.POST("/users/:id/password/validate", ok) }

type healthStub struct{}

func (healthStub) RegisterRoutes(rg *gin.RouterGroup) { rg.GET("/health/live", ok) }

func newTestRouter(t *testing.T, jwt auth.JWTService, reg *prometheus.Registry) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := NewRouter(middleware.NewAuthMiddleware(jwt), healthStub{}, stubHandler{}, stubHandler{}, RouterConfig{
		RateLimitEnabled: true,
		RateLimit:        1,
		RateBurst:        2,
		AdminRole:        "security_admin",
		Registerer:       reg,
	})
	r.Setup()
	return r.Engine()
}

func serve(e *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestAdminRoutesRequireToken(t *testing.T) {
	jwt := auth.NewJWTService("secret", "admin-security", time.Hour)
	e := newTestRouter(t, jwt, prometheus.NewRegistry())

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/api/v1/security/parameters", "").Code)

	token, err := jwt.GenerateAccessToken("1", "viewer@example.com", []string{"viewer"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/api/v1/security/parameters", token).Code)

	token, err = jwt.GenerateAccessToken("2", "admin@example.com", []string{"security_admin"})
	require.NoError(t, err)
	w := serve(e, http.MethodGet, "/api/v1/security/parameters", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))
}

func TestUserRoutesAreRateLimited(t *testing.T) {
	e := newTestRouter(t, auth.NewJWTService("secret", "admin-security", time.Hour), prometheus.NewRegistry())

	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/api/v1/users/1/password/validate", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/api/v1/users/1/password/validate", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodPost, "/api/v1/users/1/password/validate", "").Code)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/v1/health/live", "").Code)
}

func TestRequestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := newTestRouter(t, auth.NewJWTService("secret", "admin-security", time.Hour), reg)

	serve(e, http.MethodGet, "/api/v1/health/live", "")
	serve(e, http.MethodGet, "/api/v1/security/parameters", "")

	n, err := testutil.GatherAndCount(reg, "adminsec_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
