package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-web/internal/guard"
	"github.com/noah-isme/coursehub-web/internal/models"
	"github.com/noah-isme/coursehub-web/pkg/response"
)

const guardSID = "0b6c1e1a-5d7f-4b8e-8f00-111122223333"

func guardedRouter(f *fixture, opts SessionOptions) *gin.Engine {
	router := gin.New()
	router.Use(Session(f.registry, opts))
	router.GET("/dashboard", Guard(guard.Authenticated), func(c *gin.Context) { c.String(http.StatusOK, "dashboard") })
	router.GET("/admin", Guard(guard.RequireRole(models.RoleAdmin)), func(c *gin.Context) { c.String(http.StatusOK, "admin") })
	router.GET("/", Guard(guard.Public), func(c *gin.Context) { c.String(http.StatusOK, "home") })
	return router
}

func doGuarded(router *gin.Engine, path, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: guardSID})
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGuardRedirectsAnonymousBrowserToLogin(t *testing.T) {
	f := newFixture()
	w := doGuarded(guardedRouter(f, f.options()), "/dashboard?tab=courses", "text/html,application/xhtml+xml")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?redirect=%2Fdashboard%3Ftab%3Dcourses", w.Header().Get("Location"))
}

func TestGuardAnswersAnonymousAPIClientWithEnvelope(t *testing.T) {
	f := newFixture()
	w := doGuarded(guardedRouter(f, f.options()), "/dashboard", "application/json")

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "/login?redirect=%2Fdashboard", env.Meta["redirect"])
}

func TestGuardSendsInstructorToUnauthorized(t *testing.T) {
	f := newFixture()
	f.seed(t, guardSID, models.RoleInstructor)
	router := guardedRouter(f, f.options())

	w := doGuarded(router, "/admin", "text/html")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, guard.UnauthorizedPath, w.Header().Get("Location"))

	w = doGuarded(router, "/admin", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "\"admin\"")
}

func TestGuardRendersForMatchingRole(t *testing.T) {
	f := newFixture()
	f.seed(t, guardSID, models.RoleAdmin)
	w := doGuarded(guardedRouter(f, f.options()), "/admin", "text/html")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}

func TestGuardShowsLoadingWhileInitializing(t *testing.T) {
	f := newFixture()
	gate := make(chan struct{})
	defer close(gate)
	f.api.validateGate = gate
	f.seed(t, guardSID, models.RoleAdmin)

	opts := f.options()
	opts.InitWait = 10 * time.Millisecond
	router := guardedRouter(f, opts)

	w := doGuarded(router, "/admin", "text/html")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, LoadingRetryAfter, w.Header().Get("Retry-After"))
	assert.Empty(t, w.Header().Get("Location"))

	w = doGuarded(router, "/", "text/html")
	assert.Equal(t, http.StatusOK, w.Code)
}
