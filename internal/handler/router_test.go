package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-web/internal/backend"
	"github.com/noah-isme/coursehub-web/internal/middleware"
	"github.com/noah-isme/coursehub-web/internal/models"
	"github.com/noah-isme/coursehub-web/internal/service"
	"github.com/noah-isme/coursehub-web/internal/session"
	"github.com/noah-isme/coursehub-web/pkg/response"
)

// fakeMarketplace is a scripted marketplace API.
type fakeMarketplace struct {
	mu          sync.Mutex
	users       map[string]models.User
	tokens      map[string]string
	rejectAll   bool
	lastBody    map[string]interface{}
	lastAuth    string
	searchCalls int
}

func newFakeMarketplace() *fakeMarketplace {
	return &fakeMarketplace{
		users: map[string]models.User{
			"student@example.com":    {ID: "u-student", Name: "Sam", Role: "USER"},
			"instructor@example.com": {ID: "u-inst", Name: "Ida", Role: "INSTRUCTOR"},
			"admin@example.com":      {ID: "u-admin", Name: "Ada", Role: "ADMIN"},
		},
		tokens: map[string]string{},
	}
}

func (f *fakeMarketplace) token(t *testing.T, userID string) string {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return signed
}

func writeJSON(w http.ResponseWriter, status int, success bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": success, "message": message, "data": data})
}

func (f *fakeMarketplace) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		user, ok := f.users[req.Email]
		if !ok || req.Password != "secret1" {
			writeJSON(w, http.StatusBadRequest, false, "Invalid credentials", nil)
			return
		}
		token := f.token(t, user.ID)
		f.mu.Lock()
		f.tokens[token] = user.ID
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, true, "Login successful", models.AuthResponse{Token: token, User: user})
	})
	mux.HandleFunc("/api/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, true, "", nil)
	})
	mux.HandleFunc("/api/courses/enrolled", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastAuth = r.Header.Get("Authorization")
		reject := f.rejectAll
		f.mu.Unlock()
		if reject {
			writeJSON(w, http.StatusUnauthorized, false, "Token expired", nil)
			return
		}
		writeJSON(w, http.StatusOK, true, "", []models.Course{{ID: "c1", Title: "Go Basics"}})
	})
	mux.HandleFunc("/api/courses/search", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.searchCalls++
		_ = json.NewDecoder(r.Body).Decode(&f.lastBody)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, true, "", []models.Course{{ID: "c1", Title: "Go Basics"}})
	})
	mux.HandleFunc("/api/courses/featured", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, true, "", []models.Course{{ID: "c1", IsFeatured: true}})
	})
	mux.HandleFunc("/api/categories/parents", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, true, "", []models.Category{{ID: "cat-1", Name: "Web Development"}})
	})
	mux.HandleFunc("/api/categories/cat-1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, true, "", models.Category{ID: "cat-1", Name: "Web Development"})
	})
	mux.HandleFunc("/api/categories/cat-1/subcategories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, true, "", []models.Category{{ID: "cat-2", Name: "Front End", ParentCategoryID: "cat-1"}})
	})
	mux.HandleFunc("/api/courses/category/cat-1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, true, "", []models.Course{{ID: "c9", CategoryID: "cat-1"}})
	})
	mux.HandleFunc("/api/courses/my-courses", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, true, "", []models.Course{
			{ID: "c1", IsPublished: true, EnrolledStudentsCount: 10, AverageRating: 4, TotalReviews: 2},
			{ID: "c2", EnrolledStudentsCount: 5, AverageRating: 5, TotalReviews: 1},
		})
	})
	return mux
}

type gateway struct {
	t       *testing.T
	router  *gin.Engine
	backend *fakeMarketplace
	cookie  *http.Cookie
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	gin.SetMode(gin.TestMode)

	market := newFakeMarketplace()
	srv := httptest.NewServer(market.handler(t))
	t.Cleanup(srv.Close)

	metrics := service.NewMetricsService()
	client := backend.New(srv.URL, time.Second, backend.WithObserver(metrics))
	registry := service.NewSessionRegistry(service.SessionRegistryConfig{
		Storage:    session.NewMemoryStorage(),
		Namespacer: session.NewNamespacer("test"),
		API:        client,
		Metrics:    metrics,
		TTL:        time.Hour,
	})

	router := NewRouter(RouterConfig{
		Metrics:    metrics,
		Registry:   registry,
		Courses:    service.NewCourseService(client, nil, nil, nil, time.Minute),
		Categories: service.NewCategoryService(client, nil, nil, nil, time.Minute),
		Session:    middleware.SessionOptions{CookieName: "sid", MaxAge: time.Hour, InitWait: time.Second},
		ReadyChecks: map[string]Pinger{
			"backend": func(ctx context.Context) error { return nil },
		},
		EnableMetrics: true,
	})
	return &gateway{t: t, router: router, backend: market}
}

func (g *gateway) do(method, path, accept string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(g.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if g.cookie != nil {
		req.AddCookie(g.cookie)
	}
	w := httptest.NewRecorder()
	g.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "sid" {
			g.cookie = c
		}
	}
	return w
}

func (g *gateway) login(email string) *httptest.ResponseRecorder {
	return g.do(http.MethodPost, "/session/login", "application/json", models.LoginRequest{Email: email, Password: "secret1"})
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func dataMap(t *testing.T, env response.Envelope) map[string]interface{} {
	t.Helper()
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", env.Data)
	return data
}

func TestLoginFlowAuthenticatesBrowser(t *testing.T) {
	g := newGateway(t)

	w := g.do(http.MethodGet, "/session", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(session.StatusUnauthenticated), dataMap(t, decodeEnvelope(t, w))["status"])

	w = g.do(http.MethodPost, "/session/login?redirect=%2Fdashboard", "application/json", models.LoginRequest{Email: "student@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Successfully logged in!", env.Message)
	assert.Equal(t, "/dashboard", env.Meta["redirect"])
	user := dataMap(t, env)["user"].(map[string]interface{})
	assert.Equal(t, "STUDENT", user["role"])
	assert.Equal(t, "USER", user["legacyRole"])
	assert.Equal(t, false, dataMap(t, env)["expiringSoon"])

	w = g.do(http.MethodGet, "/dashboard", "application/json", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), dataMap(t, decodeEnvelope(t, w))["totalCourses"])
	assert.True(t, strings.HasPrefix(g.backend.lastAuth, "Bearer "))
}

func TestLoginRejectedSurfacesBackendMessage(t *testing.T) {
	g := newGateway(t)

	w := g.do(http.MethodPost, "/session/login", "application/json", models.LoginRequest{Email: "student@example.com", Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Invalid credentials", env.Message)
	assert.Equal(t, "AUTHENTICATION", string(env.Error.Kind))

	w = g.do(http.MethodGet, "/session", "", nil)
	assert.Equal(t, string(session.StatusUnauthenticated), dataMap(t, decodeEnvelope(t, w))["status"])
}

func TestLoginPayloadValidation(t *testing.T) {
	g := newGateway(t)

	w := g.do(http.MethodPost, "/session/login", "application/json", map[string]string{"email": "nope"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "VALIDATION", string(env.Error.Kind))
	assert.Equal(t, "is required", env.Error.Fields["password"])
}

func TestAnonymousDashboardRedirectsToLogin(t *testing.T) {
	g := newGateway(t)

	w := g.do(http.MethodGet, "/dashboard", "text/html", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?redirect=%2Fdashboard", w.Header().Get("Location"))
}

func TestInstructorCannotOpenAdmin(t *testing.T) {
	g := newGateway(t)
	require.Equal(t, http.StatusOK, g.login("instructor@example.com").Code)

	w := g.do(http.MethodGet, "/admin", "text/html", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/unauthorized", w.Header().Get("Location"))

	w = g.do(http.MethodGet, "/instructor", "application/json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := dataMap(t, decodeEnvelope(t, w))["stats"].(map[string]interface{})
	assert.Equal(t, float64(2), stats["totalCourses"])
	assert.Equal(t, float64(1), stats["publishedCourses"])
	assert.Equal(t, float64(15), stats["totalStudents"])
	assert.Equal(t, 4.5, stats["averageRating"])
}

func TestBackendUnauthorizedLogsOutEverywhere(t *testing.T) {
	g := newGateway(t)
	require.Equal(t, http.StatusOK, g.login("student@example.com").Code)

	g.backend.mu.Lock()
	g.backend.rejectAll = true
	g.backend.mu.Unlock()

	w := g.do(http.MethodGet, "/dashboard", "application/json", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Token expired", env.Message)
	assert.Equal(t, "/login?redirect=%2Fdashboard", env.Meta["redirect"])

	w = g.do(http.MethodGet, "/session", "", nil)
	assert.Equal(t, string(session.StatusUnauthenticated), dataMap(t, decodeEnvelope(t, w))["status"])
}

func TestLogout(t *testing.T) {
	g := newGateway(t)
	require.Equal(t, http.StatusOK, g.login("admin@example.com").Code)

	w := g.do(http.MethodPost, "/session/logout", "application/json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/", decodeEnvelope(t, w).Meta["redirect"])

	w = g.do(http.MethodGet, "/admin", "application/json", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginViewRedirectsSignedInBrowser(t *testing.T) {
	g := newGateway(t)

	w := g.do(http.MethodGet, "/login?redirect=https%3A%2F%2Fevil.example", "application/json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/", dataMap(t, decodeEnvelope(t, w))["redirect"])

	require.Equal(t, http.StatusOK, g.login("student@example.com").Code)
	w = g.do(http.MethodGet, "/login?redirect=%2Fprofile", "text/html", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile", w.Header().Get("Location"))
}

func TestCatalogCanonicalisesQuery(t *testing.T) {
	g := newGateway(t)

	w := g.do(http.MethodGet, "/courses?search=go&level=beginner&bogus=1", "text/html", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/courses?keyword=go&level=BEGINNER", w.Header().Get("Location"))

	w = g.do(http.MethodGet, "/courses?keyword=go&level=BEGINNER", "application/json", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decodeEnvelope(t, w)
	assert.Equal(t, "keyword=go&level=BEGINNER", env.Meta["query"])
	assert.Len(t, dataMap(t, env)["results"], 1)

	assert.Equal(t, "go", g.backend.lastBody["keyword"])
	assert.Equal(t, "createdAt", g.backend.lastBody["sortBy"])
	assert.Equal(t, float64(20), g.backend.lastBody["size"])
}

func TestCatalogRejectsBrokenQuery(t *testing.T) {
	g := newGateway(t)
	w := g.do(http.MethodGet, "/courses?keyword=%zz", "application/json", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoryPageLinksBySlug(t *testing.T) {
	g := newGateway(t)

	w := g.do(http.MethodGet, "/categories/cat-1/web-development", "application/json", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataMap(t, decodeEnvelope(t, w))
	category := data["category"].(map[string]interface{})
	assert.Equal(t, "web-development", category["slug"])
	assert.Equal(t, "/categories/cat-1/web-development", category["path"])
	sub := data["subCategories"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "/categories/cat-2/front-end", sub["path"])
}

func TestHomePage(t *testing.T) {
	g := newGateway(t)
	w := g.do(http.MethodGet, "/", "application/json", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataMap(t, decodeEnvelope(t, w))
	assert.Len(t, data["featuredCourses"], 1)
	assert.Len(t, data["parentCategories"], 1)
}

func TestInstructorCourseValidation(t *testing.T) {
	g := newGateway(t)
	require.Equal(t, http.StatusOK, g.login("instructor@example.com").Code)

	w := g.do(http.MethodPost, "/instructor/courses", "application/json", models.CourseRequest{Title: "Go"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Contains(t, env.Error.Fields, "title")
	assert.Contains(t, env.Error.Fields, "level")
}

func TestUnknownRouteGoesHome(t *testing.T) {
	g := newGateway(t)
	w := g.do(http.MethodGet, "/nowhere", "text/html", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = g.do(http.MethodGet, "/nowhere", "application/json", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOpsEndpoints(t *testing.T) {
	g := newGateway(t)

	assert.Equal(t, http.StatusOK, g.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, g.do(http.MethodGet, "/ready", "", nil).Code)

	w := g.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestReadyReportsFailedDependency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(service.NewMetricsService(), map[string]Pinger{
		"redis": func(ctx context.Context) error { return errors.New("connection refused") },
	})
	r := gin.New()
	r.GET("/ready", h.Ready)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "connection refused", env.Error.Fields["redis"])
}
