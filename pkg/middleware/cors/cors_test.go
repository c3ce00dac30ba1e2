package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(allowed []string, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(New(allowed))
	router.Any("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCORSEchoesAllowedOrigin(t *testing.T) {
	rec := serve([]string{"https://app.example.com/"}, http.MethodGet, "https://app.example.com")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	rec := serve([]string{"https://app.example.com"}, http.MethodGet, "https://evil.example.com")

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSNeverEmitsWildcard(t *testing.T) {
	rec := serve(nil, http.MethodGet, "")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(nil, http.MethodOptions, "http://localhost:5173")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
