package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
)

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid credentials"), map[string]interface{}{"redirect": "/login"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid credentials", body["message"])
	assert.Equal(t, "/login", body["meta"].(map[string]interface{})["redirect"])
	assert.Equal(t, string(appErrors.KindAuthentication), body["error"].(map[string]interface{})["kind"])
}

func TestOKEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	OK(c, gin.H{"view": "home"})

	var body Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Nil(t, body.Error)
	assert.Equal(t, "home", body.Data.(map[string]interface{})["view"])
}
