package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
)

// Envelope mirrors the backend contract {success, message, data} so the browser sees a
// single response shape from both the gateway and the API.
type Envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    interface{}            `json:"data"`
	Error   *appErrors.Error       `json:"error,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional metadata.
func JSON(c *gin.Context, status int, message string, data interface{}, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{Success: true, Message: message, Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// OK responds with HTTP 200 and an empty message.
func OK(c *gin.Context, data interface{}, meta ...map[string]interface{}) {
	JSON(c, http.StatusOK, "", data, meta...)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusCreated, message, data)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error, meta ...map[string]interface{}) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{Success: false, Message: appErr.Message, Error: appErr}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	_ = c.Error(err)
	c.JSON(appErr.Status, envelope)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
