package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-web/internal/guard"
	"github.com/noah-isme/coursehub-web/internal/middleware"
	"github.com/noah-isme/coursehub-web/internal/session"
	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
	"github.com/noah-isme/coursehub-web/pkg/response"
)

// sessionState returns the state of the request's browser session.
func sessionState(c *gin.Context) session.State {
	if controller := middleware.SessionFrom(c); controller != nil {
		return controller.State()
	}
	return session.State{Status: session.StatusUnauthenticated}
}

// requireToken returns the backend credential of the signed-in user.
func requireToken(c *gin.Context) (string, error) {
	controller := middleware.SessionFrom(c)
	if controller == nil {
		return "", appErrors.ErrUnauthorized
	}
	token, ok, err := controller.Token(c.Request.Context())
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal, "failed to read session")
	}
	if !ok {
		return "", appErrors.ErrUnauthorized
	}
	return token, nil
}

// optionalToken returns the credential when signed in and "" otherwise.
func optionalToken(c *gin.Context) string {
	token, err := requireToken(c)
	if err != nil {
		return ""
	}
	return token
}

// fail writes err. A backend 401 signs the browser out everywhere and points the client
// at the login view.
func fail(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Kind == appErrors.KindAuthorization && appErr.Status == http.StatusUnauthorized {
		if controller := middleware.SessionFrom(c); controller != nil {
			_ = controller.HandleUnauthorized(c.Request.Context())
		}
		response.Error(c, appErr, map[string]interface{}{"redirect": guard.LoginLocation(c.Request.URL.RequestURI())})
		return
	}
	response.Error(c, appErr)
}

// bindJSON decodes the request body or reports a validation error.
func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation, message))
		return false
	}
	return true
}
