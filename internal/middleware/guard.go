package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-web/internal/guard"
	"github.com/noah-isme/coursehub-web/internal/session"
	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
	"github.com/noah-isme/coursehub-web/pkg/response"
)

// LoadingRetryAfter is sent with the loading view.
const LoadingRetryAfter = "1"

// Guard enforces req for the route. Browsers asking for HTML are redirected; API clients
// get a 401/403 envelope whose meta carries the redirect target.
func Guard(req guard.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := session.State{Status: session.StatusUnauthenticated}
		if controller := SessionFrom(c); controller != nil {
			state = controller.State()
		}

		decision := guard.Decide(state, req, c.Request.URL.RequestURI())
		switch decision.Action {
		case guard.ActionRender:
			c.Next()
		case guard.ActionLoading:
			c.Header("Retry-After", LoadingRetryAfter)
			response.JSON(c, http.StatusAccepted, "session is loading", gin.H{"status": state.Status})
			c.Abort()
		case guard.ActionRedirectLogin:
			redirect(c, decision.Location, appErrors.Clone(appErrors.ErrUnauthorized, "sign in required"))
		case guard.ActionRedirectUnauthorized:
			redirect(c, decision.Location, appErrors.Clone(appErrors.ErrForbidden, "insufficient role"))
		}
	}
}

func redirect(c *gin.Context, location string, err *appErrors.Error) {
	if WantsHTML(c) && c.Request.Method == http.MethodGet {
		c.Redirect(http.StatusFound, location)
		c.Abort()
		return
	}
	response.Error(c, err, map[string]interface{}{"redirect": location})
	c.Abort()
}

// WantsHTML reports whether the client prefers an HTML document over JSON.
func WantsHTML(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/html") && !strings.HasPrefix(accept, "application/json")
}
