package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/coursehub-web/internal/service"
	"github.com/noah-isme/coursehub-web/pkg/logger"
)

// ContextSessionKey is the gin context key storing the browser's session controller.
const ContextSessionKey = "sessionController"

// SessionOptions configures the session cookie and startup wait.
type SessionOptions struct {
	CookieName string
	Secure     bool
	MaxAge     time.Duration
	// InitWait bounds how long a request waits for cached-session validation before the
	// guard falls back to the loading view.
	InitWait time.Duration
}

// Session binds every request to the controller of its browser session, issuing a new
// session cookie when the browser has none.
func Session(registry *service.SessionRegistry, opts SessionOptions) gin.HandlerFunc {
	if opts.CookieName == "" {
		opts.CookieName = "coursehub_sid"
	}
	return func(c *gin.Context) {
		sid := uuid.NewString()
		if raw, err := c.Cookie(opts.CookieName); err == nil {
			if parsed, parseErr := uuid.Parse(raw); parseErr == nil {
				sid = parsed.String()
			}
		}
		// refresh on every request so the cookie outlives activity, not creation
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     opts.CookieName,
			Value:    sid,
			Path:     "/",
			MaxAge:   int(opts.MaxAge.Seconds()),
			HttpOnly: true,
			Secure:   opts.Secure,
			SameSite: http.SameSiteLaxMode,
		})

		controller := registry.Controller(sid)
		c.Set(logger.SessionRefKey, registry.Ref(sid))
		c.Set(ContextSessionKey, controller)

		controller.WaitReady(c.Request.Context(), opts.InitWait)
		c.Next()
	}
}

// SessionFrom returns the controller attached by Session, or nil.
func SessionFrom(c *gin.Context) *service.SessionController {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	controller, ok := value.(*service.SessionController)
	if !ok {
		return nil
	}
	return controller
}
