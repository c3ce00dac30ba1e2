package requestid

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderKey is forwarded to the backend so gateway and API logs correlate.
	HeaderKey  = "X-Request-ID"
	contextKey = "request_id"

	// MaxLength bounds incoming ids; longer or non-printable ids are replaced.
	MaxLength = 128
)

type ctxKey struct{}

// Middleware assigns a unique request ID to each incoming HTTP request and makes it
// available both on the gin context and on the request's context.Context.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(HeaderKey)
		if !valid(reqID) {
			reqID = uuid.NewString()
		}

		c.Set(contextKey, reqID)
		c.Writer.Header().Set(HeaderKey, reqID)
		c.Request = c.Request.WithContext(WithValue(c.Request.Context(), reqID))

		c.Next()
	}
}

// Value returns the request ID stored in the Gin context.
func Value(c *gin.Context) string {
	if v, exists := c.Get(contextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// WithValue stores id on ctx.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the request ID placed by Middleware.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func valid(id string) bool {
	if id == "" || len(id) > MaxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
