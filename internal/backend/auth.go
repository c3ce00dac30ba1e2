package backend

import (
	"context"
	"net/http"

	"github.com/noah-isme/coursehub-web/internal/models"
	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
)

// Login exchanges credentials for a token and user.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	return c.authenticate(ctx, request{
		method:   http.MethodPost,
		path:     "/api/auth/login",
		endpoint: "/api/auth/login",
		body:     req,
		fallback: "Login failed",
		mapError: credentialErrorMapper,
	})
}

// Register creates an account and returns its token and user.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	return c.authenticate(ctx, request{
		method:   http.MethodPost,
		path:     "/api/auth/register",
		endpoint: "/api/auth/register",
		body:     req,
		fallback: "Registration failed",
		mapError: registrationErrorMapper,
	})
}

// Validate asks the backend whether token is still accepted.
func (c *Client) Validate(ctx context.Context, token string) error {
	_, err := c.roundTrip(ctx, request{
		method:   http.MethodPost,
		path:     "/api/auth/validate",
		endpoint: "/api/auth/validate",
		token:    token,
		fallback: "Session validation failed",
	})
	return err
}

func (c *Client) authenticate(ctx context.Context, req request) (*models.AuthResponse, error) {
	auth, err := call[models.AuthResponse](ctx, c, req)
	if err != nil {
		return nil, err
	}
	if auth == nil || auth.Token == "" {
		return nil, appErrors.Clone(appErrors.ErrNetwork, req.fallback)
	}
	auth.User.Normalize()
	return auth, nil
}
