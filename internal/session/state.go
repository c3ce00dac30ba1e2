package session

import "github.com/noah-isme/coursehub-web/internal/models"

// Status is the lifecycle phase of a browser session.
type Status string

const (
	StatusInitializing    Status = "INITIALIZING"
	StatusUnauthenticated Status = "UNAUTHENTICATED"
	StatusAuthenticating  Status = "AUTHENTICATING"
	StatusAuthenticated   Status = "AUTHENTICATED"
)

// State is an immutable snapshot published to observers. User is set only when
// Status is StatusAuthenticated.
type State struct {
	Status Status       `json:"status"`
	User   *models.User `json:"user,omitempty"`
}

// IsAuthenticated reports whether a user is signed in.
func (s State) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

// HasRole reports whether the signed-in user holds role.
func (s State) HasRole(role models.UserRole) bool {
	return s.IsAuthenticated() && s.User.Role == role
}

// Resolved reports whether startup validation has finished.
func (s State) Resolved() bool {
	return s.Status != StatusInitializing
}
