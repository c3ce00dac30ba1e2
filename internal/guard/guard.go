// Package guard decides whether a role-gated view may render for the current session.
package guard

import (
	"net/url"

	"github.com/noah-isme/coursehub-web/internal/models"
	"github.com/noah-isme/coursehub-web/internal/session"
)

// Well-known view paths.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
	RedirectParam    = "redirect"
)

// Action is the outcome of a guard decision.
type Action string

const (
	ActionRender               Action = "RENDER"
	ActionLoading              Action = "LOADING"
	ActionRedirectLogin        Action = "REDIRECT_LOGIN"
	ActionRedirectUnauthorized Action = "REDIRECT_UNAUTHORIZED"
)

// Requirement describes who may see a view. The zero value is a public view.
type Requirement struct {
	Authenticated bool
	// Roles is an any-of list; empty means any signed-in user.
	Roles []models.UserRole
}

// Public renders for everybody.
var Public = Requirement{}

// Authenticated requires a signed-in user of any role.
var Authenticated = Requirement{Authenticated: true}

// RequireRole requires a signed-in user holding one of roles.
func RequireRole(roles ...models.UserRole) Requirement {
	return Requirement{Authenticated: true, Roles: roles}
}

// Decision is the guard verdict. Location is set for redirects.
type Decision struct {
	Action   Action
	Location string
}

// Decide is pure: the same state, requirement and path always yield the same decision.
// While the session is initializing or a login is in flight no redirect is ever issued.
func Decide(state session.State, req Requirement, requestedPath string) Decision {
	if !req.Authenticated && len(req.Roles) == 0 {
		return Decision{Action: ActionRender}
	}

	switch state.Status {
	case session.StatusInitializing, session.StatusAuthenticating:
		return Decision{Action: ActionLoading}
	}

	if !state.IsAuthenticated() {
		return Decision{Action: ActionRedirectLogin, Location: LoginLocation(requestedPath)}
	}

	if len(req.Roles) > 0 && !hasAnyRole(state, req.Roles) {
		return Decision{Action: ActionRedirectUnauthorized, Location: UnauthorizedPath}
	}

	return Decision{Action: ActionRender}
}

// LoginLocation builds the login URL that returns the user to requestedPath afterwards.
func LoginLocation(requestedPath string) string {
	if requestedPath == "" {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{RedirectParam: {requestedPath}}.Encode()
}

// SafeRedirect returns target when it is a local absolute path, otherwise fallback.
func SafeRedirect(target, fallback string) string {
	if target == "" || target[0] != '/' || (len(target) > 1 && (target[1] == '/' || target[1] == '\\')) {
		return fallback
	}
	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return fallback
	}
	return target
}

func hasAnyRole(state session.State, roles []models.UserRole) bool {
	for _, role := range roles {
		if state.HasRole(role) {
			return true
		}
	}
	return false
}
