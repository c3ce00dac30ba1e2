package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursehub-web/internal/guard"
	"github.com/noah-isme/coursehub-web/internal/middleware"
	"github.com/noah-isme/coursehub-web/internal/models"
	"github.com/noah-isme/coursehub-web/internal/session"
	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
	"github.com/noah-isme/coursehub-web/pkg/response"
)

const defaultLandingPath = "/"

// SessionView describes the browser session to the client.
type SessionView struct {
	Status       session.Status `json:"status"`
	User         *models.User   `json:"user,omitempty"`
	ExpiringSoon bool           `json:"expiringSoon"`
}

// AuthFormView is the view model of the login and register pages.
type AuthFormView struct {
	Redirect string `json:"redirect"`
}

// SessionHandler exposes sign-in, sign-up and sign-out for the browser session.
type SessionHandler struct{}

// NewSessionHandler creates a new handler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Current godoc
// @Summary Current session
// @Description Returns the session state of this browser
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *SessionHandler) Current(c *gin.Context) {
	response.OK(c, h.view(c))
}

// Login godoc
// @Summary Sign in
// @Description Authenticates with the marketplace and stores the session for this browser
// @Tags Session
// @Accept json
// @Produce json
// @Param redirect query string false "Local path to continue to"
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /session/login [post]
func (h *SessionHandler) Login(c *gin.Context) {
	controller := middleware.SessionFrom(c)
	if controller == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req models.LoginRequest
	if !bindJSON(c, &req, "invalid login payload") {
		return
	}

	if _, err := controller.Login(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Successfully logged in!", h.view(c), h.redirectMeta(c))
}

// Register godoc
// @Summary Sign up
// @Description Creates an account and signs this browser in
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Account"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /session/register [post]
func (h *SessionHandler) Register(c *gin.Context) {
	controller := middleware.SessionFrom(c)
	if controller == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req models.RegisterRequest
	if !bindJSON(c, &req, "invalid registration payload") {
		return
	}

	if _, err := controller.Register(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, "Successfully registered!", h.view(c), h.redirectMeta(c))
}

// Logout godoc
// @Summary Sign out
// @Description Clears the session of this browser without contacting the marketplace
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	controller := middleware.SessionFrom(c)
	if controller == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	if err := controller.Logout(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Successfully logged out!", h.view(c), map[string]interface{}{"redirect": defaultLandingPath})
}

// LoginView godoc
// @Summary Login page
// @Description Signed-in visitors are sent on to the redirect target
// @Tags Pages
// @Produce json
// @Param redirect query string false "Local path to continue to"
// @Success 200 {object} response.Envelope
// @Success 302
// @Router /login [get]
func (h *SessionHandler) LoginView(c *gin.Context) {
	h.authForm(c)
}

// RegisterView godoc
// @Summary Registration page
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Success 302
// @Router /register [get]
func (h *SessionHandler) RegisterView(c *gin.Context) {
	h.authForm(c)
}

func (h *SessionHandler) authForm(c *gin.Context) {
	target := guard.SafeRedirect(c.Query(guard.RedirectParam), defaultLandingPath)
	if sessionState(c).IsAuthenticated() {
		if middleware.WantsHTML(c) {
			c.Redirect(http.StatusFound, target)
			return
		}
		response.OK(c, AuthFormView{Redirect: target}, map[string]interface{}{"redirect": target})
		return
	}
	response.OK(c, AuthFormView{Redirect: target})
}

func (h *SessionHandler) view(c *gin.Context) SessionView {
	controller := middleware.SessionFrom(c)
	if controller == nil {
		return SessionView{Status: session.StatusUnauthenticated, ExpiringSoon: true}
	}
	state := controller.State()
	view := SessionView{Status: state.Status, User: state.User}
	if state.IsAuthenticated() {
		view.ExpiringSoon = controller.IsTokenExpiringSoon(c.Request.Context())
	}
	return view
}

func (h *SessionHandler) redirectMeta(c *gin.Context) map[string]interface{} {
	return map[string]interface{}{"redirect": guard.SafeRedirect(c.Query(guard.RedirectParam), defaultLandingPath)}
}
