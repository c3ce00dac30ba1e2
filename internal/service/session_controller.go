package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-web/internal/models"
	"github.com/noah-isme/coursehub-web/internal/session"
	appErrors "github.com/noah-isme/coursehub-web/pkg/errors"
)

// AuthAPI is the slice of the marketplace API the session controller needs.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Validate(ctx context.Context, token string) error
}

// SessionController owns the authentication state of one browser session.
//
// Initialize validates a cached session exactly once. Login and Register are not
// serialized against each other; when they overlap the later successful response is the
// one that stays committed. Observers receive every published state in order.
type SessionController struct {
	store     *session.Store
	api       AuthAPI
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService

	// commitMu orders store writes with the state they settle.
	commitMu sync.Mutex

	mu sync.Mutex
	// settled is the last non-transient state; the published state is Authenticating
	// while inflight > 0.
	settled    session.State
	inflight   int
	generation uint64
	seq        uint64

	subMu       sync.Mutex
	subscribers map[uint64]func(session.State)
	nextSubID   uint64
	delivered   uint64

	initOnce sync.Once
	ready    chan struct{}
}

// NewSessionController constructs a controller in the Initializing state.
func NewSessionController(store *session.Store, api AuthAPI, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *SessionController {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &SessionController{
		store:       store,
		api:         api,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
		settled:     session.State{Status: session.StatusInitializing},
		subscribers: make(map[uint64]func(session.State)),
		ready:       make(chan struct{}),
	}
}

// Initialize starts validation of the cached session on first call and returns a channel
// closed once the session is resolved. Later calls return the same channel. The
// validation outlives ctx cancellation but keeps its values.
func (c *SessionController) Initialize(ctx context.Context) <-chan struct{} {
	c.initOnce.Do(func() {
		c.mu.Lock()
		generation := c.generation
		c.mu.Unlock()
		go c.runInitialize(context.WithoutCancel(ctx), generation)
	})
	return c.ready
}

// WaitReady blocks until initialization finishes, ctx ends or wait elapses, and reports
// whether the session is resolved.
func (c *SessionController) WaitReady(ctx context.Context, wait time.Duration) bool {
	ready := c.Initialize(ctx)
	if wait <= 0 {
		select {
		case <-ready:
			return true
		default:
			return false
		}
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ready:
		return true
	case <-ctx.Done():
		return false
	case <-timer.C:
		return false
	}
}

func (c *SessionController) runInitialize(ctx context.Context, generation uint64) {
	defer close(c.ready)

	next, rejected := c.resolveCachedSession(ctx)

	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	c.mu.Lock()
	decided := c.generation != generation
	c.mu.Unlock()
	if decided {
		// a login, logout or global logout already decided the session
		return
	}
	if rejected {
		if err := c.store.Clear(ctx); err != nil {
			c.logger.Warn("failed to clear rejected session", zap.Error(err))
		}
	}

	c.mu.Lock()
	c.generation++
	c.settled = next
	state, seq := c.currentLocked()
	c.mu.Unlock()

	c.publish(state, seq)
}

// resolveCachedSession reports the state of the stored session and whether the backend
// rejected it.
func (c *SessionController) resolveCachedSession(ctx context.Context) (session.State, bool) {
	unauthenticated := session.State{Status: session.StatusUnauthenticated}

	token, user, err := c.store.Session(ctx)
	if err != nil {
		c.logger.Warn("failed to read cached session", zap.Error(err))
		return unauthenticated, false
	}
	if user == nil {
		return unauthenticated, false
	}

	if err := c.api.Validate(ctx, token); err != nil {
		c.logger.Info("cached session rejected",
			zap.String("kind", string(appErrors.KindOf(err))),
			zap.Error(err))
		return unauthenticated, true
	}

	return session.State{Status: session.StatusAuthenticated, User: user}, false
}

// Login authenticates with the backend and commits the session on success.
func (c *SessionController) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if err := validatePayload(c.validator, req, "invalid login payload"); err != nil {
		return nil, err
	}
	return c.authenticate(ctx, func(ctx context.Context) (*models.AuthResponse, error) {
		return c.api.Login(ctx, req)
	})
}

// Register creates an account and signs it in.
func (c *SessionController) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := validatePayload(c.validator, req, "invalid registration payload"); err != nil {
		return nil, err
	}
	return c.authenticate(ctx, func(ctx context.Context) (*models.AuthResponse, error) {
		return c.api.Register(ctx, req)
	})
}

func (c *SessionController) authenticate(ctx context.Context, call func(context.Context) (*models.AuthResponse, error)) (*models.User, error) {
	c.mu.Lock()
	c.inflight++
	state, seq := c.currentLocked()
	c.mu.Unlock()
	c.publish(state, seq)

	auth, err := call(ctx)
	if err == nil && auth == nil {
		err = appErrors.Clone(appErrors.ErrNetwork, "empty authentication response")
	}

	c.commitMu.Lock()
	if err == nil {
		auth.User.Normalize()
		if storeErr := c.store.SetSession(ctx, auth.Token, auth.User); storeErr != nil {
			err = appErrors.Wrap(storeErr, appErrors.ErrInternal, "failed to persist session")
		}
	}

	c.mu.Lock()
	c.inflight--
	if err == nil {
		c.generation++
		c.settled = session.State{Status: session.StatusAuthenticated, User: auth.User.Clone()}
	}
	state, seq = c.currentLocked()
	c.mu.Unlock()
	c.commitMu.Unlock()
	c.publish(state, seq)

	if err != nil {
		c.logger.Info("authentication failed",
			zap.String("kind", string(appErrors.KindOf(err))),
			zap.Error(err))
		return nil, err
	}
	c.logger.Info("user signed in", zap.String("user_id", auth.User.ID), zap.String("role", string(auth.User.Role)))
	return auth.User.Clone(), nil
}

// Logout clears the stored session without contacting the backend.
func (c *SessionController) Logout(ctx context.Context) error {
	return c.signOut(ctx, "user signed out")
}

// HandleUnauthorized performs the global logout that follows any backend 401.
func (c *SessionController) HandleUnauthorized(ctx context.Context) error {
	return c.signOut(ctx, "backend rejected session credentials")
}

func (c *SessionController) signOut(ctx context.Context, reason string) error {
	c.commitMu.Lock()
	err := c.store.Clear(ctx)

	c.mu.Lock()
	c.generation++
	c.settled = session.State{Status: session.StatusUnauthenticated}
	state, seq := c.currentLocked()
	c.mu.Unlock()
	c.commitMu.Unlock()
	c.publish(state, seq)

	c.logger.Info(reason)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal, "failed to clear session")
	}
	return nil
}

// State returns the current snapshot.
func (c *SessionController) State() session.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, _ := c.currentLocked()
	return state
}

// User returns the signed-in user or nil.
func (c *SessionController) User() *models.User {
	state := c.State()
	if !state.IsAuthenticated() {
		return nil
	}
	return state.User
}

// Token returns the stored credential of the signed-in user.
func (c *SessionController) Token(ctx context.Context) (string, bool, error) {
	if !c.IsAuthenticated() {
		return "", false, nil
	}
	return c.store.Token(ctx)
}

// IsTokenExpiringSoon reports whether the stored token needs renewal. No session counts
// as expiring.
func (c *SessionController) IsTokenExpiringSoon(ctx context.Context) bool {
	token, ok, err := c.Token(ctx)
	if err != nil || !ok {
		return true
	}
	return c.store.IsTokenExpiringSoon(token)
}

// IsAuthenticated reports whether a user is signed in.
func (c *SessionController) IsAuthenticated() bool {
	return c.State().IsAuthenticated()
}

// HasRole reports whether the signed-in user holds role.
func (c *SessionController) HasRole(role models.UserRole) bool {
	return c.State().HasRole(role)
}

// IsAdmin reports whether the signed-in user is an administrator.
func (c *SessionController) IsAdmin() bool {
	return c.HasRole(models.RoleAdmin)
}

// IsInstructor reports whether the signed-in user is an instructor.
func (c *SessionController) IsInstructor() bool {
	return c.HasRole(models.RoleInstructor)
}

// IsStudent is true for both the USER and STUDENT backend spellings.
func (c *SessionController) IsStudent() bool {
	return c.HasRole(models.RoleStudent)
}

// Busy reports whether an initialization or authentication is still running.
func (c *SessionController) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0 || c.settled.Status == session.StatusInitializing
}

// Subscribe registers fn for every subsequent state and returns its cancel function.
// fn runs on the goroutine that caused the transition and must not subscribe or
// unsubscribe from inside the callback.
func (c *SessionController) Subscribe(fn func(session.State)) func() {
	c.subMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subscribers, id)
			c.subMu.Unlock()
		})
	}
}

// currentLocked returns the published state and stamps it with a new sequence number.
func (c *SessionController) currentLocked() (session.State, uint64) {
	c.seq++
	state := c.settled
	if c.inflight > 0 {
		state = session.State{Status: session.StatusAuthenticating}
	}
	if state.User != nil {
		state.User = state.User.Clone()
	}
	return state, c.seq
}

// publish delivers state unless a newer one has already been delivered.
func (c *SessionController) publish(state session.State, seq uint64) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	if seq <= c.delivered {
		return
	}
	c.delivered = seq
	c.metrics.RecordSessionTransition(state.Status)
	for _, fn := range c.subscribers {
		fn(state)
	}
}
