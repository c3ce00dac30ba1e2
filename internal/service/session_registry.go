package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-web/internal/session"
	"github.com/noah-isme/coursehub-web/pkg/logger"
)

// SessionRegistryConfig wires the dependencies shared by every controller.
type SessionRegistryConfig struct {
	Storage    session.Storage
	Namespacer *session.Namespacer
	API        AuthAPI
	Validator  *validator.Validate
	Logger     *zap.Logger
	Metrics    *MetricsService
	TTL        time.Duration
	// IdleTimeout evicts controllers not used for this long. Persisted sessions survive
	// eviction and are revalidated on the next request.
	IdleTimeout time.Duration
}

type registryEntry struct {
	controller *SessionController
	lastSeen   time.Time
}

// SessionRegistry maps browser session ids to lazily created controllers.
type SessionRegistry struct {
	cfg SessionRegistryConfig
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
}

// NewSessionRegistry constructs an empty registry.
func NewSessionRegistry(cfg SessionRegistryConfig) *SessionRegistry {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Validator == nil {
		cfg.Validator = NewValidator()
	}
	if cfg.Namespacer == nil {
		cfg.Namespacer = session.NewNamespacer("")
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	return &SessionRegistry{cfg: cfg, now: time.Now, entries: make(map[string]*registryEntry)}
}

// Controller returns the controller for sessionID, creating it on first use.
func (r *SessionRegistry) Controller(sessionID string) *SessionController {
	namespace := r.cfg.Namespacer.Namespace(sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[namespace]; ok {
		entry.lastSeen = r.now()
		return entry.controller
	}

	store := session.NewStore(r.cfg.Storage, namespace, r.cfg.TTL)
	sessionLogger := r.cfg.Logger.With(zap.String(logger.SessionRefKey, namespace[:12]))
	controller := NewSessionController(store, r.cfg.API, r.cfg.Validator, sessionLogger, r.cfg.Metrics)
	r.entries[namespace] = &registryEntry{controller: controller, lastSeen: r.now()}
	r.cfg.Metrics.SetActiveSessions(len(r.entries))
	return controller
}

// Ref returns the log-safe reference of sessionID.
func (r *SessionRegistry) Ref(sessionID string) string {
	return r.cfg.Namespacer.Ref(sessionID)
}

// Len reports how many controllers are held.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts idle controllers that have no operation in flight and returns how many
// were removed.
func (r *SessionRegistry) Sweep() int {
	cutoff := r.now().Add(-r.cfg.IdleTimeout)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for namespace, entry := range r.entries {
		if entry.lastSeen.After(cutoff) || entry.controller.Busy() {
			continue
		}
		delete(r.entries, namespace)
		removed++
	}
	if removed > 0 {
		r.cfg.Metrics.SetActiveSessions(len(r.entries))
		r.cfg.Logger.Debug("evicted idle session controllers", zap.Int("count", removed))
	}
	return removed
}

// Run sweeps on every tick until ctx is done.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
