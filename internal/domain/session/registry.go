// internal/domain/session/registry.go
package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/pkg/auth"
	"github.com/your-org/storefront/internal/pkg/notify"
)

// Backend is the backend endpoint set a browser session talks to
type Backend interface {
	cart.API
	user.API
}

// BackendFactory builds a backend client authenticating with tokens from src
type BackendFactory func(src func(ctx context.Context) (string, error)) Backend

// Recorder receives session lifecycle and cart outcomes
type Recorder interface {
	cart.Recorder
	SessionOpened()
	SessionClosed()
}

// Dependencies are the shared collaborators every session is built from
type Dependencies struct {
	Backend  BackendFactory
	Products product.Lookup
	Tokens   auth.TokenStore
	Recorder Recorder
	Logger   logrus.FieldLogger
}

// Session bundles the per-browser state: auth, cart and pending notifications
type Session struct {
	ID    string
	Auth  *user.Session
	Cart  *cart.Store
	Inbox *notify.Inbox

	initOnce sync.Once
	lastSeen time.Time
}

// Registry owns the live sessions of the process
type Registry struct {
	deps Dependencies
	cfg  *config.Config
	log  logrus.FieldLogger
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry
func NewRegistry(deps Dependencies, cfg *config.Config) *Registry {
	return &Registry{
		deps:     deps,
		cfg:      cfg,
		log:      deps.Logger.WithField("component", "sessions"),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id, creating and initializing it on first use.
// A session whose stored token is still valid comes back signed in with its cart loaded.
func (r *Registry) Get(ctx context.Context, id string) *Session {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		s = r.build(id)
		r.sessions[id] = s
	}
	s.lastSeen = r.now()
	r.mu.Unlock()

	if !ok && r.deps.Recorder != nil {
		r.deps.Recorder.SessionOpened()
	}

	s.initOnce.Do(func() {
		if err := s.Auth.Initialize(ctx); err != nil {
			r.log.WithError(err).WithField("session_id", id).Warn("session initialization failed")
		}
	})
	return s
}

func (r *Registry) build(id string) *Session {
	log := r.log.WithField("session_id", id)
	tokens := r.deps.Tokens
	backend := r.deps.Backend(func(ctx context.Context) (string, error) {
		return tokens.Get(ctx, id)
	})

	authSession := user.NewSession(id, backend, tokens, r.deps.Logger)
	inbox := notify.NewInbox(r.cfg.Cart.NotificationLimit)

	var recorder cart.Recorder
	if r.deps.Recorder != nil {
		recorder = r.deps.Recorder
	}
	store := cart.NewStore(cart.Dependencies{
		API:      backend,
		Products: r.deps.Products,
		Auth:     authSession,
		Notifier: notify.Multi{inbox, notify.NewLogNotifier(log)},
		Recorder: recorder,
		Logger:   log,
	}, r.cfg.Cart)

	authSession.OnAuthenticated(func(ctx context.Context) {
		// Failures are recorded on the store and surfaced through the inbox.
		_ = store.LoadCart(ctx)
	})
	authSession.OnLoggedOut(store.Reset)
	store.OnUnauthorized(func() {
		log.Info("backend rejected session token, signing out")
		_ = authSession.Logout(context.Background())
	})

	return &Session{
		ID:    id,
		Auth:  authSession,
		Cart:  store,
		Inbox: inbox,
	}
}

// Remove drops the session for id, if any
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok && r.deps.Recorder != nil {
		r.deps.Recorder.SessionClosed()
	}
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than the configured timeout and returns how many it removed.
// Tokens stay in the token store, so an evicted session is restored on its next request.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.cfg.Session.IdleTimeout)

	r.mu.Lock()
	var evicted []string
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			evicted = append(evicted, id)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	if r.deps.Recorder != nil {
		for range evicted {
			r.deps.Recorder.SessionClosed()
		}
	}
	if len(evicted) > 0 {
		r.log.WithField("count", len(evicted)).Debug("evicted idle sessions")
	}
	return len(evicted)
}

// Run sweeps idle sessions until ctx is cancelled
func (r *Registry) Run(ctx context.Context) {
	interval := r.cfg.Session.SweepInterval
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
