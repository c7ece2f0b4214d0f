// internal/domain/user/session.go
package user

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/pkg/apierror"
	"github.com/your-org/storefront/internal/pkg/auth"
)

// ErrMissingToken is returned when a login succeeds without handing out a token
var ErrMissingToken = errors.New("login response does not contain a token")

// API is the backend user endpoint set
type API interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	VerifyEmail(ctx context.Context, token string) (*AuthResponse, error)
	GetProfile(ctx context.Context, identifier string) (*User, error)
	RequestPasswordReset(ctx context.Context, req *PasswordResetRequest) error
	ResetPassword(ctx context.Context, token string, req *NewPasswordRequest) error
}

// Session is the authentication state of one browser session.
// The backend token lives in the TokenStore under the session id and never leaves the service.
type Session struct {
	id     string
	api    API
	tokens auth.TokenStore
	log    logrus.FieldLogger
	now    func() time.Time

	mu            sync.RWMutex
	user          *User
	authenticated bool
	errMsg        string
	onAuth        []func(context.Context)
	onLogout      []func()
}

// NewSession creates a signed-out session
func NewSession(id string, api API, tokens auth.TokenStore, log logrus.FieldLogger) *Session {
	return &Session{
		id:     id,
		api:    api,
		tokens: tokens,
		log:    log.WithField("session_id", id),
		now:    time.Now,
	}
}

// ID returns the browser session id
func (s *Session) ID() string {
	return s.id
}

// Token returns the stored backend token, or "" when signed out
func (s *Session) Token(ctx context.Context) (string, error) {
	return s.tokens.Get(ctx, s.id)
}

// IsAuthenticated reports whether the session holds a usable token and profile
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// User returns a copy of the profile, or nil when signed out
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Err returns the message of the last failed operation
func (s *Session) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// OnAuthenticated registers fn to run after every successful sign-in
func (s *Session) OnAuthenticated(fn func(context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAuth = append(s.onAuth, fn)
}

// OnLoggedOut registers fn to run after the session signs out
func (s *Session) OnLoggedOut(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Initialize restores a previous sign-in from the stored token.
// Tokens that are expired, undecodable or rejected by the profile endpoint are discarded.
func (s *Session) Initialize(ctx context.Context) error {
	token, err := s.tokens.Get(ctx, s.id)
	if err != nil {
		return fmt.Errorf("failed to read session token: %w", err)
	}
	if token == "" {
		return nil
	}

	claims, err := auth.ParseClaims(token)
	if err != nil || claims.Identifier() == "" || claims.Expired(s.now()) {
		s.log.Info("discarding unusable session token")
		return s.dropToken(ctx)
	}

	u, err := s.api.GetProfile(ctx, claims.Identifier())
	if err != nil || u == nil {
		s.log.WithError(err).Warn("restoring session failed")
		return s.dropToken(ctx)
	}

	s.signIn(ctx, u)
	return nil
}

// Login signs in with credentials, stores the token and loads the profile
func (s *Session) Login(ctx context.Context, req *LoginRequest) (*User, error) {
	s.setErr("")

	resp, err := s.api.Login(ctx, req)
	if err == nil && (resp == nil || resp.Token == "") {
		err = ErrMissingToken
	}
	if err != nil {
		s.signOutLocal()
		return nil, s.failed(err)
	}

	if err := s.tokens.Set(ctx, s.id, resp.Token); err != nil {
		s.signOutLocal()
		return nil, s.failed(fmt.Errorf("failed to store session token: %w", err))
	}

	u, err := s.api.GetProfile(ctx, req.Email)
	if err != nil || u == nil {
		s.log.WithError(err).Warn("profile fetch after login failed, using basic profile")
		u = basicUser(req.Email)
	}
	if u.Email == "" {
		u.Email = basicUser(req.Email).Email
	}

	s.signIn(ctx, u)
	s.log.WithField("email", u.Email).Info("user signed in")
	return s.User(), nil
}

// Register creates an account. The session stays signed out until the email is verified.
func (s *Session) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	s.setErr("")

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, s.failed(err)
	}
	if resp.Token != "" {
		if err := s.tokens.Set(ctx, s.id, resp.Token); err != nil {
			return nil, s.failed(fmt.Errorf("failed to store session token: %w", err))
		}
	}
	return resp, nil
}

// VerifyEmail confirms the account and signs the session in
func (s *Session) VerifyEmail(ctx context.Context, token string) (*User, error) {
	s.setErr("")

	resp, err := s.api.VerifyEmail(ctx, token)
	if err != nil {
		return nil, s.failed(err)
	}
	if resp.Token != "" {
		if err := s.tokens.Set(ctx, s.id, resp.Token); err != nil {
			return nil, s.failed(fmt.Errorf("failed to store session token: %w", err))
		}
	}

	u := resp.User
	if u == nil {
		u = &User{Name: defaultName, Role: defaultRole, Verified: true}
	}
	s.signIn(ctx, u)
	return s.User(), nil
}

// RequestPasswordReset asks the backend to send a reset email
func (s *Session) RequestPasswordReset(ctx context.Context, email string) error {
	s.setErr("")
	if err := s.api.RequestPasswordReset(ctx, &PasswordResetRequest{Email: email}); err != nil {
		return s.failed(err)
	}
	return nil
}

// ResetPassword sets a new password using the emailed reset token
func (s *Session) ResetPassword(ctx context.Context, token, password string) error {
	s.setErr("")
	if err := s.api.ResetPassword(ctx, token, &NewPasswordRequest{Password: password}); err != nil {
		return s.failed(err)
	}
	return nil
}

// Logout forgets the token and profile and notifies listeners
func (s *Session) Logout(ctx context.Context) error {
	err := s.tokens.Delete(ctx, s.id)
	if err != nil {
		s.log.WithError(err).Warn("failed to delete session token")
	}

	s.signOutLocal()
	s.mu.RLock()
	listeners := append([]func(){}, s.onLogout...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
	return err
}

func (s *Session) signIn(ctx context.Context, u *User) {
	s.mu.Lock()
	s.user = u
	s.authenticated = true
	s.errMsg = ""
	listeners := append([]func(context.Context){}, s.onAuth...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx)
	}
}

func (s *Session) signOutLocal() {
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()
}

func (s *Session) dropToken(ctx context.Context) error {
	s.signOutLocal()
	if err := s.tokens.Delete(ctx, s.id); err != nil {
		return fmt.Errorf("failed to delete session token: %w", err)
	}
	return nil
}

func (s *Session) setErr(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
}

// failed records the user-facing message for err and returns err unchanged
func (s *Session) failed(err error) error {
	msg := err.Error()
	if apiErr, ok := apierror.As(err); ok {
		msg = apiErr.Message
	}
	s.setErr(msg)
	return err
}
