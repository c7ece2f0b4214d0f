package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/your-org/storefront/internal/pkg/apierror"
	"github.com/your-org/storefront/internal/pkg/auth"
	"github.com/your-org/storefront/internal/pkg/logger"
)

type fakeAPI struct {
	loginResp   *AuthResponse
	loginErr    error
	registerRes *AuthResponse
	verifyRes   *AuthResponse
	profile     *User
	profileErr  error

	profileCalls []string
	resetEmail   string
	resetToken   string
}

func (f *fakeAPI) Register(context.Context, *RegisterRequest) (*AuthResponse, error) {
	return f.registerRes, nil
}

func (f *fakeAPI) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAPI) VerifyEmail(context.Context, string) (*AuthResponse, error) {
	return f.verifyRes, nil
}

func (f *fakeAPI) GetProfile(_ context.Context, identifier string) (*User, error) {
	f.profileCalls = append(f.profileCalls, identifier)
	return f.profile, f.profileErr
}

func (f *fakeAPI) RequestPasswordReset(_ context.Context, req *PasswordResetRequest) error {
	f.resetEmail = req.Email
	return nil
}

func (f *fakeAPI) ResetPassword(_ context.Context, token string, _ *NewPasswordRequest) error {
	f.resetToken = token
	return nil
}

func token(t *testing.T, email string, exp time.Time) string {
	t.Helper()
	claims := &auth.Claims{Email: email, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newTestSession(api *fakeAPI) (*Session, *auth.MemoryTokenStore) {
	tokens := auth.NewMemoryTokenStore()
	return NewSession("sess-1", api, tokens, logger.Discard()), tokens
}

func TestLogin(t *testing.T) {
	api := &fakeAPI{
		loginResp: &AuthResponse{Token: "tok"},
		profile:   &User{ID: "u1", Name: "Ana", Email: "ana@example.com", Role: "user"},
	}
	s, tokens := newTestSession(api)

	fired := 0
	s.OnAuthenticated(func(context.Context) { fired++ })

	u, err := s.Login(context.Background(), &LoginRequest{Email: "ana@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Name != "Ana" || !s.IsAuthenticated() || fired != 1 {
		t.Fatalf("user=%+v authenticated=%v fired=%d", u, s.IsAuthenticated(), fired)
	}
	if tok, _ := tokens.Get(context.Background(), "sess-1"); tok != "tok" {
		t.Fatalf("token not stored: %q", tok)
	}
	if len(api.profileCalls) != 1 || api.profileCalls[0] != "ana@example.com" {
		t.Fatalf("profile fetched with %v", api.profileCalls)
	}
}

func TestLoginWithoutTokenFails(t *testing.T) {
	s, _ := newTestSession(&fakeAPI{loginResp: &AuthResponse{Message: "ok"}})

	_, err := s.Login(context.Background(), &LoginRequest{Email: "ana@example.com"})
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if s.IsAuthenticated() || s.User() != nil {
		t.Fatal("session must stay signed out")
	}
}

func TestLoginBackendError(t *testing.T) {
	s, _ := newTestSession(&fakeAPI{
		loginErr: apierror.FromResponse(http.StatusUnauthorized, []byte(`{"error":"Invalid credentials"}`)),
	})

	if _, err := s.Login(context.Background(), &LoginRequest{Email: "ana@example.com"}); err == nil {
		t.Fatal("expected error")
	}
	if s.Err() != "Invalid credentials" {
		t.Fatalf("got %q", s.Err())
	}
}

func TestLoginFallsBackToBasicProfile(t *testing.T) {
	s, _ := newTestSession(&fakeAPI{
		loginResp:  &AuthResponse{Token: "tok"},
		profileErr: errors.New("timeout"),
	})

	u, err := s.Login(context.Background(), &LoginRequest{Email: "Ana@Example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "ana@example.com" || u.Name != defaultName || u.Role != defaultRole {
		t.Fatalf("unexpected basic profile %+v", u)
	}
	if !s.IsAuthenticated() {
		t.Fatal("a profile failure must not undo the sign-in")
	}
}

func TestInitializeRestoresSession(t *testing.T) {
	api := &fakeAPI{profile: &User{Name: "Ana", Email: "ana@example.com"}}
	s, tokens := newTestSession(api)
	_ = tokens.Set(context.Background(), "sess-1", token(t, "ana@example.com", time.Now().Add(time.Hour)))

	fired := 0
	s.OnAuthenticated(func(context.Context) { fired++ })

	if err := s.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !s.IsAuthenticated() || fired != 1 {
		t.Fatalf("authenticated=%v fired=%d", s.IsAuthenticated(), fired)
	}
	if api.profileCalls[0] != "ana@example.com" {
		t.Fatalf("profile looked up by %v", api.profileCalls)
	}
}

func TestInitializeDiscardsUnusableTokens(t *testing.T) {
	cases := []struct {
		name  string
		token func(t *testing.T) string
		api   *fakeAPI
	}{
		{"expired", func(t *testing.T) string { return token(t, "ana@example.com", time.Now().Add(-time.Minute)) }, &fakeAPI{}},
		{"garbage", func(*testing.T) string { return "not-a-jwt" }, &fakeAPI{}},
		{"profile rejected", func(t *testing.T) string { return token(t, "ana@example.com", time.Now().Add(time.Hour)) },
			&fakeAPI{profileErr: apierror.FromResponse(http.StatusUnauthorized, nil)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, tokens := newTestSession(tc.api)
			_ = tokens.Set(context.Background(), "sess-1", tc.token(t))

			if err := s.Initialize(context.Background()); err != nil {
				t.Fatal(err)
			}
			if s.IsAuthenticated() {
				t.Fatal("session must stay signed out")
			}
			if tok, _ := tokens.Get(context.Background(), "sess-1"); tok != "" {
				t.Fatalf("token kept: %q", tok)
			}
		})
	}
}

func TestRegisterStaysSignedOut(t *testing.T) {
	s, tokens := newTestSession(&fakeAPI{registerRes: &AuthResponse{Token: "tok", Message: "check your email"}})

	resp, err := s.Register(context.Background(), &RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Message != "check your email" || s.IsAuthenticated() {
		t.Fatalf("resp=%+v authenticated=%v", resp, s.IsAuthenticated())
	}
	if tok, _ := tokens.Get(context.Background(), "sess-1"); tok != "tok" {
		t.Fatal("registration token should be stored")
	}
}

func TestVerifyEmailSignsIn(t *testing.T) {
	s, _ := newTestSession(&fakeAPI{verifyRes: &AuthResponse{Token: "tok", User: &User{Name: "Ana", Verified: true}}})

	fired := 0
	s.OnAuthenticated(func(context.Context) { fired++ })

	u, err := s.VerifyEmail(context.Background(), "verify-token")
	if err != nil {
		t.Fatal(err)
	}
	if !u.Verified || !s.IsAuthenticated() || fired != 1 {
		t.Fatalf("user=%+v fired=%d", u, fired)
	}
}

func TestPasswordReset(t *testing.T) {
	api := &fakeAPI{}
	s, _ := newTestSession(api)

	if err := s.RequestPasswordReset(context.Background(), "ana@example.com"); err != nil {
		t.Fatal(err)
	}
	if err := s.ResetPassword(context.Background(), "reset-token", "newsecret"); err != nil {
		t.Fatal(err)
	}
	if api.resetEmail != "ana@example.com" || api.resetToken != "reset-token" {
		t.Fatalf("unexpected calls %+v", api)
	}
}

func TestLogout(t *testing.T) {
	s, tokens := newTestSession(&fakeAPI{loginResp: &AuthResponse{Token: "tok"}, profile: &User{Name: "Ana"}})
	_, _ = s.Login(context.Background(), &LoginRequest{Email: "ana@example.com"})

	loggedOut := 0
	s.OnLoggedOut(func() { loggedOut++ })

	if err := s.Logout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.IsAuthenticated() || s.User() != nil || loggedOut != 1 {
		t.Fatalf("authenticated=%v loggedOut=%d", s.IsAuthenticated(), loggedOut)
	}
	if tok, _ := tokens.Get(context.Background(), "sess-1"); tok != "" {
		t.Fatal("token survived logout")
	}
}

func TestUserDecoding(t *testing.T) {
	var nested ProfileResponse
	if err := json.Unmarshal([]byte(`{"user":{"id":"u1","email":"Ana@Example.com","telefono":"555","direccion":"Main St"}}`), &nested); err != nil {
		t.Fatal(err)
	}
	u := nested.User
	if u.ID != "u1" || u.Email != "ana@example.com" || u.Phone != "555" || u.Address != "Main St" {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.Name != defaultName || u.Role != defaultRole {
		t.Fatalf("defaults missing: %+v", u)
	}

	var bare ProfileResponse
	if err := json.Unmarshal([]byte(`{"_id":"u2","name":"Ben","role":"admin"}`), &bare); err != nil {
		t.Fatal(err)
	}
	if bare.User.ID != "u2" || bare.User.Name != "Ben" || bare.User.Role != "admin" {
		t.Fatalf("unexpected user %+v", bare.User)
	}
	if bare.User.GetDisplayName() != "Ben" {
		t.Fatalf("display name %q", bare.User.GetDisplayName())
	}
}
