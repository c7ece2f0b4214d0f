package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, claims *Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-only-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	token := signed(t, &Claims{
		UserID: "64f1c2",
		Email:  "ana@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	claims, err := ParseClaims(token)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	if claims.Identifier() != "ana@example.com" {
		t.Fatalf("expected email identifier, got %q", claims.Identifier())
	}
	if claims.Expired(time.Now()) {
		t.Fatal("token should not be expired yet")
	}
	if !claims.Expired(exp.Add(time.Second)) {
		t.Fatal("token should be expired after exp")
	}
}

func TestParseClaimsIdentifierFallback(t *testing.T) {
	claims, err := ParseClaims(signed(t, &Claims{UserID: "64f1c2"}))
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	if claims.Identifier() != "64f1c2" {
		t.Fatalf("got %q", claims.Identifier())
	}
	if claims.Expired(time.Now()) {
		t.Fatal("tokens without exp never expire client side")
	}
}

func TestParseClaimsGarbage(t *testing.T) {
	if _, err := ParseClaims("not-a-jwt"); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	if got := ExtractTokenFromHeader(BearerHeader("abc")); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := ExtractTokenFromHeader("Basic abc"); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestMemoryTokenStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTokenStore()

	if tok, err := store.Get(ctx, "s1"); err != nil || tok != "" {
		t.Fatalf("expected empty token, got %q %v", tok, err)
	}
	_ = store.Set(ctx, "s1", "tok")
	if tok, _ := store.Get(ctx, "s1"); tok != "tok" {
		t.Fatalf("got %q", tok)
	}
	_ = store.Delete(ctx, "s1")
	if tok, _ := store.Get(ctx, "s1"); tok != "" {
		t.Fatalf("token survived delete: %q", tok)
	}
}
