package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewAccessToken("secret", "trackly", time.Minute, Claims{
		UserID: "user-1",
		Email:  "student@trackly.local",
		Role:   "student",
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	claims, err := ParseToken("secret", "trackly", token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "student" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewAccessToken("secret", "trackly", time.Minute, Claims{UserID: "user-1"})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("other", "trackly", token); err == nil {
		t.Fatalf("expected parse to fail with wrong secret")
	}
}

func TestTokenRejectsWrongIssuer(t *testing.T) {
	token, err := NewAccessToken("secret", "someone-else", time.Minute, Claims{UserID: "user-1"})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", "trackly", token); err == nil {
		t.Fatalf("expected parse to fail with wrong issuer")
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	token, err := NewAccessToken("secret", "trackly", -time.Minute, Claims{UserID: "user-1"})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", "trackly", token); err == nil {
		t.Fatalf("expected parse to fail for expired token")
	}
}
