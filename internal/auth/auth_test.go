package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("test-secret", time.Hour)

	token, err := v.Issue("u@example.com")
	if err != nil {
		t.Fatal(err)
	}

	email, err := v.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if email != "u@example.com" {
		t.Errorf("email = %q", email)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewVerifier("secret-a", time.Hour)
	verifier := NewVerifier("secret-b", time.Hour)

	token, err := issuer.Issue("u@example.com")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v := NewVerifier("test-secret", -time.Minute)

	token, err := v.Issue("u@example.com")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	v := NewVerifier("test-secret", time.Hour)

	if _, err := v.Verify("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
