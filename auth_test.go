package main

import (
	"testing"
	"time"
)

func TestTokenService_IssueVerify(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("super-secret"), time.Hour)

	tok, err := svc.Issue(42)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	got, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got != 42 {
		t.Fatalf("user id mismatch: got %d want 42", got)
	}
}

func TestTokenService_Expired(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("secret"), -1*time.Second)

	tok, err := svc.Issue(7)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := svc.Verify(tok); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenService([]byte("right-secret"), time.Hour).Issue(7)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := NewTokenService([]byte("wrong-secret"), time.Hour).Verify(tok); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestTokenService_Malformed(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("k"), time.Hour)
	for _, tok := range []string{"", "garbage", "not.a.jwt"} {
		if _, err := svc.Verify(tok); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", tok, err)
		}
	}
}

func TestHashAndComparePassword(t *testing.T) {
	t.Parallel()

	h, err := hashPassword("hunter22")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	if h == "hunter22" {
		t.Fatal("hash equals plaintext")
	}
	if !comparePassword(h, "hunter22") {
		t.Fatal("comparePassword rejected the correct password")
	}
	if comparePassword(h, "hunter23") {
		t.Fatal("comparePassword accepted a wrong password")
	}

	// bcrypt salts per call, so two hashes of the same input differ
	h2, err := hashPassword("hunter22")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	if h == h2 {
		t.Fatal("expected distinct hashes for the same password")
	}
}
