package jwt

import (
	"testing"
	"time"
)

func TestSignParseRoundtrip(t *testing.T) {
	SetSecret("test-secret")
	t.Cleanup(func() { SetSecret(defaultSecret) })

	token, err := Sign("editor-1", time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "editor-1" {
		t.Fatalf("UserID = %q, want editor-1", claims.UserID)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	SetSecret("first-secret")
	t.Cleanup(func() { SetSecret(defaultSecret) })

	token, err := Sign("editor-1", time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	SetSecret("second-secret")
	if _, err := Parse(token); err == nil {
		t.Fatal("Parse accepted a token signed with a different secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	SetSecret("test-secret")
	t.Cleanup(func() { SetSecret(defaultSecret) })

	token, err := Sign("editor-1", -time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := Parse(token); err == nil {
		t.Fatal("Parse accepted an expired token")
	}
}
