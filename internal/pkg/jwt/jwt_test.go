package jwt

import (
	"testing"
	"time"
)

func TestSignAndParse(t *testing.T) {
	token, err := Sign("user-1", true, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("user id = %q, want user-1", claims.UserID)
	}
	if !claims.Admin {
		t.Fatal("admin claim lost")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	token, err := Sign("user-1", false, -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := Parse(token); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not.a.token"); err == nil {
		t.Fatal("garbage token must be rejected")
	}
}
