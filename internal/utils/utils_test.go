package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !PasswordMatches(hash, "correct horse battery staple") {
		t.Fatal("correct password rejected")
	}
	if PasswordMatches(hash, "wrong password") {
		t.Fatal("wrong password accepted")
	}
}

func TestPasswordHashZeroCostDefaults(t *testing.T) {
	hash, err := HashPassword("s3cret", 0)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want %d", cost, bcrypt.DefaultCost)
	}
}

func TestAccessTokenClaims(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "ADMIN", 15)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parsed, err := jwt.Parse(tok.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != "42" {
		t.Fatalf("sub = %v, want 42", claims["sub"])
	}
	if claims["role"] != "ADMIN" {
		t.Fatalf("role = %v, want ADMIN", claims["role"])
	}
	if !tok.Exp.After(time.Now()) {
		t.Fatal("token already expired")
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret", 1, "MEMBER", 15)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	parsed, err := jwt.Parse(tok.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	if err == nil && parsed.Valid {
		t.Fatal("token validated with the wrong secret")
	}
}

func TestRefreshTokenUniqueness(t *testing.T) {
	a, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	b, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if a.Raw == b.Raw {
		t.Fatal("two refresh tokens collided")
	}
	if HashRefreshRaw(a.Raw) == HashRefreshRaw(b.Raw) {
		t.Fatal("hashes collided")
	}
	if len(HashRefreshRaw(a.Raw)) != 64 {
		t.Fatalf("hash length = %d, want 64 hex chars", len(HashRefreshRaw(a.Raw)))
	}
}

func TestRandomHexLength(t *testing.T) {
	s, err := RandomHex(16)
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	if len(s) != 32 {
		t.Fatalf("len = %d, want 32", len(s))
	}
}
