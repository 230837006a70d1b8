package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("test-secret", Identity{UserID: 42, Username: "alice"}, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if tok.Token == "" {
		t.Fatal("token should not be empty")
	}
	if d := time.Until(tok.Exp); d < 14*time.Minute || d > 16*time.Minute {
		t.Errorf("unexpected expiry in %v", d)
	}

	id, err := ParseAccessToken("test-secret", tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if id.UserID != 42 || id.Username != "alice" {
		t.Errorf("identity = %+v", id)
	}
}

func TestParseAccessTokenRejects(t *testing.T) {
	good, err := NewAccessToken("right", Identity{UserID: 1, Username: "bob"}, 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	expired, err := NewAccessToken("right", Identity{UserID: 1}, -5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"username": "x"}).
		SignedString([]byte("right"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := map[string]string{
		"wrong secret": good.Token,
		"expired":      expired.Token,
		"alg none":     noneAlg,
		"no subject":   noSubject,
		"garbage":      "not-a-jwt",
	}
	for name, raw := range cases {
		secret := "right"
		if name == "wrong secret" {
			secret = "wrong"
		}
		if _, err := ParseAccessToken(secret, raw); err != ErrInvalidToken {
			t.Errorf("%s: err = %v, want ErrInvalidToken", name, err)
		}
	}
}
