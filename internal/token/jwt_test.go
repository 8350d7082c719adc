// ABOUTME: Tests for JWT payload decoding
// ABOUTME: Covers claim extraction, expiry math, and malformed tokens

package token

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"
)

// makeToken builds an unsigned JWT with the given claims
func makeToken(t *testing.T, claims Claims) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	body := base64.RawURLEncoding.EncodeToString(payload)
	return header + "." + body + ".signature"
}

func TestDecode_Success(t *testing.T) {
	tok := makeToken(t, Claims{
		Email:      "alice@example.com",
		Department: "FINANCE",
		Exp:        time.Now().Add(15 * time.Minute).Unix(),
	})

	claims, err := Decode(tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("expected email alice@example.com, got %s", claims.Email)
	}
	if claims.Department != "FINANCE" {
		t.Errorf("expected department FINANCE, got %s", claims.Department)
	}
}

func TestDecode_MalformedStructure(t *testing.T) {
	for _, tok := range []string{"", "onlyone", "two.parts", "a.b.c.d"} {
		if _, err := Decode(tok); err == nil {
			t.Errorf("expected error for %q, got nil", tok)
		}
	}
}

func TestDecode_InvalidPayload(t *testing.T) {
	bad := base64.RawURLEncoding.EncodeToString([]byte("not json"))
	if _, err := Decode("h." + bad + ".s"); err == nil {
		t.Error("expected error for non-JSON payload, got nil")
	}
}

func TestDecode_PaddedEncoding(t *testing.T) {
	// Some issuers emit padded base64url
	payload, _ := json.Marshal(Claims{Email: "bob@example.com"})
	body := base64.URLEncoding.EncodeToString(payload)

	claims, err := Decode("h." + body + ".s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Email != "bob@example.com" {
		t.Errorf("expected email bob@example.com, got %s", claims.Email)
	}
}

func TestExpiresWithin(t *testing.T) {
	soon := &Claims{Exp: time.Now().Add(30 * time.Second).Unix()}
	if !soon.ExpiresWithin(time.Minute) {
		t.Error("expected token expiring in 30s to be within 1m window")
	}
	if soon.ExpiresWithin(10 * time.Second) {
		t.Error("expected token expiring in 30s to be outside 10s window")
	}

	later := &Claims{Exp: time.Now().Add(time.Hour).Unix()}
	if later.ExpiresWithin(time.Minute) {
		t.Error("expected token expiring in 1h to be outside 1m window")
	}
}

func TestExpiresWithin_NoExpClaim(t *testing.T) {
	c := &Claims{}
	if !c.ExpiresWithin(time.Minute) {
		t.Error("expected token without exp to be treated as expired")
	}
}

func TestExpired(t *testing.T) {
	past := &Claims{Exp: time.Now().Add(-time.Minute).Unix()}
	if !past.Expired() {
		t.Error("expected past token to be expired")
	}

	future := &Claims{Exp: time.Now().Add(time.Minute).Unix()}
	if future.Expired() {
		t.Error("expected future token to not be expired")
	}
}
