// ABOUTME: JWT payload decoding for backend-issued access tokens
// ABOUTME: Extracts claims and expiry; signature verification stays server-side

package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Claims contains the access token payload fields the console cares about
type Claims struct {
	Email      string `json:"email"`
	UserID     string `json:"user_id"`
	Department string `json:"department"`
	Exp        int64  `json:"exp"`
	Iat        int64  `json:"iat"`
}

// Decode extracts claims from a JWT access token.
// The client only needs claim extraction; tokens are verified by the backend
// on every request, so no signature check happens here.
func Decode(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, &DecodeError{"malformed token structure"}
	}

	payload, err := base64URLDecode(parts[1])
	if err != nil {
		return nil, err
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, &DecodeError{"invalid payload format"}
	}

	return &claims, nil
}

// ExpiresWithin reports whether the token expires within d of now.
// Tokens without an exp claim are treated as already expired.
func (c *Claims) ExpiresWithin(d time.Duration) bool {
	if c.Exp <= 0 {
		return true
	}
	return time.Until(time.Unix(c.Exp, 0)) < d
}

// Expired reports whether the token's exp claim has passed
func (c *Claims) Expired() bool {
	return c.ExpiresWithin(0)
}

// DecodeError represents a token decoding failure
type DecodeError struct {
	msg string
}

func (e *DecodeError) Error() string {
	return e.msg
}

// base64URLDecode decodes base64url encoded data (RFC 4648)
func base64URLDecode(s string) ([]byte, error) {
	// RawURLEncoding handles base64url without padding
	// Add padding if present in input (some JWTs include it)
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.URLEncoding.DecodeString(s)
		if err != nil {
			return nil, &DecodeError{"invalid payload encoding"}
		}
	}
	return data, nil
}
