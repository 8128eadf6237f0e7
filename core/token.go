package core

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenLifetime is assumed when the provider reports no expiry at all
const DefaultTokenLifetime = 3600 * time.Second

// AccessToken is the token endpoint response.
// It is immutable once decoded; a refresh produces a new value.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

// Valid reports whether the response carries a usable token
func (t AccessToken) Valid() bool {
	return t.AccessToken != ""
}

// Lifetime returns how long the token is good for, measured from now.
// When the provider omits expires_in, the token itself is inspected:
// MTN access tokens are JWTs, so the exp claim is read without
// signature verification. Failing both, DefaultTokenLifetime applies.
func (t AccessToken) Lifetime(now time.Time) time.Duration {
	if t.ExpiresIn > 0 {
		return time.Duration(t.ExpiresIn) * time.Second
	}

	if exp, ok := jwtExpiry(t.AccessToken); ok && exp.After(now) {
		return exp.Sub(now)
	}

	return DefaultTokenLifetime
}

// jwtExpiry reads the exp claim from an unverified JWT
func jwtExpiry(raw string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
