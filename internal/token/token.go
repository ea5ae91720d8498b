// Package token manages OAuth2 token material for provider API access.
//
// One token record exists per user. Tokens are served from an in-memory
// cache and transparently refreshed against the provider's token
// endpoint when they approach expiry; the credentials table stays the
// source of truth.
package token

import (
	"encoding/json"
	"fmt"
	"time"
)

// ExpiryMargin is the safety window before the real expiry instant in
// which a token is already treated as expired, so a token never expires
// mid-flight of the HTTP call it is about to authorize.
const ExpiryMargin = 60 * time.Second

// Token is the canonical token record stored in credentials.token_data.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope"`
}

// Payload is the raw token response from the provider's token endpoint.
type Payload struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
}

// ExpiredAt reports whether the token needs a refresh at the given instant.
func (t Token) ExpiredAt(now time.Time) bool {
	if t.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(t.ExpiresAt.Add(-ExpiryMargin))
}

// Normalize converts a raw provider response into the canonical record
// shape: token type defaults to Bearer, the absolute expiry is computed
// from expires_in, and the scope falls back to the configured default.
func Normalize(p Payload, now time.Time, defaultScope string) Token {
	tokenType := p.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	scope := p.Scope
	if scope == "" {
		scope = defaultScope
	}
	return Token{
		AccessToken:  p.AccessToken,
		TokenType:    tokenType,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    p.ExpiresIn,
		ExpiresAt:    now.Add(time.Duration(p.ExpiresIn) * time.Second).UTC(),
		Scope:        scope,
	}
}

// Unmarshal parses stored token material. A record whose token data does
// not parse or carries no expiry violates the store invariant and is
// reported as an error.
func Unmarshal(data []byte) (Token, error) {
	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return Token{}, fmt.Errorf("failed to parse token data: %w", err)
	}
	if t.ExpiresAt.IsZero() {
		return Token{}, fmt.Errorf("token data has no expiry")
	}
	return t, nil
}
