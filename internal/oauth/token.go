package oauth

import (
	"errors"
	"time"

	"golang.org/x/oauth2"
)

var (
	ErrNoToken        = errors.New("no token stored")
	ErrNoRefreshToken = errors.New("no refresh token available")
)

// defaultLifetime is assumed when a token response carries no expiry at all.
const defaultLifetime = 6 * time.Hour

type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // unix seconds
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// Expiry returns ExpiresAt as a time; zero when unset.
func (t *Token) Expiry() time.Time {
	if t == nil || t.ExpiresAt <= 0 {
		return time.Time{}
	}
	return time.Unix(t.ExpiresAt, 0).UTC()
}

func (t *Token) clone() *Token {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

// fromOAuth2 converts a token endpoint response. A response that omits the
// refresh token keeps the one from prev.
func fromOAuth2(ot *oauth2.Token, prev *Token, now time.Time) *Token {
	t := &Token{
		AccessToken:  ot.AccessToken,
		RefreshToken: ot.RefreshToken,
		TokenType:    ot.TokenType,
	}
	if s, ok := ot.Extra("scope").(string); ok {
		t.Scope = s
	}
	switch {
	case !ot.Expiry.IsZero():
		t.ExpiresAt = ot.Expiry.Unix()
	case extraInt(ot, "expires_at") > 0:
		// Strava also reports an absolute expires_at.
		t.ExpiresAt = extraInt(ot, "expires_at")
	default:
		t.ExpiresAt = now.Add(defaultLifetime).Unix()
	}
	if t.RefreshToken == "" && prev != nil {
		t.RefreshToken = prev.RefreshToken
	}
	return t
}

func extraInt(ot *oauth2.Token, key string) int64 {
	switch v := ot.Extra(key).(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// IsAuthError reports whether err comes from the token lifecycle rather than
// from a data endpoint. Such errors need a re-authentication, not a fallback.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	var re *oauth2.RetrieveError
	return errors.Is(err, ErrNoToken) ||
		errors.Is(err, ErrNoRefreshToken) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrTokenRequest) ||
		errors.As(err, &re)
}
