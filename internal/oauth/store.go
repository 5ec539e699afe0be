package oauth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
)

type Store interface {
	Current(ctx context.Context) (*Token, error)
	Save(ctx context.Context, t *Token) error
}

// MemoryStore keeps the token in process memory only.
type MemoryStore struct {
	tok atomic.Pointer[Token]
}

func NewMemoryStore(t *Token) *MemoryStore {
	s := &MemoryStore{}
	s.tok.Store(t.clone())
	return s
}

func (s *MemoryStore) Current(ctx context.Context) (*Token, error) {
	t := s.tok.Load()
	if t == nil {
		return nil, ErrNoToken
	}
	return t.clone(), nil // copy to avoid external mutation
}

func (s *MemoryStore) Save(ctx context.Context, t *Token) error {
	if t != nil {
		s.tok.Store(t.clone())
	}
	return nil
}

// EnvStore reads <PREFIX>_ACCESS_TOKEN, <PREFIX>_REFRESH_TOKEN and
// <PREFIX>_EXPIRES_AT. Save updates the process environment.
type EnvStore struct {
	Prefix string
}

func (s EnvStore) Current(ctx context.Context) (*Token, error) {
	vals := map[string]string{}
	for _, k := range tokenKeys(s.Prefix) {
		vals[k] = os.Getenv(k)
	}
	return tokenFromValues(s.Prefix, vals)
}

func (s EnvStore) Save(ctx context.Context, t *Token) error {
	if t == nil {
		return nil
	}
	for k, v := range tokenValues(s.Prefix, t) {
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}

// ChainStore reads from the first store holding a token and saves to all.
type ChainStore []Store

func (c ChainStore) Current(ctx context.Context) (*Token, error) {
	for _, s := range c {
		t, err := s.Current(ctx)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, ErrNoToken) {
			return nil, err
		}
	}
	return nil, ErrNoToken
}

func (c ChainStore) Save(ctx context.Context, t *Token) error {
	var errs []error
	for _, s := range c {
		if err := s.Save(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func tokenKeys(prefix string) []string {
	return []string{prefix + "_ACCESS_TOKEN", prefix + "_REFRESH_TOKEN", prefix + "_EXPIRES_AT"}
}

func tokenValues(prefix string, t *Token) map[string]string {
	exp := ""
	if t.ExpiresAt > 0 {
		exp = strconv.FormatInt(t.ExpiresAt, 10)
	}
	return map[string]string{
		prefix + "_ACCESS_TOKEN":  t.AccessToken,
		prefix + "_REFRESH_TOKEN": t.RefreshToken,
		prefix + "_EXPIRES_AT":    exp,
	}
}

// tokenFromValues returns ErrNoToken when neither token is set. A
// non-numeric expiry reads as 0, which counts as expired.
func tokenFromValues(prefix string, vals map[string]string) (*Token, error) {
	t := &Token{
		AccessToken:  vals[prefix+"_ACCESS_TOKEN"],
		RefreshToken: vals[prefix+"_REFRESH_TOKEN"],
	}
	if t.AccessToken == "" && t.RefreshToken == "" {
		return nil, fmt.Errorf("%s: %w", prefix, ErrNoToken)
	}
	if exp, err := strconv.ParseInt(vals[prefix+"_EXPIRES_AT"], 10, 64); err == nil && exp > 0 {
		t.ExpiresAt = exp
	}
	return t, nil
}
