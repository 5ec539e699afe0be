package oauth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)
	if _, err := s.Current(ctx); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}

	tok := &Token{AccessToken: "a", RefreshToken: "r", ExpiresAt: 42}
	if err := s.Save(ctx, tok); err != nil {
		t.Fatalf("Save: %v", err)
	}
	tok.AccessToken = "mutated"
	got, err := s.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got.AccessToken != "a" {
		t.Fatalf("store shares memory with caller: %+v", got)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "nested", "fitbit_tokens.json")
	s := FileStore{Path: p, Prefix: "FITBIT"}

	if _, err := s.Current(ctx); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken for missing file, got %v", err)
	}

	if err := s.Save(ctx, &Token{AccessToken: "a", RefreshToken: "r", ExpiresAt: 1700000000}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "{\n    \"FITBIT_ACCESS_TOKEN\": \"a\",\n    \"FITBIT_EXPIRES_AT\": \"1700000000\",\n    \"FITBIT_REFRESH_TOKEN\": \"r\"\n}\n"
	if string(raw) != want {
		t.Fatalf("file content = %q; want %q", raw, want)
	}

	got, err := s.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got.AccessToken != "a" || got.RefreshToken != "r" || got.ExpiresAt != 1700000000 {
		t.Fatalf("unexpected token: %+v", got)
	}
}

func TestFileStore_RejectsInvalidFile(t *testing.T) {
	cases := map[string]string{
		"numeric expiry": `{"STRAVA_ACCESS_TOKEN":"a","STRAVA_EXPIRES_AT":1700000000}`,
		"unknown key":    `{"STRAVA_ACCESS_TOKEN":"a","password":"x"}`,
		"empty object":   `{}`,
		"not json":       `STRAVA_ACCESS_TOKEN=a`,
	}
	for name, body := range cases {
		p := filepath.Join(t.TempDir(), "strava_tokens.json")
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := FileStore{Path: p, Prefix: "STRAVA"}.Current(context.Background())
		if err == nil || errors.Is(err, ErrNoToken) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestEnvStore(t *testing.T) {
	ctx := context.Background()
	t.Setenv("STRAVA_ACCESS_TOKEN", "")
	t.Setenv("STRAVA_REFRESH_TOKEN", "")
	t.Setenv("STRAVA_EXPIRES_AT", "")
	s := EnvStore{Prefix: "STRAVA"}
	if _, err := s.Current(ctx); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}

	t.Setenv("STRAVA_REFRESH_TOKEN", "r")
	t.Setenv("STRAVA_EXPIRES_AT", "soon")
	got, err := s.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got.RefreshToken != "r" || got.ExpiresAt != 0 {
		t.Fatalf("unexpected token: %+v", got)
	}

	if err := s.Save(ctx, &Token{AccessToken: "a", RefreshToken: "r2", ExpiresAt: 99}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if os.Getenv("STRAVA_ACCESS_TOKEN") != "a" || os.Getenv("STRAVA_EXPIRES_AT") != "99" {
		t.Fatalf("env not updated")
	}
}

func TestChainStore(t *testing.T) {
	ctx := context.Background()
	empty := NewMemoryStore(nil)
	full := NewMemoryStore(&Token{AccessToken: "from-second"})
	chain := ChainStore{empty, full}

	got, err := chain.Current(ctx)
	if err != nil || got.AccessToken != "from-second" {
		t.Fatalf("Current = %+v, %v", got, err)
	}

	if err := chain.Save(ctx, &Token{AccessToken: "saved"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	for i, s := range []Store{empty, full} {
		tok, _ := s.Current(ctx)
		if tok == nil || tok.AccessToken != "saved" {
			t.Fatalf("store %d not saved: %+v", i, tok)
		}
	}

	if _, err := (ChainStore{NewMemoryStore(nil)}).Current(ctx); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestDotenvStore_PreservesCommentsAndKeys(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), ".env")
	orig := strings.Join([]string{
		"# fitbit app",
		"FITBIT_CLIENT_ID=cid",
		"",
		"FITBIT_ACCESS_TOKEN=old",
		"# Tokens expire on 2020-01-01 00:00:00 UTC (FITBIT)",
		"# Tokens expire on 2020-01-01 00:00:00 UTC (STRAVA)",
		"STRAVA_ACCESS_TOKEN=untouched",
	}, "\n") + "\n"
	if err := os.WriteFile(p, []byte(orig), 0o600); err != nil {
		t.Fatal(err)
	}

	s := DotenvStore{Path: p, Prefix: "FITBIT"}
	exp := time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC).Unix()
	if err := s.Save(ctx, &Token{AccessToken: "new", RefreshToken: "r", ExpiresAt: exp}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"# fitbit app",
		"FITBIT_CLIENT_ID=cid",
		"",
		"FITBIT_ACCESS_TOKEN=new",
		"# Tokens expire on 2020-01-01 00:00:00 UTC (STRAVA)",
		"STRAVA_ACCESS_TOKEN=untouched",
		"FITBIT_EXPIRES_AT=" + strconv.FormatInt(exp, 10),
		"FITBIT_REFRESH_TOKEN=r",
		"# Tokens expire on 2030-05-06 07:08:09 UTC (FITBIT)",
	}, "\n") + "\n"
	if string(b) != want {
		t.Fatalf("dotenv content:\n%s\nwant:\n%s", b, want)
	}

	got, err := s.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got.AccessToken != "new" || got.ExpiresAt != exp {
		t.Fatalf("unexpected token: %+v", got)
	}
}

func TestDotenvStore_CreatesMissingFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".env")
	s := DotenvStore{Path: p, Prefix: "STRAVA"}
	if _, err := s.Current(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if err := s.Save(context.Background(), &Token{AccessToken: "a"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	b, _ := os.ReadFile(p)
	if !strings.Contains(string(b), "STRAVA_ACCESS_TOKEN=a\n") {
		t.Fatalf("unexpected content %q", b)
	}
}
