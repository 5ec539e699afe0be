package oauth

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// DotenvStore keeps tokens in a .env file. Writes rewrite only the token
// keys and leave comments, blank lines and other keys in place.
type DotenvStore struct {
	Path   string
	Prefix string
}

func (s DotenvStore) Current(ctx context.Context) (*Token, error) {
	vals, err := godotenv.Read(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.Path, ErrNoToken)
	}
	if err != nil {
		return nil, err
	}
	return tokenFromValues(s.Prefix, vals)
}

func (s DotenvStore) Save(ctx context.Context, t *Token) error {
	if t == nil {
		return nil
	}
	old, err := os.ReadFile(s.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	out := rewriteDotenv(old, tokenValues(s.Prefix, t), s.expiryTag(), s.expiryComment(t))
	return os.WriteFile(s.Path, out, 0o600)
}

const expiryCommentPrefix = "# Tokens expire on "

// expiryTag ends this store's expiry comment so providers sharing one .env
// each keep their own.
func (s DotenvStore) expiryTag() string { return " (" + s.Prefix + ")" }

func (s DotenvStore) expiryComment(t *Token) string {
	if t.ExpiresAt <= 0 {
		return ""
	}
	return expiryCommentPrefix + t.Expiry().Format("2006-01-02 15:04:05 MST") + s.expiryTag()
}

// rewriteDotenv replaces KEY=... lines for keys in vals and appends the
// keys not present. A previous expiry comment ending in tag is dropped in
// favour of the new one.
func rewriteDotenv(old []byte, vals map[string]string, tag, comment string) []byte {
	var buf bytes.Buffer
	pending := make(map[string]bool, len(vals))
	for k := range vals {
		pending[k] = true
	}

	sc := bufio.NewScanner(bytes.NewReader(old))
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if comment != "" && strings.HasPrefix(trimmed, expiryCommentPrefix) && strings.HasSuffix(trimmed, tag) {
			continue
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			buf.WriteString(line + "\n")
			continue
		}
		key, _, ok := strings.Cut(trimmed, "=")
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		if v, found := vals[key]; ok && found {
			buf.WriteString(key + "=" + v + "\n")
			delete(pending, key)
			continue
		}
		buf.WriteString(line + "\n")
	}

	rest := make([]string, 0, len(pending))
	for k := range pending {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	for _, k := range rest {
		buf.WriteString(k + "=" + vals[k] + "\n")
	}
	if comment != "" {
		buf.WriteString(comment + "\n")
	}
	return buf.Bytes()
}
