package oauth

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/token-file.json
var tokenFileSchema string

// FileStore persists tokens as the flat JSON record CI keeps as an artifact:
//
//	{
//	    "FITBIT_ACCESS_TOKEN": "...",
//	    "FITBIT_EXPIRES_AT": "1700000000",
//	    "FITBIT_REFRESH_TOKEN": "..."
//	}
type FileStore struct {
	Path   string
	Prefix string
}

func (s FileStore) Current(ctx context.Context) (*Token, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.Path, ErrNoToken)
	}
	if err != nil {
		return nil, err
	}
	if err := ValidateTokenFile(b); err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	var vals map[string]string
	if err := json.Unmarshal(b, &vals); err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return tokenFromValues(s.Prefix, vals)
}

func (s FileStore) Save(ctx context.Context, t *Token) error {
	if t == nil {
		return nil
	}
	b, err := json.MarshalIndent(tokenValues(s.Prefix, t), "", "    ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.Path, b, 0o600)
}

// ValidateTokenFile checks raw token file bytes against the embedded schema.
func ValidateTokenFile(b []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(tokenFileSchema),
		gojsonschema.NewBytesLoader(b),
	)
	if err != nil {
		return err
	}
	if !result.Valid() {
		var buf bytes.Buffer
		for _, e := range result.Errors() {
			buf.WriteString(e.String())
			buf.WriteByte(';')
		}
		return fmt.Errorf("token file invalid: %s", buf.String())
	}
	return nil
}
