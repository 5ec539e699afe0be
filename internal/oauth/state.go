package oauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StateMaxAge is the default bound on how long a signed state stays acceptable.
const StateMaxAge = 5 * time.Minute

// SignState creates a short-lived HMAC'd state token.
func SignState(secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("state secret not set")
	}
	return signAt(secret, time.Now().Unix()), nil
}

func signAt(secret []byte, ts int64) string {
	msg := strconv.FormatInt(ts, 10)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(msg))
	return msg + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyState checks the HMAC and that the state was issued within maxAge.
// A timestamp in the future is rejected.
func VerifyState(secret []byte, raw string, maxAge time.Duration) error {
	if len(secret) == 0 {
		return fmt.Errorf("state secret not set")
	}
	tsStr, sigB64, ok := strings.Cut(raw, ".")
	if !ok || strings.Contains(sigB64, ".") {
		return fmt.Errorf("bad state format")
	}
	ts, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return fmt.Errorf("bad state ts")
	}
	age := time.Since(time.Unix(ts, 0))
	if age < 0 {
		return fmt.Errorf("state from the future")
	}
	if age > maxAge {
		return fmt.Errorf("state expired")
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(tsStr))
	got, err := base64.RawURLEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("state b64")
	}
	if !hmac.Equal(mac.Sum(nil), got) {
		return fmt.Errorf("state mismatch")
	}
	return nil
}
