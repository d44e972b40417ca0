package awardhub

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Credentials is the session + anti-forgery cookie pair loaded from a local
// credential file. The provider's GraphQL endpoint authenticates every call
// with both cookies.
type Credentials struct {
	SessionCookie     string    `json:"session_cookie"`
	AntiForgeryCookie string    `json:"anti_forgery_cookie"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// LoadCredentials reads and validates the credential file. The client fails
// closed: a missing file or a declared expiry in the past is an error before
// any network call is attempted.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("credential file not found at %s", path)
		}
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credential file: %w", err)
	}

	if creds.SessionCookie == "" || creds.AntiForgeryCookie == "" {
		return nil, fmt.Errorf("credential file missing session or anti-forgery cookie")
	}

	if !creds.ExpiresAt.IsZero() && time.Now().After(creds.ExpiresAt) {
		return nil, fmt.Errorf("credentials expired at %s", creds.ExpiresAt.Format(time.RFC3339))
	}

	return &creds, nil
}

// CookieHeader renders the pair as a Cookie header value.
func (c *Credentials) CookieHeader() string {
	return fmt.Sprintf("session=%s; anti_forgery=%s", c.SessionCookie, c.AntiForgeryCookie)
}
