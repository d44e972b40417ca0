package awardhub

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCredFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "awardhub_session.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCredentialsValid(t *testing.T) {
	expiry := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	path := writeCredFile(t, `{"session_cookie":"s-abc","anti_forgery_cookie":"af-xyz","expires_at":"`+expiry+`"}`)

	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, "session=s-abc; anti_forgery=af-xyz", creds.CookieHeader())
}

func TestLoadCredentialsNoExpiry(t *testing.T) {
	// A file without a declared expiry is trusted until the provider rejects it.
	path := writeCredFile(t, `{"session_cookie":"s","anti_forgery_cookie":"af"}`)

	_, err := LoadCredentials(path)
	assert.NoError(t, err)
}

func TestLoadCredentialsFailsClosed(t *testing.T) {
	expired := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)

	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantMsg string
	}{
		{
			"missing file",
			func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") },
			"not found",
		},
		{
			"malformed json",
			func(t *testing.T) string { return writeCredFile(t, "{") },
			"parse",
		},
		{
			"empty cookies",
			func(t *testing.T) string { return writeCredFile(t, `{"session_cookie":"","anti_forgery_cookie":""}`) },
			"missing session",
		},
		{
			"expired",
			func(t *testing.T) string {
				return writeCredFile(t, `{"session_cookie":"s","anti_forgery_cookie":"af","expires_at":"`+expired+`"}`)
			},
			"expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCredentials(tt.path(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
