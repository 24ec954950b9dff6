package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/fresh/internal/enum"
)

func TestInitConfig_Defaults(t *testing.T) {
	t.Setenv("FRESH_MAIL_BACKEND", "imap")
	t.Setenv("IMAP_HOST", "imap.example.com")

	cfg, err := InitConfig()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.AppConfig.PasswordLength)
	assert.Equal(t, "base64", cfg.AppConfig.PasswordGenerator)
	assert.Equal(t, 10, cfg.AppConfig.RetryPolicy().Tries)
	assert.Equal(t, 15*time.Second, cfg.AppConfig.RetryPolicy().Interval)
	assert.Equal(t, enum.MailBackendImap, cfg.AppConfig.Backend())
	assert.Equal(t, "imap.example.com", cfg.ImapConfig.Host)
	assert.Equal(t, 993, cfg.ImapConfig.Port)
	assert.Equal(t, "INBOX", cfg.ImapConfig.Mailbox)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestInitConfig_RejectsZeroTries(t *testing.T) {
	t.Setenv("FRESH_RETRY_TRIES", "0")

	_, err := InitConfig()
	assert.Error(t, err)
}

func TestLoadAccounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[account]]
site = "hackernews"
user = "alice"

[[account]]
site = "example"
user = "bob@example.com"

[[site]]
name = "example"
login_url = "https://example.com/login"
forgot_url = "https://example.com/forgot"
csrf_selector = 'input[name="csrf"]'
csrf_field = "csrf"
identifier_field = "email"
identifier_is_email = true
query_from = "no-reply@example.com"
key_pattern = 'token=([A-Za-z0-9]+)'
reset_url = "https://example.com/reset?token={key}"
submit_url = "https://example.com/reset"
key_field = "token"
confirm_field = "password_confirmation"
submit_status = 302
follow_redirects = false

[[site.field]]
key = "utf8"
value = "✓"
`), 0o600))

	file, err := LoadAccounts(path)
	require.NoError(t, err)

	require.Len(t, file.Accounts, 2)
	assert.Equal(t, "hackernews/alice", file.Accounts[0].Key())

	require.Len(t, file.Sites, 1)
	site := file.Sites[0]
	assert.Equal(t, "https://example.com/forgot", site.RequestURL)
	assert.Equal(t, 200, site.RequestStatus)
	assert.Equal(t, 302, site.SubmitStatus)
	assert.Equal(t, "text/plain", site.MimeType)
	assert.Equal(t, "password", site.PasswordField)
	require.NotNil(t, site.FollowRedirects)
	assert.False(t, *site.FollowRedirects)
	assert.Equal(t, []FieldConfig{{Key: "utf8", Value: "✓"}}, site.Fields)
}

func TestLoadAccounts_MissingFileIsEmpty(t *testing.T) {
	file, err := LoadAccounts(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Empty(t, file.Accounts)
}

func TestLoadAccounts_InvalidSite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[site]]
name = "broken"
forgot_url = "https://broken.example/forgot"
`), 0o600))

	_, err := LoadAccounts(path)
	assert.ErrorContains(t, err, `site "broken" is missing`)
}

func TestLoadAccounts_KeyPatternNeedsGroup(t *testing.T) {
	tests := map[string]string{
		"no capture group": `token=[a-z0-9]+`,
		"does not compile": `token=([a-z`,
	}
	for name, pattern := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "fresh.toml")
			require.NoError(t, os.WriteFile(path, []byte(`
[[site]]
name = "example"
forgot_url = "https://example.test/forgot"
identifier_field = "email"
query_from = "noreply@example.test"
submit_url = "https://example.test/reset?token={key}"
key_pattern = '`+pattern+`'
`), 0o600))

			_, err := LoadAccounts(path)
			assert.ErrorContains(t, err, `site "example"`)
			assert.ErrorContains(t, err, "key_pattern")
		})
	}
}
