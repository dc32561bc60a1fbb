package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"endpoint_addr_grpc":              "crm.example:9000",
		"database_dsn":                    "postgres://crm",
		"secret_key":                      "my_secret_key",
		"session_token_validity_duration": "12h",
		"max_login_attempts":              3,
		"lockout_duration":                "10m",
		"openai_model":                    "gpt-4o-mini",
		"compliance_fail_closed":          true,
		"mail_transport":                  "smtp",
		"smtp_host":                       "mail.example",
		"smtp_port":                       2525,
		"s3_bucket":                       "bucket",
	})

	t.Run("overlays present keys", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, []string{"-config", path})

		assert.Equal(t, "crm.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://crm", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 12*time.Hour, cfg.SessionTokenValidityDuration)
		assert.Equal(t, 3, cfg.MaxLoginAttempts)
		assert.Equal(t, 10*time.Minute, cfg.LockoutDuration)
		assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
		assert.True(t, cfg.ComplianceFailClosed)
		assert.Equal(t, MailTransportSMTP, cfg.MailTransport)
		assert.Equal(t, "mail.example", cfg.SMTPHost)
		assert.Equal(t, 2525, cfg.SMTPPort)
		assert.Equal(t, "bucket", cfg.S3Bucket)
	})

	t.Run("missing keys keep defaults", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, []string{"-c", path})

		assert.Equal(t, ":9090", cfg.MetricsAddr)
		assert.Equal(t, 10, cfg.BcryptCost)
		assert.Equal(t, "gophcrm", cfg.TokenIssuer)
		assert.Equal(t, 15*time.Minute, cfg.ExportLinkValidityDuration)
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		cfg := &Config{EndpointAddrGRPC: "defaults:1234", MaxLoginAttempts: 7}
		parseJson(cfg, []string{"-a", ":1"})

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
		assert.Equal(t, 7, cfg.MaxLoginAttempts)
	})

	t.Run("missing file panics", func(t *testing.T) {
		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg, []string{"-c", filepath.Join(t.TempDir(), "nope.json")}) })
	})

	t.Run("malformed json panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"lockout_duration": "forever"}`), 0o600))
		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg, []string{"-c", bad}) })
	})
}
