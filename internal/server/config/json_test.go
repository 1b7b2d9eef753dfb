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

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	path := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"endpoint_addr_http":      "www.example:9000",
		"database_dsn":            "postgres://x",
		"run_migrations":          false,
		"jwt_secret":              "my_secret_key",
		"jwt_issuer":              "iss",
		"jwt_audience":            "aud",
		"token_validity_duration": "90m",
		"allowed_origins":         []string{"https://edu.example"},
		"s3_bucket":               "bucket",
		"s3_presign_ttl":          "5m",
		"redis_addr":              "redis:6379",
		"login_max_attempts":      3,
		"login_window":            "1m",
		"log_format":              "text",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC, "absent keys keep defaults")
		assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
		assert.False(t, cfg.RunMigrations)
		assert.Equal(t, "my_secret_key", cfg.JWTSecret)
		assert.Equal(t, "iss", cfg.JWTIssuer)
		assert.Equal(t, "aud", cfg.JWTAudience)
		assert.Equal(t, 90*time.Minute, cfg.TokenValidityDuration)
		assert.Equal(t, []string{"https://edu.example"}, cfg.AllowedOrigins)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, 5*time.Minute, cfg.S3PresignTTL)
		assert.Equal(t, "redis:6379", cfg.RedisAddr)
		assert.Equal(t, 3, cfg.LoginMaxAttempts)
		assert.Equal(t, time.Minute, cfg.LoginWindow)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := validConfig()
		before := *cfg
		parseJson(cfg)
		assert.Equal(t, before, *cfg)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
