package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-g", ":6000", "-d", "db", "-s", "secret",
				"-iss", "issuer", "-aud", "aud", "-t", "30", "-o", "http://a, http://b",
				"-b", "media", "-r", "redis:6379", "-l", "debug",
			},
			expected: &Config{
				EndpointAddrHTTP:      "127.0.0.1:9090",
				EndpointAddrGRPC:      ":6000",
				DatabaseDSN:           "db",
				JWTSecret:             "secret",
				JWTIssuer:             "issuer",
				JWTAudience:           "aud",
				TokenValidityDuration: 30 * time.Minute,
				AllowedOrigins:        []string{"http://a", "http://b"},
				S3Bucket:              "media",
				RedisAddr:             "redis:6379",
				LogLevel:              "debug",
			},
		},
		{
			name:        "bad duration",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_IgnoresForeignFlags(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = []string{"cmd", "-c", "cfg.json", "-env", "x.env", "-s", "k"}

	c := validConfig()
	require.NotPanics(t, func() { parseFlags(c) })
	assert.Equal(t, "k", c.JWTSecret)
	assert.Equal(t, 120*time.Minute, c.TokenValidityDuration)
}
