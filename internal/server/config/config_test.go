package config

import (
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	c := &Config{}
	c.LoadDefaults()
	c.JWTSecret = "s3cr3t"
	return c
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, "eduplatform", c.JWTIssuer)
	assert.Equal(t, "eduplatform-client", c.JWTAudience)
	assert.Equal(t, 120*time.Minute, c.TokenValidityDuration)
	assert.Equal(t, []string{"http://localhost:3000"}, c.AllowedOrigins)
	assert.Empty(t, c.JWTSecret, "secret must never have a default")
	assert.True(t, c.RunMigrations)
	assert.False(t, c.MediaEnabled())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = []string{"testbin"}

	c := LoadConfig()
	require.NotNil(t, c)
	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, 120*time.Minute, c.TokenValidityDuration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: true},
		{name: "blank issuer", mutate: func(c *Config) { c.JWTIssuer = "  " }, wantErr: true},
		{name: "missing audience", mutate: func(c *Config) { c.JWTAudience = "" }, wantErr: true},
		{name: "missing dsn", mutate: func(c *Config) { c.DatabaseDSN = "" }, wantErr: true},
		{name: "zero lifetime", mutate: func(c *Config) { c.TokenValidityDuration = 0 }, wantErr: true},
		{name: "redis without window", mutate: func(c *Config) { c.RedisAddr = "localhost:6379"; c.LoginWindow = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrorConfiguration)
				return
			}
			require.NoError(t, err)
		})
	}
}
