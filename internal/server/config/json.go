package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/eduplatform/internal/flagx"
	"github.com/dmitrijs2005/eduplatform/internal/timex"
)

// JsonConfig is the on-disk shape of the optional configuration file.
// Durations accept either Go duration strings ("120m") or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           string         `json:"database_dsn"`
	RunMigrations         *bool          `json:"run_migrations"`
	JWTSecret             string         `json:"jwt_secret"`
	JWTIssuer             string         `json:"jwt_issuer"`
	JWTAudience           string         `json:"jwt_audience"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	AllowedOrigins        []string       `json:"allowed_origins"`
	S3AccessKey           string         `json:"s3_access_key"`
	S3SecretKey           string         `json:"s3_secret_key"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	S3PresignTTL          timex.Duration `json:"s3_presign_ttl"`
	RedisAddr             string         `json:"redis_addr"`
	RedisPassword         string         `json:"redis_password"`
	LoginMaxAttempts      int            `json:"login_max_attempts"`
	LoginWindow           timex.Duration `json:"login_window"`
	LogLevel              string         `json:"log_level"`
	LogFormat             string         `json:"log_format"`
}

// parseJson overlays values from the JSON file named by -c/-config onto
// config. Keys absent from the file keep their current value. A missing
// flag is a no-op; an unreadable or invalid file panics.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	if c.RunMigrations != nil {
		config.RunMigrations = *c.RunMigrations
	}
	setString(&config.JWTSecret, c.JWTSecret)
	setString(&config.JWTIssuer, c.JWTIssuer)
	setString(&config.JWTAudience, c.JWTAudience)
	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.S3PresignTTL.Duration != 0 {
		config.S3PresignTTL = c.S3PresignTTL.Duration
	}
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	if c.LoginMaxAttempts != 0 {
		config.LoginMaxAttempts = c.LoginMaxAttempts
	}
	if c.LoginWindow.Duration != 0 {
		config.LoginWindow = c.LoginWindow.Duration
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
