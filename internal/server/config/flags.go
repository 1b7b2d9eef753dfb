package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/eduplatform/internal/flagx"
)

var serverFlags = []string{"-a", "-g", "-d", "-s", "-iss", "-aud", "-t", "-o", "-b", "-r", "-l"}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address (empty disables)
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-iss string JWT issuer
//	-aud string JWT audience
//	-t int      token validity, minutes
//	-o string   comma separated CORS origins
//	-b string   S3 bucket for course media
//	-r string   Redis address for login throttling
//	-l string   log level
//
// Only the flags above are considered (see flagx.FilterArgs), so -c/-config
// and -env handled elsewhere do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "JWT secret key")
	fs.StringVar(&config.JWTIssuer, "iss", config.JWTIssuer, "JWT issuer")
	fs.StringVar(&config.JWTAudience, "aud", config.JWTAudience, "JWT audience")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed CORS origins")

	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 media bucket")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.AllowedOrigins = splitList(*origins)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
