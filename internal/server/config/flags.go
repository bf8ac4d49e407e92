package config

import (
	"flag"

	"github.com/dmitrijs2005/taskerid/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-g string     gRPC bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN
//	-r string     Redis URL for login throttling
//	-s string     JWT HMAC secret
//	-i string     JWT issuer
//	-u string     JWT audience
//	-t duration   access token validity (e.g., "3h")
//	-l int        login attempts per window
//	-w duration   login attempts window
//	-v string     log level (debug, info, warn, error)
//
// Unrecognised arguments, -c/-config included, are filtered out first.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-r", "-s", "-i", "-u", "-t", "-l", "-w", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL")
	fs.StringVar(&config.JWT.Secret, "s", config.JWT.Secret, "JWT secret")
	fs.StringVar(&config.JWT.ValidIssuer, "i", config.JWT.ValidIssuer, "JWT issuer")
	fs.StringVar(&config.JWT.ValidAudience, "u", config.JWT.ValidAudience, "JWT audience")
	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "access token validity")
	fs.IntVar(&config.LoginAttemptsLimit, "l", config.LoginAttemptsLimit, "login attempts per window")
	fs.DurationVar(&config.LoginAttemptsWindow, "w", config.LoginAttemptsWindow, "login attempts window")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
