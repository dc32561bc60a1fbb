package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/gophcrm/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
//	-a string   gRPC bind address
//	-m string   metrics bind address
//	-d string   PostgreSQL DSN
//	-s string   JWT secret key
//	-t int      session token validity, minutes
//	-l int      failed attempts before lockout
//	-o int      lockout duration, minutes
//	-k string   OpenAI API key
//	-x string   mail transport (log, smtp, amqp)
//	-v string   log level
//	-b string   S3 bucket for exports
//
// Only these flags are parsed; the rest of args is ignored.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-m", "-d", "-s", "-t", "-l", "-o", "-k", "-x", "-v", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")
	fs.IntVar(&config.MaxLoginAttempts, "l", config.MaxLoginAttempts, "failed login attempts before lockout")
	lockout := fs.Int("o", int(config.LockoutDuration.Minutes()), "lockout duration (in minutes)")

	fs.StringVar(&config.OpenAIAPIKey, "k", config.OpenAIAPIKey, "OpenAI API key")
	fs.StringVar(&config.MailTransport, "x", config.MailTransport, "mail transport: log, smtp or amqp")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket for exports")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// minute flags only override durations that were given explicitly
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionTokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
		case "o":
			config.LockoutDuration = time.Duration(*lockout) * time.Minute
		}
	})
}
