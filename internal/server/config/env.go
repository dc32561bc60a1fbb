package config

import (
	"strconv"
	"strings"
)

type lookupFunc func(key string) (string, bool)

// parseEnv overlays environment variables onto config. Unset variables
// leave the current value untouched; malformed numbers panic.
func parseEnv(config *Config, lookup lookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				panic(err)
			}
			*dst = n
		}
	}

	str("DATABASE_DSN", &config.DatabaseDSN)
	str("JWT_SECRET", &config.SecretKey)
	str("LOG_LEVEL", &config.LogLevel)

	str("OPENAI_API_KEY", &config.OpenAIAPIKey)
	str("OPENAI_MODEL", &config.OpenAIModel)
	str("OPENAI_BASE_URL", &config.OpenAIBaseURL)
	if v, ok := lookup("COMPLIANCE_FAIL_CLOSED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.ComplianceFailClosed = b
	}

	str("MAIL_TRANSPORT", &config.MailTransport)
	str("MAIL_FROM", &config.MailFrom)
	str("SMTP_HOST", &config.SMTPHost)
	num("SMTP_PORT", &config.SMTPPort)
	str("SMTP_USER", &config.SMTPUser)
	str("SMTP_PASSWORD", &config.SMTPPassword)
	str("AMQP_URL", &config.AMQPURL)

	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
}
