package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophcrm/internal/flagx"
	"github.com/dmitrijs2005/gophcrm/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept "30m" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC string `json:"endpoint_addr_grpc"`
	MetricsAddr      string `json:"metrics_addr"`
	LogLevel         string `json:"log_level"`
	DatabaseDSN      string `json:"database_dsn"`

	SecretKey                    string         `json:"secret_key"`
	TokenIssuer                  string         `json:"token_issuer"`
	TokenAudience                string         `json:"token_audience"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	MaxLoginAttempts             int            `json:"max_login_attempts"`
	LockoutDuration              timex.Duration `json:"lockout_duration"`
	BcryptCost                   int            `json:"bcrypt_cost"`

	OpenAIAPIKey         string         `json:"openai_api_key"`
	OpenAIModel          string         `json:"openai_model"`
	OpenAIBaseURL        string         `json:"openai_base_url"`
	OpenAITimeout        timex.Duration `json:"openai_timeout"`
	ComplianceFailClosed bool           `json:"compliance_fail_closed"`

	MailTransport string `json:"mail_transport"`
	MailFrom      string `json:"mail_from"`
	MailRetries   int    `json:"mail_retries"`
	SMTPHost      string `json:"smtp_host"`
	SMTPPort      int    `json:"smtp_port"`
	SMTPUser      string `json:"smtp_user"`
	SMTPPassword  string `json:"smtp_password"`
	AMQPURL       string `json:"amqp_url"`
	AMQPQueue     string `json:"amqp_queue"`

	S3RootUser                 string         `json:"s3_root_user"`
	S3RootPassword             string         `json:"s3_root_password"`
	S3Bucket                   string         `json:"s3_bucket"`
	S3Region                   string         `json:"s3_region"`
	S3BaseEndpoint             string         `json:"s3_base_endpoint"`
	ExportLinkValidityDuration timex.Duration `json:"export_link_validity_duration"`
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrGRPC:             c.EndpointAddrGRPC,
		MetricsAddr:                  c.MetricsAddr,
		LogLevel:                     c.LogLevel,
		DatabaseDSN:                  c.DatabaseDSN,
		SecretKey:                    c.SecretKey,
		TokenIssuer:                  c.TokenIssuer,
		TokenAudience:                c.TokenAudience,
		SessionTokenValidityDuration: timex.Duration{Duration: c.SessionTokenValidityDuration},
		MaxLoginAttempts:             c.MaxLoginAttempts,
		LockoutDuration:              timex.Duration{Duration: c.LockoutDuration},
		BcryptCost:                   c.BcryptCost,
		OpenAIAPIKey:                 c.OpenAIAPIKey,
		OpenAIModel:                  c.OpenAIModel,
		OpenAIBaseURL:                c.OpenAIBaseURL,
		OpenAITimeout:                timex.Duration{Duration: c.OpenAITimeout},
		ComplianceFailClosed:         c.ComplianceFailClosed,
		MailTransport:                c.MailTransport,
		MailFrom:                     c.MailFrom,
		MailRetries:                  c.MailRetries,
		SMTPHost:                     c.SMTPHost,
		SMTPPort:                     c.SMTPPort,
		SMTPUser:                     c.SMTPUser,
		SMTPPassword:                 c.SMTPPassword,
		AMQPURL:                      c.AMQPURL,
		AMQPQueue:                    c.AMQPQueue,
		S3RootUser:                   c.S3RootUser,
		S3RootPassword:               c.S3RootPassword,
		S3Bucket:                     c.S3Bucket,
		S3Region:                     c.S3Region,
		S3BaseEndpoint:               c.S3BaseEndpoint,
		ExportLinkValidityDuration:   timex.Duration{Duration: c.ExportLinkValidityDuration},
	}
}

func (j *JsonConfig) apply(c *Config) {
	c.EndpointAddrGRPC = j.EndpointAddrGRPC
	c.MetricsAddr = j.MetricsAddr
	c.LogLevel = j.LogLevel
	c.DatabaseDSN = j.DatabaseDSN
	c.SecretKey = j.SecretKey
	c.TokenIssuer = j.TokenIssuer
	c.TokenAudience = j.TokenAudience
	c.SessionTokenValidityDuration = j.SessionTokenValidityDuration.Duration
	c.MaxLoginAttempts = j.MaxLoginAttempts
	c.LockoutDuration = j.LockoutDuration.Duration
	c.BcryptCost = j.BcryptCost
	c.OpenAIAPIKey = j.OpenAIAPIKey
	c.OpenAIModel = j.OpenAIModel
	c.OpenAIBaseURL = j.OpenAIBaseURL
	c.OpenAITimeout = j.OpenAITimeout.Duration
	c.ComplianceFailClosed = j.ComplianceFailClosed
	c.MailTransport = j.MailTransport
	c.MailFrom = j.MailFrom
	c.MailRetries = j.MailRetries
	c.SMTPHost = j.SMTPHost
	c.SMTPPort = j.SMTPPort
	c.SMTPUser = j.SMTPUser
	c.SMTPPassword = j.SMTPPassword
	c.AMQPURL = j.AMQPURL
	c.AMQPQueue = j.AMQPQueue
	c.S3RootUser = j.S3RootUser
	c.S3RootPassword = j.S3RootPassword
	c.S3Bucket = j.S3Bucket
	c.S3Region = j.S3Region
	c.S3BaseEndpoint = j.S3BaseEndpoint
	c.ExportLinkValidityDuration = j.ExportLinkValidityDuration.Duration
}

// parseJson overlays the file named by -c/-config onto config. Keys missing
// from the file keep their current values. An unreadable or malformed file
// panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}
