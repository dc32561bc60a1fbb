package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/gophcrm/internal/logging"
	"github.com/dmitrijs2005/gophcrm/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsTransport(t *testing.T) {
	logger := logging.NewNopLogger()

	tests := []struct {
		transport string
		want      any
	}{
		{config.MailTransportLog, &LogSender{}},
		{"", &LogSender{}},
		{config.MailTransportSMTP, &SMTPSender{}},
		{config.MailTransportAMQP, &QueueSender{}},
	}

	for _, tt := range tests {
		t.Run(tt.transport, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.LoadDefaults()
			cfg.MailTransport = tt.transport

			s, err := New(cfg, logger)
			require.NoError(t, err)
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestNew_UnknownTransport(t *testing.T) {
	cfg := &config.Config{MailTransport: "pigeon"}
	_, err := New(cfg, logging.NewNopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pigeon")
}

func TestLogSender_LogsMessage(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(logging.NewJSONLogger(&buf, "info"))

	err := s.Send(context.Background(), Message{To: "a@b.c", Subject: "Hello", CustomerID: 7, EmailLogID: 3})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "[SMTP SIM]")
	assert.Contains(t, out, `"to":"a@b.c"`)
	assert.Contains(t, out, `"email_log_id":3`)
}
