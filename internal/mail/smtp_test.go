package mail

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"testing"

	"github.com/Stewz00/mailforge-api/internal/config"
	"github.com/Stewz00/mailforge-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMailConfig() config.MailConfig {
	return config.MailConfig{
		Host:          "smtp.example.com",
		Port:          587,
		UseTLS:        true,
		Username:      "testuser",
		Password:      "testpass",
		DefaultSender: "noreply@example.com",
	}
}

func TestNewSMTPTransport(t *testing.T) {
	_, err := NewSMTPTransport(validMailConfig())
	require.NoError(t, err)

	cfg := validMailConfig()
	cfg.Host = ""
	_, err = NewSMTPTransport(cfg)
	assert.EqualError(t, err, "SMTP host is required")

	cfg = validMailConfig()
	cfg.DefaultSender = ""
	_, err = NewSMTPTransport(cfg)
	assert.EqualError(t, err, "SMTP default sender is required")
}

func TestBuildMessage(t *testing.T) {
	m, err := buildMessage("noreply@example.com", &model.EmailMessage{
		Recipients: []string{"x@y.com", "z@y.com"},
		Subject:    "Hello",
		Body:       "1234567890",
	})
	require.NoError(t, err)

	rcpts, err := m.GetRecipients()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x@y.com", "z@y.com"}, rcpts)

	sender, err := m.GetSender(false)
	require.NoError(t, err)
	assert.Equal(t, "noreply@example.com", sender)
}

func TestBuildMessage_InvalidRecipient(t *testing.T) {
	_, err := buildMessage("noreply@example.com", &model.EmailMessage{
		Recipients: []string{"not an address"},
		Subject:    "Hello",
		Body:       "1234567890",
	})
	assert.ErrorContains(t, err, "setting to address")
}

func TestClientOptions(t *testing.T) {
	cfg := validMailConfig()
	transport, err := NewSMTPTransport(cfg)
	require.NoError(t, err)
	// port, TLS policy, auth type, username, password
	assert.Len(t, transport.clientOptions(), 5)

	cfg.Port = 465
	transport, err = NewSMTPTransport(cfg)
	require.NoError(t, err)
	assert.Len(t, transport.clientOptions(), 6)

	cfg.UseTLS = false
	cfg.Username = ""
	transport, err = NewSMTPTransport(cfg)
	require.NoError(t, err)
	assert.Len(t, transport.clientOptions(), 2)
}

func TestSMTPTransport_SendConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	transport, err := NewSMTPTransport(config.MailConfig{
		Host:          "127.0.0.1",
		Port:          port,
		DefaultSender: "noreply@example.com",
	})
	require.NoError(t, err)

	err = transport.Send(context.Background(), &model.EmailMessage{
		Recipients: []string{"x@y.com"},
		Subject:    "Hello",
		Body:       "1234567890",
	})
	assert.ErrorContains(t, err, "sending email")
}

func TestDisabledTransport(t *testing.T) {
	var buf bytes.Buffer
	transport := NewDisabledTransport(slog.New(slog.NewTextHandler(&buf, nil)))

	err := transport.Send(context.Background(), &model.EmailMessage{
		Recipients: []string{"x@y.com"},
		Subject:    "Hello",
		Body:       "secret body",
	})

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, buf.String(), "no SMTP server configured")
	assert.NotContains(t, buf.String(), "secret body")
}
