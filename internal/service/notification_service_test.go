package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Stewz00/mailforge-api/internal/apperror"
	"github.com/Stewz00/mailforge-api/internal/test"
	"github.com/Stewz00/mailforge-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_Send(t *testing.T) {
	transport := &test.MockMailTransport{}
	svc := NewNotificationService(transport, validation.New(), test.DiscardLogger())

	recipients, err := svc.Send(context.Background(), validation.CampaignSchema{
		Recipients: []string{"x@y.com", "z@y.com"},
		Subject:    "Spring sale",
		Body:       "Everything is 20% off.",
	}, "")

	require.NoError(t, err)
	assert.Equal(t, []string{"x@y.com", "z@y.com"}, recipients)

	sent := transport.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Spring sale", sent[0].Subject)
	assert.Equal(t, "Everything is 20% off.", sent[0].Body)
}

func TestNotificationService_SendAppendsSender(t *testing.T) {
	transport := &test.MockMailTransport{}
	svc := NewNotificationService(transport, validation.New(), test.DiscardLogger())

	_, err := svc.Send(context.Background(), validation.CampaignSchema{
		Recipients: []string{"x@y.com"},
		Subject:    "Hello",
		Body:       "1234567890",
	}, "a@b.com")
	require.NoError(t, err)

	sent := transport.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "1234567890\n\n--\nSent by a@b.com", sent[0].Body)
}

func TestNotificationService_EmptyRecipientsNeverReachTransport(t *testing.T) {
	transport := &test.MockMailTransport{}
	svc := NewNotificationService(transport, validation.New(), test.DiscardLogger())

	_, err := svc.Send(context.Background(), validation.CampaignSchema{
		Recipients: []string{},
		Subject:    "x",
		Body:       "1234567890",
	}, "a@b.com")

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Contains(t, appErr.Fields, "recipients")
	assert.Empty(t, transport.Sent())
}

func TestNotificationService_TransportFailure(t *testing.T) {
	transport := &test.MockMailTransport{Err: errors.New("535 authentication failed")}
	svc := NewNotificationService(transport, validation.New(), test.DiscardLogger())

	_, err := svc.Send(context.Background(), validation.CampaignSchema{
		Recipients: []string{"x@y.com"},
		Subject:    "x",
		Body:       "1234567890",
	}, "")

	assert.ErrorIs(t, err, apperror.ErrMailTransport)
	assert.Contains(t, err.Error(), "535 authentication failed")
}
