package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Stewz00/mailforge-api/internal/apperror"
	"github.com/Stewz00/mailforge-api/internal/interfaces"
	"github.com/Stewz00/mailforge-api/internal/model"
	"github.com/Stewz00/mailforge-api/internal/validation"
)

// NotificationService sends campaign emails through a mail transport.
type NotificationService struct {
	transport interfaces.MailTransport
	validator *validation.Validator
	logger    *slog.Logger
}

func NewNotificationService(transport interfaces.MailTransport, validator *validation.Validator, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		transport: transport,
		validator: validator,
		logger:    logger,
	}
}

// Send validates the campaign and hands it to the transport. When sentBy is
// not empty the body gets a trailer naming the sender. It returns the
// recipients the message was addressed to.
func (s *NotificationService) Send(ctx context.Context, campaign validation.CampaignSchema, sentBy string) ([]string, error) {
	if fields := s.validator.Validate(&campaign); fields != nil {
		return nil, apperror.Validation(fields)
	}

	body := campaign.Body
	if sentBy != "" {
		body = fmt.Sprintf("%s\n\n--\nSent by %s", body, sentBy)
	}

	msg := &model.EmailMessage{
		Recipients: campaign.Recipients,
		Subject:    campaign.Subject,
		Body:       body,
	}

	if err := s.transport.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "sending email failed",
			slog.Int("recipients", len(msg.Recipients)),
			slog.String("error", err.Error()),
		)
		return nil, apperror.MailTransport(err)
	}

	s.logger.InfoContext(ctx, "email sent", slog.Int("recipients", len(msg.Recipients)))
	return msg.Recipients, nil
}
