package interfaces

import (
	"context"

	"github.com/Stewz00/mailforge-api/internal/model"
)

// MailTransport delivers a single message to all of its recipients.
type MailTransport interface {
	Send(ctx context.Context, msg *model.EmailMessage) error
}

// TextGenerator calls a generative-text backend. The instruction and the
// untrusted content are passed separately so the backend can keep them apart.
type TextGenerator interface {
	Generate(ctx context.Context, instruction, content string) (string, error)
}
