package handler

import (
	"log/slog"
	"net/http"

	"github.com/Stewz00/mailforge-api/internal/apperror"
	"github.com/Stewz00/mailforge-api/internal/auth"
	"github.com/Stewz00/mailforge-api/internal/model"
	"github.com/Stewz00/mailforge-api/internal/service"
	"github.com/Stewz00/mailforge-api/internal/validation"
)

type EmailHandler struct {
	notifications *service.NotificationService
	drafts        *service.DraftService
	logger        *slog.Logger
}

func NewEmailHandler(notifications *service.NotificationService, drafts *service.DraftService, logger *slog.Logger) *EmailHandler {
	return &EmailHandler{
		notifications: notifications,
		drafts:        drafts,
		logger:        logger,
	}
}

type SendEmailResponse struct {
	Message    string   `json:"message"`
	Recipients []string `json:"recipients"`
}

type GenerateEmailResponse struct {
	GeneratedEmail string `json:"generated_email"`
}

// SendEmail mails a campaign on behalf of the authenticated user.
func (h *EmailHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperror.Unauthenticated("Missing bearer token"))
		return
	}

	var req validation.CampaignSchema
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	recipients, err := h.notifications.Send(r.Context(), req, identity)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, SendEmailResponse{Message: "Emails sent successfully", Recipients: recipients})
}

// GenerateEmail returns a marketing draft produced by the text generator.
func (h *EmailHandler) GenerateEmail(w http.ResponseWriter, r *http.Request) {
	var req model.DraftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	text, err := h.drafts.Generate(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, GenerateEmailResponse{GeneratedEmail: text})
}
