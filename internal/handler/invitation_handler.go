package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/provaboard/prova-api/internal/dto"
	"github.com/provaboard/prova-api/internal/service"
	"github.com/provaboard/prova-api/internal/utils"
)

// InvitationHandler handles candidate invitations and AI correction. Its
// routes are spread over three groups: invite and candidate listing live
// under the exam, resend under the invitation, and correction under the
// answer sheet, mirroring the shapes the dashboard calls.
type InvitationHandler struct {
	service service.InvitationService
	logger  zerolog.Logger
}

// NewInvitationHandler constructs the handler.
func NewInvitationHandler(service service.InvitationService, logger zerolog.Logger) *InvitationHandler {
	return &InvitationHandler{
		service: service,
		logger:  logger.With().Str("component", "invitation_handler").Logger(),
	}
}

// RegisterExamRoutes wires the exam-scoped invitation routes.
func (h *InvitationHandler) RegisterExamRoutes(router fiber.Router) {
	router.Post("/sendInvitations", h.send)
	router.Get("/fetchCandidates", h.fetchCandidates)
}

// RegisterInvitationRoutes wires the invitation-scoped routes. The dashboard
// calls resend with GET; POST is kept for API clients.
func (h *InvitationHandler) RegisterInvitationRoutes(router fiber.Router) {
	router.Get("/resend", h.resend)
	router.Post("/resend", h.resend)
}

// RegisterAnswerSheetRoutes wires the answer-sheet-scoped routes. Same GET
// aliasing as resend.
func (h *InvitationHandler) RegisterAnswerSheetRoutes(router fiber.Router) {
	router.Get("/generateEval", h.generateCorrection)
	router.Post("/generateEval", h.generateCorrection)
}

func (h *InvitationHandler) send(c *fiber.Ctx) error {
	examID, err := parseUintQuery(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	var payload dto.InvitationSendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	candidates, err := h.service.SendInvitations(c.Context(), examID, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExamNotAccepting), isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to send invitations")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to send invitations")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "invitations sent", candidates)
}

func (h *InvitationHandler) resend(c *fiber.Ctx) error {
	id, err := parseUintQuery(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid invitation id")
	}

	candidate, err := h.service.Resend(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvitationNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInviteNotExpired):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to resend invitation")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to resend invitation")
	}

	return utils.SendSuccess(c, "invitation resent", candidate)
}

func (h *InvitationHandler) fetchCandidates(c *fiber.Ctx) error {
	examID, err := parseUintQuery(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	candidates, err := h.service.FetchCandidates(c.Context(), examID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch candidates")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch candidates")
	}

	return utils.SendSuccess(c, "candidates retrieved", candidates)
}

func (h *InvitationHandler) generateCorrection(c *fiber.Ctx) error {
	answerSheetID, err := parseUintQuery(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid answer sheet id")
	}

	result, err := h.service.GenerateCorrection(c.Context(), answerSheetID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnswerSheetNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSheetNotFinished):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAlreadyCorrected):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to generate correction")
		return utils.SendError(c, fiber.StatusBadGateway, "failed to generate correction")
	}

	return utils.SendSuccess(c, "correction generated", result)
}
