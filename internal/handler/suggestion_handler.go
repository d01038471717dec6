package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/provaboard/prova-api/internal/dto"
	"github.com/provaboard/prova-api/internal/service"
	"github.com/provaboard/prova-api/internal/utils"
)

// SuggestionHandler exposes the debounced job-description suggestion flow.
type SuggestionHandler struct {
	service service.SuggestionService
	logger  zerolog.Logger
}

// NewSuggestionHandler constructs the handler.
func NewSuggestionHandler(service service.SuggestionService, logger zerolog.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		service: service,
		logger:  logger.With().Str("component", "suggestion_handler").Logger(),
	}
}

// Register wires the suggestion routes.
func (h *SuggestionHandler) Register(router fiber.Router) {
	router.Post("/trigger", h.trigger)
	router.Get("/latest", h.latest)
}

// trigger accepts a title/level pair and returns immediately; the AI call
// happens after the debounce window settles.
func (h *SuggestionHandler) trigger(c *fiber.Ctx) error {
	userID := userIDUint(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.SuggestionTriggerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.Trigger(c.Context(), userID, payload); err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to schedule suggestion")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to schedule suggestion")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "suggestion scheduled", nil)
}

func (h *SuggestionHandler) latest(c *fiber.Ctx) error {
	userID := userIDUint(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	suggestion, err := h.service.Latest(userID)
	if err != nil {
		if errors.Is(err, service.ErrNoSuggestion) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch suggestion")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch suggestion")
	}

	return utils.SendSuccess(c, "suggestion retrieved", suggestion)
}
