package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/provaboard/prova-api/internal/dto"
	"github.com/provaboard/prova-api/internal/service"
	"github.com/provaboard/prova-api/internal/utils"
)

// SectionHandler handles section authoring endpoints.
type SectionHandler struct {
	service service.SectionService
	logger  zerolog.Logger
}

// NewSectionHandler constructs the handler.
func NewSectionHandler(service service.SectionService, logger zerolog.Logger) *SectionHandler {
	return &SectionHandler{
		service: service,
		logger:  logger.With().Str("component", "section_handler").Logger(),
	}
}

// Register wires the section routes.
func (h *SectionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("", h.update)
	router.Delete("", h.remove)
	router.Get("/budget", h.budget)
}

func (h *SectionHandler) list(c *fiber.Ctx) error {
	examID, err := parseUintQuery(c, "examId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	sections, err := h.service.ListByExam(c.Context(), examID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list sections")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list sections")
	}

	return utils.SendSuccess(c, "sections retrieved", sections)
}

func (h *SectionHandler) create(c *fiber.Ctx) error {
	examID, err := parseUintQuery(c, "examId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	var payload dto.SectionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Create(c.Context(), examID, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExamLocked), isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case strings.Contains(err.Error(), "invalid clock"):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create section")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create section")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "section created", result)
}

func (h *SectionHandler) update(c *fiber.Ctx) error {
	id, err := parseUintQuery(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid section id")
	}

	var payload dto.SectionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSectionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExamLocked), isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case strings.Contains(err.Error(), "invalid clock"):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update section")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update section")
	}

	return utils.SendSuccess(c, "section updated", result)
}

func (h *SectionHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintQuery(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid section id")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrSectionDeleteNotSupported) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete section")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete section")
	}

	return utils.SendSuccess(c, "section deleted", nil)
}

// budget recomputes the remaining weight/duration for in-flight form values
// without saving anything.
func (h *SectionHandler) budget(c *fiber.Ctx) error {
	examID, err := parseUintQuery(c, "examId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	sectionID := uint(0)
	if strings.TrimSpace(c.Query("sectionId")) != "" {
		sectionID, err = parseUintQuery(c, "sectionId")
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid section id")
		}
	}

	weight, err := parseFloatQuery(c, "weight")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid weight")
	}

	duration := strings.TrimSpace(c.Query("duration"))
	if duration == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "duration is required")
	}

	budget, err := h.service.Preview(c.Context(), examID, sectionID, weight, duration)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case strings.Contains(err.Error(), "invalid clock"):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute section budget")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute section budget")
	}

	return utils.SendSuccess(c, "budget computed", budget)
}
