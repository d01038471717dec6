package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/provaboard/prova-api/internal/dto"
	"github.com/provaboard/prova-api/internal/models"
	"github.com/provaboard/prova-api/internal/repository"
	"github.com/provaboard/prova-api/internal/service"
	"github.com/provaboard/prova-api/internal/utils"
)

// ExamHandler handles exam CRUD and lifecycle endpoints.
type ExamHandler struct {
	service service.ExamService
	logger  zerolog.Logger
}

// NewExamHandler constructs the handler.
func NewExamHandler(service service.ExamService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		service: service,
		logger:  logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register wires the exam routes.
func (h *ExamHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/findOne", h.findOne)
	// The dashboard calls switchStatus with GET; PATCH is kept for API clients.
	router.Get("/switchStatus", h.switchStatus)
	router.Patch("/switchStatus", h.switchStatus)
	router.Patch("", h.update)
	router.Delete("", h.remove)
}

func (h *ExamHandler) list(c *fiber.Ctx) error {
	exams, err := h.service.List(c.Context(), userIDUint(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list exams")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list exams")
	}

	return utils.SendSuccess(c, "exams retrieved", exams)
}

func (h *ExamHandler) create(c *fiber.Ctx) error {
	var payload dto.ExamCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Create(c.Context(), userIDUint(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create exam")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create exam")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exam created", created)
}

// findOne mirrors the dashboard's generic lookup: key/value pair plus an
// optional comma-separated relations list, e.g.
// /exam/findOne?key=id&value=3&relations=sections,questions
func (h *ExamHandler) findOne(c *fiber.Ctx) error {
	if key := strings.TrimSpace(c.Query("key")); key != "id" {
		return utils.SendError(c, fiber.StatusBadRequest, "unsupported lookup key")
	}

	id, err := parseUintQuery(c, "value")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	relations := repository.ParseExamRelations(c.Query("relations"))

	exam, err := h.service.FindOne(c.Context(), id, relations)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch exam")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch exam")
	}

	return utils.SendSuccess(c, "exam retrieved", exam)
}

func (h *ExamHandler) update(c *fiber.Ctx) error {
	id, err := parseUintQuery(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	var payload dto.ExamUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	updated, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExamLocked):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to update exam")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update exam")
	}

	return utils.SendSuccess(c, "exam updated", updated)
}

func (h *ExamHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintQuery(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExamLocked):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete exam")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete exam")
	}

	return utils.SendSuccess(c, "exam deleted", nil)
}

func (h *ExamHandler) switchStatus(c *fiber.Ctx) error {
	id, err := parseUintQuery(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	status := strings.TrimSpace(c.Query("status"))
	if status == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "status is required")
	}

	result, err := h.service.SwitchStatus(c.Context(), id, status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidStatus),
			errors.Is(err, service.ErrExamHasNoSections),
			errors.Is(err, service.ErrSectionWithoutQuestions),
			errors.Is(err, models.ErrTransitionNotImplemented):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to switch exam status")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to switch exam status")
	}

	return utils.SendSuccess(c, "exam status switched", result)
}
