package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/provaboard/prova-api/internal/dto"
	"github.com/provaboard/prova-api/internal/service"
	"github.com/provaboard/prova-api/internal/utils"
	"github.com/provaboard/prova-api/internal/wizard"
)

// QuestionHandler handles question authoring and AI generation endpoints.
type QuestionHandler struct {
	service service.QuestionService
	logger  zerolog.Logger
}

// NewQuestionHandler constructs the handler.
func NewQuestionHandler(service service.QuestionService, logger zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		service: service,
		logger:  logger.With().Str("component", "question_handler").Logger(),
	}
}

// Register wires the question routes.
func (h *QuestionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/findOne", h.findOne)
	router.Post("/generate", h.generate)
}

func (h *QuestionHandler) list(c *fiber.Ctx) error {
	sectionID, err := parseUintQuery(c, "sectionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid section id")
	}

	questions, err := h.service.ListBySection(c.Context(), sectionID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list questions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list questions")
	}

	return utils.SendSuccess(c, "questions retrieved", questions)
}

func (h *QuestionHandler) findOne(c *fiber.Ctx) error {
	id, err := parseUintQuery(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid question id")
	}

	question, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch question")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch question")
	}

	return utils.SendSuccess(c, "question retrieved", question)
}

func (h *QuestionHandler) create(c *fiber.Ctx) error {
	sectionID, err := parseUintQuery(c, "sectionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid section id")
	}

	weight, err := parseFloatQuery(c, "weight")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid weight")
	}

	var payload dto.QuestionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Create(c.Context(), sectionID, weight, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSectionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExamLocked),
			errors.Is(err, wizard.ErrNoCorrectOption),
			errors.Is(err, wizard.ErrNoRubricCriteria),
			errors.Is(err, wizard.ErrMissingRequiredFields),
			isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create question")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create question")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "question created", created)
}

func (h *QuestionHandler) generate(c *fiber.Ctx) error {
	var payload dto.QuestionGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	draft, err := h.service.Generate(c.Context(), payload)
	if err != nil {
		if isValidationError(err) || errors.Is(err, wizard.ErrMissingRequiredFields) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to generate question draft")
		return utils.SendError(c, fiber.StatusBadGateway, "failed to generate question draft")
	}

	return utils.SendSuccess(c, "question draft generated", draft)
}
