package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/provaboard/prova-api/internal/dto"
	"github.com/provaboard/prova-api/internal/models"
	"github.com/provaboard/prova-api/internal/repository"
	"github.com/provaboard/prova-api/internal/schedule"
	"github.com/provaboard/prova-api/internal/wizard"
	"github.com/provaboard/prova-api/pkg/ai"
)

var ErrQuestionNotFound = errors.New("question not found")

// QuestionService exposes question authoring use cases.
type QuestionService interface {
	GetByID(ctx context.Context, id uint) (dto.QuestionResponse, error)
	ListBySection(ctx context.Context, sectionID uint) ([]dto.QuestionResponse, error)
	Create(ctx context.Context, sectionID uint, weight float64, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	Generate(ctx context.Context, payload dto.QuestionGenerateRequest) (dto.QuestionDraftResponse, error)
}

type questionService struct {
	repo      repository.QuestionRepository
	sections  repository.SectionRepository
	exams     repository.ExamRepository
	generator ai.Generator
	sanitizer *bluemonday.Policy
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewQuestionService builds a new question service.
func NewQuestionService(repo repository.QuestionRepository, sections repository.SectionRepository, exams repository.ExamRepository, generator ai.Generator, validate *validator.Validate, logger zerolog.Logger) QuestionService {
	return &questionService{
		repo:      repo,
		sections:  sections,
		exams:     exams,
		generator: generator,
		sanitizer: bluemonday.StrictPolicy(),
		validator: validate,
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
}

// questionWizardStore adapts the question repository to the wizard's store
// interface. Letters are assigned here, right before persistence.
type questionWizardStore struct {
	repo repository.QuestionRepository
}

func (s questionWizardStore) Create(ctx context.Context, sectionID uint, config wizard.QuestionConfig, draft wizard.QuestionDraft) (uint, error) {
	question := models.Question{
		SectionID:  sectionID,
		Type:       config.Type,
		Statement:  draft.Statement,
		Weight:     config.Weight,
		Difficulty: draft.Difficulty,
		Shareable:  draft.Shareable,
	}

	if len(draft.Tags) > 0 {
		tags, err := json.Marshal(draft.Tags)
		if err != nil {
			return 0, err
		}
		question.Tags = tags
	}

	for i, option := range draft.Options {
		question.Options = append(question.Options, models.QuestionOption{
			Letter:      fmt.Sprintf("%c", 'a'+i),
			Description: option.Description,
			Correct:     option.Correct,
		})
	}

	for _, criterion := range draft.Rubric {
		bands, err := json.Marshal(criterion.Bands)
		if err != nil {
			return 0, err
		}
		question.Rubric = append(question.Rubric, models.RubricCriterion{
			Title:  criterion.Title,
			Weight: criterion.Weight,
			Bands:  bands,
		})
	}

	if err := s.repo.Create(ctx, &question); err != nil {
		return 0, err
	}

	return question.ID, nil
}

func (s *questionService) GetByID(ctx context.Context, id uint) (dto.QuestionResponse, error) {
	question, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}

		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) ListBySection(ctx context.Context, sectionID uint) ([]dto.QuestionResponse, error) {
	questions, err := s.repo.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, dto.NewQuestionResponse(question))
	}

	return responses, nil
}

func (s *questionService) Create(ctx context.Context, sectionID uint, weight float64, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	section, err := s.sections.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrSectionNotFound
		}

		return dto.QuestionResponse{}, err
	}

	exam, err := s.exams.GetByID(ctx, section.ExamID, repository.ExamRelations{})
	if err != nil {
		return dto.QuestionResponse{}, err
	}
	if !exam.Editable() {
		return dto.QuestionResponse{}, ErrExamLocked
	}

	flow := wizard.NewQuestionWizard(questionWizardStore{repo: s.repo}, nil)
	if err := flow.Configure(wizard.QuestionConfig{
		Type:   models.QuestionType(payload.Type),
		Weight: schedule.Fixed2(weight),
	}); err != nil {
		return dto.QuestionResponse{}, err
	}
	if err := flow.DraftManually(s.draftFromPayload(payload)); err != nil {
		return dto.QuestionResponse{}, err
	}
	if err := flow.Submit(ctx, sectionID); err != nil {
		return dto.QuestionResponse{}, err
	}

	id, err := flow.QuestionID()
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	s.logger.Info().Uint("question_id", question.ID).Uint("section_id", sectionID).Msg("question created")

	return dto.NewQuestionResponse(question), nil
}

// Generate runs the wizard's AI drafting phase and returns the draft without
// persisting anything; the recruiter edits it and submits through Create.
func (s *questionService) Generate(ctx context.Context, payload dto.QuestionGenerateRequest) (dto.QuestionDraftResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionDraftResponse{}, err
	}

	flow := wizard.NewQuestionWizard(questionWizardStore{repo: s.repo}, generatorDrafter{generator: s.generator})
	if err := flow.Configure(wizard.QuestionConfig{
		Type:   models.QuestionType(payload.Type),
		Weight: schedule.Fixed2(payload.Weight),
	}); err != nil {
		return dto.QuestionDraftResponse{}, err
	}
	if err := flow.DraftWithAI(ctx, payload.Prompt); err != nil {
		return dto.QuestionDraftResponse{}, err
	}

	draft := flow.Draft()
	response := dto.QuestionDraftResponse{
		Type:       payload.Type,
		Weight:     schedule.Fixed2(payload.Weight),
		Statement:  draft.Statement,
		Tags:       draft.Tags,
		Difficulty: draft.Difficulty,
	}
	for i, option := range draft.Options {
		response.Options = append(response.Options, dto.QuestionOptionResponse{
			Letter:      fmt.Sprintf("%c", 'a'+i),
			Description: option.Description,
			Correct:     option.Correct,
		})
	}
	for _, criterion := range draft.Rubric {
		response.Rubric = append(response.Rubric, dto.RubricCriterionResponse{
			Title:  criterion.Title,
			Weight: criterion.Weight,
			Bands:  criterion.Bands,
		})
	}

	s.logger.Info().Str("type", payload.Type).Msg("question draft generated")

	return response, nil
}

func (s *questionService) draftFromPayload(payload dto.QuestionCreateRequest) wizard.QuestionDraft {
	draft := wizard.QuestionDraft{
		Statement:  s.sanitizer.Sanitize(payload.Statement),
		Tags:       payload.Tags,
		Difficulty: payload.Difficulty,
		Shareable:  payload.Shareable,
	}
	if draft.Difficulty == 0 {
		draft.Difficulty = 3
	}

	for _, option := range payload.Options {
		draft.Options = append(draft.Options, wizard.OptionDraft{
			Description: s.sanitizer.Sanitize(option.Description),
			Correct:     option.Correct,
		})
	}

	for _, criterion := range payload.Rubric {
		draft.Rubric = append(draft.Rubric, wizard.CriterionDraft{
			Title:  s.sanitizer.Sanitize(criterion.Title),
			Weight: criterion.Weight,
			Bands: models.RubricBands{
				Max: models.RubricBand{Rationale: criterion.MaxBand.Rationale, Min: criterion.MaxBand.Min, Max: criterion.MaxBand.Max},
				Avg: models.RubricBand{Rationale: criterion.AvgBand.Rationale, Min: criterion.AvgBand.Min, Max: criterion.AvgBand.Max},
				Min: models.RubricBand{Rationale: criterion.MinBand.Rationale, Min: criterion.MinBand.Min, Max: criterion.MinBand.Max},
			},
		})
	}

	return draft
}

// generatorDrafter adapts the AI client to the wizard's Drafter interface.
type generatorDrafter struct {
	generator ai.Generator
}

func (d generatorDrafter) Draft(ctx context.Context, prompt string, config wizard.QuestionConfig) (wizard.QuestionDraft, error) {
	generated, err := d.generator.GenerateQuestion(ctx, prompt, string(config.Type))
	if err != nil {
		return wizard.QuestionDraft{}, err
	}

	draft := wizard.QuestionDraft{
		Statement:  generated.Statement,
		Tags:       generated.Tags,
		Difficulty: generated.Difficulty,
	}
	for _, option := range generated.Options {
		draft.Options = append(draft.Options, wizard.OptionDraft{Description: option.Description, Correct: option.Correct})
	}
	for _, criterion := range generated.Rubric {
		draft.Rubric = append(draft.Rubric, wizard.CriterionDraft{
			Title:  criterion.Title,
			Weight: criterion.Weight,
			Bands: models.RubricBands{
				Max: models.RubricBand{Rationale: criterion.MaxText, Min: criterion.MaxPoints, Max: criterion.MaxPoints},
				Avg: models.RubricBand{Rationale: criterion.AvgText},
				Min: models.RubricBand{Rationale: criterion.MinText},
			},
		})
	}

	return draft, nil
}
