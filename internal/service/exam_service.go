package service

import (
	"context"
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/provaboard/prova-api/internal/dto"
	"github.com/provaboard/prova-api/internal/models"
	"github.com/provaboard/prova-api/internal/repository"
	"github.com/provaboard/prova-api/internal/wizard"
)

// The business-rule messages below are part of the API contract: the
// dashboard matches on them to pick the notification it shows.
var (
	ErrExamNotFound            = errors.New("exam not found")
	ErrExamLocked              = errors.New("exam can only be edited while draft")
	ErrExamHasNoSections       = errors.New("exam has no sections")
	ErrSectionWithoutQuestions = errors.New("section without questions")
	ErrInvalidStatus           = errors.New("unknown exam status")
)

// ExamService exposes exam domain use cases.
type ExamService interface {
	List(ctx context.Context, ownerID uint) ([]dto.ExamResponse, error)
	FindOne(ctx context.Context, id uint, relations repository.ExamRelations) (dto.ExamResponse, error)
	Create(ctx context.Context, ownerID uint, payload dto.ExamCreateRequest) (dto.ExamResponse, error)
	Update(ctx context.Context, id uint, payload dto.ExamUpdateRequest) (dto.ExamResponse, error)
	Delete(ctx context.Context, id uint) error
	SwitchStatus(ctx context.Context, id uint, status string) (dto.StatusSwitchResponse, error)
}

type examService struct {
	repo      repository.ExamRepository
	sheets    repository.AnswerSheetRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewExamService builds a new exam service.
func NewExamService(repo repository.ExamRepository, sheets repository.AnswerSheetRepository, validate *validator.Validate, logger zerolog.Logger) ExamService {
	return &examService{
		repo:      repo,
		sheets:    sheets,
		validator: validate,
		logger:    logger.With().Str("component", "exam_service").Logger(),
	}
}

// examWizardStore adapts the exam repository to the wizard's collaborator
// interface so the create flow persists after its first step.
type examWizardStore struct {
	repo    repository.ExamRepository
	ownerID uint
}

func (s examWizardStore) Create(ctx context.Context, core wizard.ExamCore) (uint, error) {
	exam := models.Exam{
		Title:                 core.Title,
		JobLevel:              core.JobLevel,
		DurationHours:         core.DurationHours,
		SubmissionWindowHours: core.SubmissionWindowHours,
		Status:                models.ExamStatusDraft,
		OwnerID:               s.ownerID,
	}
	if err := s.repo.Create(ctx, &exam); err != nil {
		return 0, err
	}
	return exam.ID, nil
}

func (s examWizardStore) Patch(ctx context.Context, id uint, extras wizard.ExamExtras) error {
	exam, err := s.repo.GetByID(ctx, id, repository.ExamRelations{})
	if err != nil {
		return err
	}
	if extras.Description != nil {
		exam.Description = *extras.Description
	}
	if extras.ShowScore != nil {
		exam.ShowScore = *extras.ShowScore
	}
	if extras.IsPublic != nil {
		exam.IsPublic = *extras.IsPublic
	}
	return s.repo.Update(ctx, &exam)
}

func (s *examService) List(ctx context.Context, ownerID uint) ([]dto.ExamResponse, error) {
	exams, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return dto.NewExamResponseSlice(exams), nil
}

func (s *examService) FindOne(ctx context.Context, id uint, relations repository.ExamRelations) (dto.ExamResponse, error) {
	exam, err := s.repo.GetByID(ctx, id, relations)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamResponse{}, ErrExamNotFound
		}

		return dto.ExamResponse{}, err
	}

	return dto.NewExamResponse(exam), nil
}

func (s *examService) Create(ctx context.Context, ownerID uint, payload dto.ExamCreateRequest) (dto.ExamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}

	flow := wizard.NewExamWizard(examWizardStore{repo: s.repo, ownerID: ownerID})
	if err := flow.SubmitCore(ctx, wizard.ExamCore{
		Title:                 payload.Title,
		JobLevel:              payload.JobLevel,
		DurationHours:         payload.DurationHours,
		SubmissionWindowHours: payload.SubmissionWindowHours,
	}); err != nil {
		return dto.ExamResponse{}, err
	}

	id, err := flow.ExamID()
	if err != nil {
		return dto.ExamResponse{}, err
	}

	exam, err := s.repo.GetByID(ctx, id, repository.ExamRelations{})
	if err != nil {
		return dto.ExamResponse{}, err
	}

	s.logger.Info().Uint("exam_id", exam.ID).Msg("exam created")

	return dto.NewExamResponse(exam), nil
}

func (s *examService) Update(ctx context.Context, id uint, payload dto.ExamUpdateRequest) (dto.ExamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}

	exam, err := s.repo.GetByID(ctx, id, repository.ExamRelations{})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamResponse{}, ErrExamNotFound
		}

		return dto.ExamResponse{}, err
	}

	if !exam.Editable() {
		return dto.ExamResponse{}, ErrExamLocked
	}

	if payload.Title != nil {
		exam.Title = *payload.Title
	}
	if payload.JobLevel != nil {
		exam.JobLevel = *payload.JobLevel
	}
	if payload.Description != nil {
		exam.Description = *payload.Description
	}
	if payload.DurationHours != nil {
		exam.DurationHours = *payload.DurationHours
	}
	if payload.SubmissionWindowHours != nil {
		exam.SubmissionWindowHours = *payload.SubmissionWindowHours
	}
	if payload.ShowScore != nil {
		exam.ShowScore = *payload.ShowScore
	}
	if payload.IsPublic != nil {
		exam.IsPublic = *payload.IsPublic
	}

	if err := s.repo.Update(ctx, &exam); err != nil {
		return dto.ExamResponse{}, err
	}

	s.logger.Info().Uint("exam_id", exam.ID).Msg("exam updated")

	return dto.NewExamResponse(exam), nil
}

func (s *examService) Delete(ctx context.Context, id uint) error {
	exam, err := s.repo.GetByID(ctx, id, repository.ExamRelations{})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExamNotFound
		}
		return err
	}

	if !exam.Editable() {
		return ErrExamLocked
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("exam_id", id).Msg("exam deleted")
	return nil
}

func (s *examService) SwitchStatus(ctx context.Context, id uint, status string) (dto.StatusSwitchResponse, error) {
	if !models.ValidExamStatus(status) {
		return dto.StatusSwitchResponse{}, ErrInvalidStatus
	}
	target := models.ExamStatus(status)

	exam, err := s.repo.GetByID(ctx, id, repository.ExamRelations{Sections: true, Questions: true})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StatusSwitchResponse{}, ErrExamNotFound
		}

		return dto.StatusSwitchResponse{}, err
	}

	if !models.CanTransition(exam.Status, target) {
		return dto.StatusSwitchResponse{}, models.ErrTransitionNotImplemented
	}

	if exam.Status == models.ExamStatusDraft && target == models.ExamStatusPublished {
		if len(exam.Sections) == 0 {
			return dto.StatusSwitchResponse{}, ErrExamHasNoSections
		}
		for _, section := range exam.Sections {
			if len(section.Questions) == 0 {
				return dto.StatusSwitchResponse{}, ErrSectionWithoutQuestions
			}
		}
	}

	response := dto.StatusSwitchResponse{ID: exam.ID, Status: status}

	// Archiving with outstanding sheets is allowed; the dashboard shows how
	// many days remain until every pending sheet has expired.
	if target == models.ExamStatusArchived {
		pending, err := s.sheets.CountPendingByExam(ctx, exam.ID)
		if err != nil {
			return dto.StatusSwitchResponse{}, err
		}
		if pending > 0 {
			response.PendingSheets = pending
			response.DaysRemaining = int(math.Ceil(exam.SubmissionWindowHours / 24))
		}
	}

	if err := s.repo.UpdateStatus(ctx, exam.ID, target); err != nil {
		return dto.StatusSwitchResponse{}, err
	}

	s.logger.Info().
		Uint("exam_id", exam.ID).
		Str("from", string(exam.Status)).
		Str("to", status).
		Msg("exam status switched")

	return response, nil
}
