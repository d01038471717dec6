package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/provaboard/prova-api/internal/dto"
	"github.com/provaboard/prova-api/internal/models"
	"github.com/provaboard/prova-api/internal/repository"
	"github.com/provaboard/prova-api/internal/schedule"
)

var (
	ErrSectionNotFound           = errors.New("section not found")
	ErrSectionDeleteNotSupported = errors.New("not implemented yet")
)

// SectionService exposes section authoring use cases. Every write returns the
// remaining exam budget so the form can refresh its counters in one round trip.
type SectionService interface {
	ListByExam(ctx context.Context, examID uint) ([]dto.SectionResponse, error)
	Create(ctx context.Context, examID uint, payload dto.SectionCreateRequest) (dto.SectionBudgetResponse, error)
	Update(ctx context.Context, id uint, payload dto.SectionUpdateRequest) (dto.SectionBudgetResponse, error)
	Preview(ctx context.Context, examID, sectionID uint, weightPercent float64, duration string) (schedule.Budget, error)
	Delete(ctx context.Context, id uint) error
}

type sectionService struct {
	repo      repository.SectionRepository
	exams     repository.ExamRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSectionService builds a new section service.
func NewSectionService(repo repository.SectionRepository, exams repository.ExamRepository, validate *validator.Validate, logger zerolog.Logger) SectionService {
	return &sectionService{
		repo:      repo,
		exams:     exams,
		validator: validate,
		logger:    logger.With().Str("component", "section_service").Logger(),
	}
}

func (s *sectionService) ListByExam(ctx context.Context, examID uint) ([]dto.SectionResponse, error) {
	sections, err := s.repo.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SectionResponse, 0, len(sections))
	for _, section := range sections {
		responses = append(responses, dto.NewSectionResponse(section))
	}

	return responses, nil
}

func (s *sectionService) Create(ctx context.Context, examID uint, payload dto.SectionCreateRequest) (dto.SectionBudgetResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SectionBudgetResponse{}, err
	}

	exam, err := s.exams.GetByID(ctx, examID, repository.ExamRelations{})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SectionBudgetResponse{}, ErrExamNotFound
		}

		return dto.SectionBudgetResponse{}, err
	}
	if !exam.Editable() {
		return dto.SectionBudgetResponse{}, ErrExamLocked
	}

	siblings, err := s.repo.ListByExam(ctx, examID)
	if err != nil {
		return dto.SectionBudgetResponse{}, err
	}

	budget, err := schedule.Remaining(allocations(siblings), -1, payload.WeightPercent, payload.Duration, exam.DurationHours)
	if err != nil {
		return dto.SectionBudgetResponse{}, err
	}

	duration, err := schedule.ParseClock(payload.Duration)
	if err != nil {
		return dto.SectionBudgetResponse{}, err
	}

	section := models.Section{
		ExamID:           examID,
		Name:             payload.Name,
		Description:      payload.Description,
		Weight:           schedule.Fixed2(payload.WeightPercent / 100),
		DurationHours:    duration,
		ShuffleQuestions: payload.ShuffleQuestions,
		Proctored:        payload.Proctored,
	}
	if payload.StartDate != nil {
		start, err := time.Parse(time.RFC3339, *payload.StartDate)
		if err != nil {
			return dto.SectionBudgetResponse{}, err
		}
		section.StartDate = &start
	}

	if err := s.repo.Create(ctx, &section); err != nil {
		return dto.SectionBudgetResponse{}, err
	}

	s.logger.Info().Uint("section_id", section.ID).Uint("exam_id", examID).Msg("section created")

	return dto.NewSectionBudgetResponse(section, budget), nil
}

func (s *sectionService) Update(ctx context.Context, id uint, payload dto.SectionUpdateRequest) (dto.SectionBudgetResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SectionBudgetResponse{}, err
	}

	section, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SectionBudgetResponse{}, ErrSectionNotFound
		}

		return dto.SectionBudgetResponse{}, err
	}

	exam, err := s.exams.GetByID(ctx, section.ExamID, repository.ExamRelations{})
	if err != nil {
		return dto.SectionBudgetResponse{}, err
	}
	if !exam.Editable() {
		return dto.SectionBudgetResponse{}, ErrExamLocked
	}

	weightPercent := schedule.Fixed2(section.Weight * 100)
	if payload.WeightPercent != nil {
		weightPercent = *payload.WeightPercent
	}
	clock := clockFromHours(section.DurationHours)
	if payload.Duration != nil {
		clock = *payload.Duration
	}

	siblings, err := s.repo.ListByExam(ctx, section.ExamID)
	if err != nil {
		return dto.SectionBudgetResponse{}, err
	}

	budget, err := schedule.Remaining(allocations(siblings), indexOf(siblings, id), weightPercent, clock, exam.DurationHours)
	if err != nil {
		return dto.SectionBudgetResponse{}, err
	}

	duration, err := schedule.ParseClock(clock)
	if err != nil {
		return dto.SectionBudgetResponse{}, err
	}

	if payload.Name != nil {
		section.Name = *payload.Name
	}
	if payload.Description != nil {
		section.Description = *payload.Description
	}
	section.Weight = schedule.Fixed2(weightPercent / 100)
	section.DurationHours = duration
	if payload.StartDate != nil {
		start, err := time.Parse(time.RFC3339, *payload.StartDate)
		if err != nil {
			return dto.SectionBudgetResponse{}, err
		}
		section.StartDate = &start
	}
	if payload.ShuffleQuestions != nil {
		section.ShuffleQuestions = *payload.ShuffleQuestions
	}
	if payload.Proctored != nil {
		section.Proctored = *payload.Proctored
	}

	if err := s.repo.Update(ctx, &section); err != nil {
		return dto.SectionBudgetResponse{}, err
	}

	s.logger.Info().Uint("section_id", section.ID).Msg("section updated")

	return dto.NewSectionBudgetResponse(section, budget), nil
}

// Preview recomputes the budget for in-flight form values without persisting
// anything. sectionID zero means a section that does not exist yet.
func (s *sectionService) Preview(ctx context.Context, examID, sectionID uint, weightPercent float64, duration string) (schedule.Budget, error) {
	exam, err := s.exams.GetByID(ctx, examID, repository.ExamRelations{})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return schedule.Budget{}, ErrExamNotFound
		}

		return schedule.Budget{}, err
	}

	siblings, err := s.repo.ListByExam(ctx, examID)
	if err != nil {
		return schedule.Budget{}, err
	}

	edited := -1
	if sectionID != 0 {
		edited = indexOf(siblings, sectionID)
	}

	return schedule.Remaining(allocations(siblings), edited, weightPercent, duration, exam.DurationHours)
}

// Delete is intentionally unsupported: removing a section would orphan its
// questions and candidate answers.
func (s *sectionService) Delete(ctx context.Context, id uint) error {
	return ErrSectionDeleteNotSupported
}

func allocations(sections []models.Section) []schedule.Allocation {
	out := make([]schedule.Allocation, 0, len(sections))
	for _, section := range sections {
		out = append(out, schedule.Allocation{Weight: section.Weight, DurationHours: section.DurationHours})
	}

	return out
}

func indexOf(sections []models.Section, id uint) int {
	for i, section := range sections {
		if section.ID == id {
			return i
		}
	}

	return -1
}

// clockFromHours renders fractional hours back into the "HH:MM" form value.
func clockFromHours(hours float64) string {
	whole := int(hours)
	minutes := int(math.Round((hours - float64(whole)) * 60))
	if minutes == 60 {
		whole++
		minutes = 0
	}

	return fmt.Sprintf("%02d:%02d", whole, minutes)
}
