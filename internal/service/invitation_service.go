package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/provaboard/prova-api/internal/dto"
	"github.com/provaboard/prova-api/internal/models"
	"github.com/provaboard/prova-api/internal/repository"
	"github.com/provaboard/prova-api/internal/schedule"
	"github.com/provaboard/prova-api/pkg/ai"
)

var (
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrAnswerSheetNotFound = errors.New("answer sheet not found")
	ErrExamNotAccepting    = errors.New("exam not published or live")
	ErrInviteNotExpired    = errors.New("invitation is not expired")
	ErrSheetNotFinished    = errors.New("answer sheet not finished")
	ErrAlreadyCorrected    = errors.New("correction already generated")
)

const candidateCacheKeyFormat = "candidates:exam:%d"

// CorrectionNotifier is told when a correction finishes so the recruiter can
// be pinged in real time.
type CorrectionNotifier interface {
	NotifyUser(ctx context.Context, userID uint, title, message string) error
}

// InvitationService exposes candidate invitation and correction use cases.
type InvitationService interface {
	SendInvitations(ctx context.Context, examID uint, payload dto.InvitationSendRequest) ([]dto.CandidateResponse, error)
	Resend(ctx context.Context, invitationID uint) (dto.CandidateResponse, error)
	FetchCandidates(ctx context.Context, examID uint) ([]dto.CandidateResponse, error)
	GenerateCorrection(ctx context.Context, answerSheetID uint) (dto.CorrectionResponse, error)
}

type invitationService struct {
	repo      repository.InvitationRepository
	exams     repository.ExamRepository
	sheets    repository.AnswerSheetRepository
	corrector ai.Corrector
	notifier  CorrectionNotifier
	cache     *redis.Client
	cacheTTL  time.Duration
	flight    singleflight.Group
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewInvitationService builds a new invitation service. notifier and cache may
// be nil in tests; both are skipped when absent.
func NewInvitationService(
	repo repository.InvitationRepository,
	exams repository.ExamRepository,
	sheets repository.AnswerSheetRepository,
	corrector ai.Corrector,
	notifier CorrectionNotifier,
	cache *redis.Client,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger zerolog.Logger,
) InvitationService {
	return &invitationService{
		repo:      repo,
		exams:     exams,
		sheets:    sheets,
		corrector: corrector,
		notifier:  notifier,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "invitation_service").Logger(),
		now:       time.Now,
	}
}

func (s *invitationService) SendInvitations(ctx context.Context, examID uint, payload dto.InvitationSendRequest) ([]dto.CandidateResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	exam, err := s.exams.GetByID(ctx, examID, repository.ExamRelations{})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}

		return nil, err
	}
	if !exam.AcceptsInvitations() {
		return nil, ErrExamNotAccepting
	}

	invitations := make([]models.Invitation, 0, len(payload.Emails))
	for _, email := range payload.Emails {
		invitations = append(invitations, models.Invitation{
			ExamID:          examID,
			Email:           email,
			Status:          models.InvitationStatusPending,
			ExpirationHours: payload.ExpirationHours,
		})
	}

	if err := s.repo.CreateBatch(ctx, invitations); err != nil {
		return nil, err
	}

	s.invalidateCandidates(ctx, examID)
	s.logger.Info().Uint("exam_id", examID).Int("count", len(invitations)).Msg("invitations sent")

	return dto.NewCandidateResponseSlice(invitations), nil
}

func (s *invitationService) Resend(ctx context.Context, invitationID uint) (dto.CandidateResponse, error) {
	invitation, err := s.repo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CandidateResponse{}, ErrInvitationNotFound
		}

		return dto.CandidateResponse{}, err
	}

	if !invitation.CanResend() {
		return dto.CandidateResponse{}, ErrInviteNotExpired
	}

	invitation.Status = models.InvitationStatusPending
	if err := s.repo.Update(ctx, &invitation); err != nil {
		return dto.CandidateResponse{}, err
	}

	s.invalidateCandidates(ctx, invitation.ExamID)
	s.logger.Info().Uint("invitation_id", invitation.ID).Msg("invitation resent")

	return dto.NewCandidateResponse(invitation), nil
}

// FetchCandidates serves the candidate list from Redis when a fresh copy
// exists, falling back to the database on a miss or cache failure.
func (s *invitationService) FetchCandidates(ctx context.Context, examID uint) ([]dto.CandidateResponse, error) {
	key := fmt.Sprintf(candidateCacheKeyFormat, examID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var candidates []dto.CandidateResponse
			if err := json.Unmarshal([]byte(cached), &candidates); err == nil {
				return candidates, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("candidate cache read failed")
		}
	}

	invitations, err := s.repo.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	candidates := dto.NewCandidateResponseSlice(invitations)

	if s.cache != nil {
		if encoded, err := json.Marshal(candidates); err == nil {
			if err := s.cache.Set(ctx, key, encoded, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("candidate cache write failed")
			}
		}
	}

	return candidates, nil
}

// GenerateCorrection grades a finished answer sheet with AI. Concurrent calls
// for the same sheet are collapsed into one correction.
func (s *invitationService) GenerateCorrection(ctx context.Context, answerSheetID uint) (dto.CorrectionResponse, error) {
	result, err, _ := s.flight.Do(fmt.Sprintf("correction:%d", answerSheetID), func() (interface{}, error) {
		return s.correct(ctx, answerSheetID)
	})
	if err != nil {
		return dto.CorrectionResponse{}, err
	}

	return result.(dto.CorrectionResponse), nil
}

func (s *invitationService) correct(ctx context.Context, answerSheetID uint) (dto.CorrectionResponse, error) {
	sheet, err := s.sheets.GetByID(ctx, answerSheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CorrectionResponse{}, ErrAnswerSheetNotFound
		}

		return dto.CorrectionResponse{}, err
	}

	if sheet.Status != models.AnswerSheetStatusFinished {
		return dto.CorrectionResponse{}, ErrSheetNotFinished
	}
	if sheet.Score != nil {
		return dto.CorrectionResponse{}, ErrAlreadyCorrected
	}

	exam, err := s.exams.GetByID(ctx, sheet.ExamID, repository.ExamRelations{Sections: true, Questions: true})
	if err != nil {
		return dto.CorrectionResponse{}, err
	}

	input := ai.CorrectionInput{ExamTitle: exam.Title, Answers: string(sheet.Answers)}
	for _, section := range exam.Sections {
		for _, question := range section.Questions {
			item := ai.CorrectionQuestion{
				Statement: question.Statement,
				Type:      string(question.Type),
				Weight:    question.Weight,
			}
			for _, criterion := range question.Rubric {
				var bands models.RubricBands
				if err := json.Unmarshal(criterion.Bands, &bands); err != nil {
					s.logger.Warn().Err(err).Uint("criterion_id", criterion.ID).Msg("rubric bands unreadable, correcting without band text")
				}
				item.Rubric = append(item.Rubric, ai.GeneratedCriterion{
					Title:     criterion.Title,
					Weight:    criterion.Weight,
					MaxText:   bands.Max.Rationale,
					AvgText:   bands.Avg.Rationale,
					MinText:   bands.Min.Rationale,
					MaxPoints: bands.Max.Max,
				})
			}
			input.Questions = append(input.Questions, item)
		}
	}

	outcome, err := s.corrector.Correct(ctx, input)
	if err != nil {
		return dto.CorrectionResponse{}, err
	}

	score := schedule.Fixed2(outcome.Score)
	correctedAt := s.now()

	sheet.Score = &score
	sheet.Feedback = outcome.Feedback
	sheet.CorrectionAt = &correctedAt
	if outcome.Raw != nil {
		sheet.Raw = datatypes.JSONMap(outcome.Raw)
	}
	if err := s.sheets.Update(ctx, &sheet); err != nil {
		return dto.CorrectionResponse{}, err
	}

	invitation, err := s.repo.GetByID(ctx, sheet.InvitationID)
	if err == nil {
		invitation.Score = &score
		if err := s.repo.Update(ctx, &invitation); err != nil {
			s.logger.Warn().Err(err).Uint("invitation_id", invitation.ID).Msg("invitation score update failed")
		}
	}

	s.invalidateCandidates(ctx, sheet.ExamID)

	if s.notifier != nil {
		message := fmt.Sprintf("Correction ready for %s: score %.2f", exam.Title, score)
		if err := s.notifier.NotifyUser(ctx, exam.OwnerID, "Correction finished", message); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", exam.OwnerID).Msg("correction notification failed")
		}
	}

	s.logger.Info().Uint("answer_sheet_id", sheet.ID).Float64("score", score).Msg("correction generated")

	return dto.CorrectionResponse{
		AnswerSheetID: sheet.ID,
		Score:         score,
		Feedback:      outcome.Feedback,
		GeneratedAt:   correctedAt,
	}, nil
}

func (s *invitationService) invalidateCandidates(ctx context.Context, examID uint) {
	if s.cache == nil {
		return
	}
	key := fmt.Sprintf(candidateCacheKeyFormat, examID)
	if err := s.cache.Del(ctx, key).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("candidate cache invalidation failed")
	}
}
