package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/provaboard/prova-api/internal/dto"
	"github.com/provaboard/prova-api/pkg/ai"
)

var ErrNoSuggestion = errors.New("no suggestion available yet")

// SuggestionService debounces description suggestions: the dashboard fires a
// trigger on every keystroke of the job title/level pair, but only the last
// pair before the quiet period reaches the AI.
type SuggestionService interface {
	Trigger(ctx context.Context, userID uint, payload dto.SuggestionTriggerRequest) error
	Latest(userID uint) (dto.SuggestionResponse, error)
}

type pendingSuggestion struct {
	timer    *time.Timer
	jobTitle string
	jobLevel string
}

type suggestionService struct {
	suggester ai.Suggester
	delay     time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending map[uint]*pendingSuggestion
	latest  map[uint]dto.SuggestionResponse
}

// NewSuggestionService builds a debounced suggestion service. delay is the
// quiet period before the AI is consulted.
func NewSuggestionService(suggester ai.Suggester, delay time.Duration, validate *validator.Validate, logger zerolog.Logger) SuggestionService {
	return &suggestionService{
		suggester: suggester,
		delay:     delay,
		validator: validate,
		logger:    logger.With().Str("component", "suggestion_service").Logger(),
		now:       time.Now,
		pending:   make(map[uint]*pendingSuggestion),
		latest:    make(map[uint]dto.SuggestionResponse),
	}
}

// Trigger records the latest title/level pair and re-arms the user's timer.
// The AI call runs after the quiet period, detached from the request context.
func (s *suggestionService) Trigger(ctx context.Context, userID uint, payload dto.SuggestionTriggerRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.pending[userID]; ok {
		entry.timer.Stop()
		entry.jobTitle = payload.JobTitle
		entry.jobLevel = payload.JobLevel
		entry.timer.Reset(s.delay)
		return nil
	}

	entry := &pendingSuggestion{jobTitle: payload.JobTitle, jobLevel: payload.JobLevel}
	entry.timer = time.AfterFunc(s.delay, func() { s.fire(userID) })
	s.pending[userID] = entry

	return nil
}

func (s *suggestionService) fire(userID uint) {
	s.mu.Lock()
	entry, ok := s.pending[userID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, userID)
	jobTitle, jobLevel := entry.jobTitle, entry.jobLevel
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	description, err := s.suggester.SuggestDescription(ctx, jobTitle, jobLevel)
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("description suggestion failed")
		return
	}

	s.mu.Lock()
	s.latest[userID] = dto.SuggestionResponse{
		JobTitle:    jobTitle,
		JobLevel:    jobLevel,
		Description: description,
		GeneratedAt: s.now(),
	}
	s.mu.Unlock()

	s.logger.Info().Uint("user_id", userID).Str("job_title", jobTitle).Msg("description suggested")
}

// Latest returns the most recent suggestion produced for the user.
func (s *suggestionService) Latest(userID uint) (dto.SuggestionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	suggestion, ok := s.latest[userID]
	if !ok {
		return dto.SuggestionResponse{}, ErrNoSuggestion
	}

	return suggestion, nil
}
