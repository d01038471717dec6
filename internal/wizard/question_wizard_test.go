package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/provaboard/prova-api/internal/models"
)

type memoryQuestionStore struct {
	creates int
	nextID  uint
}

func (m *memoryQuestionStore) Create(_ context.Context, _ uint, _ QuestionConfig, _ QuestionDraft) (uint, error) {
	m.creates++
	m.nextID++
	return m.nextID, nil
}

type stubDrafter struct {
	draft QuestionDraft
	err   error
	calls int
}

func (s *stubDrafter) Draft(_ context.Context, _ string, _ QuestionConfig) (QuestionDraft, error) {
	s.calls++
	return s.draft, s.err
}

func mcqDraft() QuestionDraft {
	return QuestionDraft{
		Statement: "What does ACID stand for?",
		Options: []OptionDraft{
			{Description: "Atomicity, Consistency, Isolation, Durability", Correct: true},
			{Description: "Availability, Consistency, Isolation, Durability"},
		},
	}
}

func TestQuestionWizardManualFlow(t *testing.T) {
	store := &memoryQuestionStore{}
	w := NewQuestionWizard(store, nil)

	require.NoError(t, w.Configure(QuestionConfig{Type: models.QuestionTypeMultipleChoice, Weight: 0.2}))
	require.NoError(t, w.DraftManually(mcqDraft()))
	require.NoError(t, w.Submit(context.Background(), 7))

	require.Equal(t, 1, store.creates)
	id, err := w.QuestionID()
	require.NoError(t, err)
	require.NotZero(t, id)
}

func TestQuestionWizardAIFlowAllowsRevision(t *testing.T) {
	store := &memoryQuestionStore{}
	drafter := &stubDrafter{draft: QuestionDraft{
		Statement: "Explain goroutine scheduling.",
		Rubric:    []CriterionDraft{{Title: "Depth", Weight: 1}},
	}}
	w := NewQuestionWizard(store, drafter)

	require.NoError(t, w.Configure(QuestionConfig{Type: models.QuestionTypeText, Weight: 0.3}))
	require.NoError(t, w.DraftWithAI(context.Background(), "go concurrency question"))
	require.Equal(t, 1, drafter.calls)

	revised := w.Draft()
	revised.Statement = "Explain how the Go scheduler multiplexes goroutines."
	require.NoError(t, w.Revise(revised))

	require.NoError(t, w.Submit(context.Background(), 3))
	require.Equal(t, revised.Statement, w.Draft().Statement)
}

func TestQuestionWizardDrafterFailureKeepsPhase(t *testing.T) {
	drafter := &stubDrafter{err: errors.New("model unavailable")}
	w := NewQuestionWizard(&memoryQuestionStore{}, drafter)

	require.NoError(t, w.Configure(QuestionConfig{Type: models.QuestionTypeChallenge, Weight: 0.5}))
	require.Error(t, w.DraftWithAI(context.Background(), "anything"))
	require.Equal(t, QuestionPhaseDraft, w.Phase())
}

func TestQuestionWizardMultipleChoiceNeedsOneCorrectOption(t *testing.T) {
	store := &memoryQuestionStore{}
	w := NewQuestionWizard(store, nil)

	require.NoError(t, w.Configure(QuestionConfig{Type: models.QuestionTypeMultipleChoice, Weight: 0.2}))

	draft := mcqDraft()
	draft.Options[0].Correct = false
	require.NoError(t, w.DraftManually(draft))

	require.ErrorIs(t, w.Submit(context.Background(), 1), ErrNoCorrectOption)
	require.Equal(t, 0, store.creates)

	// Two correct options are just as invalid.
	draft = mcqDraft()
	draft.Options[1].Correct = true
	require.NoError(t, w.Revise(draft))
	require.ErrorIs(t, w.Submit(context.Background(), 1), ErrNoCorrectOption)
	require.Equal(t, 0, store.creates)
}

func TestQuestionWizardOpenEndedNeedsRubric(t *testing.T) {
	store := &memoryQuestionStore{}
	w := NewQuestionWizard(store, nil)

	require.NoError(t, w.Configure(QuestionConfig{Type: models.QuestionTypeProgramming, Weight: 0.4}))
	require.NoError(t, w.DraftManually(QuestionDraft{Statement: "Implement an LRU cache."}))

	require.ErrorIs(t, w.Submit(context.Background(), 1), ErrNoRubricCriteria)
	require.Equal(t, 0, store.creates)
}

func TestQuestionWizardRejectsInvalidConfiguration(t *testing.T) {
	w := NewQuestionWizard(&memoryQuestionStore{}, nil)

	require.ErrorIs(t, w.Configure(QuestionConfig{Type: "essay", Weight: 0.2}), ErrMissingRequiredFields)
	require.ErrorIs(t, w.Configure(QuestionConfig{Type: models.QuestionTypeText, Weight: 0}), ErrMissingRequiredFields)
	require.Equal(t, QuestionPhaseConfigure, w.Phase())
}
