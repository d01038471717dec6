package wizard

import (
	"context"
	"errors"

	"github.com/provaboard/prova-api/internal/models"
)

// Question creation phases: configure type and weight, produce a draft
// (manually or through AI), review and submit.
const (
	QuestionPhaseConfigure = iota
	QuestionPhaseDraft
	QuestionPhaseReview
)

var (
	// ErrNoCorrectOption is reported when a multiple-choice draft is
	// submitted without exactly one option marked correct.
	ErrNoCorrectOption = errors.New("multiple choice question must mark exactly one correct option")
	// ErrNoRubricCriteria is reported when an open-ended draft is submitted
	// without at least one grading criterion.
	ErrNoRubricCriteria = errors.New("question must define at least one grading criterion")
)

// QuestionConfig holds the type and weight chosen in the first phase.
type QuestionConfig struct {
	Type   models.QuestionType
	Weight float64
}

// OptionDraft is one multiple-choice alternative before letters are assigned.
type OptionDraft struct {
	Description string
	Correct     bool
}

// CriterionDraft is one grading rubric criterion of a draft question.
type CriterionDraft struct {
	Title  string
	Weight float64
	Bands  models.RubricBands
}

// QuestionDraft is the editable question produced by the second phase.
type QuestionDraft struct {
	Statement  string
	Options    []OptionDraft
	Rubric     []CriterionDraft
	Tags       []string
	Difficulty int
	Shareable  bool
}

// Drafter produces a pre-filled draft from a free-form prompt.
type Drafter interface {
	Draft(ctx context.Context, prompt string, config QuestionConfig) (QuestionDraft, error)
}

// QuestionStore persists a finished draft.
type QuestionStore interface {
	Create(ctx context.Context, sectionID uint, config QuestionConfig, draft QuestionDraft) (uint, error)
}

// QuestionWizard is the three-phase question creation flow.
type QuestionWizard struct {
	store   QuestionStore
	drafter Drafter
	phase   int
	stage   Stage
	config  QuestionConfig
	draft   QuestionDraft
	id      uint
}

// NewQuestionWizard starts a flow at the configuration phase.
func NewQuestionWizard(store QuestionStore, drafter Drafter) *QuestionWizard {
	return &QuestionWizard{store: store, drafter: drafter, phase: QuestionPhaseConfigure, stage: StageDraft}
}

// Phase returns the current phase index.
func (w *QuestionWizard) Phase() int { return w.phase }

// Stage returns the persistence stage of the question behind the wizard.
func (w *QuestionWizard) Stage() Stage { return w.stage }

// QuestionID returns the persisted question id once the flow has submitted.
func (w *QuestionWizard) QuestionID() (uint, error) {
	if w.stage != StagePersisted {
		return 0, ErrNotPersisted
	}
	return w.id, nil
}

// Draft returns the current editable draft.
func (w *QuestionWizard) Draft() QuestionDraft { return w.draft }

// Configure records the question type and weight and advances to drafting.
func (w *QuestionWizard) Configure(config QuestionConfig) error {
	if w.phase != QuestionPhaseConfigure {
		return ErrWrongStep
	}

	if !models.ValidQuestionType(string(config.Type)) || config.Weight <= 0 {
		return ErrMissingRequiredFields
	}

	w.config = config
	w.phase = QuestionPhaseDraft
	return nil
}

// DraftManually accepts a hand-written draft and advances to review.
func (w *QuestionWizard) DraftManually(draft QuestionDraft) error {
	if w.phase != QuestionPhaseDraft {
		return ErrWrongStep
	}

	w.draft = draft
	w.phase = QuestionPhaseReview
	return nil
}

// DraftWithAI asks the drafter for a pre-filled draft and advances to review.
// A drafter failure keeps the wizard on the drafting phase.
func (w *QuestionWizard) DraftWithAI(ctx context.Context, prompt string) error {
	if w.phase != QuestionPhaseDraft {
		return ErrWrongStep
	}

	draft, err := w.drafter.Draft(ctx, prompt, w.config)
	if err != nil {
		return err
	}

	w.draft = draft
	w.phase = QuestionPhaseReview
	return nil
}

// Revise replaces the draft while staying in review, so users can edit an AI
// suggestion before submitting.
func (w *QuestionWizard) Revise(draft QuestionDraft) error {
	if w.phase != QuestionPhaseReview {
		return ErrWrongStep
	}

	w.draft = draft
	return nil
}

// Submit validates the draft against the type-specific invariants and, only
// then, persists it. Validation failures never reach the store.
func (w *QuestionWizard) Submit(ctx context.Context, sectionID uint) error {
	if w.phase != QuestionPhaseReview {
		return ErrWrongStep
	}

	if err := ValidateDraft(w.config.Type, w.draft); err != nil {
		return err
	}

	id, err := w.store.Create(ctx, sectionID, w.config, w.draft)
	if err != nil {
		return err
	}

	w.id = id
	w.stage = StagePersisted
	return nil
}

// ValidateDraft enforces the type-specific question invariants: multiple
// choice needs exactly one correct option, everything else needs at least one
// rubric criterion, and a statement is always required.
func ValidateDraft(questionType models.QuestionType, draft QuestionDraft) error {
	if draft.Statement == "" {
		return ErrMissingRequiredFields
	}

	if questionType == models.QuestionTypeMultipleChoice {
		correct := 0
		for _, option := range draft.Options {
			if option.Correct {
				correct++
			}
		}
		if len(draft.Options) == 0 || correct != 1 {
			return ErrNoCorrectOption
		}
		return nil
	}

	if len(draft.Rubric) == 0 {
		return ErrNoRubricCriteria
	}

	return nil
}
