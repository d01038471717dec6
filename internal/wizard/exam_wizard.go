// Package wizard drives the multi-step creation flows of the dashboard. The
// exam flow persists the entity right after its first step so later steps can
// patch it by id; abandoning the flow midway leaves a partially-populated exam
// in storage on purpose.
package wizard

import (
	"context"
	"errors"
)

// Stage tags whether the entity behind a wizard exists in storage yet.
type Stage int

const (
	StageDraft Stage = iota
	StagePersisted
	StageFinalized
)

// Exam creation steps: required core fields, optional metadata, done.
const (
	ExamStepCore = iota
	ExamStepExtras
	ExamStepDone
)

var (
	// ErrMissingRequiredFields is reported when a step is submitted without
	// its required fields; the wizard stays on the same step.
	ErrMissingRequiredFields = errors.New("required fields are missing or invalid")
	// ErrWrongStep is reported when an operation does not belong to the
	// wizard's current step.
	ErrWrongStep = errors.New("operation not valid for the current step")
	// ErrNotPersisted is reported when an id is requested before the entity
	// was created in storage.
	ErrNotPersisted = errors.New("entity has not been persisted yet")
)

// ExamCore holds the required fields collected by the first step.
type ExamCore struct {
	Title                 string
	JobLevel              string
	DurationHours         float64
	SubmissionWindowHours float64
}

// ExamExtras holds the optional metadata collected by the second step. Nil
// fields are left untouched by the patch.
type ExamExtras struct {
	Description *string
	ShowScore   *bool
	IsPublic    *bool
}

// ExamStore is the backend collaborator the wizard persists through.
type ExamStore interface {
	Create(ctx context.Context, core ExamCore) (uint, error)
	Patch(ctx context.Context, id uint, extras ExamExtras) error
}

// ExamWizard is the three-step exam creation flow.
type ExamWizard struct {
	store ExamStore
	step  int
	stage Stage
	id    uint
}

// NewExamWizard starts a flow at the required-fields step with nothing
// persisted.
func NewExamWizard(store ExamStore) *ExamWizard {
	return &ExamWizard{store: store, step: ExamStepCore, stage: StageDraft}
}

// Step returns the current step index.
func (w *ExamWizard) Step() int { return w.step }

// Stage returns the persistence stage of the exam behind the wizard.
func (w *ExamWizard) Stage() Stage { return w.stage }

// ExamID returns the persisted exam id. It fails while the wizard is still
// on the first step and nothing exists in storage.
func (w *ExamWizard) ExamID() (uint, error) {
	if w.stage == StageDraft {
		return 0, ErrNotPersisted
	}
	return w.id, nil
}

// SubmitCore validates the required fields and creates the exam immediately,
// so the remaining steps can patch it by id. Validation failures and store
// errors both keep the wizard on the first step; retrying is safe.
func (w *ExamWizard) SubmitCore(ctx context.Context, core ExamCore) error {
	if w.step != ExamStepCore {
		return ErrWrongStep
	}

	if core.Title == "" || core.DurationHours <= 0 || core.SubmissionWindowHours <= 0 {
		return ErrMissingRequiredFields
	}

	id, err := w.store.Create(ctx, core)
	if err != nil {
		return err
	}

	w.id = id
	w.stage = StagePersisted
	w.step = ExamStepExtras
	return nil
}

// SubmitExtras patches the persisted exam with the optional metadata and
// advances to the final step.
func (w *ExamWizard) SubmitExtras(ctx context.Context, extras ExamExtras) error {
	if w.step != ExamStepExtras {
		return ErrWrongStep
	}

	if err := w.store.Patch(ctx, w.id, extras); err != nil {
		return err
	}

	w.step = ExamStepDone
	w.stage = StageFinalized
	return nil
}

// Skip advances past the optional step without sending any patch.
func (w *ExamWizard) Skip() error {
	if w.step != ExamStepExtras {
		return ErrWrongStep
	}

	w.step = ExamStepDone
	w.stage = StageFinalized
	return nil
}
