package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryExamStore struct {
	creates int
	patches int
	exams   map[uint]ExamCore
	extras  map[uint]ExamExtras
	nextID  uint
	fail    error
}

func newMemoryExamStore() *memoryExamStore {
	return &memoryExamStore{exams: map[uint]ExamCore{}, extras: map[uint]ExamExtras{}, nextID: 1}
}

func (m *memoryExamStore) Create(_ context.Context, core ExamCore) (uint, error) {
	if m.fail != nil {
		return 0, m.fail
	}
	m.creates++
	id := m.nextID
	m.nextID++
	m.exams[id] = core
	return id, nil
}

func (m *memoryExamStore) Patch(_ context.Context, id uint, extras ExamExtras) error {
	if m.fail != nil {
		return m.fail
	}
	if _, ok := m.exams[id]; !ok {
		return errors.New("exam not found")
	}
	m.patches++
	m.extras[id] = extras
	return nil
}

func validCore() ExamCore {
	return ExamCore{Title: "Backend Engineer", JobLevel: "senior", DurationHours: 4, SubmissionWindowHours: 72}
}

func TestExamWizardPersistsAfterFirstStep(t *testing.T) {
	store := newMemoryExamStore()
	w := NewExamWizard(store)

	require.Equal(t, ExamStepCore, w.Step())
	_, err := w.ExamID()
	require.ErrorIs(t, err, ErrNotPersisted)

	require.NoError(t, w.SubmitCore(context.Background(), validCore()))

	// The exam exists in storage even if the flow is abandoned here.
	id, err := w.ExamID()
	require.NoError(t, err)
	require.Contains(t, store.exams, id)
	require.Equal(t, ExamStepExtras, w.Step())
	require.Equal(t, StagePersisted, w.Stage())
}

func TestExamWizardValidationKeepsStep(t *testing.T) {
	store := newMemoryExamStore()
	w := NewExamWizard(store)

	err := w.SubmitCore(context.Background(), ExamCore{Title: "", DurationHours: 4, SubmissionWindowHours: 72})
	require.ErrorIs(t, err, ErrMissingRequiredFields)
	require.Equal(t, ExamStepCore, w.Step())
	require.Equal(t, 0, store.creates)

	err = w.SubmitCore(context.Background(), ExamCore{Title: "x", DurationHours: 0, SubmissionWindowHours: 72})
	require.ErrorIs(t, err, ErrMissingRequiredFields)
	require.Equal(t, 0, store.creates)

	// Retry with valid fields succeeds from the same step.
	require.NoError(t, w.SubmitCore(context.Background(), validCore()))
	require.Equal(t, 1, store.creates)
}

func TestExamWizardStoreFailureKeepsDraftStage(t *testing.T) {
	store := newMemoryExamStore()
	store.fail = errors.New("backend down")
	w := NewExamWizard(store)

	err := w.SubmitCore(context.Background(), validCore())
	require.Error(t, err)
	require.Equal(t, ExamStepCore, w.Step())
	require.Equal(t, StageDraft, w.Stage())

	store.fail = nil
	require.NoError(t, w.SubmitCore(context.Background(), validCore()))
}

func TestExamWizardSkipSendsNoPatch(t *testing.T) {
	store := newMemoryExamStore()
	w := NewExamWizard(store)
	require.NoError(t, w.SubmitCore(context.Background(), validCore()))

	require.NoError(t, w.Skip())
	require.Equal(t, ExamStepDone, w.Step())
	require.Equal(t, StageFinalized, w.Stage())
	require.Equal(t, 0, store.patches)
}

func TestExamWizardExtrasPatchesByID(t *testing.T) {
	store := newMemoryExamStore()
	w := NewExamWizard(store)
	require.NoError(t, w.SubmitCore(context.Background(), validCore()))

	description := "Covers API design and data modelling."
	isPublic := true
	require.NoError(t, w.SubmitExtras(context.Background(), ExamExtras{Description: &description, IsPublic: &isPublic}))

	require.Equal(t, 1, store.patches)
	id, err := w.ExamID()
	require.NoError(t, err)
	require.Equal(t, description, *store.extras[id].Description)
	require.Equal(t, ExamStepDone, w.Step())
}

func TestExamWizardRejectsOutOfOrderOperations(t *testing.T) {
	store := newMemoryExamStore()
	w := NewExamWizard(store)

	require.ErrorIs(t, w.Skip(), ErrWrongStep)
	require.ErrorIs(t, w.SubmitExtras(context.Background(), ExamExtras{}), ErrWrongStep)

	require.NoError(t, w.SubmitCore(context.Background(), validCore()))
	require.ErrorIs(t, w.SubmitCore(context.Background(), validCore()), ErrWrongStep)
}
