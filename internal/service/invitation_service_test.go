package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/provaboard/prova-api/internal/dto"
	"github.com/provaboard/prova-api/internal/models"
	"github.com/provaboard/prova-api/pkg/ai"
)

type correctorStub struct {
	calls  int32
	delay  time.Duration
	result ai.CorrectionResult
	err    error

	mu        sync.Mutex
	lastInput ai.CorrectionInput
}

func (c *correctorStub) Correct(ctx context.Context, input ai.CorrectionInput) (ai.CorrectionResult, error) {
	atomic.AddInt32(&c.calls, 1)
	c.mu.Lock()
	c.lastInput = input
	c.mu.Unlock()
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	return c.result, c.err
}

type notifierStub struct {
	mu       sync.Mutex
	messages []string
}

func (n *notifierStub) NotifyUser(ctx context.Context, userID uint, title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

func TestInvitationServiceSendRequiresAcceptingExam(t *testing.T) {
	exams := newExamRepoStub(models.Exam{ID: 1, Status: models.ExamStatusDraft})
	invitations := newInvitationRepoStub()
	svc := NewInvitationService(invitations, exams, newSheetRepoStub(), &correctorStub{}, nil, nil, time.Minute, testValidator(), testLogger())

	_, err := svc.SendInvitations(context.Background(), 1, dto.InvitationSendRequest{
		Emails:          []string{"dev@example.com"},
		ExpirationHours: 48,
	})
	require.ErrorIs(t, err, ErrExamNotAccepting)
	require.Empty(t, invitations.invitations)
}

func TestInvitationServiceSendCreatesPendingBatch(t *testing.T) {
	exams := newExamRepoStub(models.Exam{ID: 1, Status: models.ExamStatusPublished})
	invitations := newInvitationRepoStub()
	svc := NewInvitationService(invitations, exams, newSheetRepoStub(), &correctorStub{}, nil, nil, time.Minute, testValidator(), testLogger())

	candidates, err := svc.SendInvitations(context.Background(), 1, dto.InvitationSendRequest{
		Emails:          []string{"a@example.com", "b@example.com"},
		ExpirationHours: 72,
	})
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	for _, candidate := range candidates {
		require.Equal(t, string(models.InvitationStatusPending), candidate.Status)
		require.NotZero(t, candidate.ID)
	}
}

func TestInvitationServiceSendValidatesEmails(t *testing.T) {
	exams := newExamRepoStub(models.Exam{ID: 1, Status: models.ExamStatusPublished})
	invitations := newInvitationRepoStub()
	svc := NewInvitationService(invitations, exams, newSheetRepoStub(), &correctorStub{}, nil, nil, time.Minute, testValidator(), testLogger())

	_, err := svc.SendInvitations(context.Background(), 1, dto.InvitationSendRequest{
		Emails:          []string{"not-an-email"},
		ExpirationHours: 24,
	})
	require.Error(t, err)
	require.Empty(t, invitations.invitations)
}

func TestInvitationServiceResendOnlyExpired(t *testing.T) {
	invitations := newInvitationRepoStub(
		models.Invitation{ID: 1, ExamID: 1, Email: "a@example.com", Status: models.InvitationStatusPending},
		models.Invitation{ID: 2, ExamID: 1, Email: "b@example.com", Status: models.InvitationStatusExpired},
	)
	svc := NewInvitationService(invitations, newExamRepoStub(), newSheetRepoStub(), &correctorStub{}, nil, nil, time.Minute, testValidator(), testLogger())

	_, err := svc.Resend(context.Background(), 1)
	require.ErrorIs(t, err, ErrInviteNotExpired)

	resent, err := svc.Resend(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, string(models.InvitationStatusPending), resent.Status)

	_, err = svc.Resend(context.Background(), 99)
	require.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestInvitationServiceFetchCandidatesCaches(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	invitations := newInvitationRepoStub(models.Invitation{ID: 1, ExamID: 1, Email: "a@example.com", Status: models.InvitationStatusPending})
	svc := NewInvitationService(invitations, newExamRepoStub(), newSheetRepoStub(), &correctorStub{}, nil, redisClient, time.Minute, testValidator(), testLogger())

	first, err := svc.FetchCandidates(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// mutate the store directly; a cached copy keeps serving the old list
	invitations.invitations[2] = models.Invitation{ID: 2, ExamID: 1, Email: "b@example.com"}

	cached, err := svc.FetchCandidates(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, cached, 1)

	// writes through the service drop the cache
	exams := newExamRepoStub(models.Exam{ID: 1, Status: models.ExamStatusPublished})
	svc = NewInvitationService(invitations, exams, newSheetRepoStub(), &correctorStub{}, nil, redisClient, time.Minute, testValidator(), testLogger())
	_, err = svc.SendInvitations(context.Background(), 1, dto.InvitationSendRequest{
		Emails:          []string{"c@example.com"},
		ExpirationHours: 24,
	})
	require.NoError(t, err)

	fresh, err := svc.FetchCandidates(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, fresh, 3)
}

func correctionFixtures() (*invitationRepoStub, *examRepoStub, *sheetRepoStub) {
	exams := newExamRepoStub(models.Exam{
		ID:      1,
		Title:   "Backend Screening",
		OwnerID: 9,
		Status:  models.ExamStatusLive,
		Sections: []models.Section{{
			ID:     1,
			ExamID: 1,
			Questions: []models.Question{{
				ID:        1,
				Type:      models.QuestionTypeText,
				Statement: "Explain locking",
				Weight:    1,
			}},
		}},
	})
	sheetID := uint(5)
	invitations := newInvitationRepoStub(models.Invitation{
		ID: 3, ExamID: 1, Email: "a@example.com",
		Status: models.InvitationStatusFinished, AnswerSheetID: &sheetID,
	})
	sheets := newSheetRepoStub(models.AnswerSheet{
		ID: 5, ExamID: 1, InvitationID: 3,
		Status:  models.AnswerSheetStatusFinished,
		Answers: datatypes.JSON([]byte(`{"1":"pessimistic vs optimistic"}`)),
	})
	return invitations, exams, sheets
}

func TestInvitationServiceGenerateCorrection(t *testing.T) {
	invitations, exams, sheets := correctionFixtures()
	corrector := &correctorStub{result: ai.CorrectionResult{Score: 0.875, Feedback: "Solid answer"}}
	notifier := &notifierStub{}
	svc := NewInvitationService(invitations, exams, sheets, corrector, notifier, nil, time.Minute, testValidator(), testLogger())

	result, err := svc.GenerateCorrection(context.Background(), 5)
	require.NoError(t, err)
	require.InDelta(t, 0.88, result.Score, 0.0001)
	require.Equal(t, "Solid answer", result.Feedback)
	require.False(t, result.GeneratedAt.IsZero())

	sheet, err := sheets.GetByID(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, sheet.Score)
	require.InDelta(t, 0.88, *sheet.Score, 0.0001)
	require.NotNil(t, sheet.CorrectionAt)

	invitation, err := invitations.GetByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, invitation.Score)

	require.Len(t, notifier.messages, 1)
	require.Contains(t, notifier.messages[0], "Backend Screening")
}

func TestInvitationServiceGenerateCorrectionToleratesBrokenRubricBands(t *testing.T) {
	invitations, exams, sheets := correctionFixtures()
	exam := exams.exams[1]
	exam.Sections[0].Questions[0].Rubric = []models.RubricCriterion{
		{ID: 1, QuestionID: 1, Title: "Clarity", Weight: 0.5, Bands: datatypes.JSON([]byte(`not-json`))},
		{ID: 2, QuestionID: 1, Title: "Depth", Weight: 0.5, Bands: datatypes.JSON([]byte(`{"max":{"rationale":"complete","min":0.8,"max":1}}`))},
	}
	exams.exams[1] = exam

	corrector := &correctorStub{result: ai.CorrectionResult{Score: 0.7}}
	svc := NewInvitationService(invitations, exams, sheets, corrector, nil, nil, time.Minute, testValidator(), testLogger())

	result, err := svc.GenerateCorrection(context.Background(), 5)
	require.NoError(t, err)
	require.InDelta(t, 0.7, result.Score, 0.0001)

	require.Len(t, corrector.lastInput.Questions, 1)
	rubric := corrector.lastInput.Questions[0].Rubric
	require.Len(t, rubric, 2)
	require.Equal(t, "Clarity", rubric[0].Title)
	require.Empty(t, rubric[0].MaxText)
	require.Equal(t, "complete", rubric[1].MaxText)
}

func TestInvitationServiceGenerateCorrectionGates(t *testing.T) {
	invitations, exams, sheets := correctionFixtures()
	corrector := &correctorStub{result: ai.CorrectionResult{Score: 0.5}}
	svc := NewInvitationService(invitations, exams, sheets, corrector, nil, nil, time.Minute, testValidator(), testLogger())

	inProgress := sheets.sheets[5]
	inProgress.Status = models.AnswerSheetStatusInProgress
	sheets.sheets[5] = inProgress

	_, err := svc.GenerateCorrection(context.Background(), 5)
	require.ErrorIs(t, err, ErrSheetNotFinished)

	score := 0.7
	done := sheets.sheets[5]
	done.Status = models.AnswerSheetStatusFinished
	done.Score = &score
	sheets.sheets[5] = done

	_, err = svc.GenerateCorrection(context.Background(), 5)
	require.ErrorIs(t, err, ErrAlreadyCorrected)

	_, err = svc.GenerateCorrection(context.Background(), 99)
	require.ErrorIs(t, err, ErrAnswerSheetNotFound)

	require.Zero(t, atomic.LoadInt32(&corrector.calls))
}

func TestInvitationServiceGenerateCorrectionCollapsesConcurrentCalls(t *testing.T) {
	invitations, exams, sheets := correctionFixtures()
	corrector := &correctorStub{delay: 50 * time.Millisecond, result: ai.CorrectionResult{Score: 0.6, Feedback: "ok"}}
	svc := NewInvitationService(invitations, exams, sheets, corrector, nil, nil, time.Minute, testValidator(), testLogger())

	var wg sync.WaitGroup
	results := make([]dto.CorrectionResponse, 4)
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.GenerateCorrection(context.Background(), 5)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		require.NoError(t, errs[i])
		require.InDelta(t, 0.6, results[i].Score, 0.0001)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&corrector.calls))
}
