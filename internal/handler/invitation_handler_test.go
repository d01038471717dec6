package handler_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/provaboard/prova-api/internal/dto"
	"github.com/provaboard/prova-api/internal/handler"
	"github.com/provaboard/prova-api/internal/service"
)

type mockInvitationService struct {
	lastExamID  uint
	lastSheetID uint
	candidates  []dto.CandidateResponse
	correction  dto.CorrectionResponse
	err         error
}

func (m *mockInvitationService) SendInvitations(_ context.Context, examID uint, _ dto.InvitationSendRequest) ([]dto.CandidateResponse, error) {
	m.lastExamID = examID
	return m.candidates, m.err
}

func (m *mockInvitationService) Resend(_ context.Context, _ uint) (dto.CandidateResponse, error) {
	if m.err != nil {
		return dto.CandidateResponse{}, m.err
	}
	if len(m.candidates) > 0 {
		return m.candidates[0], nil
	}
	return dto.CandidateResponse{}, nil
}

func (m *mockInvitationService) FetchCandidates(_ context.Context, examID uint) ([]dto.CandidateResponse, error) {
	m.lastExamID = examID
	return m.candidates, m.err
}

func (m *mockInvitationService) GenerateCorrection(_ context.Context, sheetID uint) (dto.CorrectionResponse, error) {
	m.lastSheetID = sheetID
	return m.correction, m.err
}

func newInvitationApp(svc service.InvitationService) *fiber.App {
	app := fiber.New()
	h := handler.NewInvitationHandler(svc, testLogger())
	h.RegisterExamRoutes(app.Group("/api/v1/exam"))
	h.RegisterInvitationRoutes(app.Group("/api/v1/examInvitation"))
	h.RegisterAnswerSheetRoutes(app.Group("/api/v1/answer-sheet"))
	return app
}

func TestInvitationHandler_SendInvitations(t *testing.T) {
	svc := &mockInvitationService{candidates: []dto.CandidateResponse{{ID: 1, Email: "a@example.com", Status: "pending"}}}
	app := newInvitationApp(svc)

	payload := []byte(`{"emails":["a@example.com"],"expiration_hours":48}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/exam/sendInvitations?id=7", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(7), svc.lastExamID)
}

func TestInvitationHandler_SendRejectsDraftExam(t *testing.T) {
	app := newInvitationApp(&mockInvitationService{err: service.ErrExamNotAccepting})

	payload := []byte(`{"emails":["a@example.com"],"expiration_hours":48}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/exam/sendInvitations?id=7", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "exam not published or live", body.Message)
}

func TestInvitationHandler_ResendOnlyExpired(t *testing.T) {
	app := newInvitationApp(&mockInvitationService{err: service.ErrInviteNotExpired})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/examInvitation/resend?id=3", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "invitation is not expired", body.Message)
}

func TestInvitationHandler_ResendAndCorrectionAcceptGet(t *testing.T) {
	svc := &mockInvitationService{
		candidates: []dto.CandidateResponse{{ID: 3, Status: "pending"}},
		correction: dto.CorrectionResponse{AnswerSheetID: 5, Score: 0.5},
	}
	app := newInvitationApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/examInvitation/resend?id=3", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/answer-sheet/generateEval?id=5", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(5), svc.lastSheetID)
}

func TestInvitationHandler_FetchCandidates(t *testing.T) {
	svc := &mockInvitationService{candidates: []dto.CandidateResponse{{ID: 1}, {ID: 2}}}
	app := newInvitationApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exam/fetchCandidates?id=7", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data []dto.CandidateResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data, 2)
}

func TestInvitationHandler_GenerateCorrection(t *testing.T) {
	svc := &mockInvitationService{correction: dto.CorrectionResponse{AnswerSheetID: 5, Score: 0.88, Feedback: "ok"}}
	app := newInvitationApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/answer-sheet/generateEval?id=5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(5), svc.lastSheetID)

	var body struct {
		Data dto.CorrectionResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.InDelta(t, 0.88, body.Data.Score, 0.0001)
}

func TestInvitationHandler_GenerateCorrectionConflicts(t *testing.T) {
	app := newInvitationApp(&mockInvitationService{err: service.ErrAlreadyCorrected})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/answer-sheet/generateEval?id=5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestInvitationHandler_GenerateCorrectionUnfinishedSheet(t *testing.T) {
	app := newInvitationApp(&mockInvitationService{err: service.ErrSheetNotFinished})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/answer-sheet/generateEval?id=5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "answer sheet not finished", body.Message)
}
