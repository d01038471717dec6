package dto

import (
	"time"

	"github.com/provaboard/prova-api/internal/models"
)

// InvitationSendRequest is the batch-invite payload: a list of candidate
// emails and how many hours the invites stay valid.
type InvitationSendRequest struct {
	Emails          []string `json:"emails" validate:"required,min=1,dive,email"`
	ExpirationHours int      `json:"expiration_hours" validate:"required,gt=0"`
}

// CandidateResponse is one invited candidate and their progress.
type CandidateResponse struct {
	ID            uint      `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Logo          string    `json:"logo"`
	Status        string    `json:"status"`
	Score         *float64  `json:"score"`
	AnswerSheetID *uint     `json:"answer_sheet_id"`
	InvitedAt     time.Time `json:"invited_at"`
}

// NewCandidateResponse converts a model into a DTO.
func NewCandidateResponse(model models.Invitation) CandidateResponse {
	return CandidateResponse{
		ID:            model.ID,
		Email:         model.Email,
		Name:          model.Name,
		Logo:          model.Logo,
		Status:        string(model.Status),
		Score:         model.Score,
		AnswerSheetID: model.AnswerSheetID,
		InvitedAt:     model.CreatedAt,
	}
}

// NewCandidateResponseSlice converts a slice of models into DTOs.
func NewCandidateResponseSlice(invitations []models.Invitation) []CandidateResponse {
	responses := make([]CandidateResponse, 0, len(invitations))
	for _, invitation := range invitations {
		responses = append(responses, NewCandidateResponse(invitation))
	}

	return responses
}

// CorrectionResponse is the outcome of AI answer-sheet correction.
type CorrectionResponse struct {
	AnswerSheetID uint      `json:"answer_sheet_id"`
	Score         float64   `json:"score"`
	Feedback      string    `json:"feedback"`
	GeneratedAt   time.Time `json:"generated_at"`
}
