package dto

import (
	"time"

	"github.com/provaboard/prova-api/internal/models"
)

// ExamCreateRequest is the payload of the wizard's first step: only the
// required core fields. The exam is created immediately so the optional
// second step can patch it by id.
type ExamCreateRequest struct {
	Title                 string  `json:"title" validate:"required,min=3"`
	JobLevel              string  `json:"job_level" validate:"omitempty,max=64"`
	DurationHours         float64 `json:"duration_hours" validate:"required,gt=0"`
	SubmissionWindowHours float64 `json:"submission_window_hours" validate:"required,gt=0"`
}

// ExamUpdateRequest is the partial-update payload. Nil fields are untouched.
type ExamUpdateRequest struct {
	Title                 *string  `json:"title" validate:"omitempty,min=3"`
	JobLevel              *string  `json:"job_level" validate:"omitempty,max=64"`
	Description           *string  `json:"description"`
	DurationHours         *float64 `json:"duration_hours" validate:"omitempty,gt=0"`
	SubmissionWindowHours *float64 `json:"submission_window_hours" validate:"omitempty,gt=0"`
	ShowScore             *bool    `json:"show_score"`
	IsPublic              *bool    `json:"is_public"`
}

// ExamResponse is the serialized representation returned to API clients.
type ExamResponse struct {
	ID                    uint              `json:"id"`
	Title                 string            `json:"title"`
	JobLevel              string            `json:"job_level"`
	Description           string            `json:"description"`
	DurationHours         float64           `json:"duration_hours"`
	SubmissionWindowHours float64           `json:"submission_window_hours"`
	ShowScore             bool              `json:"show_score"`
	IsPublic              bool              `json:"is_public"`
	Status                string            `json:"status"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
	Sections              []SectionResponse `json:"sections,omitempty"`
}

// NewExamResponse converts a model into a DTO.
func NewExamResponse(model models.Exam) ExamResponse {
	response := ExamResponse{
		ID:                    model.ID,
		Title:                 model.Title,
		JobLevel:              model.JobLevel,
		Description:           model.Description,
		DurationHours:         model.DurationHours,
		SubmissionWindowHours: model.SubmissionWindowHours,
		ShowScore:             model.ShowScore,
		IsPublic:              model.IsPublic,
		Status:                string(model.Status),
		CreatedAt:             model.CreatedAt,
		UpdatedAt:             model.UpdatedAt,
	}

	for _, section := range model.Sections {
		response.Sections = append(response.Sections, NewSectionResponse(section))
	}

	return response
}

// NewExamResponseSlice converts a slice of models into DTOs.
func NewExamResponseSlice(exams []models.Exam) []ExamResponse {
	responses := make([]ExamResponse, 0, len(exams))
	for _, exam := range exams {
		responses = append(responses, NewExamResponse(exam))
	}

	return responses
}

// StatusSwitchResponse reports the outcome of a status transition. When a
// published exam with outstanding answer sheets is archived the response
// carries how many days remain before all pending sheets expire.
type StatusSwitchResponse struct {
	ID            uint   `json:"id"`
	Status        string `json:"status"`
	PendingSheets int64  `json:"pending_sheets,omitempty"`
	DaysRemaining int    `json:"days_remaining,omitempty"`
}
