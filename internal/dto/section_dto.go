package dto

import (
	"time"

	"github.com/provaboard/prova-api/internal/models"
	"github.com/provaboard/prova-api/internal/schedule"
)

// SectionCreateRequest is the section authoring payload. Weight arrives as a
// percentage of the exam and duration as the "HH:MM" string the form edits.
type SectionCreateRequest struct {
	Name             string  `json:"name" validate:"required,min=2"`
	Description      string  `json:"description"`
	WeightPercent    float64 `json:"weight_percent" validate:"required,gt=0,lte=100"`
	Duration         string  `json:"duration" validate:"required"`
	StartDate        *string `json:"start_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ShuffleQuestions bool    `json:"shuffle_questions"`
	Proctored        bool    `json:"proctored"`
}

// SectionUpdateRequest is the in-place edit payload. Nil fields are untouched.
type SectionUpdateRequest struct {
	Name             *string  `json:"name" validate:"omitempty,min=2"`
	Description      *string  `json:"description"`
	WeightPercent    *float64 `json:"weight_percent" validate:"omitempty,gt=0,lte=100"`
	Duration         *string  `json:"duration"`
	StartDate        *string  `json:"start_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ShuffleQuestions *bool    `json:"shuffle_questions"`
	Proctored        *bool    `json:"proctored"`
}

// SectionResponse is the serialized representation returned to API clients.
type SectionResponse struct {
	ID               uint               `json:"id"`
	ExamID           uint               `json:"exam_id"`
	Name             string             `json:"name"`
	Description      string             `json:"description"`
	Weight           float64            `json:"weight"`
	DurationHours    float64            `json:"duration_hours"`
	DurationLabel    string             `json:"duration_label"`
	StartDate        *time.Time         `json:"start_date"`
	ShuffleQuestions bool               `json:"shuffle_questions"`
	Proctored        bool               `json:"proctored"`
	Questions        []QuestionResponse `json:"questions,omitempty"`
}

// NewSectionResponse converts a model into a DTO.
func NewSectionResponse(model models.Section) SectionResponse {
	response := SectionResponse{
		ID:               model.ID,
		ExamID:           model.ExamID,
		Name:             model.Name,
		Description:      model.Description,
		Weight:           model.Weight,
		DurationHours:    model.DurationHours,
		DurationLabel:    schedule.FormatHours(model.DurationHours),
		StartDate:        model.StartDate,
		ShuffleQuestions: model.ShuffleQuestions,
		Proctored:        model.Proctored,
	}

	for _, question := range model.Questions {
		response.Questions = append(response.Questions, NewQuestionResponse(question))
	}

	return response
}

// SectionBudgetResponse pairs a persisted section with the room left in the
// exam after it. Negative remainders mean over-allocation and are reported
// as-is rather than blocking the save.
type SectionBudgetResponse struct {
	Section           SectionResponse `json:"section"`
	RemainingWeight   float64         `json:"remaining_weight"`
	RemainingDuration float64         `json:"remaining_duration"`
	RemainingLabel    string          `json:"remaining_label"`
}

// NewSectionBudgetResponse builds the combined payload.
func NewSectionBudgetResponse(model models.Section, budget schedule.Budget) SectionBudgetResponse {
	return SectionBudgetResponse{
		Section:           NewSectionResponse(model),
		RemainingWeight:   budget.RemainingWeight,
		RemainingDuration: budget.RemainingDuration,
		RemainingLabel:    schedule.FormatHours(budget.RemainingDuration),
	}
}
