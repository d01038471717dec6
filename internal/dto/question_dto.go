package dto

import (
	"encoding/json"
	"time"

	"github.com/provaboard/prova-api/internal/models"
)

// QuestionOptionRequest is one multiple-choice alternative; letters are
// assigned server-side as consecutive letters starting at "a".
type QuestionOptionRequest struct {
	Description string `json:"description" validate:"required"`
	Correct     bool   `json:"correct"`
}

// RubricBandRequest mirrors one scoring band of a criterion.
type RubricBandRequest struct {
	Rationale string  `json:"rationale"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

// RubricCriterionRequest is one grading criterion of the authoring payload.
type RubricCriterionRequest struct {
	Title   string            `json:"title" validate:"required"`
	Weight  float64           `json:"weight" validate:"required,gt=0"`
	MaxBand RubricBandRequest `json:"max"`
	AvgBand RubricBandRequest `json:"avg"`
	MinBand RubricBandRequest `json:"min"`
}

// QuestionCreateRequest is the manual question authoring payload.
type QuestionCreateRequest struct {
	Type       string                   `json:"type" validate:"required,oneof=multipleChoice text challenge programming"`
	Statement  string                   `json:"statement" validate:"required,min=3"`
	Tags       []string                 `json:"tags"`
	Difficulty int                      `json:"difficulty" validate:"omitempty,min=1,max=5"`
	Shareable  bool                     `json:"shareable"`
	Options    []QuestionOptionRequest  `json:"options" validate:"dive"`
	Rubric     []RubricCriterionRequest `json:"rubric" validate:"dive"`
}

// QuestionGenerateRequest asks the AI for a pre-filled draft.
type QuestionGenerateRequest struct {
	Prompt string  `json:"prompt" validate:"required,min=10"`
	Type   string  `json:"type" validate:"required,oneof=multipleChoice text challenge programming"`
	Weight float64 `json:"weight" validate:"required,gt=0"`
}

// QuestionOptionResponse is one serialized multiple-choice alternative.
type QuestionOptionResponse struct {
	Letter      string `json:"letter"`
	Description string `json:"description"`
	Correct     bool   `json:"correct"`
}

// RubricCriterionResponse is one serialized grading criterion.
type RubricCriterionResponse struct {
	Title  string             `json:"title"`
	Weight float64            `json:"weight"`
	Bands  models.RubricBands `json:"bands"`
}

// QuestionResponse is the serialized representation returned to API clients.
type QuestionResponse struct {
	ID         uint                      `json:"id"`
	SectionID  uint                      `json:"section_id"`
	Type       string                    `json:"type"`
	Statement  string                    `json:"statement"`
	Weight     float64                   `json:"weight"`
	Tags       []string                  `json:"tags"`
	Difficulty int                       `json:"difficulty"`
	Shareable  bool                      `json:"shareable"`
	Options    []QuestionOptionResponse  `json:"options,omitempty"`
	Rubric     []RubricCriterionResponse `json:"rubric,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
}

// QuestionDraftResponse is the unpersisted draft returned by AI generation.
// The recruiter reviews and edits it before a normal create call saves it.
type QuestionDraftResponse struct {
	Type       string                    `json:"type"`
	Weight     float64                   `json:"weight"`
	Statement  string                    `json:"statement"`
	Tags       []string                  `json:"tags,omitempty"`
	Difficulty int                       `json:"difficulty"`
	Options    []QuestionOptionResponse  `json:"options,omitempty"`
	Rubric     []RubricCriterionResponse `json:"rubric,omitempty"`
}

// NewQuestionResponse converts a model into a DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	response := QuestionResponse{
		ID:         model.ID,
		SectionID:  model.SectionID,
		Type:       string(model.Type),
		Statement:  model.Statement,
		Weight:     model.Weight,
		Difficulty: model.Difficulty,
		Shareable:  model.Shareable,
		CreatedAt:  model.CreatedAt,
	}

	if len(model.Tags) > 0 {
		_ = json.Unmarshal(model.Tags, &response.Tags)
	}

	for _, option := range model.Options {
		response.Options = append(response.Options, QuestionOptionResponse{
			Letter:      option.Letter,
			Description: option.Description,
			Correct:     option.Correct,
		})
	}

	for _, criterion := range model.Rubric {
		item := RubricCriterionResponse{
			Title:  criterion.Title,
			Weight: criterion.Weight,
		}
		if len(criterion.Bands) > 0 {
			_ = json.Unmarshal(criterion.Bands, &item.Bands)
		}
		response.Rubric = append(response.Rubric, item)
	}

	return response
}
