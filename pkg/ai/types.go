package ai

import "context"

// GeneratedOption is one multiple-choice alternative produced by the model.
type GeneratedOption struct {
	Description string `json:"description"`
	Correct     bool   `json:"correct"`
}

// GeneratedCriterion is one grading rubric criterion produced by the model.
type GeneratedCriterion struct {
	Title     string  `json:"title"`
	Weight    float64 `json:"weight"`
	MaxText   string  `json:"max_text"`
	AvgText   string  `json:"avg_text"`
	MinText   string  `json:"min_text"`
	MaxPoints float64 `json:"max_points"`
}

// GeneratedQuestion is the pre-filled draft returned by question generation.
// The recruiter edits it before submitting; nothing is persisted here.
type GeneratedQuestion struct {
	Statement  string               `json:"statement"`
	Options    []GeneratedOption    `json:"options,omitempty"`
	Rubric     []GeneratedCriterion `json:"rubric,omitempty"`
	Tags       []string             `json:"tags,omitempty"`
	Difficulty int                  `json:"difficulty"`
}

// CorrectionInput carries everything the model needs to grade one answer
// sheet: the questions with their rubrics and the candidate's answers.
type CorrectionInput struct {
	ExamTitle string
	Questions []CorrectionQuestion
	Answers   string
}

// CorrectionQuestion is one question plus its grading guidance.
type CorrectionQuestion struct {
	Statement string
	Type      string
	Weight    float64
	Rubric    []GeneratedCriterion
}

// CorrectionResult is the structured grading outcome.
type CorrectionResult struct {
	Score    float64                `json:"score"`
	Feedback string                 `json:"feedback"`
	Details  map[string]interface{} `json:"details,omitempty"`
	Raw      map[string]interface{} `json:"raw,omitempty"`
}

// Generator produces an editable question draft from a free-form prompt.
type Generator interface {
	GenerateQuestion(ctx context.Context, prompt, questionType string) (GeneratedQuestion, error)
}

// Corrector grades a finished answer sheet against the exam's rubrics.
type Corrector interface {
	Correct(ctx context.Context, input CorrectionInput) (CorrectionResult, error)
}

// Suggester proposes a job description from a title and seniority level.
type Suggester interface {
	SuggestDescription(ctx context.Context, jobTitle, jobLevel string) (string, error)
}
