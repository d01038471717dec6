package dto

import "time"

// SuggestionTriggerRequest updates the job title/level pair the debounced
// description suggestion watches. Every call re-arms the timer; only the
// last pair before the quiet period actually reaches the AI.
type SuggestionTriggerRequest struct {
	JobTitle string `json:"job_title" validate:"required,min=2"`
	JobLevel string `json:"job_level" validate:"required,min=2"`
}

// SuggestionResponse is the latest suggestion produced for a recruiter.
type SuggestionResponse struct {
	JobTitle    string    `json:"job_title"`
	JobLevel    string    `json:"job_level"`
	Description string    `json:"description"`
	GeneratedAt time.Time `json:"generated_at"`
}
