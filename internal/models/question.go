package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuestionType discriminates the payload a question carries.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multipleChoice"
	QuestionTypeText           QuestionType = "text"
	QuestionTypeChallenge      QuestionType = "challenge"
	QuestionTypeProgramming    QuestionType = "programming"
)

// ValidQuestionType reports whether the given string names a known type.
func ValidQuestionType(value string) bool {
	switch QuestionType(value) {
	case QuestionTypeMultipleChoice, QuestionTypeText, QuestionTypeChallenge, QuestionTypeProgramming:
		return true
	default:
		return false
	}
}

// Question is one assessable item inside a section. Multiple-choice questions
// carry options with exactly one marked correct; the other types carry at
// least one grading rubric criterion.
type Question struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	SectionID  uint              `gorm:"index;not null" json:"section_id"`
	Type       QuestionType      `gorm:"size:32;not null" json:"type"`
	Statement  string            `gorm:"type:text;not null" json:"statement"`
	Weight     float64           `gorm:"not null" json:"weight"`
	Tags       datatypes.JSON    `json:"tags"`
	Difficulty int               `gorm:"not null;default:3" json:"difficulty"`
	Shareable  bool              `gorm:"not null;default:false" json:"shareable"`
	Options    []QuestionOption  `gorm:"constraint:OnDelete:CASCADE" json:"options,omitempty"`
	Rubric     []RubricCriterion `gorm:"constraint:OnDelete:CASCADE" json:"rubric,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// QuestionOption is one multiple-choice alternative. Letters are assigned as
// consecutive lowercase letters starting at "a".
type QuestionOption struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	QuestionID  uint      `gorm:"index;not null" json:"question_id"`
	Letter      string    `gorm:"size:4;not null" json:"letter"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Correct     bool      `gorm:"not null;default:false" json:"correct"`
	CreatedAt   time.Time `json:"created_at"`
}

// RubricBand is one descriptive scoring band with its point range.
type RubricBand struct {
	Rationale string  `json:"rationale"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

// RubricBands groups the three bands of a criterion. Band ordering
// (max >= avg >= min) is intended but not enforced.
type RubricBands struct {
	Max RubricBand `json:"max"`
	Avg RubricBand `json:"avg"`
	Min RubricBand `json:"min"`
}

// RubricCriterion is one scoring band definition for subjective questions.
// The three bands are stored as a JSON column.
type RubricCriterion struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	QuestionID uint           `gorm:"index;not null" json:"question_id"`
	Title      string         `gorm:"size:255;not null" json:"title"`
	Weight     float64        `gorm:"not null" json:"weight"`
	Bands      datatypes.JSON `json:"bands"`
	CreatedAt  time.Time      `json:"created_at"`
}
