package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnswerSheetStatus tracks whether a sheet is still being filled or done.
type AnswerSheetStatus string

const (
	AnswerSheetStatusInProgress AnswerSheetStatus = "inProgress"
	AnswerSheetStatusFinished   AnswerSheetStatus = "finished"
)

// AnswerSheet holds a candidate's submitted answers and, once generated, the
// AI correction outcome.
type AnswerSheet struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	ExamID       uint              `gorm:"index;not null" json:"exam_id"`
	InvitationID uint              `gorm:"index;not null" json:"invitation_id"`
	Status       AnswerSheetStatus `gorm:"size:16;not null;default:inProgress" json:"status"`
	Answers      datatypes.JSON    `json:"answers"`
	Score        *float64          `json:"score"`
	Feedback     string            `gorm:"type:text" json:"feedback"`
	CorrectionAt *time.Time        `json:"correction_at"`
	Raw          datatypes.JSONMap `json:"raw"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
