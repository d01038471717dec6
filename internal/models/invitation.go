package models

import "time"

// InvitationStatus tracks a candidate's progress through an exam.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusExpired  InvitationStatus = "expired"
	InvitationStatusDenied   InvitationStatus = "denied"
	InvitationStatusStarted  InvitationStatus = "started"
	InvitationStatusFinished InvitationStatus = "finished"
)

// Invitation is a recipient of an exam invite and their progress. Status
// transitions after sending are driven by the candidate, never by this API.
type Invitation struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	ExamID          uint             `gorm:"index;not null" json:"exam_id"`
	Email           string           `gorm:"size:255;not null;index" json:"email"`
	Name            string           `gorm:"size:255" json:"name"`
	Logo            string           `gorm:"size:512" json:"logo"`
	Status          InvitationStatus `gorm:"size:16;not null;default:pending" json:"status"`
	ExpirationHours int              `gorm:"not null" json:"expiration_hours"`
	Score           *float64         `json:"score"`
	AnswerSheetID   *uint            `gorm:"index" json:"answer_sheet_id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// CanResend reports whether the invite may be sent again. Only expired
// invitations can be resent.
func (i Invitation) CanResend() bool {
	return i.Status == InvitationStatusExpired
}

// CanCorrect reports whether AI correction may be generated: the candidate
// must have finished and no score may exist yet.
func (i Invitation) CanCorrect() bool {
	return i.Status == InvitationStatusFinished && i.Score == nil && i.AnswerSheetID != nil
}
